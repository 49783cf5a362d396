package locator

import (
	"fmt"
	"sort"
)

// Name identifies an element the login flow knows about.
type Name string

// Known elements of the mail app and the account setup screens.
const (
	WelcomeGotIt        Name = "welcomeGotIt"
	TakeMeToGmail       Name = "takeMeToGmail"
	PermissionDeny      Name = "permissionDeny"
	ConfirmGotIt        Name = "confirmGotIt"
	AddAnotherAccount   Name = "addAnotherAccount"
	GoogleProvider      Name = "googleProvider"
	EmailField          Name = "emailField"
	NextButton          Name = "nextButton"
	PasswordField       Name = "passwordField"
	AgreeButton         Name = "agreeButton"
	AcceptButton        Name = "acceptButton"
	TakeMeToGmailButton Name = "takeMeToGmailButton"
	ConversationList    Name = "conversationList"
	ComposeButton       Name = "composeButton"
	InboxLabel          Name = "inboxLabel"
)

// Registry maps names to locator strings.
type Registry map[Name]string

// Default returns the locators for the stock Gmail app on Android.
func Default() Registry {
	return Registry{
		WelcomeGotIt:        "com.google.android.gm:id/welcome_tour_got_it",
		TakeMeToGmail:       `//*[@text="TAKE ME TO GMAIL"]`,
		PermissionDeny:      "com.android.permissioncontroller:id/permission_deny_button",
		ConfirmGotIt:        `//*[@text="Got it"]`,
		AddAnotherAccount:   "com.google.android.gm:id/setup_addresses_add_another",
		GoogleProvider:      `//android.widget.TextView[@text="Google"]`,
		EmailField:          `//android.widget.EditText[@resource-id="identifierId"]`,
		NextButton:          `//android.widget.Button[@text="Next"]`,
		PasswordField:       `//android.widget.EditText[@password="true"]`,
		AgreeButton:         `//android.widget.Button[@text="I agree"]`,
		AcceptButton:        `//android.widget.Button[@text="Accept"]`,
		TakeMeToGmailButton: `//android.widget.Button[@text="TAKE ME TO GMAIL"]`,
		ConversationList:    "com.google.android.gm:id/conversation_list_view",
		ComposeButton:       "com.google.android.gm:id/compose_button",
		InboxLabel:          `//*[@text="Inbox" or @text="Primary"]`,
	}
}

// Names returns every name the default registry defines, sorted.
func Names() []Name {
	def := Default()
	names := make([]Name, 0, len(def))
	for n := range def {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Get returns the locator for name, or "" if it is not registered.
func (r Registry) Get(name Name) string {
	return r[name]
}

// Merge returns a copy of r with overrides applied. Empty override values
// are ignored.
func (r Registry) Merge(overrides map[string]string) Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		out[Name(k)] = v
	}
	return out
}

// Validate checks that every known name has a locator and that no unknown
// names are present.
func (r Registry) Validate() error {
	known := Default()
	for _, n := range Names() {
		if r[n] == "" {
			return fmt.Errorf("locator %q is not set", n)
		}
	}
	for n := range r {
		if _, ok := known[n]; !ok {
			return fmt.Errorf("unknown locator name %q", n)
		}
	}
	return nil
}
