package mock

import (
	"fmt"

	"github.com/devicelab-dev/gmail-signin/pkg/locator"
)

// Scenario screen names.
const (
	ScreenWelcome        = "welcome"
	ScreenSetup          = "setup"
	ScreenProviders      = "providers"
	ScreenEmail          = "signin-email"
	ScreenPassword       = "signin-password"
	ScreenTerms          = "terms"
	ScreenServices       = "services"
	ScreenDone           = "done"
	ScreenSignedIn       = "signed-in"
	ScreenPermission     = "permission"
	ScreenTips           = "tips"
	ScreenInbox          = "inbox"
	activitySetup        = ".welcome.SetupAddressesActivity"
	activitySignIn       = "com.google.android.gms.auth.uiflows.minutemaid.MinuteMaidActivity"
	activityConversation = ".ConversationListActivityGmail"
)

// ScenarioOptions shapes the scripted Gmail app.
type ScenarioOptions struct {
	// Welcome shows the first-run welcome tour before the setup screen.
	Welcome bool
	// SignedIn offers the "take me to Gmail" shortcut for an existing account.
	SignedIn bool
	// NoPermissionDialog skips the notification permission prompt in the
	// shortcut branch.
	NoPermissionDialog bool
	// BrokenScreen disables every element on the named screen.
	BrokenScreen string
	// EmptyInbox ends the flow on a screen with no authenticated markers.
	EmptyInbox bool
}

// GmailScenario builds a scripted Gmail app using the given locators.
func GmailScenario(reg locator.Registry, opts ScenarioOptions) Config {
	l := reg.Get
	setup := ScreenSetup
	if opts.SignedIn {
		setup = ScreenSignedIn
	}

	afterShortcut := ScreenPermission
	if opts.NoPermissionDialog {
		afterShortcut = ScreenTips
	}

	inbox := Screen{Name: ScreenInbox, Activity: activityConversation, Elements: []Element{
		{Locator: l(locator.ConversationList)},
		{Locator: l(locator.ComposeButton)},
		{Locator: l(locator.InboxLabel)},
	}}
	if opts.EmptyInbox {
		inbox.Elements = nil
	}

	screens := []Screen{
		{Name: ScreenWelcome, Activity: activitySetup, Elements: []Element{
			{Locator: l(locator.WelcomeGotIt), Next: setup},
		}},
		{Name: ScreenSetup, Activity: activitySetup, Elements: []Element{
			{Locator: l(locator.AddAnotherAccount), Next: ScreenProviders},
		}},
		{Name: ScreenProviders, Activity: activitySetup, Elements: []Element{
			{Locator: l(locator.GoogleProvider), Next: ScreenEmail},
		}},
		{Name: ScreenEmail, Activity: activitySignIn, Elements: []Element{
			{Locator: l(locator.EmailField)},
			{Locator: l(locator.NextButton), Next: ScreenPassword},
		}},
		{Name: ScreenPassword, Activity: activitySignIn, Elements: []Element{
			{Locator: l(locator.PasswordField)},
			{Locator: l(locator.NextButton), Next: ScreenTerms},
		}},
		{Name: ScreenTerms, Activity: activitySignIn, Elements: []Element{
			{Locator: l(locator.AgreeButton), Next: ScreenServices},
		}},
		{Name: ScreenServices, Activity: activitySignIn, Elements: []Element{
			{Locator: l(locator.AcceptButton), Next: ScreenDone},
		}},
		{Name: ScreenDone, Activity: activitySetup, Elements: []Element{
			{Locator: l(locator.TakeMeToGmailButton), Next: ScreenInbox},
		}},
		{Name: ScreenSignedIn, Activity: activitySetup, Elements: []Element{
			{Locator: l(locator.TakeMeToGmail), Next: afterShortcut},
		}},
		{Name: ScreenPermission, Activity: ".permission.ui.GrantPermissionsActivity", Elements: []Element{
			{Locator: l(locator.PermissionDeny), Next: ScreenTips},
		}},
		{Name: ScreenTips, Activity: activityConversation, Elements: []Element{
			{Locator: l(locator.ConfirmGotIt), Next: ScreenInbox},
		}},
		inbox,
	}

	if opts.BrokenScreen != "" {
		for i := range screens {
			if screens[i].Name != opts.BrokenScreen {
				continue
			}
			for j := range screens[i].Elements {
				screens[i].Elements[j].Disabled = true
			}
		}
	}

	start := setup
	if opts.Welcome {
		start = ScreenWelcome
	}
	return Config{Screens: screens, Start: start}
}

// NamedScenario returns the options for a scenario name used on the command line.
func NamedScenario(name string) (ScenarioOptions, error) {
	switch name {
	case "", "fresh":
		return ScenarioOptions{}, nil
	case "welcome":
		return ScenarioOptions{Welcome: true}, nil
	case "signed-in":
		return ScenarioOptions{SignedIn: true}, nil
	case "no-permission":
		return ScenarioOptions{SignedIn: true, NoPermissionDialog: true}, nil
	case "broken-terms":
		return ScenarioOptions{BrokenScreen: ScreenTerms}, nil
	case "empty-inbox":
		return ScenarioOptions{EmptyInbox: true}, nil
	default:
		return ScenarioOptions{}, fmt.Errorf("unknown mock scenario %q", name)
	}
}
