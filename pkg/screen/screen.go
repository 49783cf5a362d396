// Package screen identifies which screen the mail app is showing.
package screen

import (
	"context"

	"github.com/devicelab-dev/gmail-signin/pkg/locator"
)

// State is a coarse classification of the foreground screen.
type State int

const (
	Unknown State = iota
	Welcome
	AlreadyLoggedIn
	CredentialEntry
	Authenticated
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case Welcome:
		return "welcome"
	case AlreadyLoggedIn:
		return "already_logged_in"
	case CredentialEntry:
		return "credential_entry"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Prober answers existence questions about locators.
type Prober interface {
	Exists(ctx context.Context, loc string) bool
}

// Classifier tests for the elements that mark each screen. Results are never
// cached: every call reflects the live screen and costs a bounded wait when
// the element is absent.
type Classifier struct {
	probe    Prober
	locators locator.Registry
}

// NewClassifier creates a Classifier using the given locators.
func NewClassifier(p Prober, reg locator.Registry) *Classifier {
	return &Classifier{probe: p, locators: reg}
}

// IsWelcomeScreen reports whether the first-run welcome tour is showing.
func (c *Classifier) IsWelcomeScreen(ctx context.Context) bool {
	return c.probe.Exists(ctx, c.locators.Get(locator.WelcomeGotIt))
}

// IsAlreadyLoggedIn reports whether the "take me to Gmail" shortcut is offered.
func (c *Classifier) IsAlreadyLoggedIn(ctx context.Context) bool {
	return c.probe.Exists(ctx, c.locators.Get(locator.TakeMeToGmail))
}

// IsAuthenticated reports whether any rendering of the inbox is showing:
// the conversation list, the compose button, or an Inbox/Primary label.
// Checks stop at the first match.
func (c *Classifier) IsAuthenticated(ctx context.Context) bool {
	for _, name := range []locator.Name{locator.ConversationList, locator.ComposeButton, locator.InboxLabel} {
		if c.probe.Exists(ctx, c.locators.Get(name)) {
			return true
		}
	}
	return false
}

// Classify returns the first matching state in priority order: welcome,
// already logged in, authenticated. A screen matching none of them is
// assumed to be credential entry.
func (c *Classifier) Classify(ctx context.Context) State {
	switch {
	case ctx.Err() != nil:
		return Unknown
	case c.IsWelcomeScreen(ctx):
		return Welcome
	case c.IsAlreadyLoggedIn(ctx):
		return AlreadyLoggedIn
	case c.IsAuthenticated(ctx):
		return Authenticated
	case ctx.Err() != nil:
		return Unknown
	default:
		return CredentialEntry
	}
}
