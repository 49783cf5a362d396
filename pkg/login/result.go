package login

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/gmail-signin/pkg/locator"
)

// Outcome is how a login attempt ended.
type Outcome int

const (
	// OutcomeAuthenticated means the inbox was reached.
	OutcomeAuthenticated Outcome = iota
	// OutcomeNotAuthenticated means the flow ran but no inbox marker appeared.
	OutcomeNotAuthenticated
	// OutcomeErrored means an interaction or the session failed mid-flow.
	OutcomeErrored
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeNotAuthenticated:
		return "not_authenticated"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, v := range []Outcome{OutcomeAuthenticated, OutcomeNotAuthenticated, OutcomeErrored} {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Branch is the path the flow took after the welcome check.
type Branch int

const (
	BranchNone Branch = iota
	BranchShortcut
	BranchCredentials
)

// String returns the string representation of Branch
func (b Branch) String() string {
	switch b {
	case BranchShortcut:
		return "shortcut"
	case BranchCredentials:
		return "credentials"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Branch) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Branch) UnmarshalText(text []byte) error {
	for _, v := range []Branch{BranchNone, BranchShortcut, BranchCredentials} {
		if v.String() == string(text) {
			*b = v
			return nil
		}
	}
	return fmt.Errorf("unknown branch %q", text)
}

// Diagnostics is the foreground state captured when the flow errors.
type Diagnostics struct {
	Activity string `json:"activity,omitempty"`
	Package  string `json:"package,omitempty"`
}

// StepRecord is one interaction performed (or skipped) by the flow.
type StepRecord struct {
	Action   string        `json:"action"` // click, type, settle
	Target   locator.Name  `json:"target,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Result captures the outcome of one login attempt.
type Result struct {
	AttemptID      string        `json:"attemptId"`
	Outcome        Outcome       `json:"outcome"`
	Branch         Branch        `json:"branch"`
	WelcomeSkipped bool          `json:"welcomeSkipped"`
	Err            error         `json:"-"`
	Diagnostics    *Diagnostics  `json:"diagnostics,omitempty"`
	Steps          []StepRecord  `json:"steps"`
	StartTime      time.Time     `json:"startTime"`
	Duration       time.Duration `json:"duration"`
}

// Authenticated reports whether the attempt reached the inbox.
func (r *Result) Authenticated() bool {
	return r.Outcome == OutcomeAuthenticated
}

// ErrorMessage returns the error text, or "" when the attempt did not error.
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
