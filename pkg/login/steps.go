package login

import "github.com/devicelab-dev/gmail-signin/pkg/locator"

type stepKind int

const (
	stepClick stepKind = iota
	stepType
	stepSettle
)

func (k stepKind) String() string {
	switch k {
	case stepType:
		return "type"
	case stepSettle:
		return "settle"
	default:
		return "click"
	}
}

// field selects which credential a type step enters.
type field int

const (
	fieldNone field = iota
	fieldEmail
	fieldPassword
)

// pause selects which settle budget a settle step uses.
type pause int

const (
	pauseNone pause = iota
	pausePassword
	pauseInboxSync
)

type step struct {
	kind   stepKind
	target locator.Name
	field  field
	pause  pause
	// permission marks the dialog whose presence varies across OS versions.
	permission bool
}

func click(n locator.Name) step { return step{kind: stepClick, target: n} }

func typeInto(n locator.Name, f field) step { return step{kind: stepType, target: n, field: f} }

func settleFor(p pause) step { return step{kind: stepSettle, pause: p} }

var welcomeSteps = []step{
	click(locator.WelcomeGotIt),
}

var shortcutSteps = []step{
	click(locator.TakeMeToGmail),
	{kind: stepClick, target: locator.PermissionDeny, permission: true},
	click(locator.ConfirmGotIt),
}

var credentialSteps = []step{
	click(locator.AddAnotherAccount),
	click(locator.GoogleProvider),
	typeInto(locator.EmailField, fieldEmail),
	click(locator.NextButton),
	typeInto(locator.PasswordField, fieldPassword),
	settleFor(pausePassword),
	click(locator.NextButton),
	click(locator.AgreeButton),
	click(locator.AcceptButton),
	click(locator.TakeMeToGmailButton),
	settleFor(pauseInboxSync),
}
