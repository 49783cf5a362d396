// Package report writes the outcome of a login attempt to disk.
//
// Layout of one attempt directory:
//   - report.json: outcome, branch, steps, diagnostics and artifact paths
//   - screenshot.png, hierarchy.xml: captured per the artifact policy
//
// Credentials never reach the report.
package report

import (
	"time"

	"github.com/devicelab-dev/gmail-signin/pkg/core"
	"github.com/devicelab-dev/gmail-signin/pkg/login"
)

// Version is the report schema version.
const Version = "1.0.0"

// Status represents the execution status.
type Status string

// Status values.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
	StatusSkipped Status = "skipped"
)

// Report is the content of report.json.
type Report struct {
	Version        string             `json:"version"`
	AttemptID      string             `json:"attemptId"`
	Status         Status             `json:"status"`
	Outcome        login.Outcome      `json:"outcome"`
	Branch         login.Branch       `json:"branch"`
	WelcomeSkipped bool               `json:"welcomeSkipped"`
	StartTime      time.Time          `json:"startTime"`
	EndTime        time.Time          `json:"endTime"`
	Duration       int64              `json:"duration"` // milliseconds
	App            App                `json:"app"`
	Session        SessionInfo        `json:"session"`
	Error          *Error             `json:"error,omitempty"`
	Diagnostics    *login.Diagnostics `json:"diagnostics,omitempty"`
	Steps          []Step             `json:"steps"`
	Artifacts      []core.Attachment  `json:"artifacts,omitempty"`
}

// App identifies the app under automation.
type App struct {
	Package string `json:"package"`
}

// SessionInfo describes where the attempt ran.
type SessionInfo struct {
	Driver string `json:"driver"` // appium, mock
	Server string `json:"server,omitempty"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // lookup_timeout, interaction_failed, session, config, unknown
	Code    string `json:"code,omitempty"`
	Locator string `json:"locator,omitempty"`
	Message string `json:"message"`
}

// Step is one interaction of the flow.
type Step struct {
	Index    int    `json:"index"`
	Action   string `json:"action"`
	Target   string `json:"target,omitempty"`
	Status   Status `json:"status"`
	Duration int64  `json:"duration"` // milliseconds
	Error    string `json:"error,omitempty"`
}

// Meta is the run context that is not part of login.Result.
type Meta struct {
	Driver     string
	Server     string
	AppPackage string
}
