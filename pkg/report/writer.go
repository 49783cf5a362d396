package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/devicelab-dev/gmail-signin/pkg/core"
	"github.com/devicelab-dev/gmail-signin/pkg/login"
)

// File names inside an attempt directory.
const (
	ReportFile     = "report.json"
	ScreenshotFile = "screenshot.png"
	HierarchyFile  = "hierarchy.xml"
)

// Build converts a login result into a report.
func Build(res *login.Result, meta Meta) *Report {
	r := &Report{
		Version:        Version,
		AttemptID:      res.AttemptID,
		Status:         statusOf(res.Outcome),
		Outcome:        res.Outcome,
		Branch:         res.Branch,
		WelcomeSkipped: res.WelcomeSkipped,
		StartTime:      res.StartTime,
		EndTime:        res.StartTime.Add(res.Duration),
		Duration:       res.Duration.Milliseconds(),
		App:            App{Package: meta.AppPackage},
		Session:        SessionInfo{Driver: meta.Driver, Server: meta.Server},
		Diagnostics:    res.Diagnostics,
		Steps:          make([]Step, 0, len(res.Steps)),
	}

	if res.Err != nil {
		r.Error = errorOf(res.Err)
	}

	for i, s := range res.Steps {
		step := Step{
			Index:    i,
			Action:   s.Action,
			Target:   string(s.Target),
			Status:   StatusPassed,
			Duration: s.Duration.Milliseconds(),
			Error:    s.Error,
		}
		switch {
		case s.Skipped:
			step.Status = StatusSkipped
		case s.Error != "":
			step.Status = StatusFailed
		}
		r.Steps = append(r.Steps, step)
	}
	return r
}

func statusOf(o login.Outcome) Status {
	switch o {
	case login.OutcomeAuthenticated:
		return StatusPassed
	case login.OutcomeErrored:
		return StatusErrored
	default:
		return StatusFailed
	}
}

func errorOf(err error) *Error {
	e := &Error{Type: "unknown", Message: err.Error()}
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) {
		e.Type = execErr.Kind.String()
		e.Code = execErr.Code
		e.Locator = execErr.Locator
	}
	return e
}

// Writer saves reports and artifacts under a base directory, one
// subdirectory per attempt.
type Writer struct {
	baseDir   string
	artifacts core.ArtifactConfig
	log       *zap.Logger
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string, artifacts core.ArtifactConfig, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{baseDir: baseDir, artifacts: artifacts, log: log}
}

// Write builds the report for res, captures artifacts from collector when
// the policy asks for them and writes report.json. It returns the path of
// the report file. A failed capture is logged and left out of the report.
func (w *Writer) Write(res *login.Result, meta Meta, collector core.ArtifactCollector) (string, error) {
	dir := filepath.Join(w.baseDir, res.AttemptID)
	if err := ensureDir(dir); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	r := Build(res, meta)

	if collector != nil && w.artifacts.ShouldCapture(res.Authenticated()) {
		r.Artifacts = w.capture(dir, collector)
	}

	path := filepath.Join(dir, ReportFile)
	if err := atomicWriteJSON(path, r); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func (w *Writer) capture(dir string, collector core.ArtifactCollector) []core.Attachment {
	var out []core.Attachment

	if w.artifacts.Screenshot {
		data, err := collector.CaptureScreenshot()
		switch {
		case err != nil:
			w.log.Warn("screenshot capture failed", zap.Error(err))
		case len(data) > 0:
			if err := os.WriteFile(filepath.Join(dir, ScreenshotFile), data, 0o644); err != nil {
				w.log.Warn("screenshot write failed", zap.Error(err))
				break
			}
			out = append(out, core.NewScreenshotAttachment(ScreenshotFile, data))
		}
	}

	if w.artifacts.UIHierarchy {
		data, err := collector.CaptureHierarchy()
		switch {
		case err != nil:
			w.log.Warn("hierarchy capture failed", zap.Error(err))
		case len(data) > 0:
			if err := os.WriteFile(filepath.Join(dir, HierarchyFile), data, 0o644); err != nil {
				w.log.Warn("hierarchy write failed", zap.Error(err))
				break
			}
			out = append(out, core.NewHierarchyAttachment(HierarchyFile, data))
		}
	}
	return out
}

// Load reads a report.json file.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- report path from our own output dir
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// atomicWriteJSON writes v to a temp file and renames it into place so
// readers never see a partial report.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
