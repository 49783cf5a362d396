// Package core provides the shared error, status and artifact types for gmail-signin.
package core

// Attachment represents a debug artifact captured after a login attempt
type Attachment struct {
	Name        string `json:"name"`        // Descriptive name: screenshot, hierarchy
	ContentType string `json:"contentType"` // MIME type: image/png, application/xml
	Path        string `json:"path"`        // File path relative to output directory
	Body        []byte `json:"-"`           // In-memory content (not serialized to JSON)
}

// Common attachment names
const (
	AttachmentScreenshot = "screenshot"
	AttachmentHierarchy  = "hierarchy"
)

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeXML  = "application/xml"
	ContentTypeJSON = "application/json"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentScreenshot,
		ContentType: ContentTypePNG,
		Path:        path,
		Body:        data,
	}
}

// NewHierarchyAttachment creates a page source attachment
func NewHierarchyAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentHierarchy,
		ContentType: ContentTypeXML,
		Path:        path,
		Body:        data,
	}
}

// ArtifactConfig controls when and what artifacts are captured
type ArtifactConfig struct {
	// When to capture
	CaptureOnFailure bool `yaml:"captureOnFailure" json:"captureOnFailure"` // Default: true
	CaptureOnSuccess bool `yaml:"captureOnSuccess" json:"captureOnSuccess"` // Default: false

	// What to capture
	Screenshot  bool `yaml:"screenshot" json:"screenshot"`   // Default: true
	UIHierarchy bool `yaml:"uiHierarchy" json:"uiHierarchy"` // Default: true
}

// DefaultArtifactConfig returns sensible defaults for artifact capture
func DefaultArtifactConfig() ArtifactConfig {
	return ArtifactConfig{
		CaptureOnFailure: true,
		CaptureOnSuccess: false,
		Screenshot:       true,
		UIHierarchy:      true,
	}
}

// ShouldCapture returns true if artifacts should be captured for an attempt
// that did (or did not) end authenticated.
func (c ArtifactConfig) ShouldCapture(authenticated bool) bool {
	if authenticated {
		return c.CaptureOnSuccess
	}
	return c.CaptureOnFailure
}

// ArtifactCollector defines the interface for capturing debug artifacts
type ArtifactCollector interface {
	// CaptureScreenshot takes a screenshot and returns PNG data
	CaptureScreenshot() ([]byte, error)

	// CaptureHierarchy captures the page source
	CaptureHierarchy() ([]byte, error)
}
