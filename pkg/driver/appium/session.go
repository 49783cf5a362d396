package appium

import (
	"context"
	"sync"

	"github.com/devicelab-dev/gmail-signin/pkg/core"
)

// Session is one Appium automation session. It is created once, used for a
// single login attempt and quit by its owner on every exit path.
type Session struct {
	*Client
	appID string

	mu     sync.Mutex
	closed bool
}

// Open creates a session on the Appium server at serverURL. Capabilities are
// normalized before they are sent.
func Open(serverURL string, capabilities map[string]interface{}) (*Session, error) {
	caps := NormalizeCapabilities(capabilities)
	client := NewClient(serverURL)
	if err := client.Connect(caps); err != nil {
		return nil, core.ErrSessionFailure.WithMessage("could not create automation session").
			WithDetails(map[string]interface{}{"server": serverURL}).
			WithCause(err)
	}
	return &Session{Client: client, appID: AppPackage(caps)}, nil
}

// AppID returns the app package requested in the capabilities.
func (s *Session) AppID() string {
	if s == nil {
		return ""
	}
	return s.appID
}

// Quit ends the session. It is idempotent and safe on a nil or partially
// created session.
func (s *Session) Quit() error {
	if s == nil || s.Client == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.Client.Disconnect()
}

// CaptureScreenshot implements core.ArtifactCollector.
func (s *Session) CaptureScreenshot() ([]byte, error) {
	return s.Screenshot()
}

// CaptureHierarchy implements core.ArtifactCollector.
func (s *Session) CaptureHierarchy() ([]byte, error) {
	src, err := s.Source(context.Background())
	if err != nil {
		return nil, err
	}
	return []byte(src), nil
}

var _ core.ArtifactCollector = (*Session)(nil)
