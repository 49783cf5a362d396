// Package mock provides a scripted device for running the login flow without
// a real Appium server.
package mock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/gmail-signin/pkg/locator"
)

// ErrNoSuchElement mirrors the W3C "no such element" error.
var ErrNoSuchElement = errors.New("no such element")

// ErrStaleElement mirrors the W3C "stale element reference" error.
var ErrStaleElement = errors.New("stale element reference")

// ErrSessionClosed is returned by every call made after Quit.
var ErrSessionClosed = errors.New("invalid session id: session closed")

// Element is a UI element on a scripted screen.
type Element struct {
	Locator string
	// Disabled elements are present but never clickable.
	Disabled bool
	// EnableAfter makes the element report disabled for this many
	// enabled-checks before becoming clickable (mid-animation).
	EnableAfter int
	// Value pre-fills a text field.
	Value string
	// Next is the screen shown after the element is clicked ("" stays put).
	Next string
}

// Screen is one state of the scripted app.
type Screen struct {
	Name     string
	Activity string
	Elements []Element
}

// Action records an interaction delivered to the device.
type Action struct {
	Kind    string // activate, click, clear, type
	Locator string
	Text    string
}

// Config configures mock driver behavior.
type Config struct {
	// Package reported as the foreground package.
	Package string
	// Screens available to the script, keyed by Screen.Name.
	Screens []Screen
	// Start is the screen shown after the app is activated.
	Start string
	// ActivateErr is returned by ActivateApp when set.
	ActivateErr error
	// CallDelay adds artificial latency per call.
	CallDelay time.Duration
}

// Driver is a scripted device implementing the session calls used by the
// login flow.
type Driver struct {
	// Configuration
	Config Config

	mu      sync.Mutex
	screens map[string]Screen
	current string
	values  map[string]string
	enables map[string]int
	actions []Action
	finds   int
	closed  bool
}

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.Package == "" {
		cfg.Package = "com.google.android.gm"
	}
	d := &Driver{
		Config:  cfg,
		screens: make(map[string]Screen),
		values:  make(map[string]string),
		enables: make(map[string]int),
	}
	for _, s := range cfg.Screens {
		d.screens[s.Name] = s
		for _, e := range s.Elements {
			if e.Value != "" {
				d.values[e.Locator] = e.Value
			}
		}
	}
	d.current = cfg.Start
	return d
}

func (d *Driver) enter(ctx context.Context) error {
	if d.Config.CallDelay > 0 {
		t := time.NewTimer(d.Config.CallDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.closed {
		return ErrSessionClosed
	}
	return nil
}

// elementID encodes screen and locator so stale references can be detected.
func elementID(screen, loc string) string {
	return screen + "#" + loc
}

func (d *Driver) lookup(id string) (Element, error) {
	screen, loc, ok := strings.Cut(id, "#")
	if !ok || screen != d.current {
		return Element{}, ErrStaleElement
	}
	for _, e := range d.screens[screen].Elements {
		if e.Locator == loc {
			return e, nil
		}
	}
	return Element{}, ErrStaleElement
}

// FindElement finds an element on the current screen.
func (d *Driver) FindElement(ctx context.Context, strategy, value string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return "", err
	}
	d.finds++

	if want := locator.Resolve(value).Strategy; string(want) != strategy {
		return "", fmt.Errorf("invalid selector: %s lookup used for %q", strategy, value)
	}
	for _, e := range d.screens[d.current].Elements {
		if e.Locator == value {
			return elementID(d.current, value), nil
		}
	}
	return "", ErrNoSuchElement
}

// IsElementDisplayed reports whether the element is on the current screen.
func (d *Driver) IsElementDisplayed(ctx context.Context, elementID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return false, err
	}
	if _, err := d.lookup(elementID); err != nil {
		return false, err
	}
	return true, nil
}

// IsElementEnabled reports whether the element accepts clicks.
func (d *Driver) IsElementEnabled(ctx context.Context, elementID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return false, err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return false, err
	}
	if e.Disabled {
		return false, nil
	}
	if d.enables[e.Locator] < e.EnableAfter {
		d.enables[e.Locator]++
		return false, nil
	}
	return true, nil
}

// ClickElement clicks an element and follows its transition.
func (d *Driver) ClickElement(ctx context.Context, elementID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return err
	}
	d.actions = append(d.actions, Action{Kind: "click", Locator: e.Locator})
	if e.Next != "" {
		d.current = e.Next
	}
	return nil
}

// ClearElement empties a text field.
func (d *Driver) ClearElement(ctx context.Context, elementID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return err
	}
	d.actions = append(d.actions, Action{Kind: "clear", Locator: e.Locator})
	delete(d.values, e.Locator)
	return nil
}

// SetElementValue appends text to a text field.
func (d *Driver) SetElementValue(ctx context.Context, elementID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return err
	}
	e, err := d.lookup(elementID)
	if err != nil {
		return err
	}
	d.actions = append(d.actions, Action{Kind: "type", Locator: e.Locator, Text: text})
	d.values[e.Locator] += text
	return nil
}

// ActivateApp brings the app to the foreground on its start screen.
func (d *Driver) ActivateApp(ctx context.Context, appID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return err
	}
	if d.Config.ActivateErr != nil {
		return d.Config.ActivateErr
	}
	d.actions = append(d.actions, Action{Kind: "activate", Locator: appID})
	if d.current == "" {
		d.current = d.Config.Start
	}
	return nil
}

// CurrentActivity returns the activity of the current screen.
func (d *Driver) CurrentActivity(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return "", err
	}
	return d.screens[d.current].Activity, nil
}

// CurrentPackage returns the configured foreground package.
func (d *Driver) CurrentPackage(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return "", err
	}
	return d.Config.Package, nil
}

// Source returns a minimal page source for the current screen.
func (d *Driver) Source(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(ctx); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<hierarchy screen=%q>", d.current)
	locs := make([]string, 0)
	for _, e := range d.screens[d.current].Elements {
		locs = append(locs, e.Locator)
	}
	sort.Strings(locs)
	for _, l := range locs {
		fmt.Fprintf(&b, "<node locator=%q/>", l)
	}
	b.WriteString("</hierarchy>")
	return b.String(), nil
}

// Screenshot returns a mock PNG image.
func (d *Driver) Screenshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter(context.Background()); err != nil {
		return nil, err
	}
	// Minimal valid PNG (1x1 transparent pixel)
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// CaptureScreenshot implements core.ArtifactCollector.
func (d *Driver) CaptureScreenshot() ([]byte, error) {
	return d.Screenshot()
}

// CaptureHierarchy implements core.ArtifactCollector.
func (d *Driver) CaptureHierarchy() ([]byte, error) {
	src, err := d.Source(context.Background())
	return []byte(src), err
}

// Quit ends the session. Safe to call more than once.
func (d *Driver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Screen returns the name of the current screen.
func (d *Driver) Screen() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Value returns the text held by a field.
func (d *Driver) Value(loc string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[loc]
}

// Actions returns a copy of the recorded interactions.
func (d *Driver) Actions() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Action, len(d.actions))
	copy(out, d.actions)
	return out
}

// Clicks returns the locators clicked, in order.
func (d *Driver) Clicks() []string {
	var out []string
	for _, a := range d.Actions() {
		if a.Kind == "click" {
			out = append(out, a.Locator)
		}
	}
	return out
}

// FindCount returns how many element lookups were made.
func (d *Driver) FindCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finds
}

// Closed reports whether Quit was called.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
