// Package probe waits for UI elements and interacts with them.
//
// Existence checks never fail: any lookup problem reads as "absent" so
// callers can probe speculatively. Click and Type must succeed and return
// an ExecutionError when the element does not become ready in time.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/devicelab-dev/gmail-signin/pkg/core"
	"github.com/devicelab-dev/gmail-signin/pkg/locator"
)

const (
	// DefaultTimeout bounds every wait unless configured otherwise.
	DefaultTimeout = 15 * time.Second
	// DefaultPollInterval is the pause between lookups.
	DefaultPollInterval = 200 * time.Millisecond
)

// Finder is the subset of an automation session the probe drives. Calls
// must return once ctx is done.
type Finder interface {
	FindElement(ctx context.Context, strategy, value string) (string, error)
	IsElementDisplayed(ctx context.Context, elementID string) (bool, error)
	IsElementEnabled(ctx context.Context, elementID string) (bool, error)
	ClickElement(ctx context.Context, elementID string) error
	ClearElement(ctx context.Context, elementID string) error
	SetElementValue(ctx context.Context, elementID, text string) error
}

// Condition is the state an element must reach.
type Condition int

const (
	// Present means the element is in the element tree.
	Present Condition = iota
	// Clickable means the element is displayed and enabled.
	Clickable
)

func (c Condition) String() string {
	if c == Clickable {
		return "clickable"
	}
	return "present"
}

var (
	errNotDisplayed = errors.New("element not displayed")
	errNotEnabled   = errors.New("element not enabled")
)

// Probe performs bounded waits against a Finder.
type Probe struct {
	finder   Finder
	timeout  time.Duration
	interval time.Duration
	log      *zap.Logger
}

// Option configures a Probe.
type Option func(*Probe)

// WithTimeout sets the default wait. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *Probe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithPollInterval sets the pause between lookups. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(p *Probe) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Probe) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a Probe.
func New(f Finder, opts ...Option) *Probe {
	p := &Probe{
		finder:   f,
		timeout:  DefaultTimeout,
		interval: DefaultPollInterval,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the default wait.
func (p *Probe) Timeout() time.Duration {
	return p.timeout
}

// Exists waits up to the default timeout for loc to be present.
func (p *Probe) Exists(ctx context.Context, loc string) bool {
	return p.ExistsWithin(ctx, loc, p.timeout)
}

// ExistsWithin waits up to timeout for loc to be present. It never fails:
// timeouts and lookup errors all report false.
func (p *Probe) ExistsWithin(ctx context.Context, loc string, timeout time.Duration) bool {
	res := locator.Resolve(loc)
	if _, err := p.waitFor(ctx, res, Present, timeout); err != nil {
		p.log.Debug("element absent", zap.Stringer("locator", res), zap.Error(err))
		return false
	}
	return true
}

// Click waits up to the default timeout for loc to be clickable and clicks it.
func (p *Probe) Click(ctx context.Context, loc string) error {
	return p.ClickWithin(ctx, loc, p.timeout)
}

// ClickWithin waits up to timeout for loc to be clickable and clicks it.
func (p *Probe) ClickWithin(ctx context.Context, loc string, timeout time.Duration) error {
	res := locator.Resolve(loc)
	id, err := p.waitFor(ctx, res, Clickable, timeout)
	if err != nil {
		return core.ErrNotClickableInTime.WithLocator(loc).
			WithDetails(map[string]interface{}{"strategy": string(res.Strategy), "timeout": timeout.String()}).
			WithCause(err)
	}
	if err := p.finder.ClickElement(ctx, id); err != nil {
		return core.ErrSessionFailure.WithLocator(loc).WithCause(fmt.Errorf("click: %w", err))
	}
	p.log.Debug("clicked", zap.Stringer("locator", res))
	return nil
}

// Type waits up to the default timeout for loc to be present, clears it and
// enters text.
func (p *Probe) Type(ctx context.Context, loc, text string) error {
	return p.TypeWithin(ctx, loc, text, p.timeout)
}

// TypeWithin waits up to timeout for loc to be present, clears it and
// enters text. The field always ends up holding exactly text.
func (p *Probe) TypeWithin(ctx context.Context, loc, text string, timeout time.Duration) error {
	res := locator.Resolve(loc)
	id, err := p.waitFor(ctx, res, Present, timeout)
	if err != nil {
		return core.ErrNotPresentInTime.WithLocator(loc).
			WithDetails(map[string]interface{}{"strategy": string(res.Strategy), "timeout": timeout.String()}).
			WithCause(err)
	}
	if err := p.finder.ClearElement(ctx, id); err != nil {
		return core.ErrSessionFailure.WithLocator(loc).WithCause(fmt.Errorf("clear: %w", err))
	}
	if err := p.finder.SetElementValue(ctx, id, text); err != nil {
		return core.ErrSessionFailure.WithLocator(loc).WithCause(fmt.Errorf("send keys: %w", err))
	}
	// never log text: it may be a password
	p.log.Debug("typed", zap.Stringer("locator", res), zap.Int("chars", len([]rune(text))))
	return nil
}

// waitFor polls until the element satisfies cond or timeout elapses. Each
// lookup runs under the wait deadline.
func (p *Probe) waitFor(ctx context.Context, res locator.Resolved, cond Condition, timeout time.Duration) (string, error) {
	if timeout < 0 {
		timeout = 0
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(p.interval), 1)
	lastErr := core.ErrLookupTimeout.WithLocator(res.Value)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s not %s within %s: %w", res, cond, timeout, lastErr)
		}
		id, err := p.check(ctx, res, cond)
		if err == nil {
			return id, nil
		}
		lastErr = core.ErrLookupTimeout.WithLocator(res.Value).WithCause(err)
	}
}

func (p *Probe) check(ctx context.Context, res locator.Resolved, cond Condition) (string, error) {
	id, err := p.finder.FindElement(ctx, string(res.Strategy), res.Value)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("empty element id")
	}
	if cond == Present {
		return id, nil
	}

	displayed, err := p.finder.IsElementDisplayed(ctx, id)
	if err != nil {
		return "", err
	}
	if !displayed {
		return "", errNotDisplayed
	}
	enabled, err := p.finder.IsElementEnabled(ctx, id)
	if err != nil {
		return "", err
	}
	if !enabled {
		return "", errNotEnabled
	}
	return id, nil
}
