// Package login drives the mail app from launch to an authenticated inbox.
//
// The flow is a small state machine:
//
//	start -> (welcome) -> shortcut | credentials -> post-login -> authenticated | not authenticated
//
// Any hard error raised along the way ends the attempt in the errored state
// after the foreground activity and package are recorded. Login never
// returns an error; the outcome is carried by Result.
package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/devicelab-dev/gmail-signin/pkg/core"
	"github.com/devicelab-dev/gmail-signin/pkg/locator"
	"github.com/devicelab-dev/gmail-signin/pkg/probe"
	"github.com/devicelab-dev/gmail-signin/pkg/screen"
)

// DefaultAppPackage is the Gmail package on Android.
const DefaultAppPackage = "com.google.android.gm"

// Default settle budgets.
const (
	DefaultAppLaunchSettle = 5 * time.Second
	DefaultPasswordSettle  = 2 * time.Second
	DefaultInboxSyncSettle = 3 * time.Second
)

// Session is the automation session the flow runs against. Its lifetime is
// owned by the caller, who must quit it after Login returns.
type Session interface {
	probe.Finder
	ActivateApp(ctx context.Context, appID string) error
	CurrentActivity(ctx context.Context) (string, error)
	CurrentPackage(ctx context.Context) (string, error)
	Source(ctx context.Context) (string, error)
}

// PermissionPolicy decides how the permission dialog in the shortcut
// branch is handled.
type PermissionPolicy string

const (
	// PermissionStrict clicks deny unconditionally; a missing dialog errors the attempt.
	PermissionStrict PermissionPolicy = "strict"
	// PermissionGuarded checks for the dialog first and skips it when absent.
	PermissionGuarded PermissionPolicy = "guarded"
)

// Options configures an Orchestrator.
type Options struct {
	AppPackage   string
	Locators     locator.Registry
	FindTimeout  time.Duration
	PollInterval time.Duration

	// Upper bounds for the wait-until-stable pauses.
	AppLaunchSettle time.Duration
	PasswordSettle  time.Duration
	InboxSyncSettle time.Duration

	Permission PermissionPolicy
	Logger     *zap.Logger
}

// DefaultOptions returns the options matching the stock Gmail app.
func DefaultOptions() Options {
	return Options{
		AppPackage:      DefaultAppPackage,
		Locators:        locator.Default(),
		FindTimeout:     probe.DefaultTimeout,
		PollInterval:    probe.DefaultPollInterval,
		AppLaunchSettle: DefaultAppLaunchSettle,
		PasswordSettle:  DefaultPasswordSettle,
		InboxSyncSettle: DefaultInboxSyncSettle,
		Permission:      PermissionStrict,
	}
}

// State is a state of the login machine, used in logs.
type State int

const (
	StateStart State = iota
	StateWelcome
	StateShortcut
	StateCredentials
	StatePostLogin
	StateAuthenticated
	StateFailed
	StateErrorHandled
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateWelcome:
		return "welcome"
	case StateShortcut:
		return "shortcut"
	case StateCredentials:
		return "credentials"
	case StatePostLogin:
		return "post_login"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	case StateErrorHandled:
		return "error_handled"
	default:
		return "unknown"
	}
}

// Orchestrator runs login attempts against one session.
type Orchestrator struct {
	session Session
	opts    Options
	probe   *probe.Probe
	screens *screen.Classifier
	log     *zap.Logger
}

// New creates an Orchestrator. Zero-valued options fall back to DefaultOptions.
func New(s Session, opts Options) *Orchestrator {
	def := DefaultOptions()
	if opts.AppPackage == "" {
		opts.AppPackage = def.AppPackage
	}
	if opts.Locators == nil {
		opts.Locators = def.Locators
	}
	if opts.FindTimeout <= 0 {
		opts.FindTimeout = def.FindTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.Permission == "" {
		opts.Permission = def.Permission
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	p := probe.New(s,
		probe.WithTimeout(opts.FindTimeout),
		probe.WithPollInterval(opts.PollInterval),
		probe.WithLogger(opts.Logger.Named("probe")),
	)
	return &Orchestrator{
		session: s,
		opts:    opts,
		probe:   p,
		screens: screen.NewClassifier(p, opts.Locators),
		log:     opts.Logger,
	}
}

// attempt carries per-call state through the machine.
type attempt struct {
	log    *zap.Logger
	state  State
	creds  Credentials
	result *Result
}

func (a *attempt) enter(s State) {
	a.log.Debug("transition", zap.Stringer("from", a.state), zap.Stringer("to", s))
	a.state = s
}

// Login runs one login attempt. It always returns a non-nil Result.
func (o *Orchestrator) Login(ctx context.Context, creds Credentials) *Result {
	res := &Result{
		AttemptID: uuid.NewString(),
		StartTime: time.Now(),
	}
	a := &attempt{
		log:    o.log.With(zap.String("attempt", res.AttemptID)),
		state:  StateStart,
		creds:  creds,
		result: res,
	}
	defer func() { res.Duration = time.Since(res.StartTime) }()

	a.log.Info("login started", zap.String("package", o.opts.AppPackage), zap.Object("account", creds))

	if err := o.guarded(ctx, a); err != nil {
		o.handleError(ctx, a, err)
	}
	return res
}

// guarded runs the flow and the post-login check, converting a panic from
// the session into an error.
func (o *Orchestrator) guarded(ctx context.Context, a *attempt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.ErrSessionFailure.WithCause(fmt.Errorf("panic: %v", r))
		}
	}()
	if err := o.run(ctx, a); err != nil {
		return err
	}
	o.verify(ctx, a)
	return nil
}

// verify records whether the flow ended on the inbox.
func (o *Orchestrator) verify(ctx context.Context, a *attempt) {
	a.enter(StatePostLogin)
	res := a.result
	if o.screens.IsAuthenticated(ctx) {
		a.enter(StateAuthenticated)
		res.Outcome = OutcomeAuthenticated
		a.log.Info("login succeeded", zap.Stringer("branch", res.Branch), zap.Duration("elapsed", time.Since(res.StartTime)))
		return
	}
	a.enter(StateFailed)
	res.Outcome = OutcomeNotAuthenticated
	a.log.Error("login failed: inbox not reached", zap.Stringer("branch", res.Branch))
}

func (o *Orchestrator) run(ctx context.Context, a *attempt) error {
	if err := o.session.ActivateApp(ctx, o.opts.AppPackage); err != nil {
		return core.ErrAppActivation.WithCause(err).WithDetails(map[string]interface{}{"package": o.opts.AppPackage})
	}
	o.settle(ctx, a, "app_launch", o.opts.AppLaunchSettle)

	if o.screens.IsWelcomeScreen(ctx) {
		a.enter(StateWelcome)
		if err := o.perform(ctx, a, welcomeSteps); err != nil {
			return err
		}
		a.result.WelcomeSkipped = true
	}

	if o.screens.IsAlreadyLoggedIn(ctx) {
		a.enter(StateShortcut)
		a.result.Branch = BranchShortcut
		return o.perform(ctx, a, shortcutSteps)
	}
	a.enter(StateCredentials)
	a.result.Branch = BranchCredentials
	return o.perform(ctx, a, credentialSteps)
}

func (o *Orchestrator) perform(ctx context.Context, a *attempt, steps []step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("login interrupted before %s %s: %w", s.kind, s.target, err)
		}

		start := time.Now()
		rec := StepRecord{Action: s.kind.String(), Target: s.target}
		err := o.execute(ctx, a, s, &rec)
		rec.Duration = time.Since(start)
		if err != nil {
			rec.Error = err.Error()
		}
		a.result.Steps = append(a.result.Steps, rec)
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, a *attempt, s step, rec *StepRecord) error {
	loc := o.opts.Locators.Get(s.target)
	switch s.kind {
	case stepClick:
		if s.permission && o.opts.Permission == PermissionGuarded && !o.probe.Exists(ctx, loc) {
			a.log.Info("permission dialog absent, skipping", zap.String("target", string(s.target)))
			rec.Skipped = true
			return nil
		}
		return o.probe.Click(ctx, loc)
	case stepType:
		return o.probe.Type(ctx, loc, a.value(s.field))
	case stepSettle:
		o.settle(ctx, a, s.pause.String(), o.pauseBudget(s.pause))
		return nil
	}
	return fmt.Errorf("unknown step kind %d", s.kind)
}

func (a *attempt) value(f field) string {
	switch f {
	case fieldEmail:
		return a.creds.Email
	case fieldPassword:
		return a.creds.Password
	default:
		return ""
	}
}

func (p pause) String() string {
	switch p {
	case pausePassword:
		return "password"
	case pauseInboxSync:
		return "inbox_sync"
	default:
		return "none"
	}
}

func (o *Orchestrator) pauseBudget(p pause) time.Duration {
	switch p {
	case pausePassword:
		return o.opts.PasswordSettle
	case pauseInboxSync:
		return o.opts.InboxSyncSettle
	default:
		return 0
	}
}

// settle waits until two consecutive page sources match, or limit elapses.
func (o *Orchestrator) settle(ctx context.Context, a *attempt, name string, limit time.Duration) {
	if limit <= 0 {
		return
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(o.opts.PollInterval), 1)
	var prev string
	var have bool
	for {
		if err := limiter.Wait(ctx); err != nil {
			a.log.Debug("settle budget used up", zap.String("pause", name), zap.Duration("limit", limit))
			return
		}
		src, err := o.session.Source(ctx)
		if err != nil {
			have = false
			continue
		}
		if have && src == prev {
			a.log.Debug("screen settled", zap.String("pause", name), zap.Duration("elapsed", time.Since(start)))
			return
		}
		prev, have = src, true
	}
}

func (o *Orchestrator) handleError(ctx context.Context, a *attempt, err error) {
	a.enter(StateErrorHandled)
	res := a.result
	res.Outcome = OutcomeErrored
	res.Err = err
	res.Diagnostics = &Diagnostics{}

	a.log.Log(severity(ctx, err), "login errored", zap.Error(err), zap.Stringer("branch", res.Branch))

	// the attempt context may already be done
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.FindTimeout)
	defer cancel()
	res.Diagnostics.Activity = o.diagnostic(dctx, a, "activity", o.session.CurrentActivity)
	res.Diagnostics.Package = o.diagnostic(dctx, a, "package", o.session.CurrentPackage)
	a.log.Info("current activity", zap.String("activity", res.Diagnostics.Activity))
	a.log.Info("current package", zap.String("package", res.Diagnostics.Package))
}

// diagnostic reads one foreground value for the error report. Read errors
// and panics leave it empty.
func (o *Orchestrator) diagnostic(ctx context.Context, a *attempt, name string, read func(context.Context) (string, error)) (v string) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn("could not read current "+name, zap.Any("panic", r))
			v = ""
		}
	}()
	v, err := read(ctx)
	if err != nil {
		a.log.Warn("could not read current "+name, zap.Error(err))
		return ""
	}
	return v
}

// severity is warn for interrupted attempts and soft failures, error otherwise.
func severity(ctx context.Context, err error) zapcore.Level {
	if ctx.Err() != nil {
		return zapcore.WarnLevel
	}
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) && !execErr.Hard() {
		return zapcore.WarnLevel
	}
	return zapcore.ErrorLevel
}
