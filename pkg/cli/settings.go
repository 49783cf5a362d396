package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/devicelab-dev/gmail-signin/pkg/config"
	"github.com/devicelab-dev/gmail-signin/pkg/core"
	appiumdriver "github.com/devicelab-dev/gmail-signin/pkg/driver/appium"
	"github.com/devicelab-dev/gmail-signin/pkg/driver/mock"
	"github.com/devicelab-dev/gmail-signin/pkg/locator"
	"github.com/devicelab-dev/gmail-signin/pkg/logger"
	"github.com/devicelab-dev/gmail-signin/pkg/login"
)

const (
	driverAppium = "appium"
	driverMock   = "mock"
)

// deviceSession is what the commands need from an open session.
type deviceSession interface {
	login.Session
	core.ArtifactCollector
	Quit() error
}

// settings is the resolved configuration for one command run.
type settings struct {
	cfg      *config.Config
	locators locator.Registry
	driver   string
	scenario string
	log      *zap.Logger
}

// loadSettings reads the config file, applies global flag overrides and
// builds the logger. overrides runs before validation so command flags
// take part in it.
func loadSettings(c *cli.Context, overrides func(*config.Config)) (*settings, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if url := c.String("appium-url"); url != "" {
		cfg.Server = url
	}
	if capsFile := c.String("caps"); capsFile != "" {
		caps, err := loadCapabilities(capsFile)
		if err != nil {
			return nil, err
		}
		cfg.Capabilities = appiumdriver.MergeCapabilities(cfg.Capabilities, caps)
	}
	if c.Bool("verbose") {
		cfg.Log.Level = "debug"
	}
	if f := c.String("log-file"); f != "" {
		cfg.Log.File = f
	}
	if f := c.String("log-format"); f != "" {
		cfg.Log.Format = f
	}
	if overrides != nil {
		overrides(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	driver := c.String("driver")
	if driver != driverAppium && driver != driverMock {
		return nil, fmt.Errorf("unknown driver %q (use %s or %s)", driver, driverAppium, driverMock)
	}

	log, err := logger.NewWithWriter(cfg.Log, c.App.ErrWriter)
	if err != nil {
		return nil, err
	}

	return &settings{
		cfg:      cfg,
		locators: reg,
		driver:   driver,
		scenario: c.String("mock-scenario"),
		log:      log.With(zap.String("driver", driver)),
	}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromDir(".")
}

// loadCapabilities loads Appium capabilities from a JSON file.
func loadCapabilities(capsFile string) (map[string]interface{}, error) {
	data, err := os.ReadFile(capsFile) //#nosec G304 -- user-provided caps file
	if err != nil {
		return nil, fmt.Errorf("failed to read caps file: %w", err)
	}

	var caps map[string]interface{}
	if err := json.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("failed to parse caps JSON: %w", err)
	}
	return caps, nil
}

// openSession creates the session for the selected driver.
func (s *settings) openSession() (deviceSession, error) {
	if s.driver == driverMock {
		opts, err := mock.NamedScenario(s.scenario)
		if err != nil {
			return nil, err
		}
		mcfg := mock.GmailScenario(s.locators, opts)
		mcfg.Package = s.cfg.ResolvedAppPackage()
		s.log.Info("using scripted device", zap.String("scenario", s.scenario))
		return mock.New(mcfg), nil
	}

	s.log.Info("creating session", zap.String("server", s.cfg.Server))
	sess, err := appiumdriver.Open(s.cfg.Server, s.cfg.SessionCapabilities())
	if err != nil {
		return nil, err
	}
	s.log.Info("session created", zap.String("session", sess.SessionID()))
	return sess, nil
}

// quit ends the session, logging rather than returning a failure.
func (s *settings) quit(sess deviceSession) {
	if err := sess.Quit(); err != nil {
		s.log.Warn("session quit failed", zap.Error(err))
	}
}

// serverForReport returns the server to record, "" for the scripted device.
func (s *settings) serverForReport() string {
	if s.driver == driverMock {
		return ""
	}
	return s.cfg.Server
}

// commandContext is cancelled on SIGINT/SIGTERM and after timeout (if > 0).
func commandContext(c *cli.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}
