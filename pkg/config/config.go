// Package config handles configuration for gmail-signin.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/gmail-signin/pkg/core"
	"github.com/devicelab-dev/gmail-signin/pkg/driver/appium"
	"github.com/devicelab-dev/gmail-signin/pkg/locator"
	"github.com/devicelab-dev/gmail-signin/pkg/logger"
	"github.com/devicelab-dev/gmail-signin/pkg/login"
	"github.com/devicelab-dev/gmail-signin/pkg/probe"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Appium server endpoint
	Server string `yaml:"server" validate:"required,url"`

	// App to activate; falls back to the appPackage capability
	AppPackage string `yaml:"appPackage"`

	// Extra session capabilities, merged over appium.DefaultCapabilities
	Capabilities map[string]interface{} `yaml:"capabilities"`

	Timeouts Timeouts `yaml:"timeouts"`

	// strict or guarded
	PermissionDialog string `yaml:"permissionDialog" validate:"required,oneof=strict guarded"`

	// Locator overrides by name
	Locators map[string]string `yaml:"locators"`

	Log       logger.Config `yaml:"log"`
	Artifacts Artifacts     `yaml:"artifacts"`
}

// Timeouts holds the lookup budget, the poll pacing and the settle caps.
type Timeouts struct {
	Find            time.Duration `yaml:"find" validate:"gte=0"`
	Poll            time.Duration `yaml:"poll" validate:"gt=0"`
	AppLaunchSettle time.Duration `yaml:"appLaunchSettle" validate:"gte=0"`
	PasswordSettle  time.Duration `yaml:"passwordSettle" validate:"gte=0"`
	InboxSyncSettle time.Duration `yaml:"inboxSyncSettle" validate:"gte=0"`
}

// Artifacts controls what is saved after a login attempt.
type Artifacts struct {
	Dir       string `yaml:"dir"`
	OnFailure bool   `yaml:"onFailure"`
	OnSuccess bool   `yaml:"onSuccess"`
}

var validate = validator.New()

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:           appium.DefaultServerURL,
		PermissionDialog: string(login.PermissionStrict),
		Timeouts: Timeouts{
			Find:            probe.DefaultTimeout,
			Poll:            probe.DefaultPollInterval,
			AppLaunchSettle: login.DefaultAppLaunchSettle,
			PasswordSettle:  login.DefaultPasswordSettle,
			InboxSyncSettle: login.DefaultInboxSyncSettle,
		},
		Log: logger.DefaultConfig(),
		Artifacts: Artifacts{
			OnFailure: true,
		},
	}
}

// Load loads configuration from a file. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("cannot parse %s", path)).WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, use defaults
	return Default(), nil
}

// Validate checks field constraints and the locator overrides.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return core.ErrInvalidConfig.WithCause(err)
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// Registry returns the default locators with the configured overrides
// applied.
func (c *Config) Registry() (locator.Registry, error) {
	reg := locator.Default().Merge(c.Locators)
	if err := reg.Validate(); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("invalid locator overrides").WithCause(err)
	}
	return reg, nil
}

// SessionCapabilities returns the capabilities to open a session with:
// the defaults overlaid with the configured ones, and appPackage when set.
func (c *Config) SessionCapabilities() map[string]interface{} {
	caps := appium.MergeCapabilities(appium.DefaultCapabilities(), c.Capabilities)
	if c.AppPackage != "" {
		caps = appium.MergeCapabilities(caps, map[string]interface{}{"appPackage": c.AppPackage})
	}
	return caps
}

// ResolvedAppPackage returns the package the login flow activates.
func (c *Config) ResolvedAppPackage() string {
	if c.AppPackage != "" {
		return c.AppPackage
	}
	return appium.AppPackage(c.SessionCapabilities())
}

// ArtifactsDir returns the artifacts directory, defaulting to <home>/reports.
func (c *Config) ArtifactsDir() string {
	if c.Artifacts.Dir != "" {
		return c.Artifacts.Dir
	}
	return GetReportsDir()
}
