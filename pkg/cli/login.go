package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/devicelab-dev/gmail-signin/pkg/config"
	"github.com/devicelab-dev/gmail-signin/pkg/core"
	"github.com/devicelab-dev/gmail-signin/pkg/login"
	"github.com/devicelab-dev/gmail-signin/pkg/report"
)

// Exit codes of the login command.
const (
	exitNotAuthenticated = 1
	exitErrored          = 2
	exitUsage            = 3
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Sign in to Gmail and report whether the inbox was reached",
	Description: `Launch Gmail, dismiss the welcome tour when shown, then either take the
"already signed in" shortcut or add an account with the given credentials.

Exit status: 0 authenticated, 1 not authenticated, 2 errored, 3 bad usage.

A report is written to <output>/<attempt-id>/report.json, with a screenshot
and page source when the attempt fails.

Examples:
  gmail-signin login --email user@gmail.com --password secret
  gmail-signin login --permission-dialog guarded --timeout 3m
  gmail-signin --driver mock --mock-scenario broken-terms login --email a@b.com --password x`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "email",
			Usage:   "Account email",
			EnvVars: []string{"GMAIL_EMAIL"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Account password (prefer GMAIL_PASSWORD)",
			EnvVars: []string{"GMAIL_PASSWORD"},
		},
		&cli.DurationFlag{
			Name:  "find-timeout",
			Usage: "How long to wait for each element (default 15s)",
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "Delay between element lookups (default 200ms)",
		},
		&cli.StringFlag{
			Name:  "permission-dialog",
			Usage: "Handling of the notification permission prompt: strict (always click deny) or guarded (skip when absent)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Abort the whole attempt after this long (0 = no limit)",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Directory for reports and artifacts (default: <home>/reports)",
		},
		&cli.BoolFlag{
			Name:  "no-report",
			Usage: "Do not write report.json or artifacts",
		},
		&cli.BoolFlag{
			Name:  "capture-on-success",
			Usage: "Also save a screenshot and page source when authenticated",
		},
	},
	Action: runLogin,
}

func runLogin(c *cli.Context) error {
	creds := login.Credentials{
		Email:    c.String("email"),
		Password: c.String("password"),
	}
	if err := creds.Validate(); err != nil {
		return cli.Exit("Error: --email (a valid address) and --password are required", exitUsage)
	}

	s, err := loadSettings(c, func(cfg *config.Config) {
		if c.IsSet("find-timeout") {
			cfg.Timeouts.Find = c.Duration("find-timeout")
		}
		if c.IsSet("poll-interval") {
			cfg.Timeouts.Poll = c.Duration("poll-interval")
		}
		if c.IsSet("permission-dialog") {
			cfg.PermissionDialog = c.String("permission-dialog")
		}
		if c.IsSet("output") {
			cfg.Artifacts.Dir = c.String("output")
		}
		if c.Bool("capture-on-success") {
			cfg.Artifacts.OnSuccess = true
		}
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitUsage)
	}
	defer func() { _ = s.log.Sync() }()

	ctx, cancel := commandContext(c, c.Duration("timeout"))
	defer cancel()

	sess, err := s.openSession()
	if err != nil {
		s.log.Error("session failed", zap.Error(err))
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitErrored)
	}
	defer s.quit(sess)

	res := login.New(sess, loginOptions(s)).Login(ctx, creds)
	printResult(c.App.Writer, res)

	if !c.Bool("no-report") {
		w := report.NewWriter(s.cfg.ArtifactsDir(), artifactConfig(s.cfg), s.log)
		path, err := w.Write(res, report.Meta{
			Driver:     s.driver,
			Server:     s.serverForReport(),
			AppPackage: s.cfg.ResolvedAppPackage(),
		}, sess)
		if err != nil {
			s.log.Warn("report not written", zap.Error(err))
		} else {
			fmt.Fprintf(c.App.Writer, "  Report: %s\n", path)
		}
	}

	return exitFor(res)
}

func loginOptions(s *settings) login.Options {
	return login.Options{
		AppPackage:      s.cfg.ResolvedAppPackage(),
		Locators:        s.locators,
		FindTimeout:     s.cfg.Timeouts.Find,
		PollInterval:    s.cfg.Timeouts.Poll,
		AppLaunchSettle: s.cfg.Timeouts.AppLaunchSettle,
		PasswordSettle:  s.cfg.Timeouts.PasswordSettle,
		InboxSyncSettle: s.cfg.Timeouts.InboxSyncSettle,
		Permission:      login.PermissionPolicy(s.cfg.PermissionDialog),
		Logger:          s.log,
	}
}

func artifactConfig(cfg *config.Config) core.ArtifactConfig {
	ac := core.DefaultArtifactConfig()
	ac.CaptureOnFailure = cfg.Artifacts.OnFailure
	ac.CaptureOnSuccess = cfg.Artifacts.OnSuccess
	return ac
}

func exitFor(res *login.Result) error {
	switch res.Outcome {
	case login.OutcomeAuthenticated:
		return nil
	case login.OutcomeNotAuthenticated:
		return cli.Exit("", exitNotAuthenticated)
	default:
		return cli.Exit("", exitErrored)
	}
}

// formatDuration formats a duration for the summary line.
// Shows milliseconds below one second.
func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
