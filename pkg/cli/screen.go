package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/devicelab-dev/gmail-signin/pkg/config"
	"github.com/devicelab-dev/gmail-signin/pkg/probe"
	"github.com/devicelab-dev/gmail-signin/pkg/screen"
)

var screenCommand = &cli.Command{
	Name:  "screen",
	Usage: "Print which Gmail screen is in the foreground",
	Description: `Classify the current screen as welcome, already_logged_in, authenticated,
credential_entry or unknown, checked in that order.

Examples:
  gmail-signin screen
  gmail-signin screen --activate --find-timeout 2s`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "activate",
			Usage: "Bring Gmail to the foreground before classifying",
		},
		&cli.DurationFlag{
			Name:  "find-timeout",
			Usage: "How long to wait for each marker element (default 15s)",
		},
	},
	Action: runScreen,
}

func runScreen(c *cli.Context) error {
	s, err := loadSettings(c, func(cfg *config.Config) {
		if c.IsSet("find-timeout") {
			cfg.Timeouts.Find = c.Duration("find-timeout")
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	ctx, cancel := commandContext(c, 0)
	defer cancel()

	sess, err := s.openSession()
	if err != nil {
		return err
	}
	defer s.quit(sess)

	if c.Bool("activate") {
		if err := sess.ActivateApp(ctx, s.cfg.ResolvedAppPackage()); err != nil {
			return fmt.Errorf("activate %s: %w", s.cfg.ResolvedAppPackage(), err)
		}
	}

	p := probe.New(sess,
		probe.WithTimeout(s.cfg.Timeouts.Find),
		probe.WithPollInterval(s.cfg.Timeouts.Poll),
		probe.WithLogger(s.log.Named("probe")),
	)
	state := screen.NewClassifier(p, s.locators).Classify(ctx)
	s.log.Debug("screen classified", zap.Stringer("state", state))

	fmt.Fprintln(c.App.Writer, state)
	return nil
}
