// Package cli provides the command-line interface for gmail-signin.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to config.yaml (default: ./config.yaml or ./config.yml when present)",
		EnvVars: []string{"GMAIL_SIGNIN_CONFIG"},
	},
	&cli.StringFlag{
		Name:  "caps",
		Usage: "JSON file with Appium capabilities, merged over the configured ones",
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Driver to use (appium, mock)",
		Value:   driverAppium,
		EnvVars: []string{"GMAIL_SIGNIN_DRIVER"},
	},
	&cli.StringFlag{
		Name:    "appium-url",
		Usage:   "Appium server URL (default: http://localhost:4723/wd/hub)",
		EnvVars: []string{"APPIUM_URL"},
	},
	&cli.StringFlag{
		Name:  "mock-scenario",
		Usage: "Scripted device for --driver mock (fresh, welcome, signed-in, no-permission, broken-terms, empty-inbox)",
		Value: "fresh",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
		EnvVars: []string{"GMAIL_SIGNIN_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Also write JSON logs to this file (rotated)",
	},
	&cli.StringFlag{
		Name:  "log-format",
		Usage: "Console log format (console, json)",
	},
}

// NewApp builds the command-line application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "gmail-signin",
		Usage:   "Sign in to the Gmail Android app through Appium",
		Version: Version,
		Description: `gmail-signin drives the Gmail app from launch to an authenticated inbox,
taking either the "already signed in" shortcut or the full credential flow.

Examples:
  gmail-signin login --email user@gmail.com --password secret
  GMAIL_EMAIL=user@gmail.com GMAIL_PASSWORD=secret gmail-signin login
  gmail-signin --caps pixel8.json --appium-url http://10.0.0.5:4723 login
  gmail-signin --driver mock --mock-scenario signed-in login --email a@b.com --password x
  gmail-signin screen
  gmail-signin locators --resolved`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			loginCommand,
			screenCommand,
			locatorsCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
