package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/devicelab-dev/gmail-signin/pkg/login"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// printResult writes the step list and the outcome line.
func printResult(w io.Writer, res *login.Result) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %sAttempt%s %s (%s)\n", color(colorBold), color(colorReset), res.AttemptID, res.Branch)

	for _, s := range res.Steps {
		target := string(s.Target)
		if target == "" {
			target = "-"
		}
		switch {
		case s.Skipped:
			fmt.Fprintf(w, "    %s-%s %-7s %s %s(skipped)%s\n",
				color(colorGray), color(colorReset), s.Action, target, color(colorGray), color(colorReset))
		case s.Error != "":
			fmt.Fprintf(w, "    %s✗%s %-7s %s %s(%s)%s\n",
				color(colorRed), color(colorReset), s.Action, target, color(colorGray), formatDuration(s.Duration), color(colorReset))
		default:
			fmt.Fprintf(w, "    %s✓%s %-7s %s %s(%s)%s\n",
				color(colorGreen), color(colorReset), s.Action, target, color(colorGray), formatDuration(s.Duration), color(colorReset))
		}
	}

	fmt.Fprintln(w)
	switch res.Outcome {
	case login.OutcomeAuthenticated:
		fmt.Fprintf(w, "  %s%s%s in %s\n", color(colorGreen), res.Outcome, color(colorReset), formatDuration(res.Duration))
	case login.OutcomeNotAuthenticated:
		fmt.Fprintf(w, "  %s%s%s in %s\n", color(colorYellow), res.Outcome, color(colorReset), formatDuration(res.Duration))
	default:
		fmt.Fprintf(w, "  %s%s%s in %s: %s\n", color(colorRed), res.Outcome, color(colorReset), formatDuration(res.Duration), res.ErrorMessage())
		if d := res.Diagnostics; d != nil {
			fmt.Fprintf(w, "  %sactivity%s %s\n", color(colorCyan), color(colorReset), d.Activity)
			fmt.Fprintf(w, "  %spackage%s  %s\n", color(colorCyan), color(colorReset), d.Package)
		}
	}
}
