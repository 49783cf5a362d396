package cli

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/gmail-signin/pkg/locator"
)

var locatorsCommand = &cli.Command{
	Name:  "locators",
	Usage: "Print the effective locator table as YAML",
	Description: `Print the default locators with the config file overrides applied.
The output can be pasted under "locators:" in config.yaml.

Examples:
  gmail-signin locators
  gmail-signin --config lite.yaml locators --resolved`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "resolved",
			Usage: "Show the lookup strategy chosen for each locator",
		},
	},
	Action: runLocators,
}

type resolvedEntry struct {
	Strategy locator.Strategy `yaml:"strategy"`
	Value    string           `yaml:"value"`
}

func runLocators(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	var out interface{}
	if c.Bool("resolved") {
		entries := make(map[string]resolvedEntry, len(reg))
		for name, loc := range reg {
			r := locator.Resolve(loc)
			entries[string(name)] = resolvedEntry{Strategy: r.Strategy, Value: r.Value}
		}
		out = entries
	} else {
		plain := make(map[string]string, len(reg))
		for name, loc := range reg {
			plain[string(name)] = loc
		}
		out = plain
	}

	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
