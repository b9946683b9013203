package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/complitracker/complitracker-go/internal/cli/config"
	"github.com/complitracker/complitracker-go/internal/cli/output"
	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/telemetry/logger"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and manage the CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Check the effective configuration",
				Action: configValidate,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the config file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Usage: "Target file (default ~/.complitracker/cli.yaml)"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
				},
				Action: configInit,
			},
			{
				Name:      "log-level",
				Usage:     "Show or change the log level for the rest of this process",
				ArgsUsage: "[debug|info|warn|error]",
				Action:    configLogLevel,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt := runtimeFrom(c)
	cfg := config.Sanitize(rt.Config)
	if rt.printsTable(c) {
		source := cfg.Source
		if source == "" {
			source = "(defaults and environment)"
		}
		fmt.Fprintf(rt.Out, "# source: %s\n", source)
		return (&output.YAMLFormatter{}).Format(rt.Out, cfg)
	}
	return rt.Print(c, cfg)
}

func configValidate(c *cli.Context) error {
	rt := runtimeFrom(c)
	if err := rt.Config.Validate(); err != nil {
		return fmt.Errorf("configuration is invalid:\n%w", err)
	}
	rt.Printf(c, "Configuration is valid")
	return nil
}

func configInit(c *cli.Context) error {
	rt := runtimeFrom(c)
	path := c.String("path")
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := config.Save(rt.Config, path); err != nil {
		return err
	}
	rt.Printf(c, "Configuration written to %s", path)
	return nil
}

func configLogLevel(c *cli.Context) error {
	rt := runtimeFrom(c)
	// The logger sets the configured level when it is built.
	rt.Logger()
	if c.NArg() == 0 {
		fmt.Fprintln(rt.Out, logger.GetLevel())
		return nil
	}
	level := strings.ToLower(c.Args().First())
	if !slices.Contains(config.LogLevels, level) {
		return domain.ErrValidation.WithDetails(fmt.Sprintf("log level must be one of %s", strings.Join(config.LogLevels, ", ")))
	}
	logger.SetLevel(level)
	fmt.Fprintf(rt.Out, "Log level set to %s\n", logger.GetLevel())
	return nil
}
