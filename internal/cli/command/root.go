package command

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/complitracker/complitracker-go/internal/cli/config"
	"github.com/complitracker/complitracker-go/internal/infra/buildinfo"
)

// Metadata keys.
const (
	metaRuntime = "runtime"
	// metaShared marks an App whose Runtime belongs to an enclosing shell.
	metaShared = "shared"
)

// App creates the CLI application bound to the process's standard streams.
func App() *cli.App {
	return newApp(os.Stdin, os.Stdout, os.Stderr)
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:                 buildinfo.Product,
		Usage:                "CompliTracker command-line client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands(),
		Reader:               in,
		Writer:               out,
		ErrWriter:            errOut,
		EnableBashCompletion: true,
		Before:               setupRuntime,
		After:                closeRuntime,
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		LogoutCommand(),
		RegisterCommand(),
		WhoamiCommand(),
		RefreshCommand(),
		ForgotPasswordCommand(),
		ResetPasswordCommand(),
		DashboardCommand(),
		ComplianceCommand(),
		DocumentCommand(),
		RiskCommand(),
		ConfigCommand(),
		VersionCommand(),
		ShellCommand(),
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.complitracker/cli.yaml)",
			EnvVars: []string{"COMPLITRACKER_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "api-url",
			Usage: "CompliTracker API base URL",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Token store backend: file, badger, redis, memory",
		},
		&cli.StringFlag{
			Name:  "store-dir",
			Usage: "Directory for the file and badger token stores",
		},
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep the session in memory only",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// flagOverrides maps explicitly set global flags to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	o := make(map[string]any)
	if c.IsSet("api-url") {
		o["api.url"] = c.String("api-url")
	}
	if c.IsSet("output") {
		o["output"] = c.String("output")
	}
	if c.IsSet("store") {
		o["store.backend"] = c.String("store")
	}
	if c.IsSet("store-dir") {
		o["store.dir"] = c.String("store-dir")
	}
	if c.Bool("ephemeral") {
		o["store.backend"] = "memory"
	}
	if c.Bool("verbose") {
		o["log.level"] = "debug"
	}
	return o
}

// setupRuntime loads the configuration and attaches a Runtime, unless an
// enclosing shell already provided one.
func setupRuntime(c *cli.Context) error {
	if _, ok := c.App.Metadata[metaRuntime].(*Runtime); ok {
		return nil
	}
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return err
	}
	c.App.Metadata[metaRuntime] = NewRuntime(cfg, c.App.Reader, c.App.Writer, c.App.ErrWriter)
	return nil
}

func closeRuntime(c *cli.Context) error {
	if shared, _ := c.App.Metadata[metaShared].(bool); shared {
		return nil
	}
	rt, ok := c.App.Metadata[metaRuntime].(*Runtime)
	if !ok {
		return nil
	}
	return rt.Close()
}

// runtimeFrom retrieves the Runtime from context.
func runtimeFrom(c *cli.Context) *Runtime {
	rt, _ := c.App.Metadata[metaRuntime].(*Runtime)
	return rt
}
