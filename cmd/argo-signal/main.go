package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/urfave/cli/v3"
)

// app carries the state shared by every subcommand once the root Before hook ran.
type app struct {
	out    io.Writer
	errOut io.Writer
	cfg    *config.Config
	logger *logger.Logger
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		logger: logger.NewNop(),
	}
}

// before loads the configuration and builds the logger.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.LoadWithEnv(cmd.String("env"), cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return ctx, err
		}
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return ctx, err
	}

	a.cfg = cfg
	a.logger = log

	return ctx, nil
}

func (a *app) after(context.Context, *cli.Command) error {
	_ = a.logger.Sync()

	return nil
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:    "argo-signal",
		Usage:   "Technical indicator signals and iterative price forecasts",
		Version: version.GetVersion(),
		Writer:  a.out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file, defaults to $"+config.EnvConfigPath,
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file loaded before the configuration",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.indicatorCommand(),
			a.featuresCommand(),
			a.evaluateCommand(),
			a.forecastCommand(),
			a.serveCommand(),
			a.schemaCommand(),
		},
	}
}

func main() {
	a := newApp(os.Stdout, os.Stderr)

	if err := a.command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
