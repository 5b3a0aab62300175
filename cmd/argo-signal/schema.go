package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	schemaName       = "argo-signal-config.json"
	sampleConfigName = "argo-signal-config.yaml"
)

func (a *app) schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Write the configuration JSON schema and a sample configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   "config",
			},
		},
		Action: a.schemaAction,
	}
}

// schemaAction writes the schema and, unless one exists, a sample configuration
// holding the defaults that points editors at the schema.
func (a *app) schemaAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("out")

	schema, err := config.Schema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to generate schema", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create directory %s", dir)
	}

	schemaPath := filepath.Join(dir, schemaName)
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write schema %s", schemaPath)
	}

	a.logger.Info("schema generated", zap.String("path", schemaPath))
	fmt.Fprintln(a.out, schemaPath)

	samplePath := filepath.Join(dir, sampleConfigName)
	if _, err := os.Stat(samplePath); !os.IsNotExist(err) {
		return nil
	}

	defaults, err := config.Default()
	if err != nil {
		return err
	}

	body, err := yaml.Marshal(defaults)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal sample config", err)
	}

	body = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), body...)

	if err := os.WriteFile(samplePath, body, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write sample config %s", samplePath)
	}

	a.logger.Info("sample config generated", zap.String("path", samplePath))
	fmt.Fprintln(a.out, samplePath)

	return nil
}
