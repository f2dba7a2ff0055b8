package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/typegen"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the extracted model as YAML",
		ArgsUsage: "[function files...]",
		Flags:     configFlags(),
		Action:    withLogger(runInspect),
	}
}

// inspection is the YAML document printed by inspect.
type inspection struct {
	Schema      *convextypes.Schema     `yaml:"schema"`
	Functions   []*convextypes.Function `yaml:"functions,omitempty"`
	Warnings    []string                `yaml:"warnings,omitempty"`
	Diagnostics []string                `yaml:"diagnostics,omitempty"`
}

func runInspect(ctx context.Context, cmd *cli.Command, logger *zap.Logger) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := typegen.Extract(ctx, cfg, typegen.WithLogger(logger))
	if err != nil {
		return err
	}

	return writeInspection(cmd.Root().Writer, res)
}

func writeInspection(w io.Writer, res *typegen.Result) error {
	doc := inspection{Schema: res.Schema, Functions: res.Functions}

	for _, warning := range res.Warnings {
		doc.Warnings = append(doc.Warnings, warning.String())
	}

	for _, d := range res.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, d.String())
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return &convextypes.SerializationError{Format: "yaml", Err: err}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing yaml encoder: %w", err)
	}

	return nil
}
