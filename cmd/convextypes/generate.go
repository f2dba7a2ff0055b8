package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/convextypes/analysis"
	"github.com/rlch/convextypes/typegen"
)

// ErrLintErrors is returned by --strict when the model has error diagnostics.
var ErrLintErrors = errors.New("extracted model has errors")

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate types from the schema and function modules",
		ArgsUsage: "[function files...]",
		Flags: append(configFlags(),
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail when lint reports an error",
			},
		),
		Action: withLogger(runGenerate),
	}
}

func runGenerate(ctx context.Context, cmd *cli.Command, logger *zap.Logger) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("strict") {
		res, err := typegen.Extract(ctx, cfg, typegen.WithLogger(logger))
		if err != nil {
			return err
		}

		if hasErrors(res.Diagnostics) {
			newReporter(os.Stderr).findings(res)

			return ErrLintErrors
		}
	}

	res, err := typegen.Generate(ctx, cfg, typegen.WithLogger(logger))
	if err != nil {
		return err
	}

	newReporter(os.Stderr).summary("generated", res)

	return nil
}

func hasErrors(diags []analysis.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == analysis.SeverityError {
			return true
		}
	}

	return false
}
