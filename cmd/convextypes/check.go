package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/convextypes/typegen"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Exit non-zero when the generated file is out of date",
		ArgsUsage: "[function files...]",
		Flags:     configFlags(),
		Action:    withLogger(runCheck),
	}
}

func runCheck(ctx context.Context, cmd *cli.Command, logger *zap.Logger) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	status, err := typegen.Check(ctx, cfg, typegen.WithLogger(logger))
	if err != nil {
		return err
	}

	newReporter(os.Stderr).stale(status)

	if status.Stale {
		return cli.Exit("", 1)
	}

	return nil
}
