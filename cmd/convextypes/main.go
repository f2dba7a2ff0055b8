// Command convextypes generates Rust or Go types from a Convex schema and its
// function files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "convextypes",
		Usage: "Generate typed bindings for a Convex backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			generateCommand(),
			checkCommand(),
			inspectCommand(),
		},
	}
}

// newLogger logs to stderr so that stdout stays free for command output.
func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

// withLogger runs action with a logger configured from the --debug flag.
func withLogger(action func(ctx context.Context, cmd *cli.Command, logger *zap.Logger) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		logger, err := newLogger(cmd.Bool("debug"))
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}

		defer func() {
			_ = logger.Sync()
		}()

		return action(ctx, cmd, logger)
	}
}
