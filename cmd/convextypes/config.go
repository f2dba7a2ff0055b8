package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
	"github.com/urfave/cli/v3"

	"github.com/rlch/convextypes"
)

// configFlags are shared by every command that runs the pipeline.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "schema",
			Aliases: []string{"s"},
			Usage:   "path to the schema module (default: " + convextypes.DefaultSchemaPath + ")",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "generated file (default: " + convextypes.DefaultOutFile + ")",
		},
		&cli.StringFlag{
			Name:    "lang",
			Aliases: []string{"l"},
			Usage:   "target language (rust, go); inferred from --out when empty",
		},
		&cli.StringFlag{
			Name:    "package",
			Aliases: []string{"p"},
			Usage:   "Go package name (default: output directory name)",
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   `expression selecting functions, e.g. '!internal && kind != "action"'`,
		},
		&cli.BoolFlag{
			Name:    "discover",
			Aliases: []string{"d"},
			Usage:   "add every function module found next to the schema",
		},
	}
}

// loadConfig merges the nearest config file with the command line. Flags win
// over the file; positional arguments replace the file's function list.
func loadConfig(cmd *cli.Command) (*convextypes.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}

	cfg, err := convextypes.LoadConfig(cwd)
	if errors.Is(err, convextypes.ErrConfigNotFound) {
		cfg = &convextypes.Config{}
	} else if err != nil {
		return nil, err
	}

	cfg.SchemaPath = firstNonEmpty(cmd.String("schema"), cfg.SchemaPath, convextypes.DefaultSchemaPath)
	cfg.OutFile = firstNonEmpty(cmd.String("out"), cfg.OutFile, convextypes.DefaultOutFile)
	cfg.Lang = firstNonEmpty(cmd.String("lang"), cfg.Lang)
	cfg.Package = firstNonEmpty(cmd.String("package"), cfg.Package)
	cfg.Filter = firstNonEmpty(cmd.String("filter"), cfg.Filter)

	if args := cmd.Args().Slice(); len(args) > 0 {
		cfg.FunctionPaths = args
	}

	if cmd.Bool("discover") {
		found, err := discoverFunctions(cfg.SchemaPath)
		if err != nil {
			return nil, fmt.Errorf("discovering function modules: %w", err)
		}

		for _, path := range found {
			if !slices.Contains(cfg.FunctionPaths, path) {
				cfg.FunctionPaths = append(cfg.FunctionPaths, path)
			}
		}
	}

	return cfg, nil
}

// discoverFunctions lists the function modules in the schema's directory,
// sorted. The schema itself, generated code and declaration files are
// skipped. Respects .gitignore files.
func discoverFunctions(schemaPath string) ([]string, error) {
	root := filepath.Dir(schemaPath)
	schema := filepath.Clean(schemaPath)

	var (
		mu    sync.Mutex
		paths []string
	)

	err := walkDir(root, func(path string) {
		if !isFunctionModule(root, schema, path) {
			return
		}

		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)

	return paths, nil
}

func isFunctionModule(root, schema, path string) bool {
	if filepath.Clean(path) == schema || strings.HasSuffix(path, ".d.ts") {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "_generated" || part == "node_modules" {
			return false
		}
	}

	return filepath.Base(path) != "convex.config.ts"
}

// walkDir walks a directory for .ts and .js files, respecting .gitignore.
func walkDir(root string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = []string{"ts", "js"}

	var walkErr error

	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e

		return true
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			callback(f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return err
	}

	wg.Wait()

	return walkErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
