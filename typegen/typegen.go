// Package typegen runs the full pipeline: it loads the schema and function
// modules named by a Config, extracts the model, and renders it through the
// target language.
package typegen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/analysis"
	"github.com/rlch/convextypes/language"
	"github.com/rlch/convextypes/module"

	// Register the built-in targets.
	_ "github.com/rlch/convextypes/language/go"
	_ "github.com/rlch/convextypes/language/rust"
)

// Option configures a pipeline run.
type Option func(*options)

type options struct {
	logger *zap.Logger
	dir    string
}

// WithLogger sets the logger. Progress is logged at debug level and the
// written file at info level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDir resolves relative config paths against dir instead of the working
// directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *options) config(cfg *convextypes.Config) *convextypes.Config {
	if cfg == nil {
		cfg = convextypes.DefaultConfig()
	}

	cfg = cfg.WithDefaults()
	if o.dir != "" {
		cfg = cfg.Resolve(o.dir)
	}

	return cfg
}

// Result is the extracted model of one run.
type Result struct {
	Schema    *convextypes.Schema
	Functions []*convextypes.Function

	// Warnings are non-fatal merge findings, such as a file listed twice.
	Warnings []module.MergeWarning

	// Diagnostics are lint findings over the model. They never fail a run.
	Diagnostics []analysis.Diagnostic

	// Config is the configuration the model was extracted with, after
	// defaults and path resolution.
	Config *convextypes.Config
}

// Generate extracts the model described by cfg and writes it to cfg.OutFile.
// On failure the output file is left untouched.
func Generate(ctx context.Context, cfg *convextypes.Config, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	res, err := extract(ctx, o.config(cfg), o)
	if err != nil {
		return nil, err
	}

	out, err := Render(res)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := writeFileAtomic(res.Config.OutFile, out); err != nil {
		return nil, err
	}

	o.logger.Info("wrote types",
		zap.String("out", res.Config.OutFile),
		zap.Int("tables", len(res.Schema.Tables)),
		zap.Int("functions", len(res.Functions)),
	)

	return res, nil
}

// Extract loads and extracts the model without rendering it.
func Extract(ctx context.Context, cfg *convextypes.Config, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	return extract(ctx, o.config(cfg), o)
}

func extract(ctx context.Context, cfg *convextypes.Config, o *options) (*Result, error) {
	loader := module.NewLoader()

	schemaMod, err := loader.LoadSchema(cfg.SchemaPath)
	if err != nil {
		return nil, err
	}

	schema, err := analysis.ExtractSchema(schemaMod.Program)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("extracted schema",
		zap.String("path", schemaMod.Path),
		zap.Int("tables", len(schema.Tables)),
	)

	filter, err := compileFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	files := make([]module.ExtractedFile, 0, len(cfg.FunctionPaths))

	for _, path := range cfg.FunctionPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mod, err := loader.Load(path)
		if err != nil {
			return nil, err
		}

		fns, err := analysis.ExtractFunctions(mod.Program, mod.Name)
		if err != nil {
			return nil, err
		}

		o.logger.Debug("extracted functions",
			zap.String("path", mod.Path),
			zap.String("module", mod.Name),
			zap.Int("functions", len(fns)),
		)

		files = append(files, module.ExtractedFile{Module: mod, Functions: fns})
	}

	functions, warnings, err := module.MergeFunctions(files)
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		o.logger.Warn(w.Message, zap.String("file", w.File), zap.String("code", w.Code))
	}

	functions, err = filter.apply(functions)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Schema:    schema,
		Functions: functions,
		Warnings:  warnings,
		Config:    cfg,
	}
	res.Diagnostics = analysis.Lint(&analysis.Model{Schema: schema, Functions: functions})

	return res, nil
}

// Render renders an extracted model with the language selected by its
// config.
func Render(res *Result) ([]byte, error) {
	cfg := res.Config
	if cfg == nil {
		cfg = convextypes.DefaultConfig()
	}

	lang, err := language.Resolve(cfg.Lang, cfg.OutFile)
	if err != nil {
		return nil, err
	}

	return lang.Generate(&language.GenerateContext{
		Schema:      res.Schema,
		Functions:   res.Functions,
		OutFile:     cfg.OutFile,
		PackageName: cfg.Package,
		Source:      sourceName(cfg.SchemaPath, cfg.OutFile),
	})
}

// sourceName is the schema path as written in the generated header: relative
// to the output directory when both paths are absolute, so that the header
// does not depend on where the project is checked out.
func sourceName(schemaPath, outFile string) string {
	if filepath.IsAbs(schemaPath) && filepath.IsAbs(outFile) {
		if rel, err := filepath.Rel(filepath.Dir(outFile), schemaPath); err == nil {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.ToSlash(schemaPath)
}

// Status is the outcome of Check.
type Status struct {
	// OutFile is the checked file.
	OutFile string

	// Stale is true when OutFile is missing or differs from what Generate
	// would write.
	Stale bool

	// Want and Got are the xxh3 digests of the expected and current content.
	// Got is zero when the file does not exist.
	Want, Got uint64
}

// Check reports whether cfg.OutFile is up to date without writing anything.
func Check(ctx context.Context, cfg *convextypes.Config, opts ...Option) (*Status, error) {
	o := newOptions(opts)

	res, err := extract(ctx, o.config(cfg), o)
	if err != nil {
		return nil, err
	}

	out, err := Render(res)
	if err != nil {
		return nil, err
	}

	status := &Status{OutFile: res.Config.OutFile, Want: xxh3.Hash(out)}

	current, err := os.ReadFile(res.Config.OutFile)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		status.Stale = true
	case err != nil:
		return nil, &convextypes.IOError{File: res.Config.OutFile, Err: err}
	default:
		status.Got = xxh3.Hash(current)
		status.Stale = status.Got != status.Want
	}

	o.logger.Debug("checked output",
		zap.String("out", status.OutFile),
		zap.Bool("stale", status.Stale),
	)

	return status, nil
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &convextypes.IOError{File: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &convextypes.IOError{File: path, Err: err}
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return &convextypes.IOError{File: path, Err: err}
	}

	if err := tmp.Close(); err != nil {
		return &convextypes.IOError{File: path, Err: err}
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // generated source is world readable
		return &convextypes.IOError{File: path, Err: err}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return &convextypes.IOError{File: path, Err: err}
	}

	return nil
}

// functionFilter selects the functions that are generated.
type functionFilter struct {
	source  string
	program *vm.Program
}

// compileFilter compiles an expression over the environment built by
// filterEnv. An empty source selects every function.
func compileFilter(source string) (*functionFilter, error) {
	if source == "" {
		return &functionFilter{}, nil
	}

	opts := []expr.Option{expr.Env(filterEnv(&convextypes.Function{})), expr.AsBool()}

	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: filter %q: %w", convextypes.ErrInvalidConfig, source, err)
	}

	return &functionFilter{source: source, program: program}, nil
}

func (f *functionFilter) apply(fns []*convextypes.Function) ([]*convextypes.Function, error) {
	if f.program == nil {
		return fns, nil
	}

	out := make([]*convextypes.Function, 0, len(fns))

	for _, fn := range fns {
		keep, err := expr.Run(f.program, filterEnv(fn))
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q on %s: %w", convextypes.ErrInvalidConfig, f.source, fn.Path(), err)
		}

		if ok, _ := keep.(bool); ok {
			out = append(out, fn)
		}
	}

	return out, nil
}

// filterEnv exposes a function to filter expressions.
func filterEnv(fn *convextypes.Function) map[string]any {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
	}

	return map[string]any{
		"name":     fn.Name,
		"kind":     string(fn.Kind),
		"module":   fn.Module,
		"path":     fn.Path(),
		"internal": fn.Internal,
		"params":   params,
	}
}
