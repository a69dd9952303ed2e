package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/py2plan/pkg/buildinfo"
	"github.com/matzehuels/py2plan/pkg/cache"
	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/io"
	"github.com/matzehuels/py2plan/pkg/observability"
	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/render/nodelink"
	"github.com/matzehuels/py2plan/pkg/render/pseudo"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

// Stage names reported to observability hooks.
const (
	StageParse   = "parse"
	StageSelect  = "select"
	StageBuild   = "build"
	StageFlatten = "flatten"
	StageWrite   = "write"
)

// Runner executes the pipeline.
//
// The Runner holds no per-run state besides its cache, which memoizes
// rendered SVG so that svg and html exports of one graph render once.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger

	// NewBackend creates the export backend for an engine name.
	// Defaults to nodelink.NewBackend.
	NewBackend func(engine string) (nodelink.Backend, error)
}

// NewRunner creates a runner. A nil cache disables memoization and a nil
// logger uses log.Default().
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger, NewBackend: nodelink.NewBackend}
}

// Execute runs every stage and writes the outputs into opts.OutDir.
//
// Fatal errors (PARSE_ERROR, FUNCTION_NOT_FOUND, INVALID_INPUT) abort the
// run before anything is written. Export failures are recorded in the
// result; the returned error is nil unless opts.StrictExport is set, in
// which case it is an EXPORT_FAILED error and the result is still
// returned.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	result, err := r.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = r.stage(ctx, StageWrite, func() error { return r.write(result, opts) })
	result.Stats.WriteTime = time.Since(start)
	if err != nil {
		return nil, err
	}
	logger.Debug("wrote outputs", "files", len(result.Files), "duration", result.Stats.WriteTime)

	if len(opts.Formats()) == 0 {
		return result, nil
	}

	start = time.Now()
	r.export(ctx, result, opts)
	result.Stats.ExportTime = time.Since(start)

	if opts.StrictExport && len(result.ExportErrors) > 0 {
		for _, format := range opts.Formats() {
			if err := result.ExportErrors[format]; err != nil {
				return result, err
			}
		}
	}
	return result, nil
}

// Plan runs the in-memory stages (parse, select, build, flatten) without
// writing anything.
func (r *Runner) Plan(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	src, err := readSource(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{ExportErrors: make(map[string]error)}

	var file *syntax.File
	start := time.Now()
	err = r.stage(ctx, StageParse, func() error {
		var err error
		file, err = syntax.Parse(ctx, src, syntax.WithMaxBytes(opts.MaxSourceBytes))
		return err
	})
	result.Stats.ParseTime = time.Since(start)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var sig syntax.Signature
	err = r.stage(ctx, StageSelect, func() error {
		var err error
		sig, err = file.Select(opts.Function)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Function = sig
	if opts.Function == "" {
		logger.Info("selected function", "name", sig.Name, "line", sig.Line, "candidates", len(file.Functions()))
	}

	start = time.Now()
	_ = r.stage(ctx, StageBuild, func() error {
		buildOpts := []plan.BuildOption{plan.WithStartLine(sig.Line)}
		if opts.MaxLabel > 0 {
			buildOpts = append(buildOpts, plan.WithMaxLabel(opts.MaxLabel))
		}
		result.Plan, result.Warnings = plan.Build(sig.Name, file.Body(sig), buildOpts...)
		return nil
	})
	result.Stats.BuildTime = time.Since(start)
	for _, w := range result.Warnings {
		logger.Warn(w.Message, "line", w.Line, "node", w.NodeID)
	}

	start = time.Now()
	err = r.stage(ctx, StageFlatten, func() error {
		var err error
		result.Graph, err = flow.Flatten(result.Plan)
		return err
	})
	result.Stats.FlattenTime = time.Since(start)
	if err != nil {
		return nil, err
	}

	result.Stats.NodeCount = result.Graph.NodeCount()
	result.Stats.EdgeCount = result.Graph.EdgeCount()
	result.Stats.Unreachable = len(result.Graph.Unreachable())
	if n := result.Stats.Unreachable; n > 0 {
		logger.Warn("pruned unreachable nodes", "count", n, "ids", result.Graph.Unreachable())
	}

	result.Pseudo = pseudo.Render(result.Plan)
	result.Document = io.NewDocument(sig, src, result.Plan, result.Graph, result.Warnings)
	result.Document.Generator = buildinfo.Generator()

	logger.Info("built plan",
		"function", sig.Name,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"warnings", len(result.Warnings))
	return result, nil
}

type output struct {
	name  string
	write func(path string) error
}

func (r *Runner) write(result *Result, opts Options) error {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create output directory %s", opts.OutDir)
	}

	outputs := []output{
		{FileJSON, func(path string) error { return io.ExportJSON(result.Document, path) }},
		{FilePseudo, func(path string) error { return io.WriteText(path, result.Pseudo) }},
	}
	if opts.YAML {
		outputs = append(outputs, output{FileYAML, func(path string) error { return io.ExportYAML(result.Document, path) }})
	}

	for _, out := range outputs {
		path := filepath.Join(opts.OutDir, out.name)
		if err := out.write(path); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", out.name)
		}
		result.Files = append(result.Files, path)
	}
	return nil
}

// export renders each requested format. Failures are collected, never
// returned.
func (r *Runner) export(ctx context.Context, result *Result, opts Options) {
	logger := r.logger(opts)

	backend, err := r.NewBackend(opts.Engine)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeExportFailed, err, "select backend")
		for _, format := range opts.Formats() {
			result.ExportErrors[format] = err
		}
		return
	}
	exporter := nodelink.NewExporter(backend, r.Cache, opts.Timeout, nodelink.Options{Rankdir: opts.Rankdir})

	names := map[string]string{nodelink.FormatSVG: FileSVG, nodelink.FormatHTML: FileHTML}
	for _, format := range opts.Formats() {
		data, err := exporter.Export(ctx, result.Graph, result.Plan, format, result.Warnings...)
		if err == nil {
			path := filepath.Join(opts.OutDir, names[format])
			if err = io.WriteBytes(path, data); err != nil {
				err = errors.Wrap(errors.ErrCodeExportFailed, err, "write %s", names[format])
			} else {
				result.Files = append(result.Files, path)
			}
		}
		if err != nil {
			result.ExportErrors[format] = err
			logger.Warn("export failed", "format", format, "engine", backend.Name(), "err", errors.UserMessage(err))
			continue
		}
		logger.Debug("exported", "format", format, "engine", backend.Name(), "bytes", len(data))
	}
}

func (r *Runner) stage(ctx context.Context, name string, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	hooks.OnStageComplete(ctx, name, time.Since(start), err)
	return err
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func readSource(opts Options) ([]byte, error) {
	if opts.Source != nil {
		return opts.Source, nil
	}
	src, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read source %s", opts.SourcePath)
	}
	return src, nil
}

// String summarizes a result for log output.
func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d edges, parse %s, build %s, flatten %s",
		s.NodeCount, s.EdgeCount, s.ParseTime.Round(time.Microsecond),
		s.BuildTime.Round(time.Microsecond), s.FlattenTime.Round(time.Microsecond))
}
