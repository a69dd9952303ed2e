// Package pipeline runs the whole source-to-plan transformation.
//
// This package implements the parse → select → build → flatten pipeline
// and writes its outputs. The CLI is a thin layer over [Runner]; tests and
// other front ends use the same code path.
//
// # Stages
//
//  1. Parse: read and parse the source file (PARSE_ERROR on failure)
//  2. Select: pick the named or automatically chosen function
//     (FUNCTION_NOT_FOUND)
//  3. Build: turn the function body into a nested plan
//  4. Flatten: derive the single-entry/single-exit graph
//  5. Write: plan.json and plan.pseudo, plus plan.yaml on request
//  6. Export: plan.svg and plan.html on request
//
// Export is isolated: a failed or timed-out export is recorded in
// [Result.ExportErrors] and leaves the written outputs untouched.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    SourcePath: "tasks.py",
//	    Function:   "plan",
//	    SVG:        true,
//	})
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/io"
	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/render/nodelink"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

// Output file names, relative to Options.OutDir.
const (
	FileJSON   = "plan.json"
	FilePseudo = "plan.pseudo"
	FileYAML   = "plan.yaml"
	FileSVG    = "plan.svg"
	FileHTML   = "plan.html"
)

// Defaults.
const (
	DefaultOutDir  = "."
	DefaultEngine  = nodelink.EngineGraphviz
	DefaultTimeout = nodelink.DefaultTimeout
)

// Options configures one run.
type Options struct {
	SourcePath string `json:"source_path"`
	// Source, when set, is used instead of reading SourcePath.
	Source []byte `json:"-"`
	// Function selects the function by name. Empty selects automatically.
	Function string `json:"function,omitempty"`
	OutDir   string `json:"out_dir,omitempty"`

	YAML bool `json:"yaml,omitempty"`
	SVG  bool `json:"svg,omitempty"`
	HTML bool `json:"html,omitempty"`

	Engine         string        `json:"engine,omitempty"`
	Timeout        time.Duration `json:"timeout,omitempty"`
	Rankdir        string        `json:"rankdir,omitempty"`
	MaxSourceBytes int           `json:"max_source_bytes,omitempty"`
	MaxLabel       int           `json:"max_label,omitempty"`

	// StrictExport makes a failed export fail the run.
	StrictExport bool `json:"strict_export,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults validates options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Source == nil {
		if err := errors.ValidateSourcePath(o.SourcePath); err != nil {
			return err
		}
	}
	if o.Function != "" {
		if err := errors.ValidateFunctionName(o.Function); err != nil {
			return err
		}
	}
	if o.OutDir == "" {
		o.OutDir = DefaultOutDir
	}
	if err := errors.ValidateOutputDir(o.OutDir); err != nil {
		return err
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if err := errors.ValidateEngine(o.Engine); err != nil {
		return err
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	o.Rankdir = strings.ToUpper(o.Rankdir)
	if o.Rankdir == "" {
		o.Rankdir = "TB"
	}
	if !validRankdir(o.Rankdir) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid rankdir: %q (must be one of TB, LR, BT, RL)", o.Rankdir)
	}
	if o.MaxSourceBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max source bytes cannot be negative")
	}
	return nil
}

// Formats returns the export formats requested, in a fixed order.
func (o Options) Formats() []string {
	var formats []string
	if o.SVG {
		formats = append(formats, nodelink.FormatSVG)
	}
	if o.HTML {
		formats = append(formats, nodelink.FormatHTML)
	}
	return formats
}

func validRankdir(s string) bool {
	return slices.Contains(nodelink.Rankdirs, s)
}

// Result holds everything a run produced.
type Result struct {
	Function syntax.Signature
	Plan     *plan.Plan
	Graph    *flow.Graph
	Pseudo   string
	Document *io.Document
	Warnings []plan.Warning

	// Files lists the written output paths in write order.
	Files []string
	// ExportErrors maps an export format to its failure.
	ExportErrors map[string]error

	Stats Stats
}

// Stats holds per-stage timings and graph sizes.
type Stats struct {
	ParseTime   time.Duration
	BuildTime   time.Duration
	FlattenTime time.Duration
	WriteTime   time.Duration
	ExportTime  time.Duration
	NodeCount   int
	EdgeCount   int
	Unreachable int
}
