package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/pipeline"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

// planFlags holds the flag values of the root command.
type planFlags struct {
	function     string
	outDir       string
	html         bool
	svg          bool
	yaml         bool
	engine       string
	timeout      time.Duration
	rankdir      string
	pick         bool
	config       string
	strictExport bool
}

// planCommand creates the root command: plan one function of a file.
func (c *CLI) planCommand() *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "py2plan <source-file>",
		Short: "py2plan turns a Python function into an execution-plan graph",
		Long: `py2plan reads one function of a Python source file and writes its control
flow as a plan: plan.json (nested plan and flattened graph) and plan.pseudo
(indented pseudocode). With --svg or --html it also renders the graph.

Unsupported statements become placeholder nodes with a warning; the run
still succeeds. A failed export is reported but does not fail the run
unless --strict-export is set.`,
		Example: `  py2plan tasks.py
  py2plan tasks.py --func build --svg --html
  py2plan tasks.py --pick --out build/plans`,
		Args: exactlyOneSource,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(args[0], cmd.Flags().Changed)
			if err != nil {
				return err
			}
			if flags.pick {
				name, err := c.pick(cmd.Context(), opts)
				if err != nil {
					return err
				}
				opts.Function = name
			}
			return c.runPlan(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&flags.function, "func", "", "function to plan (default: automatic selection)")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", pipeline.DefaultOutDir, "output directory")
	cmd.Flags().BoolVar(&flags.html, "html", false, "also write plan.html")
	cmd.Flags().BoolVar(&flags.svg, "svg", false, "also write plan.svg")
	cmd.Flags().BoolVar(&flags.yaml, "yaml", false, "also write plan.yaml")
	cmd.Flags().StringVar(&flags.engine, "engine", pipeline.DefaultEngine, "render engine: graphviz (embedded) or dot (system binary)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", pipeline.DefaultTimeout, "export time limit")
	cmd.Flags().StringVar(&flags.rankdir, "rankdir", "TB", "diagram direction: TB, LR, BT or RL")
	cmd.Flags().BoolVar(&flags.pick, "pick", false, "choose the function interactively")
	cmd.Flags().StringVar(&flags.config, "config", "", "config file (default: ./"+configFileName+" if present)")
	cmd.Flags().BoolVar(&flags.strictExport, "strict-export", false, "exit with an error when an export fails")

	cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions([]string{"graphviz", "dot"}, cobra.ShellCompDirectiveNoFileComp))
	cmd.RegisterFlagCompletionFunc("rankdir", cobra.FixedCompletions([]string{"TB", "LR", "BT", "RL"}, cobra.ShellCompDirectiveNoFileComp))
	cmd.MarkFlagFilename("config", "toml")
	cmd.MarkFlagDirname("out")

	return cmd
}

// options merges flags over the config file.
func (f planFlags) options(source string, changed func(string) bool) (pipeline.Options, error) {
	opts := pipeline.Options{
		SourcePath:   source,
		Function:     f.function,
		OutDir:       f.outDir,
		HTML:         f.html,
		SVG:          f.svg,
		YAML:         f.yaml,
		Engine:       f.engine,
		Timeout:      f.timeout,
		Rankdir:      f.rankdir,
		StrictExport: f.strictExport,
	}

	cfg, _, err := loadConfig(f.config)
	if err != nil {
		return opts, err
	}
	if err := cfg.apply(&opts, changed); err != nil {
		return opts, err
	}
	if f.pick && changed("func") {
		return opts, errors.New(errors.ErrCodeInvalidInput, "--pick and --func are mutually exclusive")
	}
	return opts, opts.ValidateAndSetDefaults()
}

// pick parses the source and lets the user choose a function.
func (c *CLI) pick(ctx context.Context, opts pipeline.Options) (string, error) {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return "", errors.New(errors.ErrCodeInvalidInput, "--pick needs an interactive terminal")
	}
	src, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read source %s", opts.SourcePath)
	}
	file, err := syntax.Parse(ctx, src, syntax.WithMaxBytes(opts.MaxSourceBytes))
	if err != nil {
		return "", err
	}
	defer file.Close()
	return pickFunction(ctx, file.Functions())
}

// runPlan executes the pipeline and prints a summary.
func (c *CLI) runPlan(ctx context.Context, opts pipeline.Options) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var spinner *Spinner
	if len(opts.Formats()) > 0 {
		spinner = newSpinnerWithContext(ctx, "Rendering "+opts.Engine+"…")
		spinner.Start()
	}
	result, err := c.newRunner().Execute(ctx, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if result == nil {
		return err
	}
	prog.done("Planned " + result.Function.Name)

	printSuccess("Planned %s (line %d)", StyleHighlight.Render(result.Function.Name), result.Function.Line)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, len(result.Warnings), result.Stats.Unreachable)
	for _, path := range result.Files {
		printFile(path)
	}
	for _, w := range result.Warnings {
		printWarning("line %d: %s", w.Line, w.Message)
	}
	for _, format := range opts.Formats() {
		if exportErr := result.ExportErrors[format]; exportErr != nil {
			printWarning("%s export failed: %s", format, errors.UserMessage(exportErr))
			printDetail("plan.json and plan.pseudo were written; try --engine dot or a longer --timeout")
		}
	}
	return err
}
