package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

// functionsCommand lists the functions a source file offers.
func (c *CLI) functionsCommand() *cobra.Command {
	var (
		maxBytes   int
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "functions <source-file>",
		Short: "List the functions that can be planned",
		Long: `List module-level functions and class methods of a Python file.
The function chosen when --func is omitted is marked.`,
		Args: exactlyOneSource,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-source-bytes") && cfg.MaxSourceBytes != 0 {
				maxBytes = cfg.MaxSourceBytes
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "read source %s", args[0])
			}
			file, err := syntax.Parse(cmd.Context(), src, syntax.WithMaxBytes(maxBytes))
			if err != nil {
				return err
			}
			defer file.Close()

			funcs := file.Functions()
			best, ok := syntax.SelectFunction(funcs)
			if !ok {
				return errors.New(errors.ErrCodeFunctionNotFound, "no function definitions found")
			}
			for _, f := range funcs {
				value := "line " + strconv.Itoa(f.Line) + "  (" + strings.Join(f.Params, ", ") + ")"
				if f.Name == best.Name && f.Line == best.Line {
					value += "  " + StyleSuccess.Render("← default")
				}
				printKeyValue(f.Name, value)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxBytes, "max-source-bytes", syntax.DefaultMaxBytes, "source size limit")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./"+configFileName+" if present)")
	cmd.MarkFlagFilename("config", "toml")
	return cmd
}
