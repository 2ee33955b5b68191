package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plantsight/drawcheck"
	"github.com/plantsight/drawcheck/internal/config"
	"github.com/plantsight/drawcheck/pkg/drawing"
)

var (
	analyzeOutput    string
	analyzeNoHarness bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <document>",
	Short: "Run the full validation pipeline over a drawing document",
	Long: `Analyze loads a drawing document (YAML or JSON) and runs every
pipeline stage: entity matching, symbol cross-validation, instrument
topology checks, material/rating reassembly, and the calibration and
diff harness.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "markdown", "output format (markdown, json)")
	analyzeCmd.Flags().BoolVar(&analyzeNoHarness, "no-harness", false, "skip the calibration and diff harness")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	doc, err := drawing.LoadDocument(args[0])
	if err != nil {
		return err
	}

	opts := []drawcheck.Option{drawcheck.WithConfig(config.Engine())}
	if analyzeNoHarness {
		opts = append(opts, drawcheck.WithoutHarness())
	}

	engine, err := drawcheck.New(opts...)
	if err != nil {
		return err
	}

	r, err := engine.Analyze(cmd.Context(), doc)
	if err != nil {
		return err
	}

	switch analyzeOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "markdown", "":
		fmt.Print(r.Markdown())
		return nil
	default:
		return fmt.Errorf("unknown output format %q", analyzeOutput)
	}
}
