package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/plantsight/drawcheck/internal/config"
	"github.com/plantsight/drawcheck/pkg/calibrate"
	"github.com/plantsight/drawcheck/pkg/drawing"
)

var calibrateGroundTruth string

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <document>",
	Short: "Run only the calibration and diff harness",
	Long: `Calibrate diffs a document's extracted tags against its own entities,
or against a separate ground-truth document, and reports extraction
discrepancy, confidence calibration, and a visual diff sample.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)

	calibrateCmd.Flags().StringVar(&calibrateGroundTruth, "ground-truth", "", "document whose entities serve as ground truth")
}

func runCalibrate(_ *cobra.Command, args []string) error {
	doc, err := drawing.LoadDocument(args[0])
	if err != nil {
		return err
	}

	entities := doc.Entities
	if calibrateGroundTruth != "" {
		gt, err := drawing.LoadDocument(calibrateGroundTruth)
		if err != nil {
			return err
		}
		entities = gt.Entities
	}

	eng := config.Engine()
	cfg := calibrate.DefaultConfig()
	cfg.SimilarityThreshold = eng.SimilarityThreshold
	cfg.DWGToExtractedThreshold = eng.DWGToExtractedThreshold
	cfg.ConfidenceThreshold = eng.ConfidenceThreshold
	cfg.SampleSize = eng.SampleSize
	cfg.VisualDiffEnabled = eng.VisualDiffEnabled
	cfg.SpatialSanityBound = eng.ProximityThreshold

	result := calibrate.New(calibrate.WithConfig(cfg)).Run(entities, doc.Tags)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
