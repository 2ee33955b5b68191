// Package config binds the engine thresholds to viper so the CLI can
// source them from flags, config files, and the environment with one
// precedence order.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/plantsight/drawcheck"
)

// SetDefaults registers the engine threshold defaults with viper.
func SetDefaults() {
	def := drawcheck.DefaultConfig()
	viper.SetDefault("proximity_threshold", def.ProximityThreshold)
	viper.SetDefault("similarity_threshold", def.SimilarityThreshold)
	viper.SetDefault("dwg_to_extracted_threshold", def.DWGToExtractedThreshold)
	viper.SetDefault("confidence_threshold", def.ConfidenceThreshold)
	viper.SetDefault("sample_size", def.SampleSize)
	viper.SetDefault("visual_diff_enabled", def.VisualDiffEnabled)
}

// Engine builds the engine configuration from viper's current state.
func Engine() drawcheck.Config {
	return drawcheck.Config{
		ProximityThreshold:      viper.GetFloat64("proximity_threshold"),
		SimilarityThreshold:     viper.GetFloat64("similarity_threshold"),
		DWGToExtractedThreshold: viper.GetFloat64("dwg_to_extracted_threshold"),
		ConfidenceThreshold:     viper.GetFloat64("confidence_threshold"),
		SampleSize:              viper.GetInt("sample_size"),
		VisualDiffEnabled:       viper.GetBool("visual_diff_enabled"),
	}
}

// GetString is a helper to get string values from viper. It checks both
// OS environment variables and viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}
