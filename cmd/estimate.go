package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/platewise/costoracle/internal/model"
)

var (
	estimateIngredient string
	estimateLocation   string
	estimateCode       string
	estimateStage      string
	estimateYear       int
	estimateLite       bool
	estimateOutput     string
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the wholesale cost of a single ingredient",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		target := model.Target{
			IngredientName: estimateIngredient,
			LocationName:   estimateLocation,
			LocationCode:   estimateCode,
			LifecycleStage: estimateStage,
			Year:           estimateYear,
		}

		var (
			result    *model.CostEstimate
			fromCache bool
		)
		if estimateLite {
			result, err = env.Engine.GetCostEstimateLite(ctx, target)
		} else {
			result, fromCache, err = env.Engine.GetCostEstimate(ctx, target)
		}
		if err != nil {
			return eris.Wrap(err, "estimate")
		}

		zap.L().Info("estimate complete",
			zap.String("target", target.Key()),
			zap.Float64("cost_in_usd", result.CostInUSD),
			zap.String("band", result.Quality.Band),
			zap.Bool("from_cache", fromCache),
		)

		return writeResultJSON(result, estimateOutput)
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateIngredient, "ingredient", "", "ingredient name (required)")
	estimateCmd.Flags().StringVar(&estimateLocation, "location", "", "location name, e.g. Australia")
	estimateCmd.Flags().StringVar(&estimateCode, "code", "", "location code, e.g. AU (required)")
	estimateCmd.Flags().StringVar(&estimateStage, "stage", "", "ingredient lifecycle stage")
	estimateCmd.Flags().IntVar(&estimateYear, "year", 0, "reference year")
	estimateCmd.Flags().BoolVar(&estimateLite, "lite", false, "skip generation, pick the lowest gathered price")
	estimateCmd.Flags().StringVarP(&estimateOutput, "output", "o", "", "write result JSON to file (default stdout)")
	estimateCmd.MarkFlagRequired("ingredient") //nolint:errcheck
	estimateCmd.MarkFlagRequired("code")       //nolint:errcheck
	rootCmd.AddCommand(estimateCmd)
}

// writeResultJSON renders v as indented JSON to path, or stdout when path is
// empty.
func writeResultJSON(v any, path string) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal result")
	}
	raw = append(raw, '\n')

	if path == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
