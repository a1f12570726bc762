package main

import (
	"context"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/platewise/costoracle/internal/aggregate"
	"github.com/platewise/costoracle/internal/ingest"
	"github.com/platewise/costoracle/internal/model"
)

var (
	batchInput  string
	batchLimit  int
	batchLite   bool
	batchOutput string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Estimate costs for a CSV or XLSX list of targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		targets, err := loadTargets(batchInput)
		if err != nil {
			return err
		}

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := processBatch(ctx, env.Engine, targets, batchLimit,
			cfg.Batch.MaxConcurrentTargets, cfg.Batch.RequestsPerSecond, batchLite)
		if err != nil {
			return err
		}

		if batchOutput != "" {
			return writeResultJSON(results, batchOutput)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "CSV or XLSX file of targets (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of targets to process (0 = all)")
	batchCmd.Flags().BoolVar(&batchLite, "lite", false, "use the generation-free lite estimator")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write results JSON to file")
	batchCmd.MarkFlagRequired("input") //nolint:errcheck
	rootCmd.AddCommand(batchCmd)
}

// loadTargets parses the input file by extension.
func loadTargets(path string) ([]model.Target, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".xlsx"):
		return ingest.ParseTargetsXLSX(path)
	case strings.HasSuffix(strings.ToLower(path), ".csv"):
		return ingest.ParseTargetsCSV(path)
	default:
		return nil, eris.Errorf("batch: unsupported input file %q (want .csv or .xlsx)", path)
	}
}

// batchResult pairs a target with its estimate or error message.
type batchResult struct {
	Target   model.Target        `json:"target"`
	Estimate *model.CostEstimate `json:"estimate,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// processBatch estimates targets concurrently under a shared rate limit.
// Individual failures are recorded, not fatal.
func processBatch(ctx context.Context, engine *aggregate.Engine, targets []model.Target, limit, concurrency int, rps float64, lite bool) ([]batchResult, error) {
	if len(targets) == 0 {
		zap.L().Info("no targets to process")
		return nil, nil
	}
	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	runID := uuid.NewString()
	zap.L().Info("processing batch",
		zap.String("run_id", runID),
		zap.Int("targets", len(targets)),
		zap.Int("concurrency", concurrency),
		zap.Float64("requests_per_second", rps),
	)

	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	if rps <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}

	results := make([]batchResult, len(targets))
	var mu sync.Mutex
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, target := range targets {
		g.Go(func() error {
			log := zap.L().With(
				zap.String("run_id", runID),
				zap.String("target", target.Key()),
			)

			if err := limiter.Wait(gctx); err != nil {
				return eris.Wrap(err, "batch: rate limiter")
			}

			var (
				estimate *model.CostEstimate
				err      error
			)
			if lite {
				estimate, err = engine.GetCostEstimateLite(gctx, target)
			} else {
				estimate, _, err = engine.GetCostEstimate(gctx, target)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed.Add(1)
				log.Error("estimate failed", zap.Error(err))
				results[i] = batchResult{Target: target, Error: err.Error()}
				return nil // don't abort batch on individual failure
			}
			succeeded.Add(1)
			log.Info("estimate complete",
				zap.Float64("cost_in_usd", estimate.CostInUSD),
				zap.String("band", estimate.Quality.Band),
			)
			results[i] = batchResult{Target: target, Estimate: estimate}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.String("run_id", runID),
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}
