package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/platewise/costoracle/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "costoracle",
	Short: "Wholesale ingredient cost estimation engine",
	Long:  "Estimates the wholesale cost of an ingredient at a location by aggregating web price observations into a single scored estimate, with an idempotent cache in front.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
