package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/platewise/costoracle/internal/model"
)

var (
	cacheGetIngredient string
	cacheGetCode       string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the estimate cache",
}

var cacheGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the cached estimate for a target, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		key := model.Target{
			IngredientName: cacheGetIngredient,
			LocationCode:   cacheGetCode,
		}.Key()

		entry, ok, err := c.Get(ctx, key)
		if err != nil {
			return eris.Wrap(err, "cache get")
		}
		if !ok {
			return eris.Errorf("no cached estimate for %s", key)
		}
		return writeResultJSON(entry, "")
	},
}

func init() {
	cacheGetCmd.Flags().StringVar(&cacheGetIngredient, "ingredient", "", "ingredient name (required)")
	cacheGetCmd.Flags().StringVar(&cacheGetCode, "code", "", "location code (required)")
	cacheGetCmd.MarkFlagRequired("ingredient") //nolint:errcheck
	cacheGetCmd.MarkFlagRequired("code")       //nolint:errcheck
	cacheCmd.AddCommand(cacheGetCmd)
	rootCmd.AddCommand(cacheCmd)
}
