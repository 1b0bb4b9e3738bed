// Package main is the entry point for the place-lookup CLI, which drives the
// place autocomplete selector against the live Google provider.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "place-lookup",
	Short: "Type a query into the place selector and print the chosen place",
	Long: `place-lookup types a query into the autocomplete selector one keystroke at a
time, waits for the debounced predictions, selects one of them and prints the
resulting selection event (prediction plus resolved details) as JSON.

GOOGLE_MAPS_API_KEY must be set in the environment or in .env.`,
	Args: cobra.NoArgs,
	RunE: runLookup,
}

func init() {
	rootCmd.Flags().StringP("query", "q", "", "text to type into the selector")
	rootCmd.Flags().IntP("index", "i", 0, "zero-based prediction to select")
	rootCmd.Flags().Duration("keystroke", 50*time.Millisecond, "delay between typed characters")
	rootCmd.PersistentFlags().Duration("timeout", 15*time.Second, "overall deadline")
	_ = rootCmd.MarkFlagRequired("query")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
