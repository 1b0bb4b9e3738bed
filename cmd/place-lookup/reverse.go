package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trashtrack_backend/internal/places"
	"trashtrack_backend/platform/config"
)

var reverseCmd = &cobra.Command{
	Use:   "reverse <lat> <lon>",
	Short: "Print the formatted address for a coordinate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil || lat < -90 || lat > 90 {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil || lon < -180 || lon > 180 {
			return fmt.Errorf("invalid longitude %q", args[1])
		}

		cfg, err := config.LoadPlaces()
		if err != nil {
			return err
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		address, err := places.NewGoogleClientFromConfig(cfg).ReverseGeocode(ctx, lat, lon)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), address)
		return err
	},
}

func init() {
	rootCmd.AddCommand(reverseCmd)
}
