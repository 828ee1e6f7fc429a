package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var warmTimeout time.Duration

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Fetch the latest posts into the document store",
	Long:  "Fetches up to 100 of the latest posts from the CMS and stores them, so their pages are available before the first request and during CMS outages.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), warmTimeout)
		defer cancel()
		n, err := app.Cache.Warm(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %d posts (%s)\n", n, app.Config.StorageDriver)
		return nil
	},
}

func init() {
	warmCmd.Flags().DurationVar(&warmTimeout, "timeout", time.Minute, "overall timeout")
}
