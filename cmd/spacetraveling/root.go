package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spacetraveling",
	Short: "spacetraveling - a blog front-end for a headless CMS",
	Long: `spacetraveling serves a blog whose posts live in a Prismic-style headless CMS.

Configuration is read from spacetraveling.yaml (or --config), a .env file,
and the environment (CMS_ENDPOINT, SITE_NAME, STORAGE_DRIVER, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./spacetraveling.yaml)")
	rootCmd.AddCommand(serveCmd, warmCmd, versionCmd)
}

// loadApp reads the configuration and initializes an App from it.
func loadApp() (*spacetraveling.App, error) {
	cfg, err := spacetraveling.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	app := spacetraveling.New(cfg)
	if err := app.Init(); err != nil {
		return nil, err
	}
	return app, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spacetraveling version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spacetraveling %s\n", version)
	},
}
