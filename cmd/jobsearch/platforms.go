// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List platforms and whether they are configured",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}
		printPlatforms(cfg.Sources, os.Stdout)
		return nil
	},
}

// printPlatforms writes every known platform with the credential it needs.
func printPlatforms(cfg types.SourcesConfig, w io.Writer) {
	for _, p := range types.KnownPlatforms {
		fmt.Fprintf(w, "%-14s  %s\n", p, platformStatus(p, cfg))
	}
}

func platformStatus(p types.Platform, cfg types.SourcesConfig) string {
	switch p {
	case types.PlatformAdzuna:
		if cfg.Adzuna.Configured() {
			return "configured (" + cfg.Adzuna.Country + ")"
		}
		return "missing adzuna-app-id / adzuna-app-key"
	case types.PlatformDemo:
		if cfg.DemoEnabled {
			return "enabled"
		}
		return "disabled (sources.demo_enabled)"
	default:
		if cfg.Google.Configured() {
			return "configured"
		}
		return "missing google-api-key / google-search-engine-id"
	}
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}
