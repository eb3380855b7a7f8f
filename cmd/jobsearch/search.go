// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/job-aggregator/internal/search"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search job platforms and print one page of results",
	Long: `Search runs one query against every configured platform, merges and
de-duplicates the postings, applies the filters and prints the requested
page. Use --start to move to later pages.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	req := searchRequestFromFlags(cmd, args)
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := contextOrBackground(cmd.Context())
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	page, err := a.engine.Search(ctx, req)
	if err != nil {
		return err
	}
	if asJSON {
		return search.FormatJSON(page, os.Stdout)
	}
	search.FormatTable(page, os.Stdout)
	return nil
}

func searchRequestFromFlags(cmd *cobra.Command, args []string) types.SearchRequest {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	location, _ := cmd.Flags().GetString("location")
	start, _ := cmd.Flags().GetInt("start")
	limit, _ := cmd.Flags().GetInt("limit")
	platforms, _ := cmd.Flags().GetStringSlice("platforms")
	experience, _ := cmd.Flags().GetStringSlice("experience")
	sizes, _ := cmd.Flags().GetStringSlice("company-size")

	req := types.SearchRequest{
		Query:     query,
		Location:  location,
		Start:     start,
		Limit:     limit,
		Platforms: platforms,
	}
	for _, e := range experience {
		req.ExperienceLevels = append(req.ExperienceLevels, types.ExperienceLevel(e))
	}
	for _, s := range sizes {
		req.CompanySizes = append(req.CompanySizes, types.CompanySize(s))
	}
	return req
}

func init() {
	searchCmd.Flags().String("query", "", "job title, skills or keywords")
	searchCmd.Flags().String("location", "", "city, region or Remote")
	searchCmd.Flags().Int("start", 1, "1-based position of the first result")
	searchCmd.Flags().Int("limit", 0, "results per page (default from search.default_limit)")
	searchCmd.Flags().StringSlice("platforms", nil, "platforms to query (comma-separated, default all)")
	searchCmd.Flags().StringSlice("experience", nil, "experience levels: Fresher, Internship, Associate, Senior, Lead, Executive")
	searchCmd.Flags().StringSlice("company-size", nil, "company sizes: Startup, Small, Mid-size, Large, MNC")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
