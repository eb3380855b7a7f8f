// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

//go:embed catalog.yaml
var catalogYAML []byte

// catalogFile is the on-disk layout of catalog.yaml.
type catalogFile struct {
	Postings []types.JobPosting `yaml:"postings"`
}

// Catalog serves a fixed set of postings from memory under the Demo
// platform. It needs no credentials or network, which makes it the adapter
// of choice for local development.
type Catalog struct {
	postings []types.JobPosting
}

// NewCatalog loads the embedded catalog.
func NewCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog builds a catalog from YAML data. Entries must carry a title
// and an absolute URL; ids and source are assigned here.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c := &Catalog{postings: make([]types.JobPosting, 0, len(f.Postings))}
	for i, p := range f.Postings {
		if strings.TrimSpace(p.Title) == "" || !types.IsAbsoluteURL(p.URL) {
			return nil, fmt.Errorf("catalog entry %d: title and absolute url are required", i+1)
		}
		p.Source = types.PlatformDemo
		p.ID = types.PostingID(types.PlatformDemo, p.URL, p.Title, p.Company)
		c.postings = append(c.postings, p)
	}
	return c, nil
}

// Platform returns types.PlatformDemo.
func (c *Catalog) Platform() types.Platform { return types.PlatformDemo }

// Len returns the catalog size.
func (c *Catalog) Len() int { return len(c.postings) }

// Fetch returns the window of catalog entries matching any query term in
// title, company or description. Remote postings match every location.
func (c *Catalog) Fetch(ctx context.Context, q Query, w types.Window) Result {
	if err := ctx.Err(); err != nil {
		return Failure(types.PlatformDemo, err)
	}

	terms := strings.Fields(strings.ToLower(q.Text))
	loc := strings.ToLower(strings.TrimSpace(q.Location))

	var matched []types.JobPosting
	for _, p := range c.postings {
		if matchesTerms(p, terms) && matchesLocation(p, loc) {
			matched = append(matched, p)
		}
	}

	from := min(w.Start-1, len(matched))
	to := min(from+w.Limit, len(matched))
	return Success(types.PlatformDemo, matched[from:to], 0)
}

func matchesTerms(p types.JobPosting, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	haystack := strings.ToLower(p.Title + " " + p.Company + " " + p.Description)
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

func matchesLocation(p types.JobPosting, loc string) bool {
	if loc == "" {
		return true
	}
	have := strings.ToLower(p.Location)
	return have == "" || have == "remote" || strings.Contains(have, loc)
}
