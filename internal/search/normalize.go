// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"time"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

// postedDateLayouts are the absolute timestamp forms rewritten to a bare date.
var postedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

const dateFmt = "2006-01-02"

// Normalize cleans text fields and removes duplicates. A posting is a
// duplicate when its ID or its canonical URL was already seen; the first
// occurrence wins and order is otherwise preserved. The input is not
// modified.
func Normalize(raw []types.JobPosting) []types.JobPosting {
	out := make([]types.JobPosting, 0, len(raw))
	seen := make(map[string]bool, 2*len(raw))

	for _, p := range raw {
		p = cleanPosting(p)

		idKey := "id:" + p.ID
		urlKey := ""
		if u := types.CanonicalURL(p.URL); u != "" {
			urlKey = "url:" + u
		}
		if seen[idKey] || (urlKey != "" && seen[urlKey]) {
			continue
		}
		seen[idKey] = true
		if urlKey != "" {
			seen[urlKey] = true
		}
		out = append(out, p)
	}
	return out
}

// cleanPosting collapses whitespace in every text field, rewrites absolute
// posted dates and backfills a missing ID.
func cleanPosting(p types.JobPosting) types.JobPosting {
	p.Title = collapse(p.Title)
	p.Company = collapse(p.Company)
	p.Location = collapse(p.Location)
	p.Description = collapse(p.Description)
	p.URL = strings.TrimSpace(p.URL)
	p.Salary = collapse(p.Salary)
	p.PostedDate = normalizePostedDate(p.PostedDate)
	if strings.TrimSpace(p.ID) == "" {
		p.ID = types.PostingID(p.Source, p.URL, p.Title, p.Company)
	}
	return p
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizePostedDate turns absolute timestamps into YYYY-MM-DD and leaves
// relative phrases ("3 days ago") as trimmed display text.
func normalizePostedDate(s string) string {
	s = collapse(s)
	for _, layout := range postedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateFmt)
		}
	}
	return s
}
