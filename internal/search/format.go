// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes a page as a human-readable table to w.
func FormatTable(p Page, w io.Writer) {
	if len(p.Jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-40s  %-24s  %-20s  %-12s  %s\n",
		"#", "Title", "Company", "Location", "Posted", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for i, j := range p.Jobs {
		fmt.Fprintf(w, "%-4d  %-40s  %-24s  %-20s  %-12s  %s\n",
			p.Start+i, truncate(j.Title, 40), truncate(j.Company, 24),
			truncate(j.Location, 20), truncate(j.PostedDate, 12), j.Source)
	}

	fmt.Fprintf(w, "\n%d jobs (from %d)", len(p.Jobs), p.Start)
	if p.HasMore {
		fmt.Fprintf(w, "; next page: --start %d", p.NextStart)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the page's postings as indented JSON to w.
func FormatJSON(p Page, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p.Jobs)
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
