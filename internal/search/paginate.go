// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "github.com/pdiddy/job-aggregator/pkg/types"

// Paginate returns jobs[start-1 : start-1+limit], clipped to the list. A
// start past the end yields an empty page.
func Paginate(jobs []types.JobPosting, w types.Window) []types.JobPosting {
	if !w.Valid() || w.Start > len(jobs) {
		return []types.JobPosting{}
	}
	from := w.Start - 1
	to := min(from+w.Limit, len(jobs))
	return jobs[from:to]
}

// HasMore guesses whether another page exists: a full page suggests so.
// The guess costs at most one extra, empty request at the end of a listing.
func HasMore(page []types.JobPosting, w types.Window) bool {
	return w.Limit > 0 && len(page) == w.Limit
}
