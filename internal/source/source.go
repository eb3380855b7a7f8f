// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source adapts external job platforms to the canonical
// types.JobPosting schema. Each Adapter is an isolated failure domain: it
// reports failure through its Result and never panics or blocks past the
// context deadline it is given.
package source

import (
	"context"
	"errors"
	"net"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

// Adapter fetches postings from one job platform. Implementations hold no
// mutable state shared between calls, so one value may serve concurrent
// fan-outs.
type Adapter interface {
	Platform() types.Platform
	Fetch(ctx context.Context, q Query, w types.Window) Result
}

// Query is the canonical search passed to every adapter.
type Query struct {
	Text     string
	Location string

	// ExperienceLevels and CompanySizes are narrowing hints an adapter may
	// fold into its upstream query. Filtering is still done downstream.
	ExperienceLevels []types.ExperienceLevel
	CompanySizes     []types.CompanySize
}

// Status classifies an adapter outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusEmpty   Status = "empty"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// Failed reports whether the status contributes no postings because of a failure.
func (s Status) Failed() bool {
	return s == StatusTimeout || s == StatusError
}

// Result is the outcome of one adapter invocation.
type Result struct {
	Platform types.Platform
	Postings []types.JobPosting
	Status   Status
	Err      error

	// Skipped counts malformed upstream records that were dropped.
	Skipped int
}

// Success builds an ok or empty result.
func Success(p types.Platform, postings []types.JobPosting, skipped int) Result {
	status := StatusOK
	if len(postings) == 0 {
		status = StatusEmpty
	}
	return Result{Platform: p, Postings: postings, Status: status, Skipped: skipped}
}

// Failure builds a timeout or error result from err.
func Failure(p types.Platform, err error) Result {
	status := StatusError
	if IsTimeout(err) {
		status = StatusTimeout
	}
	return Result{Platform: p, Status: status, Err: err}
}

// IsTimeout reports whether err was caused by a deadline rather than a
// hard failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// pageSpan translates a 1-based window start into a 1-based page number and
// the number of records to skip on that page.
func pageSpan(start, pageSize int) (page, skip int) {
	offset := start - 1
	return offset/pageSize + 1, offset % pageSize
}
