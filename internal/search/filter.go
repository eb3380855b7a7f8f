// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"regexp"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

// Criteria holds the optional filter dimensions. An empty set passes
// every posting through for that dimension.
type Criteria struct {
	ExperienceLevels []types.ExperienceLevel
	CompanySizes     []types.CompanySize
}

// IsEmpty reports whether no dimension is constrained.
func (c Criteria) IsEmpty() bool {
	return len(c.ExperienceLevels) == 0 && len(c.CompanySizes) == 0
}

// Filter keeps the postings that satisfy every constrained dimension.
// Classification uses the posting's own tag, falling back to keyword rules.
// Postings that cannot be classified are kept. Input order is preserved.
func Filter(jobs []types.JobPosting, c Criteria) []types.JobPosting {
	if c.IsEmpty() {
		return jobs
	}

	levels := make(map[types.ExperienceLevel]bool, len(c.ExperienceLevels))
	for _, l := range c.ExperienceLevels {
		levels[l] = true
	}
	sizes := make(map[types.CompanySize]bool, len(c.CompanySizes))
	for _, s := range c.CompanySizes {
		sizes[s] = true
	}

	out := make([]types.JobPosting, 0, len(jobs))
	for _, j := range jobs {
		if len(levels) > 0 {
			if l := ClassifyExperience(j); l != "" && !levels[l] {
				continue
			}
		}
		if len(sizes) > 0 {
			if s := ClassifyCompanySize(j); s != "" && !sizes[s] {
				continue
			}
		}
		out = append(out, j)
	}
	return out
}

type experienceRule struct {
	level types.ExperienceLevel
	re    *regexp.Regexp
}

// experienceRules are tried in order; the first match wins. Internship is
// checked before seniority so "Senior Intern" stays an internship.
var experienceRules = []experienceRule{
	{types.ExperienceInternship, regexp.MustCompile(`(?i)\bintern(ship)?s?\b`)},
	{types.ExperienceExecutive, regexp.MustCompile(`(?i)\b(director|vp|vice president|head of|chief|cto|ceo|cio)\b`)},
	{types.ExperienceLead, regexp.MustCompile(`(?i)\b(lead|principal|staff|manager)\b`)},
	{types.ExperienceSenior, regexp.MustCompile(`(?i)\b(senior|sr)\b`)},
	{types.ExperienceAssociate, regexp.MustCompile(`(?i)\bassociate\b`)},
	{types.ExperienceFresher, regexp.MustCompile(`(?i)\b(freshers?|graduate|entry[- ]level|junior|jr)\b`)},
}

type sizeRule struct {
	size types.CompanySize
	re   *regexp.Regexp
}

var companySizeRules = []sizeRule{
	{types.CompanyMNC, regexp.MustCompile(`(?i)\b(mnc|multinational|multi-national)\b`)},
	{types.CompanyStartup, regexp.MustCompile(`(?i)\bstart-?ups?\b`)},
	{types.CompanyLarge, regexp.MustCompile(`(?i)\b(large company|enterprise|fortune 500)\b`)},
	{types.CompanyMidSize, regexp.MustCompile(`(?i)\b(mid-?size|medium-sized|mid-market)\b`)},
	{types.CompanySmall, regexp.MustCompile(`(?i)\b(small company|small business|small team)\b`)},
}

// ClassifyExperience returns the posting's experience level: its tag when
// set, otherwise the first keyword rule matching the title, then the
// description. "" means unclassifiable.
func ClassifyExperience(j types.JobPosting) types.ExperienceLevel {
	if j.ExperienceLevel.Valid() {
		return j.ExperienceLevel
	}
	for _, text := range []string{j.Title, j.Description} {
		for _, r := range experienceRules {
			if r.re.MatchString(text) {
				return r.level
			}
		}
	}
	return ""
}

// ClassifyCompanySize returns the posting's company size: its tag when set,
// otherwise the first keyword rule matching company, title, then
// description. "" means unclassifiable.
func ClassifyCompanySize(j types.JobPosting) types.CompanySize {
	if j.CompanySize.Valid() {
		return j.CompanySize
	}
	for _, text := range []string{j.Company, j.Title, j.Description} {
		for _, r := range companySizeRules {
			if r.re.MatchString(text) {
				return r.size
			}
		}
	}
	return ""
}
