// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the job-aggregator:
// postings, search requests, windows and configuration.
package types

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Platform names an upstream job source. Values double as the display
// string returned to clients in JobPosting.Source.
type Platform string

const (
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformIndeed    Platform = "Indeed"
	PlatformGlassdoor Platform = "Glassdoor"
	PlatformNaukri    Platform = "Naukri"
	PlatformAdzuna    Platform = "Adzuna"
	PlatformGoogle    Platform = "Google Search"
	PlatformDemo      Platform = "Demo"
)

// PlatformAll is the request sentinel that selects every registered adapter.
const PlatformAll = "All"

// KnownPlatforms lists every platform the binary knows how to build, in the
// default registration order.
var KnownPlatforms = []Platform{
	PlatformLinkedIn,
	PlatformIndeed,
	PlatformGlassdoor,
	PlatformNaukri,
	PlatformAdzuna,
	PlatformGoogle,
	PlatformDemo,
}

// ParsePlatform resolves a platform name case-insensitively. Unknown names
// are an error rather than a silent fallback.
func ParsePlatform(name string) (Platform, error) {
	name = strings.TrimSpace(name)
	for _, p := range KnownPlatforms {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", name)
}

// ExperienceLevel is a best-effort seniority class.
type ExperienceLevel string

const (
	ExperienceFresher    ExperienceLevel = "Fresher"
	ExperienceInternship ExperienceLevel = "Internship"
	ExperienceAssociate  ExperienceLevel = "Associate"
	ExperienceSenior     ExperienceLevel = "Senior"
	ExperienceLead       ExperienceLevel = "Lead"
	ExperienceExecutive  ExperienceLevel = "Executive"
)

// ExperienceLevels lists the valid experience levels.
var ExperienceLevels = []ExperienceLevel{
	ExperienceFresher, ExperienceInternship, ExperienceAssociate,
	ExperienceSenior, ExperienceLead, ExperienceExecutive,
}

// Valid reports whether e is one of ExperienceLevels.
func (e ExperienceLevel) Valid() bool {
	for _, v := range ExperienceLevels {
		if e == v {
			return true
		}
	}
	return false
}

// CompanySize is a best-effort employer size class.
type CompanySize string

const (
	CompanyStartup CompanySize = "Startup"
	CompanySmall   CompanySize = "Small"
	CompanyMidSize CompanySize = "Mid-size"
	CompanyLarge   CompanySize = "Large"
	CompanyMNC     CompanySize = "MNC"
)

// CompanySizes lists the valid company sizes.
var CompanySizes = []CompanySize{
	CompanyStartup, CompanySmall, CompanyMidSize, CompanyLarge, CompanyMNC,
}

// Valid reports whether c is one of CompanySizes.
func (c CompanySize) Valid() bool {
	for _, v := range CompanySizes {
		if c == v {
			return true
		}
	}
	return false
}

// JobPosting is the canonical unit of a search result. It is built inside a
// source adapter and treated as immutable afterwards.
type JobPosting struct {
	// ID is derived from (source, url), or (source, title, company) when
	// the posting has no URL. See PostingID.
	ID string `json:"id" yaml:"id"`

	Title   string `json:"title" yaml:"title"`
	Company string `json:"company" yaml:"company"`

	// Location is empty when the source did not say (often remote).
	Location string `json:"location" yaml:"location"`

	// Description may be a truncated snippet.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// URL is the absolute link to the listing.
	URL string `json:"url" yaml:"url"`

	Source Platform `json:"source" yaml:"source"`

	// PostedDate is a display string: "2006-01-02" for absolute dates, the
	// upstream text for relative ones ("3 days ago").
	PostedDate string `json:"posted_date,omitempty" yaml:"posted_date,omitempty"`

	// Salary is free text as reported upstream.
	Salary string `json:"salary,omitempty" yaml:"salary,omitempty"`

	// ExperienceLevel and CompanySize are optional tags set by adapters that
	// know them. Empty means untagged.
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty" yaml:"experience_level,omitempty"`
	CompanySize     CompanySize     `json:"company_size,omitempty" yaml:"company_size,omitempty"`
}

// postingNamespace scopes the name-based UUIDs used for posting IDs.
var postingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pdiddy/job-aggregator/posting"))

// PostingID returns the deterministic identifier for a posting. The URL is
// canonicalized first so trivially different links to the same listing
// collapse.
func PostingID(source Platform, rawURL, title, company string) string {
	var name string
	if u := CanonicalURL(rawURL); u != "" {
		name = string(source) + "\n" + u
	} else {
		name = string(source) + "\n" + strings.ToLower(strings.TrimSpace(title)) + "\n" + strings.ToLower(strings.TrimSpace(company))
	}
	return uuid.NewSHA1(postingNamespace, []byte(name)).String()
}

// CanonicalURL lower-cases scheme and host, drops the fragment, utm_*
// tracking parameters and a trailing slash. It returns "" for anything that
// is not an absolute http(s) URL.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// IsAbsoluteURL reports whether raw is an absolute http(s) URL.
func IsAbsoluteURL(raw string) bool {
	return CanonicalURL(raw) != ""
}

// Window addresses one page of the ordered result set. Start is 1-based.
type Window struct {
	Start int `json:"start"`
	Limit int `json:"limit"`
}

// End is the depth of the ordered list needed to serve the window.
func (w Window) End() int {
	return w.Start - 1 + w.Limit
}

// Valid reports whether both fields are positive.
func (w Window) Valid() bool {
	return w.Start >= 1 && w.Limit >= 1
}

// SearchRequest is one user search action: query, location, page window and
// filters. It is not modified after construction.
type SearchRequest struct {
	Query            string            `json:"query"`
	Location         string            `json:"location"`
	Start            int               `json:"start"`
	Limit            int               `json:"limit"`
	ExperienceLevels []ExperienceLevel `json:"experience_level"`
	Platforms        []string          `json:"platforms"`
	CompanySizes     []CompanySize     `json:"company_size"`
}

// Window returns the requested page.
func (r SearchRequest) Window() Window {
	return Window{Start: r.Start, Limit: r.Limit}
}

// IsBlank reports whether the query has no searchable text.
func (r SearchRequest) IsBlank() bool {
	return strings.TrimSpace(r.Query) == ""
}

// Signature identifies "the same search" across pages: query, location and
// filters, normalized, without the window.
func (r SearchRequest) Signature() string {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}

	all := strings.ToLower(PlatformAll)
	platforms := make([]string, 0, len(r.Platforms))
	for _, p := range r.Platforms {
		p = norm(p)
		if p == all {
			platforms = nil
			break
		}
		platforms = append(platforms, p)
	}
	// An empty list and any list naming All select the same adapters.
	if len(platforms) == 0 {
		platforms = []string{all}
	}
	levels := make([]string, 0, len(r.ExperienceLevels))
	for _, e := range r.ExperienceLevels {
		levels = append(levels, norm(string(e)))
	}
	sizes := make([]string, 0, len(r.CompanySizes))
	for _, c := range r.CompanySizes {
		sizes = append(sizes, norm(string(c)))
	}

	return strings.Join([]string{
		"q=" + norm(r.Query),
		"l=" + norm(r.Location),
		"p=" + joinSet(platforms),
		"e=" + joinSet(levels),
		"c=" + joinSet(sizes),
	}, "|")
}

// joinSet sorts and de-duplicates values before joining.
func joinSet(values []string) string {
	sort.Strings(values)
	out := values[:0]
	for _, v := range values {
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	return strings.Join(out, ",")
}
