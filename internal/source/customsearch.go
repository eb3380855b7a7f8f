// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/httputil"
	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// customSearchBase is the Google Custom Search JSON endpoint. Declared as a
// var so tests can substitute an httptest server.
var customSearchBase = "https://www.googleapis.com/customsearch/v1"

// unknownCompany stands in when a result title names no employer.
const unknownCompany = "Unknown"

const (
	// customSearchPageSize is the most results one request may return.
	customSearchPageSize = 10
	// customSearchMaxResults is the deepest position the API will serve.
	customSearchMaxResults = 100
)

// siteDomains restricts a Custom Search engine to one job board.
var siteDomains = map[types.Platform]string{
	types.PlatformLinkedIn:  "linkedin.com",
	types.PlatformIndeed:    "indeed.com",
	types.PlatformGlassdoor: "glassdoor.com",
	types.PlatformNaukri:    "naukri.com",
}

// companySizeTerms are the query phrases used to bias results toward a
// company size.
var companySizeTerms = map[types.CompanySize]string{
	types.CompanyStartup: "Startup",
	types.CompanySmall:   "Small company",
	types.CompanyMidSize: "Mid-size company",
	types.CompanyLarge:   "Large company",
	types.CompanyMNC:     "MNC",
}

// CustomSearch queries a Google Custom Search engine. With an empty Site it
// is the generic web aggregator; with a Site it serves one job board.
type CustomSearch struct {
	Client     *http.Client
	APIKey     string
	EngineID   string
	Site       string
	UserAgent  string
	MaxRetries int
	Logger     *zap.Logger

	platform types.Platform
}

// NewCustomSearch builds the generic Google Search adapter.
func NewCustomSearch(client *http.Client, cfg types.CustomSearchConfig, httpCfg types.HTTPConfig, logger *zap.Logger) *CustomSearch {
	return &CustomSearch{
		Client:     client,
		APIKey:     cfg.APIKey,
		EngineID:   cfg.EngineID,
		UserAgent:  httpCfg.UserAgent,
		MaxRetries: httpCfg.MaxRetries,
		Logger:     logging.OrNop(logger),
		platform:   types.PlatformGoogle,
	}
}

// NewSiteSearch builds an adapter for one job board reached through the
// Custom Search engine.
func NewSiteSearch(platform types.Platform, client *http.Client, cfg types.CustomSearchConfig, httpCfg types.HTTPConfig, logger *zap.Logger) (*CustomSearch, error) {
	site, ok := siteDomains[platform]
	if !ok {
		return nil, fmt.Errorf("no site domain for platform %q", platform)
	}
	cs := NewCustomSearch(client, cfg, httpCfg, logger)
	cs.Site = site
	cs.platform = platform
	return cs, nil
}

// Platform returns the platform this adapter serves.
func (c *CustomSearch) Platform() types.Platform { return c.platform }

// Fetch pages through the engine, ten results per request, until the window
// is filled, the engine runs dry, or the API's depth limit is reached.
func (c *CustomSearch) Fetch(ctx context.Context, q Query, w types.Window) Result {
	terms := buildCustomSearchQuery(q)
	if terms == "" {
		return Failure(c.platform, fmt.Errorf("empty Custom Search query"))
	}
	if w.Start > customSearchMaxResults {
		return Success(c.platform, nil, 0)
	}

	end := min(w.End(), customSearchMaxResults)
	var postings []types.JobPosting
	skipped := 0

	for start := w.Start; start <= end; {
		num := min(customSearchPageSize, end-start+1)
		items, err := c.fetchPage(ctx, terms, start, num)
		if err != nil {
			return Failure(c.platform, err)
		}

		for _, raw := range items {
			var item customSearchItem
			if err := json.Unmarshal(raw, &item); err != nil {
				skipped++
				c.Logger.Debug("skipping undecodable result",
					zap.String("platform", string(c.platform)),
					zap.Error(err))
				continue
			}
			p, ok := c.toPosting(item, q.Location)
			if !ok {
				skipped++
				c.Logger.Debug("skipping malformed result",
					zap.String("platform", string(c.platform)),
					zap.String("link", item.Link))
				continue
			}
			postings = append(postings, p)
		}

		if len(items) < num {
			break
		}
		start += num
	}
	return Success(c.platform, postings, skipped)
}

// fetchPage returns the raw items of one result page. The API key travels
// in the X-goog-api-key header so it never appears in a request URL.
func (c *CustomSearch) fetchPage(ctx context.Context, terms string, start, num int) ([]json.RawMessage, error) {
	params := url.Values{
		"cx":    {c.EngineID},
		"q":     {terms},
		"num":   {strconv.Itoa(num)},
		"start": {strconv.Itoa(start)},
	}
	if c.Site != "" {
		params.Set("siteSearch", c.Site)
		params.Set("siteSearchFilter", "i")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, customSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-goog-api-key", c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Custom Search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Custom Search returned HTTP %d", resp.StatusCode)
	}

	var csr customSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&csr); err != nil {
		return nil, fmt.Errorf("parsing Custom Search response: %w", err)
	}
	return csr.Items, nil
}

// toPosting maps one search hit. Hits without an absolute link or a title
// are rejected.
func (c *CustomSearch) toPosting(item customSearchItem, location string) (types.JobPosting, bool) {
	if !types.IsAbsoluteURL(item.Link) {
		return types.JobPosting{}, false
	}

	title, company, loc := splitResultTitle(trimSiteSuffix(item.Title))
	if title == "" {
		return types.JobPosting{}, false
	}
	if company == "" {
		company = unknownCompany
	}
	if loc == "" {
		loc = location
	}

	posted, snippet := splitRelativeDate(item.Snippet)
	if d := item.Pagemap.postedDate(); d != "" {
		posted = d
	}

	return types.JobPosting{
		ID:          types.PostingID(c.platform, item.Link, title, company),
		Title:       title,
		Company:     company,
		Location:    loc,
		Description: snippet,
		URL:         item.Link,
		Source:      c.platform,
		PostedDate:  posted,
	}, true
}

// buildCustomSearchQuery builds "<text> jobs <location> (lvl OR lvl) (size OR size)".
func buildCustomSearchQuery(q Query) string {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return ""
	}
	parts := []string{text, "jobs"}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		parts = append(parts, loc)
	}
	if len(q.ExperienceLevels) > 0 {
		levels := make([]string, len(q.ExperienceLevels))
		for i, l := range q.ExperienceLevels {
			levels[i] = string(l)
		}
		parts = append(parts, "("+strings.Join(levels, " OR ")+")")
	}
	if len(q.CompanySizes) > 0 {
		var sizes []string
		for _, s := range q.CompanySizes {
			if term, ok := companySizeTerms[s]; ok {
				sizes = append(sizes, term)
			}
		}
		if len(sizes) > 0 {
			parts = append(parts, "("+strings.Join(sizes, " OR ")+")")
		}
	}
	return strings.Join(parts, " ")
}

var siteSuffix = regexp.MustCompile(`(?i)\s*[|\-–]\s*(linkedin|indeed(\.com)?|glassdoor|naukri(\.com)?)\s*$`)

// trimSiteSuffix removes trailing board branding such as " | LinkedIn".
func trimSiteSuffix(title string) string {
	return strings.TrimSpace(siteSuffix.ReplaceAllString(title, ""))
}

var hiringPattern = regexp.MustCompile(`^(.+?) hiring (.+?)(?: in (.+))?$`)

// splitResultTitle extracts title, company and location from a search hit
// title: "Acme hiring Go Engineer in Berlin", "Go Engineer - Acme" or
// "Go Engineer | Acme". Anything else is all title.
func splitResultTitle(raw string) (title, company, location string) {
	raw = strings.TrimSpace(raw)
	if m := hiringPattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[2]), strings.TrimSpace(m[1]), strings.TrimSpace(m[3])
	}
	for _, sep := range []string{" - ", " | "} {
		if i := strings.LastIndex(raw, sep); i > 0 {
			return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+len(sep):]), ""
		}
	}
	return raw, "", ""
}

var relativeDatePrefix = regexp.MustCompile(`(?i)^\s*((?:\d+\+?\s+(?:minute|hour|day|week|month)s?\s+ago)|just posted|today)\s*(?:\.\.\.|…|·|-)?\s*`)

// splitRelativeDate peels a leading "3 days ago ..." off a snippet.
func splitRelativeDate(snippet string) (posted, rest string) {
	m := relativeDatePrefix.FindStringSubmatchIndex(snippet)
	if m == nil {
		return "", snippet
	}
	return snippet[m[2]:m[3]], snippet[m[1]:]
}

// Custom Search JSON structures.
type customSearchResponse struct {
	Items []json.RawMessage `json:"items"`
}

type customSearchItem struct {
	Title   string              `json:"title"`
	Link    string              `json:"link"`
	Snippet string              `json:"snippet"`
	Pagemap customSearchPagemap `json:"pagemap"`
}

type customSearchPagemap struct {
	Metatags []map[string]string `json:"metatags"`
}

// postedDate returns the first publication timestamp found in the page's
// meta tags.
func (p customSearchPagemap) postedDate() string {
	keys := []string{"article:published_time", "og:published_time", "dateposted", "date"}
	for _, tags := range p.Metatags {
		for _, k := range keys {
			if v := strings.TrimSpace(tags[k]); v != "" {
				return v
			}
		}
	}
	return ""
}
