// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/job-aggregator/internal/httputil"
	"github.com/pdiddy/job-aggregator/internal/logging"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

// adzunaAPIBase is the Adzuna jobs API. Declared as a var so tests can
// substitute an httptest server.
var adzunaAPIBase = "https://api.adzuna.com/v1/api/jobs"

const (
	adzunaPageSize = 50
	adzunaMaxPages = 10
)

// currencySymbols maps Adzuna country codes to the display currency.
var currencySymbols = map[string]string{
	"gb": "£", "us": "$", "ca": "C$", "au": "A$", "nz": "NZ$",
	"in": "₹", "sg": "S$", "za": "R",
	"de": "€", "fr": "€", "nl": "€", "it": "€", "es": "€", "at": "€", "be": "€",
	"pl": "zł", "br": "R$", "mx": "MX$", "ch": "CHF ",
}

// Adzuna searches the Adzuna public jobs API.
type Adzuna struct {
	Client     *http.Client
	AppID      string
	AppKey     string
	Country    string
	UserAgent  string
	MaxRetries int
	Logger     *zap.Logger
}

// NewAdzuna builds the Adzuna adapter. Country defaults to "gb".
func NewAdzuna(client *http.Client, cfg types.AdzunaConfig, httpCfg types.HTTPConfig, logger *zap.Logger) *Adzuna {
	country := strings.ToLower(strings.TrimSpace(cfg.Country))
	if country == "" {
		country = "gb"
	}
	return &Adzuna{
		Client:     client,
		AppID:      cfg.AppID,
		AppKey:     cfg.AppKey,
		Country:    country,
		UserAgent:  httpCfg.UserAgent,
		MaxRetries: httpCfg.MaxRetries,
		Logger:     logging.OrNop(logger),
	}
}

// Platform returns types.PlatformAdzuna.
func (a *Adzuna) Platform() types.Platform { return types.PlatformAdzuna }

// Fetch walks Adzuna's numbered pages, starting at the page that holds
// w.Start, until the window is full or a short page ends the listing.
func (a *Adzuna) Fetch(ctx context.Context, q Query, w types.Window) Result {
	what := strings.TrimSpace(q.Text)
	if what == "" {
		return Failure(types.PlatformAdzuna, fmt.Errorf("empty Adzuna query"))
	}

	page, skip := pageSpan(w.Start, adzunaPageSize)
	var postings []types.JobPosting
	skipped := 0

	for ; page <= adzunaMaxPages && len(postings) < w.Limit; page++ {
		results, err := a.fetchPage(ctx, what, strings.TrimSpace(q.Location), page)
		if err != nil {
			return Failure(types.PlatformAdzuna, err)
		}

		batch := results
		if skip > 0 {
			batch = results[min(skip, len(results)):]
			skip = 0
		}
		for _, raw := range batch {
			if len(postings) == w.Limit {
				break
			}
			var r adzunaResult
			if err := json.Unmarshal(raw, &r); err != nil {
				skipped++
				a.Logger.Debug("skipping undecodable Adzuna result", zap.Error(err))
				continue
			}
			p, ok := a.toPosting(r)
			if !ok {
				skipped++
				a.Logger.Debug("skipping malformed Adzuna result", zap.String("adzuna_id", r.ID))
				continue
			}
			postings = append(postings, p)
		}

		if len(results) < adzunaPageSize {
			break
		}
	}
	return Success(types.PlatformAdzuna, postings, skipped)
}

// fetchPage returns the raw records of one page. Records are decoded one at
// a time by the caller so a single bad record does not sink the page.
func (a *Adzuna) fetchPage(ctx context.Context, what, where string, page int) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", adzunaAPIBase, url.PathEscape(a.Country), page)

	params := url.Values{}
	params.Set("app_id", a.AppID)
	params.Set("app_key", a.AppKey)
	params.Set("what", what)
	if where != "" {
		params.Set("where", where)
	}
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("content-type", "application/json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if a.UserAgent != "" {
		req.Header.Set("User-Agent", a.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, a.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("Adzuna request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Adzuna returned HTTP %d", resp.StatusCode)
	}

	var ar adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("parsing Adzuna response: %w", err)
	}
	return ar.Results, nil
}

func (a *Adzuna) toPosting(r adzunaResult) (types.JobPosting, bool) {
	title := strings.TrimSpace(r.Title)
	if title == "" || !types.IsAbsoluteURL(r.RedirectURL) {
		return types.JobPosting{}, false
	}
	company := strings.TrimSpace(r.Company.DisplayName)
	return types.JobPosting{
		ID:          types.PostingID(types.PlatformAdzuna, r.RedirectURL, title, company),
		Title:       title,
		Company:     company,
		Location:    strings.TrimSpace(r.Location.DisplayName),
		Description: r.Description,
		URL:         r.RedirectURL,
		Source:      types.PlatformAdzuna,
		PostedDate:  r.Created,
		Salary:      formatSalary(r.SalaryMin, r.SalaryMax, r.SalaryIsPredicted.Bool(), currencySymbols[a.Country]),
	}, true
}

// formatSalary renders "£40,000 - £55,000", a single bound when the two
// agree, or "" when Adzuna gives neither.
func formatSalary(lo, hi float64, predicted bool, symbol string) string {
	var s string
	switch {
	case lo <= 0 && hi <= 0:
		return ""
	case lo <= 0 || lo == hi:
		s = symbol + thousands(max(lo, hi))
	case hi <= 0:
		s = symbol + thousands(lo)
	default:
		s = symbol + thousands(lo) + " - " + symbol + thousands(hi)
	}
	if predicted {
		s += " (estimated)"
	}
	return s
}

// thousands formats v rounded to a whole number with comma separators.
func thousands(v float64) string {
	digits := strconv.FormatInt(int64(v+0.5), 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// Adzuna JSON structures.
type adzunaResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

type adzunaResult struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Company           adzunaCompany  `json:"company"`
	Location          adzunaLocation `json:"location"`
	SalaryMin         float64        `json:"salary_min"`
	SalaryMax         float64        `json:"salary_max"`
	SalaryIsPredicted adzunaFlag     `json:"salary_is_predicted"`
	RedirectURL       string         `json:"redirect_url"`
	Created           string         `json:"created"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

// adzunaFlag accepts the API's "1"/"0" strings as well as numbers and booleans.
type adzunaFlag string

func (f *adzunaFlag) UnmarshalJSON(b []byte) error {
	*f = adzunaFlag(strings.Trim(string(b), `"`))
	return nil
}

// Bool reports whether the flag is set.
func (f adzunaFlag) Bool() bool {
	return f == "1" || f == "true"
}
