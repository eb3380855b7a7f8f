// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

func TestBuildCustomSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"text only", Query{Text: "golang"}, "golang jobs"},
		{"with location", Query{Text: "golang", Location: "Berlin"}, "golang jobs Berlin"},
		{
			"levels and sizes",
			Query{
				Text:             "golang",
				ExperienceLevels: []types.ExperienceLevel{types.ExperienceFresher, types.ExperienceAssociate},
				CompanySizes:     []types.CompanySize{types.CompanyStartup, types.CompanyMNC},
			},
			"golang jobs (Fresher OR Associate) (Startup OR MNC)",
		},
		{"blank", Query{Text: "   "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildCustomSearchQuery(tt.query))
		})
	}
}

func TestSplitResultTitle(t *testing.T) {
	tests := []struct {
		raw                     string
		title, company, location string
	}{
		{"Go Engineer - Acme", "Go Engineer", "Acme", ""},
		{"Go Engineer | Acme", "Go Engineer", "Acme", ""},
		{"Senior - Go - Engineer - Acme", "Senior - Go - Engineer", "Acme", ""},
		{"Acme hiring Go Engineer in Berlin, Germany", "Go Engineer", "Acme", "Berlin, Germany"},
		{"Acme hiring Go Engineer", "Go Engineer", "Acme", ""},
		{"Go Engineer", "Go Engineer", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			title, company, location := splitResultTitle(tt.raw)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.company, company)
			assert.Equal(t, tt.location, location)
		})
	}
}

func TestTrimSiteSuffix(t *testing.T) {
	assert.Equal(t, "Acme hiring Go Engineer", trimSiteSuffix("Acme hiring Go Engineer | LinkedIn"))
	assert.Equal(t, "Go Engineer - Acme", trimSiteSuffix("Go Engineer - Acme - Indeed.com"))
	assert.Equal(t, "Go Engineer", trimSiteSuffix("Go Engineer"))
}

func TestSplitRelativeDate(t *testing.T) {
	posted, rest := splitRelativeDate("3 days ago ... Build services in Go.")
	assert.Equal(t, "3 days ago", posted)
	assert.Equal(t, "Build services in Go.", rest)

	posted, rest = splitRelativeDate("Build services in Go.")
	assert.Empty(t, posted)
	assert.Equal(t, "Build services in Go.", rest)
}

// customSearchServer serves total numbered results, honoring start/num, and
// records every query string it sees.
type customSearchServer struct {
	total int

	mu      sync.Mutex
	queries []map[string]string
}

func (s *customSearchServer) handler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	s.queries = append(s.queries, map[string]string{
		"start":            q.Get("start"),
		"num":              q.Get("num"),
		"q":                q.Get("q"),
		"siteSearch":       q.Get("siteSearch"),
		"siteSearchFilter": q.Get("siteSearchFilter"),
		"key":              q.Get("key"),
		"apiKeyHeader":     r.Header.Get("X-goog-api-key"),
		"cx":               q.Get("cx"),
	})
	s.mu.Unlock()

	start, _ := strconv.Atoi(q.Get("start"))
	num, _ := strconv.Atoi(q.Get("num"))
	var items []customSearchItem
	for i := start; i < start+num && i <= s.total; i++ {
		items = append(items, customSearchItem{
			Title:   fmt.Sprintf("Engineer %d - Company %d", i, i),
			Link:    fmt.Sprintf("https://jobs.example.com/%d", i),
			Snippet: "2 days ago ... Go role",
		})
	}
	writeItems(w, items)
}

// writeItems encodes items as a Custom Search response body.
func writeItems(w http.ResponseWriter, items []customSearchItem) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]customSearchItem{"items": items})
}

func withCustomSearchServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := customSearchBase
	customSearchBase = ts.URL
	t.Cleanup(func() { customSearchBase = old })
}

func testCustomSearch() *CustomSearch {
	return NewCustomSearch(http.DefaultClient,
		types.CustomSearchConfig{APIKey: "k", EngineID: "cx"},
		types.HTTPConfig{UserAgent: "jobsearch-test"}, nil)
}

func TestCustomSearchFetchPagesWindow(t *testing.T) {
	srv := &customSearchServer{total: 100}
	withCustomSearchServer(t, srv.handler)

	res := testCustomSearch().Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 1, Limit: 25})

	require.Equal(t, StatusOK, res.Status, "err: %v", res.Err)
	require.Len(t, res.Postings, 25)
	assert.Equal(t, "Engineer 1", res.Postings[0].Title)
	assert.Equal(t, "Company 1", res.Postings[0].Company)
	assert.Equal(t, "2 days ago", res.Postings[0].PostedDate)
	assert.Equal(t, "Go role", res.Postings[0].Description)
	assert.Equal(t, types.PlatformGoogle, res.Postings[0].Source)
	assert.NotEmpty(t, res.Postings[0].ID)
	assert.Equal(t, "Engineer 25", res.Postings[24].Title)

	require.Len(t, srv.queries, 3)
	assert.Equal(t, []string{"1", "11", "21"}, []string{srv.queries[0]["start"], srv.queries[1]["start"], srv.queries[2]["start"]})
	assert.Equal(t, []string{"10", "10", "5"}, []string{srv.queries[0]["num"], srv.queries[1]["num"], srv.queries[2]["num"]})
	assert.Equal(t, "go jobs", srv.queries[0]["q"])
	assert.Empty(t, srv.queries[0]["key"])
	assert.Equal(t, "k", srv.queries[0]["apiKeyHeader"])
	assert.Equal(t, "cx", srv.queries[0]["cx"])
	assert.Empty(t, srv.queries[0]["siteSearch"])
}

func TestCustomSearchStopsOnShortPage(t *testing.T) {
	srv := &customSearchServer{total: 13}
	withCustomSearchServer(t, srv.handler)

	res := testCustomSearch().Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 1, Limit: 50})

	assert.Len(t, res.Postings, 13)
	assert.Len(t, srv.queries, 2)
}

func TestCustomSearchCapsAtUpstreamDepth(t *testing.T) {
	srv := &customSearchServer{total: 500}
	withCustomSearchServer(t, srv.handler)

	res := testCustomSearch().Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 91, Limit: 50})
	assert.Len(t, res.Postings, 10)

	res = testCustomSearch().Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 101, Limit: 10})
	assert.Equal(t, StatusEmpty, res.Status)
}

func TestSiteSearchRestrictsDomain(t *testing.T) {
	srv := &customSearchServer{total: 5}
	withCustomSearchServer(t, srv.handler)

	cs, err := NewSiteSearch(types.PlatformLinkedIn, http.DefaultClient,
		types.CustomSearchConfig{APIKey: "k", EngineID: "cx"}, types.HTTPConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.PlatformLinkedIn, cs.Platform())

	res := cs.Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 1, Limit: 10})
	require.Len(t, res.Postings, 5)
	assert.Equal(t, types.PlatformLinkedIn, res.Postings[0].Source)
	assert.Equal(t, "linkedin.com", srv.queries[0]["siteSearch"])
	assert.Equal(t, "i", srv.queries[0]["siteSearchFilter"])
}

func TestNewSiteSearchRejectsNonBoard(t *testing.T) {
	_, err := NewSiteSearch(types.PlatformAdzuna, http.DefaultClient, types.CustomSearchConfig{}, types.HTTPConfig{}, nil)
	assert.Error(t, err)
}

func TestCustomSearchSkipsMalformedItems(t *testing.T) {
	withCustomSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeItems(w, []customSearchItem{
			{Title: "Go Engineer - Acme", Link: "https://acme.example.com/1"},
			{Title: "No link"},
			{Title: "Relative link", Link: "/jobs/2"},
			{Title: "", Link: "https://acme.example.com/3"},
			{
				Title: "Go Engineer",
				Link:  "https://acme.example.com/4",
				Pagemap: customSearchPagemap{Metatags: []map[string]string{
					{"article:published_time": "2026-10-01T09:00:00Z"},
				}},
			},
		})
	})

	res := testCustomSearch().Fetch(context.Background(), Query{Text: "go", Location: "Berlin"}, types.Window{Start: 1, Limit: 10})

	require.Len(t, res.Postings, 2)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, "Berlin", res.Postings[0].Location)
	assert.Equal(t, unknownCompany, res.Postings[1].Company)
	assert.Equal(t, "2026-10-01T09:00:00Z", res.Postings[1].PostedDate)
}

func TestCustomSearchErrors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		withCustomSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		res := testCustomSearch().Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 1, Limit: 10})
		assert.Equal(t, StatusError, res.Status)
		assert.Contains(t, res.Err.Error(), "403")
	})

	t.Run("malformed json", func(t *testing.T) {
		withCustomSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		})
		res := testCustomSearch().Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 1, Limit: 10})
		assert.Equal(t, StatusError, res.Status)
	})

	t.Run("deadline", func(t *testing.T) {
		withCustomSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		res := testCustomSearch().Fetch(ctx, Query{Text: "go"}, types.Window{Start: 1, Limit: 10})
		assert.Equal(t, StatusTimeout, res.Status)
	})

	t.Run("empty query", func(t *testing.T) {
		res := testCustomSearch().Fetch(context.Background(), Query{}, types.Window{Start: 1, Limit: 10})
		assert.Equal(t, StatusError, res.Status)
	})
}

func TestCustomSearchSkipsUndecodableItem(t *testing.T) {
	withCustomSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[
			{"title":"Go Engineer - Acme","link":"https://acme.example.com/1"},
			{"title":"Bad pagemap - Acme","link":"https://acme.example.com/2","pagemap":{"metatags":"n/a"}},
			{"title":"Rust Engineer - Acme","link":"https://acme.example.com/3"}
		]}`)
	})

	res := testCustomSearch().Fetch(context.Background(), Query{Text: "go"}, types.Window{Start: 1, Limit: 10})

	require.Equal(t, StatusOK, res.Status, "err: %v", res.Err)
	require.Len(t, res.Postings, 2)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "Go Engineer", res.Postings[0].Title)
	assert.Equal(t, "Rust Engineer", res.Postings[1].Title)
}

func TestCustomSearchTimeoutKeepsKeyOutOfError(t *testing.T) {
	withCustomSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	cs := NewCustomSearch(http.DefaultClient,
		types.CustomSearchConfig{APIKey: "SECRET-GOOGLE-KEY", EngineID: "cx"}, types.HTTPConfig{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := cs.Fetch(ctx, Query{Text: "go"}, types.Window{Start: 1, Limit: 10})

	require.Equal(t, StatusTimeout, res.Status)
	require.Error(t, res.Err)
	assert.NotContains(t, res.Err.Error(), "SECRET-GOOGLE-KEY")
}
