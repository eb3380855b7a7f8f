// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/job-aggregator/internal/metrics"
	"github.com/pdiddy/job-aggregator/internal/search"
	"github.com/pdiddy/job-aggregator/internal/source"
	"github.com/pdiddy/job-aggregator/internal/suggest"
	"github.com/pdiddy/job-aggregator/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type listAdapter struct {
	platform types.Platform
	postings []types.JobPosting
}

func (a listAdapter) Platform() types.Platform { return a.platform }

func (a listAdapter) Fetch(_ context.Context, _ source.Query, w types.Window) source.Result {
	from := min(w.Start-1, len(a.postings))
	to := min(from+w.Limit, len(a.postings))
	return source.Success(a.platform, a.postings[from:to], 0)
}

func jobs(p types.Platform, n int) []types.JobPosting {
	out := make([]types.JobPosting, n)
	for i := range out {
		url := fmt.Sprintf("https://%s.example/jobs/%d", strings.ToLower(string(p)), i+1)
		out[i] = types.JobPosting{Title: fmt.Sprintf("Job %d", i+1), Company: "Acme", URL: url, Source: p}
	}
	return out
}

func newServer(t *testing.T, adapters ...source.Adapter) (*Server, *prometheus.Registry) {
	t.Helper()
	reg, err := source.NewRegistry(adapters...)
	require.NoError(t, err)
	sg, err := suggest.New()
	require.NoError(t, err)
	promReg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(promReg)

	return &Server{
		Engine:    search.NewEngine(reg, nil, types.SearchConfig{}, types.SnapshotConfig{}, nil, rec),
		Suggester: sg,
		Gatherer:  promReg,
	}, promReg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestSearchFirstPage(t *testing.T) {
	s, _ := newServer(t, listAdapter{types.PlatformIndeed, jobs(types.PlatformIndeed, 15)})
	w := do(t, s.Router(), http.MethodPost, "/search", `{"query":"go","limit":10}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got []types.JobPosting
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 10)
	assert.Equal(t, "Job 1", got[0].Title)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, "true", w.Header().Get(HeaderHasMore))
	assert.Equal(t, "11", w.Header().Get(HeaderNextStart))
}

func TestSearchLastPage(t *testing.T) {
	s, _ := newServer(t, listAdapter{types.PlatformIndeed, jobs(types.PlatformIndeed, 15)})
	w := do(t, s.Router(), http.MethodPost, "/search", `{"query":"go","start":11,"limit":10}`)

	require.Equal(t, http.StatusOK, w.Code)
	var got []types.JobPosting
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 5)
	assert.Equal(t, "false", w.Header().Get(HeaderHasMore))
	assert.Empty(t, w.Header().Get(HeaderNextStart))
}

func TestSearchEmptyIsArray(t *testing.T) {
	s, _ := newServer(t, listAdapter{platform: types.PlatformIndeed})

	for _, body := range []string{`{"query":"go"}`, `{"query":"   "}`, `{"query":"go","start":40}`} {
		w := do(t, s.Router(), http.MethodPost, "/search", body)
		require.Equal(t, http.StatusOK, w.Code, body)
		assert.JSONEq(t, `[]`, w.Body.String(), body)
	}
}

func TestSearchValidation(t *testing.T) {
	s, promReg := newServer(t, listAdapter{types.PlatformIndeed, jobs(types.PlatformIndeed, 3)})
	router := s.Router()

	tests := []struct {
		name, body, wantErr string
	}{
		{"negative start", `{"query":"go","start":-1}`, "Start"},
		{"limit too large", `{"query":"go","limit":51}`, "limit"},
		{"bad experience", `{"query":"go","experience_level":["Guru"]}`, "experience level"},
		{"bad company size", `{"query":"go","company_size":["Huge"]}`, "company size"},
		{"bad platform", `{"query":"go","platforms":["Monster"]}`, "platform"},
		{"malformed json", `{"query":`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantErr)
		})
	}

	// Only the engine-level rejection reaches the metrics.
	families, err := promReg.Gather()
	require.NoError(t, err)
	var invalid float64
	for _, mf := range families {
		if mf.GetName() != "jobsearch_searches_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			invalid += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), invalid)
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, registerValidators())
	require.NoError(t, registerValidators(), "a second call reports the first result")
}

func TestSearchAcceptsKnownEnums(t *testing.T) {
	s, _ := newServer(t,
		listAdapter{types.PlatformIndeed, jobs(types.PlatformIndeed, 3)},
		listAdapter{types.PlatformAdzuna, jobs(types.PlatformAdzuna, 3)})

	body := `{"query":"go","platforms":["indeed"],"experience_level":["Senior"],"company_size":["Startup"]}`
	w := do(t, s.Router(), http.MethodPost, "/search", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []types.JobPosting
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	for _, j := range got {
		assert.Equal(t, types.PlatformIndeed, j.Source)
	}

	w = do(t, s.Router(), http.MethodPost, "/search", `{"query":"go","platforms":["All"]}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestPlatforms(t *testing.T) {
	s, _ := newServer(t,
		listAdapter{platform: types.PlatformLinkedIn},
		listAdapter{platform: types.PlatformAdzuna},
		listAdapter{platform: types.PlatformDemo})
	w := do(t, s.Router(), http.MethodGet, "/platforms", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["LinkedIn","Adzuna","Demo"]`, w.Body.String())
}

func TestSuggestions(t *testing.T) {
	s, _ := newServer(t, listAdapter{platform: types.PlatformDemo})
	router := s.Router()

	w := do(t, router, http.MethodGet, "/suggestions?type=skill&query=python", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Python"]`, w.Body.String())

	w = do(t, router, http.MethodGet, "/suggestions?type=hobby&query=x", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, router, http.MethodGet, "/suggestions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newServer(t, listAdapter{types.PlatformDemo, jobs(types.PlatformDemo, 2)})
	router := s.Router()

	w := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	do(t, router, http.MethodPost, "/search", `{"query":"go"}`)
	w = do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `jobsearch_searches_total{outcome="results"} 1`)
	assert.Contains(t, w.Body.String(), `jobsearch_adapter_results_total{platform="Demo",status="ok"} 1`)
}

func TestCORSExposesPagingHeaders(t *testing.T) {
	s, _ := newServer(t, listAdapter{types.PlatformDemo, jobs(types.PlatformDemo, 2)})
	s.CORSOrigins = []string{"https://app.example"}

	r := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString(`{"query":"go"}`))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), HeaderHasMore)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s, _ := newServer(t, listAdapter{platform: types.PlatformDemo})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
