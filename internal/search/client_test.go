package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/urlutil"
)

func newTestClient(baseURL string) *Client {
	filter := urlutil.NewJunkFilter(config.ExcludeConfig{
		Hosts: []string{"yelp.com", "facebook.com", "yellowpages.com"},
	})
	c := NewClient(config.SearchConfig{
		APIKey:             "test-key",
		EngineID:           "test-cx",
		ResultsPerPage:     10,
		MaxPages:           3,
		JunkRatioThreshold: 0.4,
	}, filter, zap.NewNop())
	c.SetBaseURL(baseURL)
	return c
}

type fakeItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

func writeItems(w http.ResponseWriter, items []fakeItem) {
	json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
}

func TestSearchTagsJunkResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		if r.URL.Query().Get("start") != "1" {
			writeItems(w, nil)
			return
		}
		writeItems(w, []fakeItem{
			{Title: "Acme Dental", Link: "https://acmedental.com/"},
			{Title: "Yelp listing", Link: "https://www.yelp.com/biz/acme"},
		})
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL).Search(context.Background(), "dental brooklyn", "", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].IsJunk)
	assert.True(t, results[1].IsJunk)
	assert.Equal(t, "junk_url", results[1].RejectionReason)
}

func TestSearchStopsPaginationOnJunkRatio(t *testing.T) {
	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		// Half of every page is junk, at or beyond the 0.4 threshold.
		writeItems(w, []fakeItem{
			{Link: "https://real-site.com/"},
			{Link: "https://www.yelp.com/biz/x"},
		})
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL).Search(context.Background(), "q", "", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, pagesServed)
	assert.Len(t, results, 2)
}

func TestSearchPaginatesWhileClean(t *testing.T) {
	var starts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		starts = append(starts, start)
		if start == "21" {
			writeItems(w, nil)
			return
		}
		writeItems(w, []fakeItem{
			{Link: fmt.Sprintf("https://site-%s.com/", start)},
		})
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL).Search(context.Background(), "q", "", 3)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, []string{"1", "11", "21"}, starts)
}

func TestSearchRegionHint(t *testing.T) {
	var gl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gl = r.URL.Query().Get("gl")
		writeItems(w, nil)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "q", "us", 1)
	require.NoError(t, err)
	assert.Equal(t, "us", gl)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "q", "", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestQueryCatalog(t *testing.T) {
	m := NewQueryManager()

	all := m.All()
	assert.NotEmpty(t, all)

	hacked := m.ByCategory("hacked")
	assert.NotEmpty(t, hacked)
	for _, q := range hacked {
		assert.Equal(t, "hacked", q.Category)
	}

	assert.Empty(t, m.ByCategory("no_such_category"))

	m.AddCustomQuery("dentist near me", "custom probe", "custom")
	assert.Len(t, m.ByCategory("custom"), 1)
}

func TestIntentQueries(t *testing.T) {
	queries := IntentQueries([]string{"brooklyn", "queens"}, []string{"dentist"})
	// Four templates per area and vertical pair.
	assert.Len(t, queries, 8)
	for _, q := range queries {
		assert.NotEmpty(t, q.Query)
		assert.Equal(t, "seo_opportunity", q.Category)
	}
}
