package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/webrenew/leadscout/internal/config"
	"github.com/webrenew/leadscout/internal/core"
	"github.com/webrenew/leadscout/internal/urlutil"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// Client queries the Google Custom Search JSON API. Junk results are tagged
// rather than dropped so callers can track the junk ratio.
type Client struct {
	cfg     config.SearchConfig
	baseURL string
	http    *http.Client
	filter  *urlutil.JunkFilter
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewClient(cfg config.SearchConfig, filter *urlutil.JunkFilter, logger *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		filter:  filter,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

// SetBaseURL points the client at an alternate endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

type cseResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Snippet     string `json:"snippet"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
}

// Search runs a query with optional region hint and pagination. Pagination
// stops early once the junk ratio crosses the configured threshold.
func (c *Client) Search(ctx context.Context, query, region string, maxPages int) ([]core.SearchResult, error) {
	if maxPages <= 0 {
		maxPages = c.cfg.MaxPages
	}

	var results []core.SearchResult
	junkCount, totalCount := 0, 0

	for page := 0; page < maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return results, err
		}

		startIndex := page*c.cfg.ResultsPerPage + 1
		items, err := c.fetchPage(ctx, query, region, startIndex)
		if err != nil {
			// A failed page ends pagination but keeps what we have.
			c.logger.Warn("search page failed",
				zap.String("query", query),
				zap.Int("page", page),
				zap.Error(err),
			)
			return results, err
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			totalCount++
			isJunk := c.filter.IsJunk(item.Link)
			if isJunk {
				junkCount++
			}
			result := core.SearchResult{
				Title:       item.Title,
				Link:        item.Link,
				Snippet:     item.Snippet,
				DisplayLink: item.DisplayLink,
				IsJunk:      isJunk,
			}
			if isJunk {
				result.RejectionReason = "junk_url"
			}
			results = append(results, result)
		}

		if totalCount > 0 {
			ratio := float64(junkCount) / float64(totalCount)
			if ratio >= c.cfg.JunkRatioThreshold {
				c.logger.Debug("stopping pagination on junk ratio",
					zap.String("query", query),
					zap.Float64("ratio", ratio),
				)
				break
			}
		}
	}

	return results, nil
}

func (c *Client) fetchPage(ctx context.Context, query, region string, startIndex int) ([]struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("cx", c.cfg.EngineID)
	params.Set("q", query)
	params.Set("start", strconv.Itoa(startIndex))
	params.Set("num", strconv.Itoa(c.cfg.ResultsPerPage))
	if region != "" {
		params.Set("gl", region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var parsed cseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return parsed.Items, nil
}
