package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
	"vct-survivor/internal/config"
	"vct-survivor/internal/metrics"

	"github.com/valyala/fasthttp"
)

// FeedClient polls an external results feed for match winners.
type FeedClient struct {
	url         string
	apiKey      string
	client      *fasthttp.Client
	metrics     *metrics.Metrics
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewFeedClient(cfg *config.Config, m *metrics.Metrics) *FeedClient {
	return &FeedClient{
		url:     cfg.ResultsFeedURL,
		apiKey:  cfg.ResultsFeedKey,
		metrics: m,
		client: &fasthttp.Client{
			MaxConnsPerHost:     4,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:     60,
			Remaining: 60,
			Reset:     60,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *FeedClient) Enabled() bool { return c.url != "" }

func (c *FeedClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *FeedClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
	c.metrics.FeedRateRemaining.Set(float64(c.rateLimit.Remaining))
}

func (c *FeedClient) FetchResults(ctx context.Context) ([]MatchResult, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("results feed is not configured")
	}
	resp, err := doRequest[ResultsResponse](ctx, c, c.url)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func doRequest[T any](ctx context.Context, client *FeedClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if client.apiKey != "" {
		req.Header.Set("Authorization", client.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("results feed error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode results feed: %w", err)
	}
	return &result, nil
}

type ResultsResponse struct {
	Status int           `json:"status"`
	Data   []MatchResult `json:"data"`
}

type MatchResult struct {
	MatchID string `json:"match_id"`
	Winner  string `json:"winner"`
}
