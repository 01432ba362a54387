package stack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/e64/stackgraph/internal/config"
)

const (
	// contentFilter includes body_markdown, answers and owner fields in
	// question records.
	contentFilter = "!*236eb_eL9rai)MOSNZ-6D3Q6ZKb0buI*IVotWaTb"
	// highScoreFilter is the wider filter used for the top-voted import.
	highScoreFilter = "!.DK56VBPooplF.)bWW5iOX32Fh1lcCkw1b_Y6Zkb7YD8.ZMhrR5.FRRsR6Z1uK8*Z5wPaONvyII"
	// highScoreFromDate bounds the top-voted import (epoch seconds).
	highScoreFromDate = 1664150400
)

// Client fetches question pages from the Stack Exchange API.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

func NewClient(cfg config.StackConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchPage fetches one page of questions for a tag, newest first,
// restricted to questions that have at least one answer.
func (c *Client) FetchPage(ctx context.Context, tag string, page int) (*Batch, error) {
	params := url.Values{}
	params.Set("pagesize", strconv.Itoa(c.pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("order", "desc")
	params.Set("sort", "creation")
	params.Set("answers", "1")
	params.Set("tagged", tag)
	params.Set("site", "stackoverflow")
	params.Set("filter", contentFilter)
	return c.fetch(ctx, params)
}

// FetchHighScore fetches the top-voted questions since highScoreFromDate.
func (c *Client) FetchHighScore(ctx context.Context) (*Batch, error) {
	params := url.Values{}
	params.Set("fromdate", strconv.Itoa(highScoreFromDate))
	params.Set("order", "desc")
	params.Set("sort", "votes")
	params.Set("site", "stackoverflow")
	params.Set("filter", highScoreFilter)
	return c.fetch(ctx, params)
}

func (c *Client) fetch(ctx context.Context, params url.Values) (*Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stackexchange API error (status %d): %s", resp.StatusCode, string(body))
	}

	var batch Batch
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &batch, nil
}
