package s2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/reference"
	"github.com/matsen/doifind/internal/search"
)

const (
	// BaseURL is the Semantic Scholar Academic Graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// SourceName identifies Semantic Scholar in candidates and errors.
	SourceName = "s2"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 1 request per second for keyed access.
	RateLimit = 1.0

	// SearchFields are the paper fields requested from search.
	SearchFields = "title,authors,year,venue,externalIds"
)

// Client is a rate-limited HTTP client for Semantic Scholar paper search.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithRateLimit sets the maximum requests per second. Zero or negative
// disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new Semantic Scholar client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a relevance search on the title, restricted to within one
// year of the record's year when known.
func (c *Client) Search(ctx context.Context, p query.Params) ([]reference.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, search.Classify(SourceName, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(p), nil)
	if err != nil {
		return nil, &search.Error{Kind: search.Permanent, Source: SourceName, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, search.Classify(SourceName, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if ctx.Err() != nil {
			return nil, search.Classify(SourceName, ctx.Err())
		}
		return nil, &search.Error{Kind: search.Permanent, Source: SourceName, Err: fmt.Errorf("decoding response: %w", err)}
	}

	cands := make([]reference.Candidate, 0, len(result.Data))
	for _, paper := range result.Data {
		cands = append(cands, MapPaper(paper))
	}
	return cands, nil
}

func (c *Client) searchURL(p query.Params) string {
	v := url.Values{}
	v.Set("query", p.Title)
	v.Set("fields", SearchFields)
	limit := p.Rows
	if limit < 1 {
		limit = query.DefaultRows
	}
	v.Set("limit", strconv.Itoa(limit))
	if p.HasYear() {
		v.Set("year", fmt.Sprintf("%d-%d", p.Year-1, p.Year+1))
	}
	return c.baseURL + "/paper/search?" + v.Encode()
}

// checkHTTPErrors returns a classified error if the HTTP response indicates
// a problem. The API's error message is kept when present.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := string(body)
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			msg = errResp.Message
		} else if errResp.Error != "" {
			msg = errResp.Error
		}
	}
	return search.StatusError(SourceName, resp.StatusCode, msg)
}
