// Package crossref implements search.Searcher against the Crossref REST API.
package crossref

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
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// SourceName identifies Crossref in candidates and errors.
	SourceName = "crossref"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is the default request rate, well under the polite pool limit.
	RateLimit = 10.0

	// SelectFields limits the response to what matching needs.
	SelectFields = "DOI,title,author,issued,published-print,container-title"

	userAgent = "doifind/1.0"
)

// Client is a rate-limited HTTP client for Crossref works search.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

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

// WithMailto sets the contact address sent with requests, which routes them
// to Crossref's polite pool.
func WithMailto(mailto string) ClientOption {
	return func(c *Client) {
		c.mailto = mailto
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

// NewClient creates a new Crossref client.
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

// Search queries /works by title and first-author surname, filtered to
// within one year of the record's year when known.
func (c *Client) Search(ctx context.Context, p query.Params) ([]reference.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, search.Classify(SourceName, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.worksURL(p), nil)
	if err != nil {
		return nil, &search.Error{Kind: search.Permanent, Source: SourceName, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.mailto != "" {
		req.Header.Set("User-Agent", userAgent+" (mailto:"+c.mailto+")")
	} else {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, search.Classify(SourceName, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return nil, err
	}

	var works WorksResponse
	if err := json.NewDecoder(resp.Body).Decode(&works); err != nil {
		// A body cut off mid-read is a network failure; anything else is malformed.
		if ctx.Err() != nil {
			return nil, search.Classify(SourceName, ctx.Err())
		}
		return nil, &search.Error{Kind: search.Permanent, Source: SourceName, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if works.Status != "" && works.Status != "ok" {
		return nil, &search.Error{Kind: search.Permanent, Source: SourceName, Err: fmt.Errorf("unexpected status %q", works.Status)}
	}

	cands := make([]reference.Candidate, 0, len(works.Message.Items))
	for _, w := range works.Message.Items {
		cands = append(cands, MapWork(w))
	}
	return cands, nil
}

// worksURL builds the /works query URL. Venue and additional info are never
// sent.
func (c *Client) worksURL(p query.Params) string {
	v := url.Values{}
	v.Set("query.title", p.Title)
	if p.Author != "" {
		v.Set("query.author", p.Author)
	}
	if p.HasYear() {
		v.Set("filter", fmt.Sprintf("from-pub-date:%d,until-pub-date:%d", p.Year-1, p.Year+1))
	}
	rows := p.Rows
	if rows < 1 {
		rows = query.DefaultRows
	}
	v.Set("rows", strconv.Itoa(rows))
	v.Set("select", SelectFields)
	if c.mailto != "" {
		v.Set("mailto", c.mailto)
	}
	return c.baseURL + "/works?" + v.Encode()
}

// checkHTTPErrors returns a classified error if the HTTP response indicates
// a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return search.StatusError(SourceName, resp.StatusCode, string(body))
}
