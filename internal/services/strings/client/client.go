// Package client calls the strings HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
	"github.com/saulotoledo/strings-database/internal/platform/timeouts"
	"github.com/saulotoledo/strings-database/internal/services/strings/query"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const collectionPath = "/strings"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds each request; zero or negative leaves the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLanguage sets the Accept-Language sent with every request.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.lang = strings.TrimSpace(lang)
	}
}

// Client is a strings API client.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	lang       string
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout:    timeouts.ClientRequest,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SortOrder is one applied sort key as reported by the server.
type SortOrder struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// Page is one listing response.
type Page struct {
	Content          []query.Projection `json:"content"`
	Number           int                `json:"number"`
	Size             int                `json:"size"`
	Sort             []SortOrder        `json:"sort"`
	TotalElements    int64              `json:"totalElements"`
	TotalPages       int64              `json:"totalPages"`
	NumberOfElements int                `json:"numberOfElements"`
	First            bool               `json:"first"`
	Last             bool               `json:"last"`
	Empty            bool               `json:"empty"`
}

// ListOptions selects a listing page. A nil Filter lists every entry; Sort
// values use the "field[,asc|desc]" form.
type ListOptions struct {
	Filter  *string
	Page    int
	Size    int
	Sort    []string
	OrderBy string
}

// APIError is an error response from the server.
type APIError struct {
	Status  int
	Code    apperrors.Code
	Message string
	Field   string
	Rule    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d %s): %s", e.Code, e.Status, http.StatusText(e.Status), e.Message)
}

// Unwrap exposes the code as a platform error so errors.CodeOf works.
func (e *APIError) Unwrap() error {
	return apperrors.WithMetadata(e.Code, e.Message, map[string]string{"field": e.Field, "rule": e.Rule})
}

// IsNotFound reports whether err is a NOT_FOUND API error.
func IsNotFound(err error) bool {
	return apperrors.CodeOf(err) == apperrors.CodeNotFound
}

// Save stores value and returns the created entry.
func (c *Client) Save(ctx context.Context, value string) (query.Projection, error) {
	body, err := json.Marshal(query.SaveRequest{Value: value})
	if err != nil {
		return query.Projection{}, fmt.Errorf("encode save request: %w", err)
	}
	var out query.Projection
	if err := c.do(ctx, http.MethodPost, collectionPath, nil, body, http.StatusCreated, &out); err != nil {
		return query.Projection{}, err
	}
	return out, nil
}

// Get returns the entry with id.
func (c *Client) Get(ctx context.Context, id int64) (query.Projection, error) {
	var out query.Projection
	path := collectionPath + "/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, http.StatusOK, &out); err != nil {
		return query.Projection{}, err
	}
	return out, nil
}

// List returns one page of entries.
func (c *Client) List(ctx context.Context, opts ListOptions) (Page, error) {
	params := url.Values{}
	if opts.Filter != nil {
		params.Set("filter", *opts.Filter)
	}
	if opts.Page != 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Size != 0 {
		params.Set("size", strconv.Itoa(opts.Size))
	}
	for _, sort := range opts.Sort {
		params.Add("sort", sort)
	}
	if orderBy := strings.TrimSpace(opts.OrderBy); orderBy != "" {
		params.Set("order_by", orderBy)
	}

	var out Page
	if err := c.do(ctx, http.MethodGet, collectionPath, params, nil, http.StatusOK, &out); err != nil {
		return Page{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, want int, out any) error {
	target := *c.baseURL
	target.Path += path
	target.RawQuery = params.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Code: apperrors.CodeUnknown}
	var doc struct {
		Error string `json:"error"`
		Code  string `json:"code"`
		Field string `json:"field"`
		Rule  string `json:"rule"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &doc); err == nil && doc.Code != "" {
		apiErr.Code = apperrors.Code(doc.Code)
		apiErr.Message = doc.Error
		apiErr.Field = doc.Field
		apiErr.Rule = doc.Rule
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
