package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/duke-git/lancet/v2/netutil"
)

// Request is one outbound HTTP call. Body, when set, is sent as-is; callers
// are responsible for the Content-Type header.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the raw reply of a fetch. Adapters parse Body with their own
// typed parse functions.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Fetcher is the network capability the host injects into adapters. It
// performs exactly one HTTP round trip per call: no retry, no caching.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// Client is the production Fetcher, driving requests through netutil.
type Client struct {
	http *netutil.HttpClient
}

// NewClient creates a Client with netutil's default transport settings.
func NewClient() *Client {
	return &Client{http: netutil.NewHttpClient()}
}

// Fetch performs the request and reads the full body. A non-2xx status is
// not an error here; adapters decide what each status means.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	header := req.Header
	if header == nil {
		header = http.Header{}
	}

	hr := &netutil.HttpRequest{
		RawURL:  req.URL,
		Method:  req.Method,
		Headers: header,
		Body:    req.Body,
	}

	resp, err := c.http.SendRequest(hr)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", req.Method, req.URL, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Get issues a GET through f.
func Get(ctx context.Context, f Fetcher, url string, header http.Header) (*Response, error) {
	return f.Fetch(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
}

// PostJSON marshals body and issues a POST with a JSON content type.
func PostJSON(ctx context.Context, f Fetcher, url string, header http.Header, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return f.Fetch(ctx, Request{Method: http.MethodPost, URL: url, Header: header, Body: data})
}
