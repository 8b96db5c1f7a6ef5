package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Status classifies a completed fetch.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusRetry
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not-found"
	case StatusRetry:
		return "rate-limited-retry"
	default:
		return "transport-error"
	}
}

// Request describes one document to fetch.
type Request struct {
	URL     string
	Method  string
	Params  url.Values
	Headers http.Header
	Cookie  string
}

// NewRequest is shorthand for a GET request.
func NewRequest(rawURL string) *Request {
	return &Request{URL: rawURL, Method: http.MethodGet}
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Origin returns the host the shared rate gate keys on.
func (r *Request) Origin() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	return u.Host
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s", r.method(), r.URL)
}

// Clone returns a shallow copy safe to mutate.
func (r *Request) Clone() *Request {
	cp := *r
	return &cp
}

// Response is the outcome of one fetch. Body is present only when
// Status is StatusOK.
type Response struct {
	Status     Status
	StatusCode int
	Body       []byte
	Header     http.Header
}

type Fetcher interface {
	Fetch(ctx context.Context, req *Request) (*Response, error)
}

func classify(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return StatusOK
	case code == http.StatusNotFound || code == http.StatusGone:
		return StatusNotFound
	case code == http.StatusTooManyRequests:
		return StatusRetry
	default:
		return StatusTransportError
	}
}
