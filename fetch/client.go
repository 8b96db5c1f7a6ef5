package fetch

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/wenzapen/trowel/limiter"
	"github.com/wenzapen/trowel/version"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var defaultUserAgent = "trowel/" + version.Version

// Client is the default HTTP fetcher. It decodes the body to UTF-8,
// classifies the response status, honors the shared rate gate and
// retries rate-limited responses with backoff.
type Client struct {
	options
	cli *http.Client
}

func NewClient(opts ...ClientOption) *Client {
	options := defaultClientOptions
	for _, opt := range opts {
		opt(&options)
	}
	c := &Client{options: options}
	c.cli = &http.Client{
		Timeout: c.timeout,
	}
	if c.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = c.proxy
		c.cli.Transport = transport
	}
	return c
}

func (c *Client) Fetch(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.retryWait
			c.logger.Debug("retrying rate-limited fetch",
				zap.String("url", req.URL),
				zap.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		resp, err = c.fetchOnce(ctx, req)
		if err != nil || resp.Status != StatusRetry {
			return resp, err
		}
	}
	return resp, err
}

func (c *Client) fetchOnce(ctx context.Context, req *Request) (*Response, error) {
	if c.gate != nil {
		origin := req.Origin()
		if err := c.gate.Wait(ctx, origin); err != nil {
			return nil, err
		}
		defer c.gate.Done(origin)
	}
	if c.jitter > 0 {
		sleep := time.Duration(rand.Int63n(int64(c.jitter)))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	target := req.URL
	if len(req.Params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Params.Encode()
	}
	hreq, err := http.NewRequestWithContext(ctx, req.method(), target, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if req.Cookie != "" {
		hreq.Header.Set("Cookie", req.Cookie)
	}
	if hreq.Header.Get("User-Agent") == "" {
		hreq.Header.Set("User-Agent", c.userAgent)
	}

	hresp, err := c.cli.Do(hreq)
	if err != nil {
		return &Response{Status: StatusTransportError}, err
	}
	defer hresp.Body.Close()

	resp := &Response{
		Status:     classify(hresp.StatusCode),
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header,
	}
	if resp.Status != StatusOK {
		return resp, nil
	}

	bodyReader := bufio.NewReader(hresp.Body)
	e := determineEncoding(bodyReader)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())
	resp.Body, err = io.ReadAll(utf8Reader)
	if err != nil {
		return &Response{Status: StatusTransportError}, err
	}
	return resp, nil
}

func determineEncoding(r *bufio.Reader) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && len(bytes) == 0 {
		return unicode.UTF8
	}
	e, _, _ := charset.DetermineEncoding(bytes, "")
	return e
}

type options struct {
	timeout    time.Duration
	userAgent  string
	proxy      ProxyFunc
	gate       *limiter.Gate
	jitter     time.Duration
	maxRetries int
	retryWait  time.Duration
	logger     *zap.Logger
}

var defaultClientOptions = options{
	timeout:    30 * time.Second,
	userAgent:  defaultUserAgent,
	maxRetries: 2,
	retryWait:  time.Second,
	logger:     zap.NewNop(),
}

type ClientOption func(opts *options)

func WithTimeout(d time.Duration) ClientOption {
	return func(opts *options) {
		opts.timeout = d
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(opts *options) {
		opts.userAgent = ua
	}
}

func WithProxy(p ProxyFunc) ClientOption {
	return func(opts *options) {
		opts.proxy = p
	}
}

func WithGate(g *limiter.Gate) ClientOption {
	return func(opts *options) {
		opts.gate = g
	}
}

// WithJitter adds a random politeness delay before each request.
func WithJitter(max time.Duration) ClientOption {
	return func(opts *options) {
		opts.jitter = max
	}
}

func WithMaxRetries(n int) ClientOption {
	return func(opts *options) {
		opts.maxRetries = n
	}
}

func WithRetryWait(d time.Duration) ClientOption {
	return func(opts *options) {
		opts.retryWait = d
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(opts *options) {
		opts.logger = logger
	}
}
