package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	var flaky atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>hello</body></html>"))
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.UserAgent() + "|" + r.URL.Query().Get("q")))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		if flaky.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok now"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetchOK(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient()
	resp, err := c.Fetch(context.Background(), NewRequest(srv.URL+"/ok"))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "hello")
}

func TestClientClassifiesNotFound(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient()
	resp, err := c.Fetch(context.Background(), NewRequest(srv.URL+"/missing"))
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestClientTransportError(t *testing.T) {
	c := NewClient(WithTimeout(200 * time.Millisecond))
	resp, err := c.Fetch(context.Background(), NewRequest("http://127.0.0.1:1/nope"))
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, StatusTransportError, resp.Status)
}

func TestClientParamsAndUserAgent(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(WithUserAgent("trowel-test"))
	req := NewRequest(srv.URL + "/echo")
	req.Params = url.Values{"q": []string{"books"}}
	resp, err := c.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "trowel-test|books", string(resp.Body))
}

func TestClientRetriesRateLimited(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(WithMaxRetries(2), WithRetryWait(10*time.Millisecond))
	resp, err := c.Fetch(context.Background(), NewRequest(srv.URL+"/flaky"))
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, "ok now", string(resp.Body))
}

func TestRequestOrigin(t *testing.T) {
	assert.Equal(t, "books.example.com", NewRequest("https://books.example.com/cat?p=1").Origin())
	assert.Equal(t, "GET https://x.test", NewRequest("https://x.test").String())
}

func TestRoundRobinSwitcher(t *testing.T) {
	_, err := RoundRobinSwitcher()
	assert.Error(t, err)

	p, err := RoundRobinSwitcher("http://proxy1:8080", "http://proxy2:8080")
	require.NoError(t, err)
	u1, err := p(nil)
	require.NoError(t, err)
	u2, err := p(nil)
	require.NoError(t, err)
	u3, err := p(nil)
	require.NoError(t, err)
	assert.NotEqual(t, u1.Host, u2.Host)
	assert.Equal(t, u1.Host, u3.Host)
}
