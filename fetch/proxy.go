package fetch

import (
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
)

type ProxyFunc func(*http.Request) (*url.URL, error)

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

func (r *roundRobinSwitcher) GetProxy(pr *http.Request) (*url.URL, error) {
	index := atomic.AddUint32(&r.index, 1) - 1
	u := r.proxyURLs[index%uint32(len(r.proxyURLs))]
	return u, nil
}

// RoundRobinSwitcher rotates requests across the given proxy URLs.
func RoundRobinSwitcher(proxyURLs ...string) (ProxyFunc, error) {
	if len(proxyURLs) < 1 {
		return nil, errors.New("proxy url list is empty")
	}
	var urls []*url.URL
	for _, u := range proxyURLs {
		parsedU, err := url.Parse(u)
		if err != nil {
			continue
		}
		urls = append(urls, parsedU)
	}
	if len(urls) == 0 {
		return nil, errors.New("no valid proxy url")
	}
	return (&roundRobinSwitcher{proxyURLs: urls}).GetProxy, nil
}
