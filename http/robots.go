package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache fetches and caches robots.txt per host. A host whose
// robots.txt cannot be fetched or parsed is treated as allowing
// everything, matching common crawler behavior.
type robotsCache struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	hosts map[string]*robotstxt.Group
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		hosts:     map[string]*robotstxt.Group{},
	}
}

// Allowed reports whether robots.txt permits fetching the locator.
func (c *robotsCache) Allowed(ctx context.Context, locator string) (bool, error) {
	u, err := url.Parse(locator)
	if err != nil || u.Host == "" {
		return true, nil
	}

	c.mu.Lock()
	group, ok := c.hosts[u.Host]
	c.mu.Unlock()

	if !ok {
		group = c.fetchGroup(ctx, u)
		c.mu.Lock()
		c.hosts[u.Host] = group
		c.mu.Unlock()
	}

	if group == nil {
		return true, nil
	}
	return group.Test(u.Path), nil
}

// fetchGroup retrieves the robots group for the fetcher's user agent.
// Returns nil (allow all) on any failure.
func (c *robotsCache) fetchGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return robots.FindGroup(c.userAgent)
}
