// Package fetch provides the single outbound HTTP client shared by every
// resolver. It sends a desktop browser profile (the scraping targets serve
// stripped-down pages to unknown agents) and rate limits globally and
// per domain.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxBodySize  = 5 * 1024 * 1024
	maxRedirects = 5

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Dnt":                       "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

type Fetcher struct {
	client         *http.Client
	globalLimiter  *rate.Limiter
	domainLimiters map[string]*rate.Limiter
	mu             sync.RWMutex
}

func New(rps float64, timeout time.Duration) *Fetcher {
	if rps <= 0 {
		rps = 2
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}

				return nil
			},
		},
		globalLimiter:  rate.NewLimiter(rate.Limit(rps), 5),
		domainLimiters: make(map[string]*rate.Limiter),
	}
}

// Page fetches rawURL with the browser profile and returns the body.
func (f *Fetcher) Page(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.get(ctx, rawURL, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// FinalURL follows redirects for rawURL and returns the URL the request
// ended up at. Short links resolve to their canonical item pages this way.
func (f *Fetcher) FinalURL(ctx context.Context, rawURL string) (string, error) {
	resp, err := f.get(ctx, rawURL, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

	return resp.Request.URL.String(), nil
}

// Image downloads the image at rawURL and returns its bytes together with a
// filename derived from the URL path.
func (f *Fetcher) Image(ctx context.Context, rawURL string) ([]byte, string, error) {
	resp, err := f.get(ctx, rawURL, false)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", err
	}

	return data, filenameFromURL(rawURL), nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string, browserProfile bool) (*http.Response, error) {
	if err := f.globalLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	if err := f.domainLimiter(extractDomain(rawURL)).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)

	if browserProfile {
		for k, v := range browserHeaders {
			req.Header.Set(k, v)
		}
	}

	return f.client.Do(req)
}

func (f *Fetcher) domainLimiter(domain string) *rate.Limiter {
	f.mu.RLock()
	limiter, exists := f.domainLimiters[domain]
	f.mu.RUnlock()

	if exists {
		return limiter
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if limiter, exists := f.domainLimiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(1, 2) // 1 req/sec per domain
	f.domainLimiters[domain] = limiter

	return limiter
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Host)
}

func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return fmt.Sprintf("downloaded_%d.jpg", time.Now().Unix())
	}

	return path.Base(u.Path)
}
