package he_tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

// SourceName identifies the lookup site in route-list headers
const SourceName = "bgp.he.net"

// ErrAccessDenied is returned when the site answers 403, which it does when it suspects a bot.
var ErrAccessDenied = errors.New("access denied (403), bgp.he.net may have detected automated access")

// StatusError is returned for any other non-200 answer.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// browserHeaders is sent with every request; the site blocks clients that do not look like a browser
var browserHeaders = [][2]string{
	{"User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
	{"Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"},
	{"Accept-Language", "en-US,en;q=0.9"},
	{"Cache-Control", "max-age=0"},
	{"Referer", "https://bgp.he.net/"},
}

// UserAgent is the browser user agent sent to the lookup site
func UserAgent() string {
	return browserHeaders[0][1]
}

// Client queries AS pages on bgp.he.net
type Client struct {
	httpClient *http.Client
	baseURL    string
	minDelay   time.Duration
	maxDelay   time.Duration
	// sleep waits for d or until ctx is done
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client that pauses for a random duration in [minDelay, maxDelay] before each request
func NewClient(httpClient *http.Client, baseURL string, minDelay, maxDelay time.Duration) *Client {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		minDelay:   minDelay,
		maxDelay:   maxDelay,
		sleep:      sleepContext,
	}
}

// PageURL returns the prefix page URL for a normalized ASN
func (c *Client) PageURL(asn string) string {
	return c.baseURL + "/" + asn + "#_prefixes"
}

// delay picks the pause taken before the request, uniformly in [minDelay, maxDelay]
func (c *Client) delay() time.Duration {
	if c.maxDelay <= c.minDelay {
		return c.minDelay
	}
	return c.minDelay + rand.N(c.maxDelay-c.minDelay+1)
}

// QueryASN fetches the AS page for a normalized ASN and returns its HTML.
// There is no retry: a 403 yields ErrAccessDenied, any other non-200 status a *StatusError.
func (c *Client) QueryASN(ctx context.Context, asn string) (string, error) {
	pageURL := c.PageURL(asn)

	// Log the request for the lookup
	log.Printf("Querying %s for AS: %s (%s)\n", SourceName, asn, pageURL)

	if d := c.delay(); d > 0 {
		if err := c.sleep(ctx, d); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	for _, header := range browserHeaders {
		req.Header.Set(header[0], header[1])
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", ErrAccessDenied
	} else if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
