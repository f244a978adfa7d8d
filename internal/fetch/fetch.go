package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/paperscrape/internal/cache"
)

// ErrDisallowed is returned when the robots gate refuses a URL.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	if e.Status >= 500 {
		return fmt.Sprintf("server error: %d", e.Status)
	}
	return fmt.Sprintf("unexpected status: %d", e.Status)
}

// Gate decides whether a URL may be fetched. *robots.Manager satisfies it.
type Gate interface {
	Allowed(ctx context.Context, rawURL string) (bool, error)
}

// Client wraps http.Client and provides timeouts and limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for HTTP GET bodies and headers.
	Cache *cache.HTTPCache
	// If true, skip conditional headers but still save the latest response.
	BypassCache bool
	// Robots, when set, is consulted before every request.
	Robots Gate
	// Accept filters response content types. Nil accepts HTML and XHTML.
	Accept func(contentType string) bool

	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int

	limiter     chan struct{}
	limiterOnce sync.Once
	backoff     time.Duration
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET with context, user-agent, and bounded retry for transient
// errors. It returns the body and the response content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return nil, "", fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if c.Robots != nil {
		ok, err := c.Robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, "", fmt.Errorf("robots: %w", err)
		}
		if !ok {
			return nil, "", fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
	}

	var etag, lastMod, cachedType string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag, lastMod, cachedType = meta.ETag, meta.LastModified, meta.ContentType
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			if res.status == http.StatusNotModified && c.Cache != nil {
				cached, err := c.Cache.LoadBody(ctx, rawURL)
				if err != nil {
					return nil, "", fmt.Errorf("load cached body: %w", err)
				}
				if res.contentType == "" {
					res.contentType = cachedType
				}
				return cached, res.contentType, nil
			}
			if c.Cache != nil {
				_ = c.Cache.Save(ctx, rawURL, res.contentType, res.etag, res.lastModified, res.body)
			}
			return res.body, res.contentType, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * c.backoffUnit()):
		}
	}
	return nil, "", lastErr
}

type result struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (result, error) {
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return result{}, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return result{}, err
	}
	defer resp.Body.Close()

	res := result{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		return res, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result{}, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}
	accept := c.Accept
	if accept == nil {
		accept = IsHTML
	}
	if !accept(res.contentType) {
		return result{}, fmt.Errorf("unsupported content type: %s", res.contentType)
	}
	res.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return result{}, fmt.Errorf("read body: %w", err)
	}
	return res, nil
}

func (c *Client) backoffUnit() time.Duration {
	if c.backoff > 0 {
		return c.backoff
	}
	return 200 * time.Millisecond
}

// isTransient treats 5xx and deadline errors as worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 500
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// IsHTML accepts text/html variants and application/xhtml+xml.
func IsHTML(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// AnyType accepts every content type.
func AnyType(string) bool { return true }

// DecodeHTML transcodes body to UTF-8 using the charset from contentType,
// a <meta> declaration or a BOM, in that order.
func DecodeHTML(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("charset: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
