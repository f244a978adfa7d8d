// Package robots fetches and evaluates robots.txt so the scraper only
// requests listing pages and assets a site permits.
package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hyperifyio/paperscrape/internal/cache"
)

// Source tells where a rule set came from.
type Source int

const (
	SourceNetwork Source = iota
	SourceMemory
	SourceCache304
)

// Rules is a parsed robots.txt. DisallowAll marks a host that is
// temporarily off limits because its robots.txt could not be read.
type Rules struct {
	Groups      []Group
	DisallowAll bool
}

// Group is one User-agent section.
type Group struct {
	Agents     []string
	Allow      []string
	Disallow   []string
	CrawlDelay *time.Duration
}

// Manager fetches robots.txt once per host and keeps the parsed rules in
// memory until EntryExpiry. It is safe for concurrent use.
type Manager struct {
	HTTPClient        *http.Client
	Cache             *cache.HTTPCache
	UserAgent         string
	EntryExpiry       time.Duration
	AllowPrivateHosts bool

	mu  sync.Mutex
	mem map[string]memEntry
	now func() time.Time
}

type memEntry struct {
	rules  Rules
	expiry time.Time
}

// Allowed reports whether rawURL may be fetched by m.UserAgent.
func (m *Manager) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()
	rules, _, err := m.Get(ctx, robotsURL)
	if err != nil {
		return false, err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rules.IsAllowed(m.UserAgent, path), nil
}

// Get returns the rules at robotsURL. A 404 (or other 4xx) yields an empty
// rule set that allows everything; 401, 403, 5xx and transport failures
// yield DisallowAll. Both outcomes are remembered until expiry.
func (m *Manager) Get(ctx context.Context, robotsURL string) (Rules, Source, error) {
	u, err := url.Parse(robotsURL)
	if err != nil {
		return Rules{}, SourceNetwork, fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return Rules{}, SourceNetwork, fmt.Errorf("unsupported url scheme: %q", robotsURL)
	}
	if !m.AllowPrivateHosts && isLocalOrPrivateHost(u.Hostname()) {
		return Rules{}, SourceNetwork, fmt.Errorf("private host not allowed: %s", u.Hostname())
	}
	if rules, ok := m.fromMemory(robotsURL); ok {
		return rules, SourceMemory, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, SourceNetwork, fmt.Errorf("new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	if m.Cache != nil {
		if meta, err := m.Cache.LoadMeta(ctx, robotsURL); err == nil {
			if meta.ETag != "" {
				req.Header.Set("If-None-Match", meta.ETag)
			}
			if meta.LastModified != "" {
				req.Header.Set("If-Modified-Since", meta.LastModified)
			}
		}
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Rules{}, SourceNetwork, ctx.Err()
		}
		return m.remember(robotsURL, Rules{DisallowAll: true}), SourceNetwork, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && m.Cache != nil:
		body, err := m.Cache.LoadBody(ctx, robotsURL)
		if err != nil {
			return Rules{}, SourceCache304, fmt.Errorf("load cached robots: %w", err)
		}
		return m.remember(robotsURL, parseRobots(string(body))), SourceCache304, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden, resp.StatusCode >= 500:
		return m.remember(robotsURL, Rules{DisallowAll: true}), SourceNetwork, nil
	case resp.StatusCode >= 400:
		return m.remember(robotsURL, Rules{}), SourceNetwork, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Rules{}, SourceNetwork, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return Rules{}, SourceNetwork, fmt.Errorf("read robots: %w", err)
	}
	if m.Cache != nil {
		_ = m.Cache.Save(ctx, robotsURL, resp.Header.Get("Content-Type"), resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), data)
	}
	return m.remember(robotsURL, parseRobots(string(data))), SourceNetwork, nil
}

func (m *Manager) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func (m *Manager) fromMemory(key string) (Rules, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.mem[key]
	if !ok || !m.clock().Before(ent.expiry) {
		return Rules{}, false
	}
	return ent.rules, true
}

func (m *Manager) remember(key string, rules Rules) Rules {
	exp := m.EntryExpiry
	if exp <= 0 {
		exp = 30 * time.Minute
	}
	m.mu.Lock()
	if m.mem == nil {
		m.mem = make(map[string]memEntry)
	}
	m.mem[key] = memEntry{rules: rules, expiry: m.clock().Add(exp)}
	m.mu.Unlock()
	return rules
}

func parseRobots(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var groups []Group
	var cur Group
	hasRules := func() bool {
		return len(cur.Allow) > 0 || len(cur.Disallow) > 0 || cur.CrawlDelay != nil
	}
	flush := func() {
		if len(cur.Agents) > 0 || hasRules() {
			groups = append(groups, cur)
		}
		cur = Group{}
	}
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			if hasRules() {
				flush()
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
		case "crawl-delay", "crawldelay":
			if d, err := time.ParseDuration(val + "s"); err == nil {
				cur.CrawlDelay = &d
			}
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed applies the group that best matches userAgent to path (which
// may carry a query string). The longest matching pattern decides; Allow
// wins a tie. No matching pattern means allowed.
func (r Rules) IsAllowed(userAgent, path string) bool {
	if r.DisallowAll {
		return false
	}
	g := r.group(userAgent)
	if g == nil {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !matchPattern(p, path) {
				continue
			}
			score := len(strings.ReplaceAll(strings.TrimSuffix(p, "$"), "*", ""))
			if score > best || (score == best && isAllow) {
				best, allow = score, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

// CrawlDelayFor returns the crawl delay of the group matching userAgent.
func (r Rules) CrawlDelayFor(userAgent string) *time.Duration {
	if g := r.group(userAgent); g != nil {
		return g.CrawlDelay
	}
	return nil
}

// group picks the group with the longest agent token contained in
// userAgent; "*" matches anything with the lowest score.
func (r Rules) group(userAgent string) *Group {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	var best *Group
	bestScore := -1
	for i := range r.Groups {
		for _, a := range r.Groups[i].Agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > bestScore {
				best, bestScore = &r.Groups[i], score
			}
		}
	}
	return best
}

// matchPattern matches a robots pattern anchored at the start of path.
// '*' matches any run of characters and a trailing '$' anchors the end.
func matchPattern(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	if len(parts) == 1 {
		return !anchored || rest == ""
	}
	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	last := parts[len(parts)-1]
	if anchored {
		return strings.HasSuffix(rest, last)
	}
	return strings.Contains(rest, last)
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isLocalOrPrivateHost(host string) bool {
	h := strings.ToLower(strings.Trim(strings.TrimSpace(host), "[]"))
	if h == "localhost" || h == "localhost.localdomain" {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
	}
	return false
}
