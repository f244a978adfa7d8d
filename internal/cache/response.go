package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ResponseCache stores model answers keyed by request digest so repeated
// describe runs on the same image do not call the API again.
type ResponseCache struct {
	Dir         string
	StrictPerms bool
}

// ResponseKey derives a cache key from the model, the prompt and a digest of
// the attached payload.
func ResponseKey(model, prompt, payloadDigest string) string {
	return Key(strings.Join([]string{model, prompt, payloadDigest}, "\n\n"))
}

func (c *ResponseCache) pathFor(key string) string {
	return filepath.Join(c.Dir, "responses", key+".json")
}

// Get returns the cached bytes for key. A miss is (nil, false, nil).
func (c *ResponseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.Dir == "" {
		return nil, false, errors.New("cache dir not configured")
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes data under key.
func (c *ResponseCache) Save(_ context.Context, key string, data []byte) error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	p := c.pathFor(key)
	if err := ensureDir(filepath.Dir(p), c.StrictPerms); err != nil {
		return err
	}
	return writeAtomic(p, data, fileMode(c.StrictPerms))
}
