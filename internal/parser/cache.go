package parser

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedParser memoizes another parser. Entries are keyed by path, size and
// modification time, so replacing the file invalidates them.
type CachedParser struct {
	next  DocumentParser
	cache *cache.Cache
}

// NewCachedParser wraps next with an in-memory cache.
func NewCachedParser(next DocumentParser, ttl time.Duration) *CachedParser {
	return &CachedParser{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (p *CachedParser) Parse(ctx context.Context, path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d:%d", path, fi.Size(), fi.ModTime().UnixNano())

	if v, ok := p.cache.Get(key); ok {
		return slices.Clone(v.([]string)), nil
	}

	pages, err := p.next.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(key, slices.Clone(pages))
	return pages, nil
}

// Flush drops all cached results.
func (p *CachedParser) Flush() {
	p.cache.Flush()
}
