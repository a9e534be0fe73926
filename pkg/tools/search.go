package tools

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tmc/langchaingo/tools/serpapi"

	configpkg "github.com/nuvemlabs/agents.tracie/pkg/config"
	loggerpkg "github.com/nuvemlabs/agents.tracie/pkg/logger"
)

// SearchName is the name the reasoning loop uses to invoke web search.
const SearchName = "search"

const SearchDescription = "Useful for when you need to answer questions about current events or search the web"

const (
	defaultSearchCacheSize = 128
	defaultSearchCacheTTL  = 10 * time.Minute
)

// Searcher runs one web search and returns the result text.
type Searcher interface {
	Call(ctx context.Context, query string) (string, error)
}

// NewSearch returns the web-search tool, or nil when no search credential is
// configured. A missing credential is reported as a warning, never an error.
func NewSearch(s configpkg.Settings, logger loggerpkg.Logger) *Descriptor {
	if logger == nil {
		logger = loggerpkg.NopLogger{}
	}
	if !s.HasSearch() {
		logger.Warn("SERPAPI_API_KEY not found. Search functionality disabled.", nil)
		return nil
	}

	backend, err := serpapi.New(serpapi.WithAPIKey(s.SerpAPIKey))
	if err != nil {
		logger.Warn("search tool unavailable", map[string]any{"error": err})
		return nil
	}
	return NewSearchWith(backend, defaultSearchCacheSize, defaultSearchCacheTTL)
}

// NewSearchWith wraps backend as the "search" tool with a result cache.
// cacheSize <= 0 disables caching.
func NewSearchWith(backend Searcher, cacheSize int, ttl time.Duration) *Descriptor {
	call := backend.Call
	if cacheSize > 0 {
		call = cached(call, expirable.NewLRU[string, string](cacheSize, nil, ttl))
	}
	return &Descriptor{name: SearchName, description: SearchDescription, fn: call}
}

// cached memoises successful results per query. Errors are not cached.
func cached(fn Func, cache *expirable.LRU[string, string]) Func {
	return func(ctx context.Context, query string) (string, error) {
		key := strings.TrimSpace(query)
		if out, ok := cache.Get(key); ok {
			return out, nil
		}
		out, err := fn(ctx, key)
		if err != nil {
			return "", err
		}
		cache.Add(key, out)
		return out, nil
	}
}
