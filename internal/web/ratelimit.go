package web

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewScanLimiter builds a per-client limiter from a rate such as "10-M",
// backed by Redis so every replica shares the budget.
func NewScanLimiter(rdb *redis.Client, formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse scan rate %q: %w", formatted, err)
	}
	store, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "taghiane:ratelimit:scan"})
	if err != nil {
		return nil, fmt.Errorf("create limiter store: %w", err)
	}
	return limiter.New(store, rate), nil
}

// limitPaths applies the limiter only to requests whose path is in paths.
func limitPaths(l *limiter.Limiter, next http.Handler, paths ...string) http.Handler {
	if l == nil {
		return next
	}
	limited := stdlib.NewMiddleware(l).Handler(next)
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := set[r.URL.Path]; ok {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
