package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/omnifocus-bridge/internal/models"
	"github.com/benvon/omnifocus-bridge/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRate bounds how fast one client can spawn automation processes
	DefaultRate = "20-S"

	limiterPrefix = "omnifocus_bridge_limiter"
)

// RateLimiter limits requests per client IP. The counter store is in memory
// unless a Redis URL is given.
type RateLimiter struct {
	limiter *limiter.Limiter
	client  *redis.Client
	logger  *zap.Logger
}

// NewRateLimiter creates a limiter for a formatted rate such as "20-S" or "600-M"
func NewRateLimiter(rateStr, redisURL string, log *zap.Logger) (*RateLimiter, error) {
	if rateStr == "" {
		rateStr = DefaultRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rateStr, err)
	}

	if redisURL == "" {
		store := memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: limiterPrefix})
		return &RateLimiter{limiter: limiter.New(store, rate), logger: log}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: limiterPrefix})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to create Redis limiter store: %w", err)
	}
	return &RateLimiter{limiter: limiter.New(store, rate), client: client, logger: log}, nil
}

// Middleware returns the rate limiting middleware
func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	mw := stdlibmw.NewMiddleware(l.limiter,
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, models.ErrorPayload{Error: "rate limit exceeded"}, l.logger)
		}),
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			l.logger.Error("rate_limiter_failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, models.ErrorPayload{Error: "internal error", Kind: "internal"}, l.logger)
		}),
	)
	return mw.Handler
}

// Shared reports whether counters live in Redis
func (l *RateLimiter) Shared() bool {
	return l.client != nil
}

// Close releases the Redis connection, if any
func (l *RateLimiter) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
