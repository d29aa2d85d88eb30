package httpx

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/paskalshop/paskal-shop/internal/redisx"
)

// Limiter: fixed window counter di redis, pengganti map proses-lokal yang
// tidak pernah di-evict. Redis down = fail open.
type Limiter struct {
	RDB *redis.Client
	Log *logrus.Logger
}

func (l *Limiter) Allow(r *http.Request, scope string, limit int, window time.Duration) bool {
	if l == nil || l.RDB == nil {
		return true
	}
	id := clientIP(r)
	bucket := time.Now().Unix() / int64(window.Seconds())
	key := fmt.Sprintf(redisx.KeyRateLimit, scope, id, bucket)

	ctx := r.Context()
	n, err := l.RDB.Incr(ctx, key).Result()
	if err != nil {
		l.Log.WithError(err).Warn("rate limit check failed")
		return true
	}
	if n == 1 {
		_ = l.RDB.Expire(ctx, key, window).Err()
	}
	return n <= int64(limit)
}

// Middleware menolak dengan 429 saat window penuh.
func (l *Limiter) Middleware(scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r, scope, limit, window) {
				writeError(w, http.StatusTooManyRequests, "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
