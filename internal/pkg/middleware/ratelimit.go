package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	apperror "stocktrack/internal/errors"
	"stocktrack/internal/pkg/cache"
	"stocktrack/internal/pkg/logger"
)

// RateLimiter limita cada IP a limit requisições por janela de duration,
// com o contador guardado no Redis. Se o Redis falhar a requisição passa.
func RateLimiter(client cache.Client, limit int, duration time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := "rate-limit:" + clientIP(r)

			// INCR é atômico: só a primeira requisição da janela recebe 1 e define o TTL.
			count, err := client.Incr(ctx, key)
			if err != nil {
				log.Warn("Rate limit indisponível, requisição liberada.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := client.Expire(ctx, key, duration); err != nil {
					// Sem TTL o contador nunca zeraria.
					log.Warn("Falha ao iniciar janela de rate limit.", map[string]interface{}{"error": err.Error()})
					_ = client.Delete(ctx, key)
				}
			}

			if count > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(duration.Seconds())))
				w.Header().Set("X-RateLimit-Remaining", "0")
				WriteError(w, apperror.NewRateLimitError("Rate limit exceeded"))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
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
