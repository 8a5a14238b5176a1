package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/api/responses"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// sharedIPFactor sizes the per-IP allowance for clients that present their own
// session id, so several shoppers behind one NAT are not throttled together.
const sharedIPFactor = 4

// RateLimitPolicy defines the throttling parameters for a traffic surface.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

// NewRateLimitPolicy builds a policy with the supplied window and limit.
func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

type limitScope struct {
	kind  string
	value string
	limit int
}

// scopesFor lists the counters a request is charged against. A session the
// client presented gets its own counter plus a wider per-IP cap; a minted or
// missing session is charged to the client IP alone.
func (p RateLimitPolicy) scopesFor(r *http.Request) []limitScope {
	ip := limitScope{kind: "ip", value: clientIP(r), limit: p.limit}
	sessionID := SessionIDFromContext(r.Context())
	if sessionID == "" || SessionMintedFromContext(r.Context()) {
		return []limitScope{ip}
	}
	ip.limit = p.limit * sharedIPFactor
	return []limitScope{{kind: "session", value: sessionID, limit: p.limit}, ip}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

func (p RateLimitPolicy) scope(kind, value string) string {
	return fmt.Sprintf("%s:%s:%s", p.normalizedName(), kind, value)
}

// RateLimit counts mutating requests per presented session and per client IP.
// Safe methods pass through uncounted.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			for _, sc := range policy.scopesFor(r) {
				allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(sc.kind, sc.value), int64(sc.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if allowed {
					continue
				}
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"scope":          sc.kind,
						"policy":         policy.normalizedName(),
						"attempts":       count,
						"limit":          sc.limit,
						"window_seconds": int(policy.window.Seconds()),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.window.Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
