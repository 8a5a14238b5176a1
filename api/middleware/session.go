package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	SessionHeader = "X-Session-Id"
	SessionCookie = "sf_session"

	maxSessionIDLength = 128
)

// SessionOptions control the session cookie.
type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

// Session resolves the shopper session from the header or cookie, minting a new
// one when neither carries a usable id. The id is echoed in both.
func Session(opts SessionOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionFromRequest(r)
			minted := sessionID == ""
			if minted {
				sessionID = uuid.NewString()
			}

			cookie := &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			}
			if opts.TTL > 0 {
				cookie.MaxAge = int(opts.TTL.Seconds())
			}
			http.SetCookie(w, cookie)
			w.Header().Set(SessionHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if minted {
				ctx = WithSessionMinted(ctx)
			}
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request) string {
	if id := cleanToken(r.Header.Get(SessionHeader), maxSessionIDLength); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return cleanToken(c.Value, maxSessionIDLength)
	}
	return ""
}
