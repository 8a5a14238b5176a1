package middleware

import (
	"context"
	"strings"
)

type contextKey string

const (
	ctxSessionID contextKey = "session_id"
	ctxRequestID contextKey = "request_id"
	ctxMinted    contextKey = "session_minted"
)

func SessionIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxSessionID)
}

// WithSessionID injects the shopper session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// WithSessionMinted marks the session id as issued by this request rather than
// presented by the client.
func WithSessionMinted(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxMinted, true)
}

func SessionMintedFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	minted, _ := ctx.Value(ctxMinted).(bool)
	return minted
}

func RequestIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRequestID)
}

func withRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestID, requestID)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// cleanToken returns raw trimmed when it is a non-empty run of URL-safe
// characters no longer than max, and "" otherwise.
func cleanToken(raw string, max int) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > max {
		return ""
	}
	for _, ch := range id {
		if !(ch == '-' || ch == '_' || ch == '.' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z') {
			return ""
		}
	}
	return id
}
