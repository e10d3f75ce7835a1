package http

import (
	"context"
	"errors"

	"github.com/stash-sh/stash"
)

// RequestContext is the per-request state assembled by the Session
// middleware before a handler runs. It lives only on the request's
// context; nothing here survives the response.
type RequestContext struct {
	// Claims is the verified or freshly minted session identity.
	Claims stash.Claims
	// In is the negotiated input tag. Only set when the request
	// carries a body.
	In stash.Tag
	// Out is the negotiated output tag.
	Out stash.Tag
	// ContentType is the raw Content-Type header, kept for multipart
	// boundary and charset parameters.
	ContentType string
}

// requestContextKey is the context key for the request context.
type requestContextKey struct{}

// withRequestContext returns a new context with the request context stored.
func withRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// FromContext retrieves the request context assembled by Session.
// Returns an error if the middleware did not run.
func FromContext(ctx context.Context) (*RequestContext, error) {
	rc, ok := ctx.Value(requestContextKey{}).(*RequestContext)
	if !ok || rc == nil {
		return nil, errors.New("request context not found")
	}
	return rc, nil
}
