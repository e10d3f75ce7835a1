package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/stash-sh/stash"
)

// SessionConfig drives the Session middleware pipeline.
type SessionConfig struct {
	// Codec signs and verifies bearer tokens.
	Codec *stash.Codec
	// TTL is stamped into freshly minted claims, in seconds.
	TTL int
	// PublicMode skips the origin check even when AllowedOrigin is set.
	PublicMode bool
	// AllowedOrigin, when set, must equal the Origin header exactly.
	AllowedOrigin string
	// AllowedIP, when set, must equal the transport peer address
	// exactly.
	AllowedIP string
}

// Session wraps every handler with the request pipeline: admission
// filtering, token resolution, content negotiation, handler invocation
// and token re-issuance. Rejections short-circuit before the handler
// and are logged with the session id when one was resolved.
//
// The middleware keeps no state between requests. The session lives
// entirely in the signed token: the response always carries a live,
// re-signed Authorization header, whether or not the request had one.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// admission: origin allow-list
			if cfg.AllowedOrigin != "" && !cfg.PublicMode {
				origin := r.Header.Get("Origin")
				if origin == "" {
					deny(w, "no Origin header sent")
					return
				}
				if origin != cfg.AllowedOrigin {
					deny(w, fmt.Sprintf("Origin %q not allowed", origin))
					return
				}
			}

			// admission: client address allow-list
			if cfg.AllowedIP != "" {
				if peer := peerAddr(r); peer != cfg.AllowedIP {
					deny(w, fmt.Sprintf("client address %q not allowed", peer))
					return
				}
			}

			// token resolution: verify the presented token or mint a
			// fresh identity
			claims := stash.Claims{}
			if header := r.Header.Get("Authorization"); header != "" {
				decoded, err := cfg.Codec.Decode(header)
				if err != nil {
					slog.Info("rejected bearer token", "method", r.Method, "path", r.URL.Path, "err", err)
					HandleError(w, err)
					return
				}
				claims = decoded
			} else {
				claims = stash.NewClaims(r.Host, cfg.TTL)
				slog.Debug("minted session", "client", claims.ID, "issuer", claims.Issuer)
			}

			// content negotiation
			rc := &RequestContext{
				Claims:      claims,
				ContentType: r.Header.Get("Content-Type"),
			}

			out, err := stash.Negotiate(acceptOrDefault(r))
			if err != nil {
				slog.Info("rejected accept header", "client", claims.ID, "accept", r.Header.Get("Accept"))
				HandleError(w, err)
				return
			}
			rc.Out = out

			// input negotiation only applies when a body is present; a
			// bodyless write falls through to the handler's missing-body
			// check
			if isWrite(r) && r.ContentLength != 0 {
				in, err := stash.Negotiate(rc.ContentType)
				if err != nil {
					slog.Info("rejected content type", "client", claims.ID, "content_type", rc.ContentType)
					HandleError(w, err)
					return
				}
				rc.In = in
			}

			// token re-issuance: every response carries a re-signed
			// token, so first-contact clients capture their session
			// from the very first reply
			token, err := cfg.Codec.Encode(claims)
			if err != nil {
				slog.Error("failed to sign token", "client", claims.ID, "err", err)
				HandleError(w, stash.ErrInternal)
				return
			}
			w.Header().Set("Authorization", stash.BearerScheme+" "+token)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			slog.Info("request started", "client", claims.ID, "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(ww, r.WithContext(withRequestContext(r.Context(), rc)))
			slog.Info("request finished", "client", claims.ID, "method", r.Method, "path", r.URL.Path, "status", ww.Status())
		})
	}
}

func deny(w http.ResponseWriter, reason string) {
	slog.Info("request denied", "reason", reason)
	HandleError(w, fmt.Errorf("%s: %w", reason, stash.ErrAdmissionDenied))
}

// peerAddr strips the port from the transport-level remote address.
func peerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// acceptOrDefault resolves the Accept header, treating an absent one as
// application/json. A present but unrecognized header still fails
// negotiation.
func acceptOrDefault(r *http.Request) string {
	if accept := r.Header.Get("Accept"); accept != "" {
		return accept
	}
	return "application/json"
}

func isWrite(r *http.Request) bool {
	return r.Method == http.MethodPost || r.Method == http.MethodPut
}
