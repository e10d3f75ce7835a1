package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/stash-sh/stash"
)

// Repo is the slice of the item repository the handlers need.
type Repo interface {
	Get(ctx context.Context, client uuid.UUID, key string) (stash.Item, error)
	Put(ctx context.Context, client uuid.UUID, key string, value stash.Value) (stash.Item, error)
	Delete(ctx context.Context, client uuid.UUID, key string) error
}

// HandlerConfig configures the HTTP surface.
type HandlerConfig struct {
	// Codec signs and verifies session tokens.
	Codec *stash.Codec
	// SessionTTL is the advisory ttl stamped into minted claims.
	SessionTTL int
	// PublicMode exposes the console page and relaxes the origin check.
	PublicMode bool
	// AllowedOrigin / AllowedIP gate admission; empty means
	// unrestricted.
	AllowedOrigin string
	AllowedIP     string
	// Limits caps accepted body sizes per payload kind.
	Limits stash.Limits
}

// Handler provides the HTTP handlers for session-scoped item storage.
type Handler struct {
	config HandlerConfig
	repo   Repo
}

// NewHandler creates a new Handler with the given configuration and repo.
func NewHandler(config *HandlerConfig, repo Repo) *Handler {
	return &Handler{
		config: *config,
		repo:   repo,
	}
}

// Router returns an http.Handler with all routes wrapped by the CORS
// layer and the Session pipeline.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	allowed := "*"
	if h.config.AllowedOrigin != "" {
		allowed = h.config.AllowedOrigin
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{allowed},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept", "Origin"},
		ExposedHeaders: []string{"Authorization"},
	}))

	r.Use(Session(SessionConfig{
		Codec:         h.config.Codec,
		TTL:           h.config.SessionTTL,
		PublicMode:    h.config.PublicMode,
		AllowedOrigin: h.config.AllowedOrigin,
		AllowedIP:     h.config.AllowedIP,
	}))

	r.Get("/", h.handleStatus)
	r.Get("/{key}", h.handleGet)
	r.Post("/{key}", h.handlePost)
	r.Put("/{key}", h.handlePut)
	r.Delete("/{key}", h.handleDelete)

	return r
}

// statusResponse is the session probe body served from GET /.
type statusResponse struct {
	Client   string    `json:"client"`
	TTL      int       `json:"ttl"`
	IssuedAt time.Time `json:"issued_at"`
	ExpireAt time.Time `json:"expire_at"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	rc, err := FromContext(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	if rc.Out == stash.TagHTML && h.config.PublicMode {
		writeConsole(w)
		return
	}

	claims := rc.Claims
	_ = WriteJSON(w, http.StatusOK, statusResponse{
		Client:   claims.ID.String(),
		TTL:      claims.TTL,
		IssuedAt: claims.IssuedAt,
		ExpireAt: claims.IssuedAt.Add(time.Duration(claims.TTL) * time.Second),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rc, err := FromContext(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	key := chi.URLParam(r, "key")
	item, err := h.repo.Get(r.Context(), rc.Claims.ID, key)
	if err != nil {
		HandleError(w, err)
		return
	}

	// the stored kind decides the wire type: only one value column is
	// populated per row
	w.Header().Set("Content-Type", item.Value.Kind.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(item.Value.Encode())
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	h.handleWrite(w, r, http.StatusCreated)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	h.handleWrite(w, r, http.StatusOK)
}

// handleWrite is the shared upsert path behind POST and PUT; only the
// success status differs.
func (h *Handler) handleWrite(w http.ResponseWriter, r *http.Request, successCode int) {
	rc, err := FromContext(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	if r.Body == nil || r.ContentLength == 0 {
		WriteError(w, http.StatusBadRequest, "missing_body", "Request body is required")
		return
	}

	value, err := stash.DecodeValue(rc.In, r.Body, rc.ContentType, h.config.Limits)
	if err != nil {
		HandleError(w, err)
		return
	}

	item, err := h.repo.Put(r.Context(), rc.Claims.ID, chi.URLParam(r, "key"), value)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, successCode, item)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	rc, err := FromContext(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	// absence is not an error: delete is idempotent
	if err := h.repo.Delete(r.Context(), rc.Claims.ID, chi.URLParam(r, "key")); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, struct{}{})
}
