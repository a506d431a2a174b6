package links

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"brevly/internal/errx"
	"brevly/internal/httpx"
)

const (
	MinCodeLength = 3
	MaxCodeLength = 50
	MaxURLLength  = 2048

	// trackTimeout bounds the detached access-count update that runs
	// alongside a resolution.
	trackTimeout = 5 * time.Second
)

// HTTPCreateLinkRequest represents the JSON request body for creating a link.
type HTTPCreateLinkRequest struct {
	URL  string `json:"url"`
	Code string `json:"code,omitempty"`
}

// LinkResponse represents the JSON shape of a stored link. The field names
// are the external contract, independent of the storage column names.
type LinkResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	AccessCount int64     `json:"accessCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ExportResponse represents the JSON response of an export. URL is null when
// there were no links to export.
type ExportResponse struct {
	URL *string `json:"url"`
}

func toLinkResponse(link Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID.String(),
		Code:        link.Code,
		OriginalURL: link.OriginalURL,
		AccessCount: link.AccessCount,
		CreatedAt:   link.CreatedAt,
	}
}

// Handler provides HTTP handlers for the link registry.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

// CreateLink handles POST /links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request",
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	// Format validation happens here at the boundary; the service only
	// enforces business-level uniqueness.
	if err := validateURL(req.URL); err != nil {
		logger.WarnContext(ctx, "invalid url in create request",
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}
	if req.Code != "" {
		if err := validateCode(req.Code); err != nil {
			logger.WarnContext(ctx, "invalid code in create request",
				"error", err.Error(),
				"code", req.Code,
			)
			httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
			return
		}
	}

	link, err := h.service.Create(ctx, CreateLinkRequest{
		OriginalURL: req.URL,
		Code:        req.Code,
	})
	if err != nil {
		h.handleCreateError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "link created",
		"link_id", link.ID.String(),
		"code", link.Code,
		"custom_code", req.Code != "",
	)

	httpx.WriteJSON(w, http.StatusCreated, toLinkResponse(link))
}

// ListLinks handles GET /links.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	result, err := h.service.List(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list links",
			"error", err.Error(),
			"operation", errx.OpOf(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to list links at this time", nil)
		return
	}

	resp := make([]LinkResponse, 0, len(result))
	for _, link := range result {
		resp = append(resp, toLinkResponse(link))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// DeleteLink handles DELETE /links/{id}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.WarnContext(ctx, "malformed link id",
			"id", r.PathValue("id"),
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input",
			"id must be a valid UUID", nil)
		return
	}

	deleted, err := h.service.Delete(ctx, id)
	if err != nil {
		h.handleDeleteError(ctx, w, err, id)
		return
	}

	logger.InfoContext(ctx, "link deleted",
		"link_id", deleted.ID.String(),
		"code", deleted.Code,
	)

	w.WriteHeader(http.StatusNoContent)
}

// ExportLinks handles POST /links/export.
func (h *Handler) ExportLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	result, err := h.service.ExportCSV(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to export links",
			"error", err.Error(),
			"operation", errx.OpOf(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to export links at this time", nil)
		return
	}

	logger.InfoContext(ctx, "links exported",
		"uploaded", result.URL != nil,
	)

	httpx.WriteJSON(w, http.StatusCreated, ExportResponse{URL: result.URL})
}

// ResolveByCode handles GET /links/code/{code}. The access-count increment
// runs in its own goroutine and is never awaited: a failure there must not
// turn a successful resolution into an error response.
func (h *Handler) ResolveByCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	code := r.PathValue("code")
	if code == "" {
		logger.WarnContext(ctx, "missing code in path")
		httpx.WriteError(w, http.StatusNotFound, "not_found",
			"short link doesn't exist", nil)
		return
	}

	go h.trackAccess(ctx, code)

	link, err := h.service.GetByCode(ctx, code)
	if err != nil {
		h.handleResolveError(ctx, w, err, code)
		return
	}

	logger.InfoContext(ctx, "code resolved",
		"code", code,
		"original_url", link.OriginalURL,
		"referer", r.Referer(),
	)

	httpx.WriteJSON(w, http.StatusOK, toLinkResponse(link))
}

// trackAccess performs the fire-and-forget counter increment on a context
// detached from the request, so it survives the response being sent.
// Failures are logged rather than silently discarded.
func (h *Handler) trackAccess(ctx context.Context, code string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), trackTimeout)
	defer cancel()

	if err := h.service.IncrementAccessCount(ctx, code); err != nil {
		h.logger.ErrorContext(ctx, "failed to increment access count",
			"code", code,
			"error", err.Error(),
			"operation", errx.OpOf(err),
		)
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// handleCreateError handles errors from the Create service method.
func (h *Handler) handleCreateError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Conflict:
		h.logger.WarnContext(ctx, "code conflict", logAttrs...)
		httpx.WriteError(w, http.StatusConflict, "conflict",
			"This short code is already in use",
			map[string]string{
				"hint": "Try a different code or let us generate one for you",
			})

	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid link request", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)

	default:
		h.logger.ErrorContext(ctx, "unexpected error creating link", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to create short link at this time. Please try again.", nil)
	}
}

// handleResolveError handles errors from the GetByCode service method.
func (h *Handler) handleResolveError(ctx context.Context, w http.ResponseWriter, err error, code string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"code", code,
	}

	switch kind {
	case errx.NotFound:
		h.logger.WarnContext(ctx, "code not found", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found",
			"short link doesn't exist", nil)

	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid code", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)

	default:
		h.logger.ErrorContext(ctx, "unexpected error resolving link", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to resolve this link at this time", nil)
	}
}

// handleDeleteError handles errors from the Delete service method.
func (h *Handler) handleDeleteError(ctx context.Context, w http.ResponseWriter, err error, id uuid.UUID) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"link_id", id.String(),
	}

	switch kind {
	case errx.NotFound:
		h.logger.WarnContext(ctx, "link not found for deletion", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found",
			"no link with this id", nil)

	default:
		h.logger.ErrorContext(ctx, "unexpected error deleting link", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to delete this link at this time", nil)
	}
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("url cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return errors.New("url too long (max 2048 characters)")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must include scheme (http or https)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Host == "" {
		return errors.New("url must include host")
	}
	return nil
}

func validateCode(code string) error {
	if len(code) < MinCodeLength {
		return errors.New("code too short (minimum 3 characters)")
	}
	if len(code) > MaxCodeLength {
		return errors.New("code too long (maximum 50 characters)")
	}

	for _, char := range code {
		if !isValidCodeChar(char) {
			return errors.New("code contains invalid characters (only alphanumeric, dash, and underscore allowed)")
		}
	}
	return nil
}

func isValidCodeChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	default:
		return false
	}
}
