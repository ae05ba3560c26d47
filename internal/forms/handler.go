package forms

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/httpx"
	"github.com/Mrwire/geniusad-sub002/internal/middleware"
	"github.com/Mrwire/geniusad-sub002/internal/sitectx"
	"github.com/Mrwire/geniusad-sub002/internal/transport"
	"github.com/Mrwire/geniusad-sub002/internal/validation"
	"github.com/go-chi/chi/v5"
)

// Meta describes where a submission came from.
type Meta struct {
	Locale     string
	Subsidiary string
	IP         string
	UserAgent  string
}

func MetaFromRequest(r *http.Request) Meta {
	site := sitectx.From(r.Context())
	return Meta{
		Locale:     site.Locale,
		Subsidiary: site.Subsidiary,
		IP:         r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
}

// Submitter stores validated form values.
type Submitter interface {
	Submit(ctx context.Context, def Definition, values map[string]string, meta Meta) error
}

type Handler struct {
	registry  *Registry
	val       *validation.Validator
	submitter Submitter
	log       *slog.Logger
}

func NewHandler(registry *Registry, val *validation.Validator, submitter Submitter, log *slog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		val:       val,
		submitter: submitter,
		log:       log,
	}
}

// Process validates values against def and, when valid, passes them to the submitter.
// The returned form carries the errors or the status message to display.
func (h *Handler) Process(ctx context.Context, def Definition, values map[string]string, meta Meta) (*Form, error) {
	form := New(def, h.val)
	form.SetValues(values)
	err := form.Submit(ctx, func(ctx context.Context, values map[string]string) error {
		return h.submitter.Submit(ctx, def, values, meta)
	})
	return form, err
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	def, err := h.registry.Get(id)
	if err != nil {
		log.Warn("forms get: unknown form", slog.String("form_id", id))
		transport.WriteError(w, http.StatusNotFound, "form not found", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, def)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	def, err := h.registry.Get(id)
	if err != nil {
		log.Warn("forms submit: unknown form", slog.String("form_id", id))
		transport.WriteError(w, http.StatusNotFound, "form not found", nil)
		return
	}

	var raw map[string]interface{}
	if err := httpx.DecodeJSONLoose(r.Body, &raw); err != nil {
		log.Warn("forms submit: invalid json", slog.String("form_id", id))
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	form, err := h.Process(ctx, def, StringValues(raw), MetaFromRequest(r))
	switch {
	case errors.Is(err, ErrInvalid):
		log.Warn("forms submit: validation error", slog.String("form_id", id), slog.Int("errors", len(form.Errors)))
		transport.WriteError(w, http.StatusBadRequest, "validation error", form.Errors)
		return
	case err != nil:
		log.Error("forms submit: handler error", slog.String("form_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, form.Message, nil)
		return
	}

	log.Info("forms submit: ok", slog.String("form_id", id))
	transport.WriteJSON(w, http.StatusCreated, map[string]string{
		"status":  string(form.Status),
		"message": form.Message,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
