package uitools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/httpx"
	"github.com/Mrwire/geniusad-sub002/internal/middleware"
	"github.com/Mrwire/geniusad-sub002/internal/transport"
	"github.com/Mrwire/geniusad-sub002/internal/validation"
)

type Handler struct {
	gen Generator
	val *validation.Validator
	log *slog.Logger
}

func NewHandler(gen Generator, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{gen: gen, val: val, log: log}
}

func (h *Handler) Call(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req Request
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("ui tools call: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("ui tools call: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrUnknownTool) {
			log.Warn("ui tools call: unknown tool", slog.String("tool", req.ToolName))
			transport.WriteError(w, http.StatusNotFound, "unknown tool", map[string]string{"toolName": req.ToolName})
			return
		}
		log.Error("ui tools call: generator error", slog.String("tool", req.ToolName), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadGateway, "generator error", nil)
		return
	}

	log.Info("ui tools call: ok", slog.String("server", resp.ServerName), slog.String("tool", resp.ToolName))
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
