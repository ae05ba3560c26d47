package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Mrwire/geniusad-sub002/internal/auth"
	"github.com/Mrwire/geniusad-sub002/internal/config"
	"github.com/Mrwire/geniusad-sub002/internal/middleware"
	"github.com/Mrwire/geniusad-sub002/internal/users"
	"github.com/Mrwire/geniusad-sub002/internal/validation"
)

// UserStore is the part of users.Service the session handlers need.
type UserStore interface {
	Authenticate(ctx context.Context, email, password string) (auth.Identity, error)
	GetByID(ctx context.Context, id string) (users.User, error)
	Create(ctx context.Context, req users.CreateRequest) (users.User, error)
}

type Server struct {
	Cfg    *config.Config
	Users  UserStore
	Tokens *auth.Manager
	Val    *validation.Validator
	Log    *slog.Logger
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
