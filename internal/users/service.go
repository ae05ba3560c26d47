package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
	ErrInvalidRole = errors.New("invalid role")
)

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !IsValidRole(role) {
		return User{}, ErrInvalidRole
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	now := time.Now().In(s.location)
	user := User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        NormalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		Company:      strings.TrimSpace(req.Company),
		ProfileImage: strings.TrimSpace(req.ProfileImage),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	user, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// Authenticate checks email/password and returns the session identity of the user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (auth.Identity, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			auth.CompareDummy(password)
			return auth.Identity{}, auth.ErrInvalidCredentials
		}
		return auth.Identity{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return auth.Identity{}, auth.ErrInvalidCredentials
	}
	return IdentityOf(user), nil
}

func IdentityOf(user User) auth.Identity {
	return auth.Identity{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		Company:      user.Company,
		ProfileImage: user.ProfileImage,
	}
}
