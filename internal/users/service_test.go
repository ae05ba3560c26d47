package users

import (
	"context"
	"testing"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/auth"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type memRepo struct {
	byEmail map[string]User
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: map[string]User{}}
}

func (m *memRepo) Create(ctx context.Context, user User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	m.byEmail[user.Email] = user
	return nil
}

func (m *memRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, mongo.ErrNoDocuments
}

func (m *memRepo) Upsert(ctx context.Context, user User) error {
	m.byEmail[user.Email] = user
	return nil
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := NewService(newMemRepo(), time.UTC)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateRequest{
		Email:    " Client@Atlas.ma ",
		Name:     "Client",
		Company:  "Atlas Bank",
		Password: "correct-horse",
		Role:     "client",
	})
	require.NoError(t, err)
	require.Equal(t, "client@atlas.ma", user.Email)

	id, err := svc.Authenticate(ctx, "CLIENT@atlas.ma", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, id.UserID)
	require.Equal(t, "Atlas Bank", id.Company)
	require.Equal(t, RoleClient, id.Role)

	_, err = svc.Authenticate(ctx, "client@atlas.ma", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@atlas.ma", "correct-horse")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(newMemRepo(), time.UTC)
	req := CreateRequest{Email: "a@b.co", Name: "A", Password: "password1", Role: "editor"}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateInvalidRole(t *testing.T) {
	svc := NewService(newMemRepo(), time.UTC)
	_, err := svc.Create(context.Background(), CreateRequest{Email: "a@b.co", Name: "A", Password: "password1", Role: "owner"})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := NewService(newMemRepo(), time.UTC)
	_, err := svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
