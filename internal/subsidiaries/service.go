package subsidiaries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/casestudies"
	"github.com/Mrwire/geniusad-sub002/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = errors.New("subsidiary not found")
	ErrSlugExists  = errors.New("slug already exists")
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrRefsNotSynced reports that the subsidiary was written but the case studies embedding it
	// were not updated. Saving the subsidiary again retries the sync.
	ErrRefsNotSynced = errors.New("case study references not synced")
)

// RefUpdater keeps the references embedded in case studies in line with the subsidiary.
type RefUpdater interface {
	UpdateSubsidiaryRef(ctx context.Context, ref casestudies.SubsidiaryRef) error
	ClearSubsidiaryRef(ctx context.Context, id string) error
}

type Service struct {
	repo     Repository
	location *time.Location
	refs     RefUpdater
	listener casestudies.ChangeListener
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) SetRefUpdater(u RefUpdater) {
	s.refs = u
}

func (s *Service) SetChangeListener(l casestudies.ChangeListener) {
	s.listener = l
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Subsidiary, error) {
	slug := normalizeSlug(req.Slug, req.Name)
	if slug == "" {
		return Subsidiary{}, ErrInvalidSlug
	}

	now := time.Now().In(s.location)
	item := Subsidiary{
		ID:          primitive.NewObjectID().Hex(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Tagline:     strings.TrimSpace(req.Tagline),
		Description: strings.TrimSpace(req.Description),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		WebsiteURL:  strings.TrimSpace(req.WebsiteURL),
		Theme:       themeFrom(req.Theme),
		Services:    cleanList(req.Services),
		IsPublic:    req.IsPublic == nil || *req.IsPublic,
		SortOrder:   0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Subsidiary{}, ErrSlugExists
		}
		return Subsidiary{}, err
	}
	s.changed(ctx)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Subsidiary, error) {
	id = strings.TrimSpace(id)
	slug := normalizeSlug(req.Slug, req.Name)
	if slug == "" {
		return Subsidiary{}, ErrInvalidSlug
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	set := bson.M{
		"name":        strings.TrimSpace(req.Name),
		"slug":        slug,
		"tagline":     strings.TrimSpace(req.Tagline),
		"description": strings.TrimSpace(req.Description),
		"logo_url":    strings.TrimSpace(req.LogoURL),
		"website_url": strings.TrimSpace(req.WebsiteURL),
		"theme":       themeFrom(req.Theme),
		"services":    cleanList(req.Services),
		"is_public":   req.IsPublic == nil || *req.IsPublic,
		"sort_order":  sortOrder,
		"updated_at":  time.Now().In(s.location),
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Subsidiary{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return Subsidiary{}, ErrSlugExists
		}
		return Subsidiary{}, err
	}

	s.changed(ctx)
	if s.refs != nil {
		if err := s.refs.UpdateSubsidiaryRef(ctx, RefOf(updated)); err != nil {
			return updated, fmt.Errorf("%w: %v", ErrRefsNotSynced, err)
		}
	}
	return updated, nil
}

// Delete removes the subsidiary and detaches it from the case studies that referenced it.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.changed(ctx)
	if s.refs != nil {
		if err := s.refs.ClearSubsidiaryRef(ctx, id); err != nil {
			return fmt.Errorf("%w: %v", ErrRefsNotSynced, err)
		}
	}
	return nil
}

func (s *Service) ListPublic(ctx context.Context) ([]Subsidiary, error) {
	return s.repo.List(ctx, true)
}

func (s *Service) ListAll(ctx context.Context) ([]Subsidiary, error) {
	return s.repo.List(ctx, false)
}

func (s *Service) GetPublicBySlug(ctx context.Context, slug string) (Subsidiary, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Subsidiary{}, ErrNotFound
		}
		return Subsidiary{}, err
	}
	if !item.IsPublic {
		return Subsidiary{}, ErrNotFound
	}
	return item, nil
}

// ResolveRef implements casestudies.SubsidiaryResolver.
func (s *Service) ResolveRef(ctx context.Context, slug string) (casestudies.SubsidiaryRef, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return casestudies.SubsidiaryRef{}, casestudies.ErrUnknownSubsidiary
		}
		return casestudies.SubsidiaryRef{}, err
	}
	return RefOf(item), nil
}

func RefOf(item Subsidiary) casestudies.SubsidiaryRef {
	return casestudies.SubsidiaryRef{ID: item.ID, Name: item.Name, Slug: item.Slug}
}

func (s *Service) changed(ctx context.Context) {
	if s.listener != nil {
		s.listener.ContentChanged(ctx, "subsidiaries")
	}
}

// themeFrom fills unset colours from DefaultTheme.
func themeFrom(req ThemeRequest) Theme {
	t := DefaultTheme
	if v := strings.TrimSpace(req.Primary); v != "" {
		t.Primary = v
	}
	if v := strings.TrimSpace(req.Accent); v != "" {
		t.Accent = v
	}
	if v := strings.TrimSpace(req.Background); v != "" {
		t.Background = v
	}
	if v := strings.TrimSpace(req.Text); v != "" {
		t.Text = v
	}
	return t
}

func normalizeSlug(slug, name string) string {
	raw := strings.TrimSpace(slug)
	if raw == "" {
		raw = strings.TrimSpace(name)
	}
	return utils.Slugify(raw)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
