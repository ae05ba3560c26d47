package pages

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound   = errors.New("page not found")
	ErrPageExists = errors.New("page already exists for this locale")
)

// ChangeListener is told when pages are written so cached renders can be dropped.
type ChangeListener interface {
	ContentChanged(ctx context.Context, kind string)
}

type Service struct {
	repo          Repository
	location      *time.Location
	defaultLocale string
	listener      ChangeListener
}

func NewService(repo Repository, location *time.Location, defaultLocale string) *Service {
	return &Service{
		repo:          repo,
		location:      location,
		defaultLocale: defaultLocale,
	}
}

func (s *Service) SetChangeListener(l ChangeListener) {
	s.listener = l
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Page, error) {
	now := time.Now().In(s.location)
	page := Page{
		ID:          primitive.NewObjectID().Hex(),
		Slug:        strings.TrimSpace(req.Slug),
		Locale:      strings.TrimSpace(req.Locale),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Sections:    sectionsFrom(req.Sections),
		IsPublished: req.IsPublished != nil && *req.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, page); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Page{}, ErrPageExists
		}
		return Page{}, err
	}
	s.changed(ctx)
	return page, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Page, error) {
	set := bson.M{
		"slug":         strings.TrimSpace(req.Slug),
		"locale":       strings.TrimSpace(req.Locale),
		"title":        strings.TrimSpace(req.Title),
		"description":  strings.TrimSpace(req.Description),
		"sections":     sectionsFrom(req.Sections),
		"is_published": req.IsPublished != nil && *req.IsPublished,
		"updated_at":   time.Now().In(s.location),
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Page{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return Page{}, ErrPageExists
		}
		return Page{}, err
	}
	s.changed(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.changed(ctx)
	return nil
}

// GetPublished returns the page in locale, falling back to the default locale.
func (s *Service) GetPublished(ctx context.Context, slug, locale string) (Page, error) {
	slug = strings.TrimSpace(slug)
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = s.defaultLocale
	}

	page, err := s.repo.GetPublished(ctx, slug, locale)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return Page{}, err
	}
	if locale == s.defaultLocale || s.defaultLocale == "" {
		return Page{}, ErrNotFound
	}

	page, err = s.repo.GetPublished(ctx, slug, s.defaultLocale)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}
	return page, nil
}

func (s *Service) ListAdmin(ctx context.Context, locale string) ([]Page, error) {
	return s.repo.List(ctx, strings.TrimSpace(locale))
}

func (s *Service) changed(ctx context.Context) {
	if s.listener != nil {
		s.listener.ContentChanged(ctx, "pages")
	}
}

func sectionsFrom(reqs []SectionRequest) []Section {
	out := make([]Section, 0, len(reqs))
	for _, r := range reqs {
		sec := Section{
			Kind:    r.Kind,
			Heading: strings.TrimSpace(r.Heading),
			Body:    strings.TrimSpace(r.Body),
			Image:   strings.TrimSpace(r.Image),
			Items:   r.Items,
		}
		if r.CTA != nil {
			sec.CTA = &CTA{Label: strings.TrimSpace(r.CTA.Label), URL: strings.TrimSpace(r.CTA.URL)}
		}
		out = append(out, sec)
	}
	return out
}
