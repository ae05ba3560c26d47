package casestudies

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("case study not found")
	ErrSlugExists        = errors.New("slug already exists")
	ErrInvalidSlug       = errors.New("invalid slug")
	ErrUnknownSubsidiary = errors.New("unknown subsidiary")
)

// SubsidiaryResolver turns a subsidiary slug into the reference embedded in records.
// Implementations return ErrUnknownSubsidiary when the slug does not exist.
type SubsidiaryResolver interface {
	ResolveRef(ctx context.Context, slug string) (SubsidiaryRef, error)
}

// ChangeListener is told when published content changes so cached views can be dropped.
type ChangeListener interface {
	ContentChanged(ctx context.Context, kind string)
}

type Service struct {
	repo     Repository
	location *time.Location
	resolver SubsidiaryResolver
	listener ChangeListener
}

func NewService(repo Repository, location *time.Location, resolver SubsidiaryResolver) *Service {
	return &Service{
		repo:     repo,
		location: location,
		resolver: resolver,
	}
}

func (s *Service) SetChangeListener(l ChangeListener) {
	s.listener = l
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (CaseStudy, error) {
	slug := normalizeSlug(req.Slug, req.Title)
	if slug == "" {
		return CaseStudy{}, ErrInvalidSlug
	}
	ref, err := s.resolveSubsidiary(ctx, req.SubsidiarySlug)
	if err != nil {
		return CaseStudy{}, err
	}

	now := time.Now().In(s.location)
	item := CaseStudy{
		ID:          primitive.NewObjectID().Hex(),
		Slug:        slug,
		Title:       strings.TrimSpace(req.Title),
		ClientName:  strings.TrimSpace(req.ClientName),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		CoverImage:  strings.TrimSpace(req.CoverImage),
		Industry:    cleanTags(req.Industry),
		Services:    cleanTags(req.Services),
		Featured:    boolOr(req.Featured, false),
		Subsidiary:  ref,
		IsPublished: boolOr(req.IsPublished, false),
		SortOrder:   intOr(req.SortOrder, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return CaseStudy{}, ErrSlugExists
		}
		return CaseStudy{}, err
	}
	s.changed(ctx)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (CaseStudy, error) {
	id = strings.TrimSpace(id)
	slug := normalizeSlug(req.Slug, req.Title)
	if slug == "" {
		return CaseStudy{}, ErrInvalidSlug
	}
	ref, err := s.resolveSubsidiary(ctx, req.SubsidiarySlug)
	if err != nil {
		return CaseStudy{}, err
	}

	set := bson.M{
		"slug":         slug,
		"title":        strings.TrimSpace(req.Title),
		"client_name":  strings.TrimSpace(req.ClientName),
		"category":     strings.TrimSpace(req.Category),
		"description":  strings.TrimSpace(req.Description),
		"cover_image":  strings.TrimSpace(req.CoverImage),
		"industry":     cleanTags(req.Industry),
		"services":     cleanTags(req.Services),
		"featured":     boolOr(req.Featured, false),
		"is_published": boolOr(req.IsPublished, false),
		"sort_order":   intOr(req.SortOrder, 0),
		"updated_at":   time.Now().In(s.location),
	}
	if ref != nil {
		set["subsidiary"] = *ref
	} else {
		set["subsidiary"] = nil
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return CaseStudy{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return CaseStudy{}, ErrSlugExists
		}
		return CaseStudy{}, err
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

func (s *Service) ListPublic(ctx context.Context, filter PublicListFilter) ([]CaseStudy, error) {
	return s.repo.ListPublic(ctx, filter)
}

// Browse loads published records and applies the selection and search query to them.
func (s *Service) Browse(ctx context.Context, filter PublicListFilter, sel Selection, query string) (ListResult, error) {
	items, err := s.repo.ListPublic(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}
	return BuildListResult(items, sel, query), nil
}

// BuildListResult applies sel and query to items and packages the visible subset with its flags.
func BuildListResult(items []CaseStudy, sel Selection, query string) ListResult {
	res := ApplyWithQuery(items, sel, query)
	return ListResult{
		Items:           res.Select(items),
		Total:           len(items),
		Selection:       sel,
		Query:           strings.TrimSpace(query),
		AnyActive:       res.AnyActive,
		HasVisible:      res.HasVisible,
		ShowEmpty:       res.ShowEmpty,
		NoSearchResults: res.NoSearchResults,
	}
}

func (s *Service) Facets(ctx context.Context) (Facets, error) {
	items, err := s.repo.ListPublic(ctx, PublicListFilter{})
	if err != nil {
		return Facets{}, err
	}
	return BuildFacets(items), nil
}

func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (CaseStudy, error) {
	item, err := s.repo.GetPublishedBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return CaseStudy{}, ErrNotFound
		}
		return CaseStudy{}, err
	}
	return item, nil
}

func (s *Service) ListAdmin(ctx context.Context, filter AdminListFilter, limit, offset int64) ([]CaseStudy, int64, error) {
	filter.SubsidiarySlug = strings.TrimSpace(filter.SubsidiarySlug)
	items, err := s.repo.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountAdmin(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateSubsidiaryRef propagates a subsidiary rename into the records that reference it.
func (s *Service) UpdateSubsidiaryRef(ctx context.Context, ref SubsidiaryRef) error {
	n, err := s.repo.UpdateSubsidiaryRef(ctx, ref)
	if err != nil {
		return err
	}
	if n > 0 {
		s.changed(ctx)
	}
	return nil
}

// ClearSubsidiaryRef drops the reference to a deleted subsidiary from the records.
func (s *Service) ClearSubsidiaryRef(ctx context.Context, subsidiaryID string) error {
	n, err := s.repo.ClearSubsidiaryRef(ctx, subsidiaryID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.changed(ctx)
	}
	return nil
}

func (s *Service) resolveSubsidiary(ctx context.Context, slug string) (*SubsidiaryRef, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	if s.resolver == nil {
		return nil, ErrUnknownSubsidiary
	}
	ref, err := s.resolver.ResolveRef(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (s *Service) changed(ctx context.Context) {
	if s.listener != nil {
		s.listener.ContentChanged(ctx, "case_studies")
	}
}

func normalizeSlug(slug, title string) string {
	raw := strings.TrimSpace(slug)
	if raw == "" {
		raw = strings.TrimSpace(title)
	}
	return utils.Slugify(raw)
}

// cleanTags trims tags, drops blanks and duplicates, and always returns a non-nil slice.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
