package submissions

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Mrwire/geniusad-sub002/internal/forms"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotFound      = errors.New("submission not found")
)

const notifyTimeout = 8 * time.Second

type Notifier interface {
	SendSubmissionNotification(ctx context.Context, sub Submission) (string, error)
	SendSubmissionConfirmation(ctx context.Context, sub Submission) (string, error)
}

type Service struct {
	repo     Repository
	location *time.Location
	notifier Notifier
	log      *slog.Logger

	// async runs notification work; tests replace it to run inline.
	async func(func())
}

func NewService(repo Repository, location *time.Location, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		location: location,
		notifier: notifier,
		log:      log,
		async:    func(fn func()) { go fn() },
	}
}

// Submit stores validated form values and sends the e-mails in the background.
// It implements forms.Submitter.
func (s *Service) Submit(ctx context.Context, def forms.Definition, values map[string]string, meta forms.Meta) error {
	sub, err := s.Create(ctx, def, values, meta)
	if err != nil {
		return err
	}
	s.async(func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		s.notify(notifyCtx, def, sub)
	})
	return nil
}

func (s *Service) Create(ctx context.Context, def forms.Definition, values map[string]string, meta forms.Meta) (Submission, error) {
	now := time.Now().In(s.location)
	sub := Submission{
		ID:         primitive.NewObjectID().Hex(),
		FormID:     def.ID,
		FormTitle:  def.Title,
		Entries:    make([]Entry, 0, len(def.Fields)),
		Status:     StatusNew,
		Locale:     meta.Locale,
		Subsidiary: meta.Subsidiary,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, field := range def.Fields {
		v := strings.TrimSpace(values[field.ID])
		sub.Entries = append(sub.Entries, Entry{FieldID: field.ID, Label: field.Label, Value: v})
	}
	if id := def.EmailField(); id != "" {
		sub.Email = strings.ToLower(sub.Value(id))
	}
	sub.Name = sub.Value("name")

	if err := s.repo.Create(ctx, sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *Service) notify(ctx context.Context, def forms.Definition, sub Submission) {
	if s.notifier == nil {
		return
	}
	if def.Notify {
		if _, err := s.notifier.SendSubmissionNotification(ctx, sub); err != nil {
			s.log.Warn("submission notify: team email failed",
				slog.String("submission_id", sub.ID),
				slog.String("form_id", sub.FormID),
				slog.String("error", err.Error()),
			)
		}
	}
	if sub.Email != "" {
		if _, err := s.notifier.SendSubmissionConfirmation(ctx, sub); err != nil {
			s.log.Warn("submission notify: confirmation email failed",
				slog.String("submission_id", sub.ID),
				slog.String("email", sub.Email),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *Service) ListAdmin(ctx context.Context, filter ListFilter, limit, offset int64) ([]Submission, int64, error) {
	filter.FormID = strings.TrimSpace(filter.FormID)
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) GetAdminByID(ctx context.Context, id string) (Submission, error) {
	sub, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return sub, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Submission, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !IsValidStatus(status) {
		return Submission{}, ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(id), status, time.Now().In(s.location))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	return updated, nil
}
