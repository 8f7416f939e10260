package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JANE7J/DreamBalance-v2/internal/classifier"
	"github.com/JANE7J/DreamBalance-v2/internal/domain"
	"github.com/JANE7J/DreamBalance-v2/internal/textclean"
)

// ErrInvalidInput marks requests that fail validation
var ErrInvalidInput = errors.New("invalid input")

// Store is the entry persistence the journal needs
type Store interface {
	CreateEntry(ctx context.Context, e *domain.Entry) error
	UpdateEntry(ctx context.Context, e *domain.Entry) error
	DeleteEntry(ctx context.Context, userID, id int64) error
	GetEntry(ctx context.Context, userID, id int64) (*domain.Entry, error)
	ListEntriesInRange(ctx context.Context, userID int64, from, to string) ([]domain.Entry, error)
}

// Service holds the entry use cases
type Service struct {
	store      Store
	classifier classifier.Emotioner
	now        func() time.Time
}

// NewService creates a journal service. emo may be nil, in which case
// entries are titled but not classified.
func NewService(store Store, emo classifier.Emotioner) *Service {
	return &Service{
		store:      store,
		classifier: emo,
		now:        time.Now,
	}
}

// EntryInput carries the user-editable fields of an entry.
// EntryDate is only read on create.
type EntryInput struct {
	EntryDate            string
	Description          string
	Mood                 string
	Title                string
	MoodBeforeSleep      string
	SleepType            string
	SleepDurationMinutes *int
	HadDream             *bool
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Create validates and stores a new entry for userID
func (s *Service) Create(ctx context.Context, userID int64, in EntryInput) (*domain.Entry, error) {
	date, err := s.parseEntryDate(in.EntryDate)
	if err != nil {
		return nil, err
	}
	if err := validateSleep(in); err != nil {
		return nil, err
	}

	entry := &domain.Entry{UserID: userID, EntryDate: date}
	s.apply(ctx, entry, in)

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("entry_id", entry.ID).
		Str("entry_date", entry.EntryDate).
		Str("dominant_emotion", entry.DominantEmotion).
		Msg("entry created")

	return entry, nil
}

// Update rewrites the editable fields of an existing entry
func (s *Service) Update(ctx context.Context, userID, id int64, in EntryInput) (*domain.Entry, error) {
	if err := validateSleep(in); err != nil {
		return nil, err
	}

	entry, err := s.store.GetEntry(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}

	s.apply(ctx, entry, in)

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	zerolog.Ctx(ctx).Info().Int64("entry_id", entry.ID).Msg("entry updated")
	return entry, nil
}

// Delete removes an entry
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteEntry(ctx, userID, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	zerolog.Ctx(ctx).Info().Int64("entry_id", id).Msg("entry deleted")
	return nil
}

// Get returns one entry with its emotion ranking
func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Entry, error) {
	entry, err := s.store.GetEntry(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// ListMonth returns the entries of a calendar month in date order
func (s *Service) ListMonth(ctx context.Context, userID int64, year, month int) ([]domain.Entry, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, invalid("year out of range")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	entries, err := s.store.ListEntriesInRange(ctx, userID, first.Format(domain.DateLayout), last.Format(domain.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list month: %w", err)
	}
	return entries, nil
}

// apply copies input onto entry and derives the title and emotion fields.
// The chosen mood wins over the classifier as the entry's emotion label.
func (s *Service) apply(ctx context.Context, entry *domain.Entry, in EntryInput) {
	entry.DreamText = textclean.PlainText(in.Description)
	entry.UserTitle = strings.TrimSpace(in.Title)
	entry.FeelingAfterWaking = strings.TrimSpace(in.Mood)
	entry.MoodBeforeSleep = strings.TrimSpace(in.MoodBeforeSleep)
	entry.SleepType = strings.TrimSpace(in.SleepType)
	entry.SleepDurationMinutes = in.SleepDurationMinutes
	entry.HadDream = in.HadDream

	analysis, err := classifier.Analyze(ctx, s.classifier, entry.DreamText)
	if err != nil {
		// Classification is best effort; the entry is still saved
		zerolog.Ctx(ctx).Warn().Err(err).Msg("dream classification failed")
	}

	entry.AutoTitle = analysis.AutoTitle
	entry.Emotions = analysis.Emotions
	entry.DominantEmotion = entry.FeelingAfterWaking
	if entry.DominantEmotion == "" {
		entry.DominantEmotion = analysis.DominantEmotion
	}
}

func (s *Service) parseEntryDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("entry_date is required")
	}

	date, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return "", invalid("entry_date must be YYYY-MM-DD")
	}

	today := s.now().Format(domain.DateLayout)
	if date.Format(domain.DateLayout) > today {
		return "", invalid("entry_date cannot be in the future")
	}
	return date.Format(domain.DateLayout), nil
}

func validateSleep(in EntryInput) error {
	if in.SleepDurationMinutes != nil && (*in.SleepDurationMinutes < 0 || *in.SleepDurationMinutes > 24*60) {
		return invalid("sleep_duration_minutes must be between 0 and 1440")
	}
	return nil
}
