package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/JANE7J/DreamBalance-v2/internal/domain"
	"github.com/JANE7J/DreamBalance-v2/internal/metrics"
)

// WindowDays is the length of the trailing analytics window in calendar days
const WindowDays = 7

// Report is the weekly analytics response
type Report struct {
	StateDistribution map[State]int `json:"state_distribution"`
	DominantState     State         `json:"dominant_state"`
	TieBreaker        TieBreaker    `json:"tie_breaker"`
	AIInsight         Insight       `json:"ai_insight"`
	WeekSummary       WeekSummary   `json:"week_summary"`
}

// WeekSummary is the raw label tally of the window
type WeekSummary struct {
	TotalEntries    int            `json:"total_entries"`
	DominantEmotion string         `json:"dominant_emotion"`
	EmotionSummary  map[string]int `json:"emotion_summary"`
}

// Assemble combines an analysis and its insight into a report
func Assemble(res Result, insight Insight, summary WeekSummary) Report {
	return Report{
		StateDistribution: map[State]int{
			StateCalm:   res.CalmPercentage,
			StateStress: res.StressPercentage,
		},
		DominantState: res.DominantState,
		TieBreaker:    res.TieBreaker,
		AIInsight:     insight,
		WeekSummary:   summary,
	}
}

// Summarize counts raw emotion labels as stored. The dominant emotion is the
// most frequent label; the first one seen wins a tie.
func Summarize(entries []domain.Entry) WeekSummary {
	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if e.DominantEmotion == "" {
			continue
		}
		if _, seen := counts[e.DominantEmotion]; !seen {
			order = append(order, e.DominantEmotion)
		}
		counts[e.DominantEmotion]++
	}

	dominant := "Neutral"
	best := 0
	for _, label := range order {
		if counts[label] > best {
			dominant, best = label, counts[label]
		}
	}

	return WeekSummary{
		TotalEntries:    len(entries),
		DominantEmotion: dominant,
		EmotionSummary:  counts,
	}
}

// EntrySource is the read side of the entry store used by analytics
type EntrySource interface {
	// RecentEntries returns entries dated within [from, to], newest first.
	RecentEntries(ctx context.Context, userID int64, from, to string) ([]domain.Entry, error)
}

// Service builds weekly reports from stored entries
type Service struct {
	source  EntrySource
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a report service. m may be nil.
func NewService(source EntrySource, m *metrics.Metrics) *Service {
	return &Service{
		source:  source,
		metrics: m,
		now:     time.Now,
	}
}

// Window returns the inclusive date range ending on the day of now
func Window(now time.Time) (from, to string) {
	return now.AddDate(0, 0, -WindowDays).Format(domain.DateLayout), now.Format(domain.DateLayout)
}

// WeeklyReport analyzes the user's entries of the trailing window
func (s *Service) WeeklyReport(ctx context.Context, userID int64) (*Report, error) {
	from, to := Window(s.now())

	entries, err := s.source.RecentEntries(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch recent entries: %w", err)
	}

	res := Analyze(entries)
	report := Assemble(res, GenerateInsight(res.DominantState, res.TieBreaker), Summarize(entries))

	if s.metrics != nil {
		s.metrics.ObserveReport(string(res.DominantState), string(res.TieBreaker))
	}

	zerolog.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int("entries", len(entries)).
		Str("dominant_state", string(res.DominantState)).
		Str("tie_breaker", string(res.TieBreaker)).
		Msg("weekly report built")

	return &report, nil
}
