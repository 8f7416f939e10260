package analytics

import (
	"strings"

	"github.com/JANE7J/DreamBalance-v2/internal/domain"
)

// State is the emotional category an entry is classified into
type State string

const (
	StateCalm   State = "Calm"
	StateStress State = "Stress"
)

// TieBreaker records how the dominant state was decided
type TieBreaker string

const (
	TieBreakerNone   TieBreaker = "none"
	TieBreakerWeekly TieBreaker = "weekly"
	TieBreakerRecent TieBreaker = "recent"
)

var calmLabels = map[string]bool{
	"happy":     true,
	"peaceful":  true,
	"refreshed": true,
	"energized": true,
}

var stressLabels = map[string]bool{
	"sad":      true,
	"anxious":  true,
	"scared":   true,
	"confused": true,
	"tired":    true,
	"fear":     true,
}

// Result is the calm/stress distribution of a set of entries
type Result struct {
	CalmPercentage   int        `json:"calm_percentage"`
	StressPercentage int        `json:"stress_percentage"`
	DominantState    State      `json:"dominant_state"`
	TieBreaker       TieBreaker `json:"tie_breaker"`
}

// NormalizeLabel trims and lower-cases an emotion label
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// Classify maps an emotion label to its category.
// Labels outside both category sets report ok == false.
func Classify(label string) (state State, ok bool) {
	norm := NormalizeLabel(label)
	switch {
	case calmLabels[norm]:
		return StateCalm, true
	case stressLabels[norm]:
		return StateStress, true
	default:
		return "", false
	}
}

// Analyze tallies entries into calm and stress and picks the dominant state.
// Entries must be ordered most recent first; entry 0 breaks exact ties.
// Unlabeled and unrecognized entries are left out of every count.
func Analyze(entries []domain.Entry) Result {
	var calm, stress int
	for _, e := range entries {
		state, ok := Classify(e.DominantEmotion)
		if !ok {
			continue
		}
		if state == StateCalm {
			calm++
		} else {
			stress++
		}
	}

	total := calm + stress
	if total == 0 {
		return Result{DominantState: StateCalm, TieBreaker: TieBreakerNone}
	}

	res := Result{
		CalmPercentage:   percent(calm, total),
		StressPercentage: percent(stress, total),
	}

	switch {
	case res.CalmPercentage > res.StressPercentage:
		res.DominantState, res.TieBreaker = StateCalm, TieBreakerWeekly
	case res.StressPercentage > res.CalmPercentage:
		res.DominantState, res.TieBreaker = StateStress, TieBreakerWeekly
	default:
		res.DominantState, res.TieBreaker = mostRecentState(entries), TieBreakerRecent
	}

	return res
}

// mostRecentState resolves a tie from entry 0. Anything that is not a calm
// label, including an empty one, counts as stress.
func mostRecentState(entries []domain.Entry) State {
	if len(entries) == 0 {
		return StateCalm
	}
	if calmLabels[NormalizeLabel(entries[0].DominantEmotion)] {
		return StateCalm
	}
	return StateStress
}

// percent rounds count/total*100 half-up, in integers to avoid float drift.
// Each share is rounded on its own so two shares need not sum to 100.
func percent(count, total int) int {
	return (count*200 + total) / (2 * total)
}
