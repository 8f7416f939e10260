package analytics

// Insight is the reasoning and advice shown with a weekly report
type Insight struct {
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations"`
}

var recommendations = map[State][]string{
	StateStress: {
		"Practice relaxation before sleep",
		"Reduce screen time at night",
		"Try breathing or meditation exercises",
	},
	StateCalm: {
		"Maintain your current sleep routine",
		"Continue positive daily habits",
		"Practice gratitude before sleep",
	},
}

type insightKey struct {
	state  State
	recent bool
}

var reasonings = map[insightKey]string{
	{StateStress, false}: "Your dreams this week show elevated stress-related emotions. " +
		"This may reflect tension or anxiety during waking hours.",
	{StateStress, true}: "Calm and stress were evenly balanced this week, but your most recent dream reflects stress. " +
		"Something on your mind right now may deserve attention.",
	{StateCalm, false}: "Your dreams this week show mostly calm emotional patterns, " +
		"indicating balance and recovery.",
	{StateCalm, true}: "Calm and stress were evenly balanced this week, and your most recent dream reflects calm. " +
		"You seem to be settling into balance.",
}

// GenerateInsight looks up the insight for a dominant state.
// Only a recent tie-break changes the wording; none reads like weekly.
func GenerateInsight(state State, tb TieBreaker) Insight {
	if state != StateStress {
		state = StateCalm
	}

	recs := recommendations[state]
	out := make([]string, len(recs))
	copy(out, recs)

	return Insight{
		Reasoning:       reasonings[insightKey{state: state, recent: tb == TieBreakerRecent}],
		Recommendations: out,
	}
}
