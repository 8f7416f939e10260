package classifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JANE7J/DreamBalance-v2/internal/domain"
)

const (
	quietTitle   = "A Quiet Rest"
	vividTitle   = "A Vivid Dream"
	neutralLabel = "neutral"
	maxTitleLen  = 4
)

var (
	wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

	// Words that never open a title
	titleStopWords = map[string]bool{
		"i": true, "a": true, "the": true, "and": true, "it": true,
	}
)

// Emotioner ranks emotions in a piece of text
type Emotioner interface {
	Classify(ctx context.Context, text string) ([]domain.EmotionScore, error)
}

// Analysis is the derived view of one dream text
type Analysis struct {
	AutoTitle       string                `json:"auto_title"`
	Emotions        []domain.EmotionScore `json:"emotions"`
	DominantEmotion string                `json:"dominant_emotion"`
}

// Analyze titles a dream and, when c is not nil, ranks its emotions.
// Blank text is a quiet rest with a neutral emotion and never reaches c.
func Analyze(ctx context.Context, c Emotioner, text string) (*Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return &Analysis{
			AutoTitle:       quietTitle,
			Emotions:        []domain.EmotionScore{{Label: neutralLabel, Score: 1.0}},
			DominantEmotion: Capitalize(neutralLabel),
		}, nil
	}

	a := &Analysis{AutoTitle: Title(text)}
	if c == nil {
		return a, nil
	}

	emotions, err := c.Classify(ctx, text)
	if err != nil {
		return a, fmt.Errorf("classify: %w", err)
	}
	if len(emotions) > 0 {
		a.Emotions = emotions
		a.DominantEmotion = Capitalize(emotions[0].Label)
	}
	return a, nil
}

// Title builds a short title from the first words of a dream. Leading stop
// words are skipped, the first kept word is capitalized and the next ones
// are kept as written.
func Title(text string) string {
	var words []string
	for _, w := range wordPattern.FindAllString(text, -1) {
		if len(words) == 0 {
			if titleStopWords[strings.ToLower(w)] {
				continue
			}
			w = Capitalize(w)
		}
		words = append(words, w)
		if len(words) >= maxTitleLen {
			break
		}
	}

	if len(words) == 0 {
		return vividTitle
	}
	return strings.Join(words, " ")
}

// Capitalize upper-cases the first letter of a single word and lower-cases the rest
func Capitalize(word string) string {
	return cases.Title(language.English).String(strings.ToLower(word))
}
