package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JANE7J/DreamBalance-v2/internal/domain"
)

type stubEmotioner struct {
	scores []domain.EmotionScore
	err    error
	calls  int
}

func (s *stubEmotioner) Classify(ctx context.Context, text string) ([]domain.EmotionScore, error) {
	s.calls++
	return s.scores, s.err
}

func TestTitle(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"I was flying over the ocean at night", "Was flying over the"},
		{"the THE a and it ran away", "Ran away"},
		{"swimming", "Swimming"},
		{"It rained; cats, dogs!", "Rained cats dogs"},
		{"...", "A Vivid Dream"},
		{"i a the", "A Vivid Dream"},
		{"Écoute la mer calme", "Écoute la mer calme"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.text))
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Fear", Capitalize("fear"))
	assert.Equal(t, "Joy", Capitalize("JOY"))
	assert.Equal(t, "Neutral", Capitalize("neutral"))
}

func TestAnalyzeBlankText(t *testing.T) {
	stub := &stubEmotioner{}

	a, err := Analyze(context.Background(), stub, "  \n ")
	require.NoError(t, err)
	assert.Equal(t, "A Quiet Rest", a.AutoTitle)
	assert.Equal(t, []domain.EmotionScore{{Label: "neutral", Score: 1.0}}, a.Emotions)
	assert.Equal(t, "Neutral", a.DominantEmotion)
	assert.Zero(t, stub.calls)
}

func TestAnalyzeWithoutClassifier(t *testing.T) {
	a, err := Analyze(context.Background(), nil, "Running through a maze")
	require.NoError(t, err)
	assert.Equal(t, "Running through a maze", a.AutoTitle)
	assert.Empty(t, a.Emotions)
	assert.Empty(t, a.DominantEmotion)
}

func TestAnalyzeUsesTopEmotion(t *testing.T) {
	stub := &stubEmotioner{scores: []domain.EmotionScore{
		{Label: "fear", Score: 0.7},
		{Label: "sadness", Score: 0.2},
	}}

	a, err := Analyze(context.Background(), stub, "Something chased me")
	require.NoError(t, err)
	assert.Equal(t, "Fear", a.DominantEmotion)
	assert.Len(t, a.Emotions, 2)
}

func TestAnalyzeKeepsTitleOnClassifierError(t *testing.T) {
	stub := &stubEmotioner{err: errors.New("unavailable")}

	a, err := Analyze(context.Background(), stub, "Lost in a library")
	require.Error(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Lost in a library", a.AutoTitle)
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New("  ", "", time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientClassifyNestedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a dark corridor", req.Inputs)

		_, _ = w.Write([]byte(`[[{"label":"joy","score":0.1},{"label":"fear","score":0.8},{"label":"neutral","score":0.1}]]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "secret", time.Second)
	require.NoError(t, err)

	scores, err := c.Classify(context.Background(), "a dark corridor")
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "fear", scores[0].Label)
	assert.InDelta(t, 0.8, scores[0].Score, 1e-9)
}

func TestClientClassifyFlatResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"label":"sadness","score":0.3},{"label":"joy","score":0.6}]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", time.Second)
	require.NoError(t, err)

	scores, err := c.Classify(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "joy", scores[0].Label)
}

func TestClientClassifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model is loading"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", time.Second)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is loading")
}

func TestClientClassifyEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "", time.Second)
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), "text")
	assert.Error(t, err)
}
