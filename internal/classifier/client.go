package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/JANE7J/DreamBalance-v2/internal/domain"
)

// ErrNotConfigured is returned by New when no endpoint is set
var ErrNotConfigured = errors.New("emotion classifier endpoint not configured")

// Client calls a text-classification endpoint that ranks emotions.
// The wire format is the Hugging Face inference one: the request is
// {"inputs": text} and the response a list of {label, score}, optionally
// nested once.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New creates a Client. An empty endpoint yields ErrNotConfigured.
func New(endpoint, token string, timeout time.Duration) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

type apiRequest struct {
	Inputs string `json:"inputs"`
}

type apiError struct {
	Error string `json:"error"`
}

// Classify returns the emotion ranking for text, best score first
func (c *Client) Classify(ctx context.Context, text string) ([]domain.EmotionScore, error) {
	body, err := c.callAPI(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}

	scores, err := parseResponse(body)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

func (c *Client) callAPI(ctx context.Context, text string) ([]byte, error) {
	jsonBody, err := json.Marshal(apiRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func parseResponse(body []byte) ([]domain.EmotionScore, error) {
	var nested [][]domain.EmotionScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("empty response")
		}
		return nested[0], nil
	}

	var flat []domain.EmotionScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, string(body))
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	return flat, nil
}
