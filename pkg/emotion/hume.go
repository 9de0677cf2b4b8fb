package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/ashmitan/go-may/internal/httpc"
)

const humeBaseURL = "https://api.hume.ai/v0"

// Hume detects emotions with the Hume batch language model. Each
// utterance is submitted as a batch job and its predictions polled
// until ready.
type Hume struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

var _ Detector = (*Hume)(nil)

// NewHume creates a Hume detector. Returns ErrNotConfigured when the
// API key is missing or still a template placeholder.
func NewHume(opts ...Option) (*Hume, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = humeBaseURL
	}

	return &Hume{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "emotion.hume"),
		baseURL: baseURL,
	}, nil
}

// jobRequest is the batch job submission payload.
type jobRequest struct {
	Models struct {
		Language struct {
			Granularity string `json:"granularity"`
		} `json:"language"`
	} `json:"models"`
	Text []string `json:"text"`
}

type jobResponse struct {
	JobID string `json:"job_id"`
}

// predictionItem mirrors the nesting of the batch predictions payload.
type predictionItem struct {
	Results struct {
		Predictions []struct {
			Models struct {
				Language struct {
					GroupedPredictions []struct {
						Predictions []struct {
							Emotions []Score `json:"emotions"`
						} `json:"predictions"`
					} `json:"grouped_predictions"`
				} `json:"language"`
			} `json:"models"`
		} `json:"predictions"`
	} `json:"results"`
}

// Detect submits the utterance and returns the top three emotions,
// strongest first.
func (h *Hume) Detect(ctx context.Context, text string) (*Result, error) {
	jobID, err := h.submitJob(ctx, text)
	if err != nil {
		return nil, err
	}

	emotions, err := h.pollPredictions(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(emotions) == 0 {
		return nil, ErrNoEmotions
	}

	sort.Slice(emotions, func(i, j int) bool {
		return emotions[i].Score > emotions[j].Score
	})
	top := emotions
	if len(top) > 3 {
		top = top[:3]
	}
	for i := range top {
		top[i].Name = titleCase(top[i].Name)
	}

	result := &Result{
		Primary: top[0].Name,
		Score:   top[0].Score,
		Top:     top,
	}
	h.logger.Info("emotion detected",
		"primary", result.Primary,
		"score", fmt.Sprintf("%.2f", result.Score),
	)
	return result, nil
}

// submitJob starts a batch language job for the utterance.
func (h *Hume) submitJob(ctx context.Context, text string) (string, error) {
	var payload jobRequest
	payload.Models.Language.Granularity = "word"
	payload.Text = []string{text}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL+"/batch/jobs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	h.setHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", h.statusError("job submission", resp)
	}

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", fmt.Errorf("decode job response: %w", err)
	}
	if job.JobID == "" {
		return "", fmt.Errorf("job submission returned no job_id")
	}
	return job.JobID, nil
}

// pollPredictions waits for the job to finish and extracts the emotion
// scores for the first utterance.
func (h *Hume) pollPredictions(ctx context.Context, jobID string) ([]Score, error) {
	url := fmt.Sprintf("%s/batch/jobs/%s/predictions", h.baseURL, jobID)

	var lastErr error
	for attempt := 0; attempt < h.config.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(h.config.PollInterval):
		}

		emotions, err := h.fetchPredictions(ctx, url)
		if err == nil {
			return emotions, nil
		}
		lastErr = err
		h.logger.Debug("predictions not ready",
			"job_id", jobID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	return nil, fmt.Errorf("predictions unavailable after %d attempts: %w", h.config.PollAttempts, lastErr)
}

func (h *Hume) fetchPredictions(ctx context.Context, url string) ([]Score, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	h.setHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch predictions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, h.statusError("predictions", resp)
	}

	var items []predictionItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}

	if len(items) == 0 || len(items[0].Results.Predictions) == 0 {
		return nil, ErrNoEmotions
	}
	grouped := items[0].Results.Predictions[0].Models.Language.GroupedPredictions
	if len(grouped) == 0 || len(grouped[0].Predictions) == 0 {
		return nil, ErrNoEmotions
	}
	return grouped[0].Predictions[0].Emotions, nil
}

func (h *Hume) setHeaders(req *http.Request) {
	req.Header.Set("X-Hume-Api-Key", h.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func (h *Hume) statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s returned status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}

// Name identifies the detector backend.
func (h *Hume) Name() string {
	return "hume"
}

// titleCase uppercases the first letter of each word, matching the
// label style used across the response tables ("Joy", "Surprise").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
