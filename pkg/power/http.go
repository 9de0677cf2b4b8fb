package power

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ashmitan/go-may/internal/httpc"
)

// Reading is the JSON shape served by a remote power agent.
type Reading struct {
	Percent  int  `json:"percent"`
	Charging bool `json:"charging"`
}

// HTTPSource polls a remote power agent for battery charge.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source polling the given battery endpoint.
// The short timeout keeps a dead agent from stalling the passive loop.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url:        url,
		httpClient: httpc.NewClient(2 * time.Second),
	}
}

// Percent returns the current charge in [0, 100].
func (s *HTTPSource) Percent() (int, error) {
	resp, err := s.httpClient.Get(s.url)
	if err != nil {
		return 0, fmt.Errorf("battery request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("battery endpoint returned status %d", resp.StatusCode)
	}

	var reading Reading
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		return 0, fmt.Errorf("battery decode failed: %w", err)
	}

	percent := reading.Percent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent, nil
}

// Name identifies the backend.
func (s *HTTPSource) Name() string {
	return "http"
}
