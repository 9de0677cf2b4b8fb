// Package reminder parses spoken reminder requests and announces them
// once due. Reminders live in the config store so they survive
// restarts.
package reminder

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ashmitan/go-may/pkg/store"
)

// Supported request forms:
//
//	"remind me in 10 minutes to stretch"
//	"remind me to stretch in 10 minutes"
//	"set a reminder in 5 minutes to check the oven"
var (
	reInTo = regexp.MustCompile(`(?i)(?:remind me|set a reminder) in (\d+) minutes? to (.+)`)
	reToIn = regexp.MustCompile(`(?i)(?:remind me|set a reminder) to (.+) in (\d+) minutes?`)
)

// Parse extracts a reminder request from an utterance. ok is false when
// the text is not a reminder request.
func Parse(text string) (minutes int, what string, ok bool) {
	if m := reInTo.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, "", false
		}
		return n, cleanWhat(m[2]), true
	}
	if m := reToIn.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, "", false
		}
		return n, cleanWhat(m[1]), true
	}
	return 0, "", false
}

func cleanWhat(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".!?")
}

// Service schedules reminders and delivers them when due.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService creates a reminder service backed by the given store.
func NewService(st *store.Store) *Service {
	return &Service{
		store:  st,
		logger: slog.Default().With("component", "reminder"),
	}
}

// Set schedules a reminder and returns the spoken confirmation.
func (s *Service) Set(what string, minutes int) string {
	fireAt := time.Now().In(s.store.Location()).Add(time.Duration(minutes) * time.Minute)
	if _, err := s.store.AddReminder(what, fireAt); err != nil {
		s.logger.Error("failed to save reminder", "error", err)
		return "Failed to set reminder."
	}
	s.logger.Info("reminder set", "text", what, "fire_at", fireAt)
	return fmt.Sprintf("Reminder set for %d minutes from now.", minutes)
}

// Handle parses text as a reminder request and schedules it. ok is
// false when text is not a reminder request.
func (s *Service) Handle(text string) (response string, ok bool) {
	minutes, what, ok := Parse(text)
	if !ok {
		return "", false
	}
	return s.Set(what, minutes), true
}

// CheckDue announces and clears every reminder due at now, soonest
// first. Each announcement runs to completion before the next. Returns
// the number announced.
func (s *Service) CheckDue(now time.Time, announce func(text string)) int {
	due, err := s.store.PopDue(now)
	if err != nil {
		s.logger.Warn("failed to persist reminder removal", "error", err)
	}
	for _, r := range due {
		announce(fmt.Sprintf("Reminder: %s", r.Text))
	}
	return len(due)
}
