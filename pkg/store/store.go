// Package store persists the assistant's configuration: active
// reminders, the display timezone, and the preferred speaking voice.
// The whole file is rewritten on every mutation.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Defaults applied when no config file exists yet.
const (
	DefaultTimezone = "Asia/Kolkata"
	DefaultVoiceID  = "JBFqnCBsd6RMkjVDRZzb" // George
)

const currentVersion = 1

// Reminder is a single scheduled announcement.
type Reminder struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	FireAt time.Time `json:"fire_at"`
}

// Store holds the persisted assistant configuration.
type Store struct {
	path   string
	logger *slog.Logger

	mu        sync.RWMutex
	reminders map[string]*Reminder
	timezone  string
	voiceID   string
	loc       *time.Location
}

// configData is the JSON structure of the config file.
type configData struct {
	Version   int         `json:"version"`
	UpdatedAt string      `json:"updated_at"`
	Reminders []*Reminder `json:"reminders"`
	Timezone  string      `json:"timezone"`
	VoiceID   string      `json:"voice_id"`
}

// Open loads the config at path, creating it with defaults when absent.
// A corrupt file is replaced by defaults on the next save rather than
// failing startup.
func Open(path string) (*Store, error) {
	s := &Store{
		path:      path,
		logger:    slog.Default().With("component", "store"),
		reminders: make(map[string]*Reminder),
		timezone:  DefaultTimezone,
		voiceID:   DefaultVoiceID,
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			s.logger.Warn("config unreadable, using defaults", "path", path, "error", err)
		}
	} else {
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("seed default config: %w", err)
		}
	}

	s.loc = loadLocation(s.timezone)
	return s, nil
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// load reads the config from disk.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var stored configData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	s.reminders = make(map[string]*Reminder)
	for _, r := range stored.Reminders {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		s.reminders[r.ID] = r
	}
	if stored.Timezone != "" {
		s.timezone = stored.Timezone
	}
	if stored.VoiceID != "" {
		s.voiceID = stored.VoiceID
	}
	return nil
}

// save writes the config to disk.
func (s *Store) save() error {
	stored := configData{
		Version:   currentVersion,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Reminders: sortedReminders(s.reminders),
		Timezone:  s.timezone,
		VoiceID:   s.voiceID,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	// Temp file then rename, so a crash never leaves half a config.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace config: %w", err)
	}

	return nil
}

func sortedReminders(m map[string]*Reminder) []*Reminder {
	out := make([]*Reminder, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

// AddReminder schedules an announcement and persists it.
func (s *Store) AddReminder(text string, fireAt time.Time) (*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &Reminder{
		ID:     uuid.New().String(),
		Text:   text,
		FireAt: fireAt,
	}
	s.reminders[r.ID] = r

	if err := s.save(); err != nil {
		delete(s.reminders, r.ID)
		return nil, err
	}
	return r, nil
}

// RemoveReminder deletes a reminder by ID and persists the change.
func (s *Store) RemoveReminder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[id]; !ok {
		return fmt.Errorf("reminder not found: %s", id)
	}
	delete(s.reminders, id)
	return s.save()
}

// Reminders returns all active reminders, soonest first.
func (s *Store) Reminders() []*Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedReminders(s.reminders)
}

// PopDue removes and returns every reminder with FireAt at or before
// now, soonest first. The removal is persisted before the reminders are
// handed back, so each fires at most once even if announcing fails.
func (s *Store) PopDue(now time.Time) ([]*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Reminder
	for id, r := range s.reminders {
		if !r.FireAt.After(now) {
			due = append(due, r)
			delete(s.reminders, id)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].FireAt.Before(due[j].FireAt)
	})

	if err := s.save(); err != nil {
		return due, err
	}
	return due, nil
}

// Count returns the number of active reminders.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reminders)
}

// Timezone returns the configured IANA timezone name.
func (s *Store) Timezone() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timezone
}

// Location returns the configured timezone, falling back to UTC when
// the stored name does not resolve.
func (s *Store) Location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

// SetTimezone validates, stores, and persists a new timezone.
func (s *Store) SetTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timezone = name
	s.loc = loc
	return s.save()
}

// VoiceID returns the preferred speaking voice.
func (s *Store) VoiceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voiceID
}

// SetVoiceID stores and persists a new speaking voice.
func (s *Store) SetVoiceID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceID = id
	return s.save()
}

// Path returns the file path of the config.
func (s *Store) Path() string {
	return s.path
}
