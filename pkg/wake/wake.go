// Package wake detects the assistant's wake word and conversation-ending
// phrases in transcribed speech.
package wake

import "strings"

// Default phrase lists.
var (
	DefaultWords = []string{"may"}

	DefaultTerminations = []string{
		"goodbye",
		"bye",
		"see you later",
		"talk to you later",
		"stop listening",
		"go to sleep",
		"sleep now",
	}
)

// Detector matches wake words and termination phrases against
// transcribed text. Matching is case-insensitive substring search, so
// "Hey May!" and "MAY" both trigger.
type Detector struct {
	words        []string
	terminations []string
}

// Option configures a Detector.
type Option func(*Detector)

// WithWords replaces the default wake-word list.
func WithWords(words ...string) Option {
	return func(d *Detector) {
		if len(words) > 0 {
			d.words = words
		}
	}
}

// WithTerminations replaces the default termination-phrase list.
func WithTerminations(phrases ...string) Option {
	return func(d *Detector) {
		if len(phrases) > 0 {
			d.terminations = phrases
		}
	}
}

// New creates a Detector with the default phrase lists.
func New(opts ...Option) *Detector {
	d := &Detector{
		words:        DefaultWords,
		terminations: DefaultTerminations,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect reports whether text contains a wake word.
func (d *Detector) Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range d.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Query returns text with the first wake-word occurrence removed and
// the result trimmed. Returns "" when the wake word is the whole
// utterance or is absent.
func (d *Detector) Query(text string) string {
	lower := strings.ToLower(text)
	for _, w := range d.words {
		idx := strings.Index(lower, w)
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(text[:idx] + text[idx+len(w):])
	}
	return ""
}

// IsTermination reports whether text contains a phrase that ends the
// conversation.
func (d *Detector) IsTermination(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range d.terminations {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Words returns the configured wake words.
func (d *Detector) Words() []string {
	return d.words
}
