// Package session holds the assistant's mutable runtime state shared by
// the passive and conversation loops.
package session

import (
	"fmt"
	"sync"
)

// DefaultWindowSize bounds the conversation history kept for prompts.
const DefaultWindowSize = 5

// Exchange is one completed conversation turn.
type Exchange struct {
	Query    string
	Response string
}

// String formats the exchange the way it is embedded in model prompts.
func (e Exchange) String() string {
	return fmt.Sprintf("User: %s | May: %s", e.Query, e.Response)
}

// State tracks conversation status across the assistant's loops.
// All methods are safe for concurrent use.
type State struct {
	mu          sync.RWMutex
	active      bool
	speaking    bool
	interrupted bool
	windowSize  int
	window      []Exchange
}

// New creates session state with the default context window size.
func New() *State {
	return NewWithWindow(DefaultWindowSize)
}

// NewWithWindow creates session state with a custom context window size.
func NewWithWindow(size int) *State {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &State{windowSize: size}
}

// ConversationActive reports whether conversation mode is running.
func (s *State) ConversationActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetConversationActive marks conversation mode on or off.
func (s *State) SetConversationActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

// Speaking reports whether audio playback is in progress.
func (s *State) Speaking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speaking
}

// SetSpeaking marks audio playback on or off.
func (s *State) SetSpeaking(speaking bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = speaking
}

// Interrupted reports whether the user cut off the current utterance.
func (s *State) Interrupted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interrupted
}

// SetInterrupted marks or clears the interrupt flag.
func (s *State) SetInterrupted(interrupted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interrupted = interrupted
}

// AppendExchange records a completed turn, evicting the oldest entry
// once the window is full.
func (s *State) AppendExchange(query, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window = append(s.window, Exchange{Query: query, Response: response})
	if len(s.window) > s.windowSize {
		s.window = s.window[1:]
	}
}

// Window returns a copy of the current context window, oldest first.
func (s *State) Window() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Exchange, len(s.window))
	copy(out, s.window)
	return out
}

// Recent returns the formatted last n exchanges, oldest first. Returns
// nil when the window is empty.
func (s *State) Recent(n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.window) == 0 || n <= 0 {
		return nil
	}
	start := len(s.window) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, len(s.window)-start)
	for _, e := range s.window[start:] {
		out = append(out, e.String())
	}
	return out
}

// Len returns the number of exchanges currently held.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.window)
}

// Reset clears the context window and all flags.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.speaking = false
	s.interrupted = false
	s.window = nil
}
