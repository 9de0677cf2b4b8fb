package assistant

import "time"

// State identifies which loop currently owns the microphone.
type State string

const (
	// StatePassive is wake-word monitoring.
	StatePassive State = "passive"

	// StateConversation is active turn-taking after a wake.
	StateConversation State = "conversation"
)

// EventKind labels an observable assistant event.
type EventKind string

const (
	// EventState fires when the assistant switches loops.
	EventState EventKind = "state"

	// EventHeard carries a transcribed user utterance.
	EventHeard EventKind = "heard"

	// EventReply carries the assistant's chosen response.
	EventReply EventKind = "reply"

	// EventReminder fires when a due reminder is announced.
	EventReminder EventKind = "reminder"

	// EventBattery fires when a low-battery warning is announced.
	EventBattery EventKind = "battery"
)

// Event is one observable step of the assistant's loops. Events feed
// the dashboard transcript and any sink registered with WithEventSink.
type Event struct {
	Kind    EventKind `json:"kind"`
	Text    string    `json:"text,omitempty"`
	Source  string    `json:"source,omitempty"`
	Emotion string    `json:"emotion,omitempty"`
	At      time.Time `json:"at"`
}

// Status is a point-in-time snapshot of the assistant's runtime state.
type Status struct {
	State     State       `json:"state"`
	Speaking  bool        `json:"speaking"`
	Turns     int         `json:"turns"`
	LastHeard string      `json:"last_heard,omitempty"`
	LastReply string      `json:"last_reply,omitempty"`
	LastTurn  TurnMetrics `json:"last_turn"`
}
