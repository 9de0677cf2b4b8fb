// Package web provides a real-time dashboard for the assistant: a JSON
// status API plus websocket feeds for state changes and the rolling
// conversation transcript. The assistant pushes updates; the server
// never reaches into assistant internals.
package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/ashmitan/go-may/pkg/hub"
)

// AssistantState is the dashboard's view of the assistant.
type AssistantState struct {
	Mode        string  `json:"mode"` // passive, conversation
	Speaking    bool    `json:"speaking"`
	Turns       int     `json:"turns"`
	LastHeard   string  `json:"last_heard"`
	LastReply   string  `json:"last_reply"`
	ReplySource string  `json:"reply_source"`
	Emotion     string  `json:"emotion"`
	Latency     Latency `json:"latency"`
}

// Latency is the stage breakdown of the most recent turn.
type Latency struct {
	ListenMs     int64 `json:"listen_ms"`
	EmotionMs    int64 `json:"emotion_ms"`
	GenerateMs   int64 `json:"generate_ms"`
	SynthesizeMs int64 `json:"synthesize_ms"`
	SpeakMs      int64 `json:"speak_ms"`
	TotalMs      int64 `json:"total_ms"`
}

// TranscriptEntry is one line of the conversation feed.
type TranscriptEntry struct {
	Time string `json:"time"`
	Role string `json:"role"` // user, may, system
	Text string `json:"text"`
}

// transcriptLimit caps the in-memory transcript buffer.
const transcriptLimit = 200

// Server is the web dashboard server.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	// State
	state   AssistantState
	stateMu sync.RWMutex

	// Transcript buffer
	transcript   []TranscriptEntry
	transcriptMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	eventHub  *hub.Hub

	// OnReminders supplies the pending reminder list for /api/reminders.
	OnReminders func() any

	// OnInterrupt stops current speech playback for /api/interrupt.
	OnInterrupt func()
}

// NewServer creates a dashboard server listening on addr.
func NewServer(addr string) *Server {
	s := &Server{
		addr:       addr,
		logger:     slog.Default().With("component", "web"),
		state:      AssistantState{Mode: "passive"},
		transcript: make([]TranscriptEntry, 0, transcriptLimit),
		statusHub:  hub.New("status"),
		eventHub:   hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "May Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/conversation", s.handleConversation)
	api.Get("/reminders", s.handleReminders)
	api.Post("/interrupt", s.handleInterrupt)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start runs the hubs and blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", s.addr)

	go s.statusHub.Run()
	go s.eventHub.Run()

	return s.app.Listen(s.addr)
}

// Stop gracefully stops the web server and disconnects all feed
// subscribers.
func (s *Server) Stop() error {
	err := s.app.Shutdown()
	s.statusHub.Close()
	s.eventHub.Close()
	return err
}

// UpdateState applies a mutation to the assistant state and broadcasts
// the new snapshot to status subscribers.
func (s *Server) UpdateState(update func(*AssistantState)) {
	s.stateMu.Lock()
	update(&s.state)
	state := s.state // Copy for broadcast
	s.stateMu.Unlock()

	s.statusHub.BroadcastJSON(state)
}

// AddTranscript appends a line to the conversation feed and broadcasts
// it to event subscribers.
func (s *Server) AddTranscript(role, text string) {
	entry := TranscriptEntry{
		Time: time.Now().Format("15:04:05"),
		Role: role,
		Text: text,
	}

	s.transcriptMu.Lock()
	s.transcript = append(s.transcript, entry)
	if len(s.transcript) > transcriptLimit {
		s.transcript = s.transcript[1:]
	}
	s.transcriptMu.Unlock()

	s.eventHub.BroadcastJSON(entry)
}

// State returns the current state snapshot.
func (s *Server) State() AssistantState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}
