package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// handleIndex lists the available endpoints.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "may-dashboard",
		"endpoints": []string{
			"GET /api/status",
			"GET /api/conversation",
			"GET /api/reminders",
			"POST /api/interrupt",
			"WS /ws/status",
			"WS /ws/events",
		},
	})
}

// handleStatus returns the assistant's current state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleConversation returns the buffered transcript.
func (s *Server) handleConversation(c *fiber.Ctx) error {
	s.transcriptMu.RLock()
	defer s.transcriptMu.RUnlock()
	return c.JSON(s.transcript)
}

// handleReminders returns the pending reminder list.
func (s *Server) handleReminders(c *fiber.Ctx) error {
	if s.OnReminders == nil {
		return c.JSON([]any{})
	}
	return c.JSON(s.OnReminders())
}

// handleInterrupt stops current speech playback.
func (s *Server) handleInterrupt(c *fiber.Ctx) error {
	if s.OnInterrupt == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "interrupt not available",
		})
	}
	s.OnInterrupt()
	return c.JSON(fiber.Map{"interrupted": true})
}

// handleStatusWS streams state snapshots. The current state is sent
// immediately, then every change as it happens.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.stateMu.RLock()
	state := s.state
	s.stateMu.RUnlock()
	if err := c.WriteJSON(state); err != nil {
		c.Close()
		return
	}

	s.statusHub.Serve(c)
}

// handleEventsWS streams transcript lines. The buffered transcript is
// replayed first so late subscribers see the whole conversation.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	s.transcriptMu.RLock()
	backlog := make([]TranscriptEntry, len(s.transcript))
	copy(backlog, s.transcript)
	s.transcriptMu.RUnlock()

	for _, entry := range backlog {
		if err := c.WriteJSON(entry); err != nil {
			c.Close()
			return
		}
	}

	s.eventHub.Serve(c)
}
