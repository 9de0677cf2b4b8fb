package display

import (
	"log/slog"
	"net"
	"sync"
	"time"
)

// Connection parameters for the companion display.
const (
	DefaultPort  = "8888"
	DialTimeout  = 2 * time.Second
	WriteTimeout = 2 * time.Second
)

// Client maintains a best-effort connection to the display. A send
// while disconnected tries one reconnect; if that fails the message is
// dropped silently. An empty address disables the client entirely.
type Client struct {
	addr   string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

// NewClient creates a client for the display at addr and attempts the
// initial connection. A failed connect is logged, not fatal.
func NewClient(addr string) *Client {
	c := &Client{
		addr:   addr,
		logger: slog.Default().With("component", "display"),
	}
	if addr == "" {
		return c
	}

	c.mu.Lock()
	c.dialLocked()
	c.mu.Unlock()
	return c
}

// dialLocked connects to the display. Callers hold c.mu.
func (c *Client) dialLocked() bool {
	conn, err := net.DialTimeout("tcp", c.addr, DialTimeout)
	if err != nil {
		c.logger.Warn("display connect failed", "addr", c.addr, "error", err)
		c.conn = nil
		return false
	}
	c.conn = conn
	c.logger.Info("display connected", "addr", c.addr)
	return true
}

// Send writes one frame to the display. Never returns an error;
// failures are logged and the connection is retried on the next send.
func (c *Client) Send(msgType MessageType, payload string) {
	if c.addr == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil && !c.dialLocked() {
		return
	}

	c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if _, err := c.conn.Write(Encode(msgType, payload)); err != nil {
		c.logger.Warn("display send failed", "type", msgType, "error", err)
		c.conn.Close()
		c.conn = nil
		return
	}
	c.logger.Debug("display send", "type", msgType, "payload", truncate(payload, 50))
}

// Connected reports whether the display link is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close shuts the display connection down. Safe to call when already
// closed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.logger.Info("display connection closed")
	}
}

// SendListening marks the display as waiting for speech.
func (c *Client) SendListening() {
	c.Send(TypeListening, "")
}

// SendInput mirrors a transcribed utterance.
func (c *Client) SendInput(text string) {
	c.Send(TypeInput, text)
}

// SendResponse mirrors the assistant's reply.
func (c *Client) SendResponse(text string) {
	c.Send(TypeResponse, text)
}

// SendSpeaking marks playback start.
func (c *Client) SendSpeaking() {
	c.Send(TypeSpeaking, "")
}

// SendReady marks the assistant idle with the wake word armed.
func (c *Client) SendReady() {
	c.Send(TypeReady, "")
}

// SendEmotion mirrors the detected emotion label.
func (c *Client) SendEmotion(name string) {
	c.Send(TypeEmotion, "Emotion: "+name)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
