package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// subBuffer is how many payloads a subscriber can fall behind
	// before the hub drops it.
	subBuffer = 32

	// writeTimeout bounds each websocket write.
	writeTimeout = 10 * time.Second

	// pongTimeout is how long a connection may go silent before the
	// read side gives up. pingEvery must come in under it.
	pongTimeout = 60 * time.Second
	pingEvery   = 50 * time.Second

	// readLimit caps inbound frames. Dashboard pages never send data,
	// only pong frames.
	readLimit = 512
)

// subscriber is one websocket connection attached to a hub. The write
// loop is the only goroutine that touches the connection's write side.
type subscriber struct {
	hub  *Hub
	conn *websocket.Conn
	out  chan []byte
}

// serve runs the write loop in the background and blocks draining
// reads until the connection dies.
func (s *subscriber) serve() {
	go s.writeLoop()
	s.readLoop()
}

// readLoop discards inbound frames. The dashboard never sends data;
// reading exists to service pongs and to notice disconnects.
func (s *subscriber) readLoop() {
	defer func() {
		select {
		case s.hub.leave <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop delivers queued payloads and keeps the connection alive
// with pings. It exits when the hub closes the out channel or a write
// fails.
func (s *subscriber) writeLoop() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// The hub dropped us. Tell the browser before hanging up.
				s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
