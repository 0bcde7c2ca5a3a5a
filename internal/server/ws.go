package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apperrors "github.com/codegnosis/depspace/pkg/errors"
	"github.com/codegnosis/depspace/pkg/scene"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second

	// wsSendBuffer bounds the per-client outbox. A client that cannot
	// keep up with the frame rate is disconnected rather than stalling
	// the broadcast path.
	wsSendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced by the CORS middleware on the
	// rest of the API; the websocket accepts whatever passed it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope for everything the server pushes.
type wsMessage struct {
	Type      string                `json:"type"`
	Frame     *scene.Frame          `json:"frame,omitempty"`
	Selection *scene.SelectionEvent `json:"selection,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// wsClient is one connected websocket. The send channel is never
// closed; done signals both loops to exit.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan wsMessage
	done chan struct{}
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// handleWebSocket upgrades the connection and runs the client until it
// disconnects. Inbound messages are scene actions in the same wire form
// as POST /api/actions; outbound messages are frames and selection
// events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan wsMessage, wsSendBuffer),
		done: make(chan struct{}),
	}
	s.addClient(c)
	s.logger.Debug("websocket client connected", "client", c.id)

	// Greet new clients with the latest frame so they render without
	// waiting for the next tick.
	if f, ok := s.latestFrame(); ok {
		s.trySend(c, wsMessage{Type: "frame", Frame: &f})
	}

	s.clientsDone.Add(2)
	go func() {
		defer s.clientsDone.Done()
		s.writeLoop(c)
	}()
	go func() {
		defer s.clientsDone.Done()
		s.readLoop(c)
	}()
}

func (s *Server) addClient(c *wsClient) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
}

func (s *Server) removeClient(c *wsClient) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.close()
}

// closeClients disconnects every websocket client and waits for their
// read and write loops to exit.
func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*wsClient, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	s.clientsDone.Wait()
}

// readLoop consumes action messages until the connection drops.
func (s *Server) readLoop(c *wsClient) {
	defer func() {
		s.removeClient(c)
		s.logger.Debug("websocket client disconnected", "client", c.id)
	}()

	c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		var req actionRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}
		action, err := decodeAction(req)
		if err != nil {
			s.trySend(c, wsMessage{Type: "error", Error: apperrors.UserMessage(err)})
			continue
		}
		sc := s.currentScene()
		if sc == nil {
			s.trySend(c, wsMessage{Type: "error", Error: "no analysis loaded"})
			continue
		}
		if err := sc.Dispatch(action); err != nil {
			s.trySend(c, wsMessage{Type: "error", Error: apperrors.UserMessage(err)})
		}
	}
}

// writeLoop drains the client outbox and keeps the connection alive with
// pings.
func (s *Server) writeLoop(c *wsClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteTimeout))
			return
		case msg := <-c.send:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message, dropping the client if its outbox is full.
func (s *Server) trySend(c *wsClient, msg wsMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		s.logger.Warn("dropping slow websocket client", "client", c.id)
		s.removeClient(c)
	}
}

func (s *Server) broadcastFrame(f scene.Frame) {
	s.broadcast(wsMessage{Type: "frame", Frame: &f})
}

func (s *Server) broadcastSelection(ev scene.SelectionEvent) {
	s.broadcast(wsMessage{Type: "selection", Selection: &ev})
}

func (s *Server) broadcast(msg wsMessage) {
	s.mu.RLock()
	targets := make([]*wsClient, 0, len(s.clients))
	for _, c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	for _, c := range targets {
		s.trySend(c, msg)
	}
}
