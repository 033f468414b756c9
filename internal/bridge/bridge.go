// Package bridge pushes overlay state to the desktop UI over a local
// WebSocket endpoint. The protocol is one-directional JSON: every message
// carries an action the overlay window reacts to, optionally with a payload.
// Delivery is best-effort; a dictation session never waits for the UI.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thalesmourabh/voxcode/internal/errors"
	"github.com/thalesmourabh/voxcode/internal/logging"
)

// Action names understood by the overlay.
type Action string

const (
	ActionShowRecording  Action = "show-recording"
	ActionShowProcessing Action = "show-processing"
	ActionShowSuccess    Action = "show-success"
	ActionShowError      Action = "show-error"
	ActionHide           Action = "hide"
)

// Message is one frame pushed to every connected overlay client.
type Message struct {
	Action  Action `json:"action"`
	Text    string `json:"text,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
}

const (
	writeTimeout = 2 * time.Second
	// sendQueueSize bounds the per-client backlog. A client that cannot
	// drain this many frames is considered dead and dropped.
	sendQueueSize = 16
)

// Server accepts overlay connections and fans broadcast messages out to
// them. The zero value is not usable; construct with NewServer.
type Server struct {
	addr   string
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	httpSrv *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}
}

// NewServer creates a bridge server that will listen on addr.
func NewServer(addr string) *Server {
	return &Server{
		addr:    addr,
		logger:  logging.ForService("bridge"),
		clients: make(map[*client]struct{}),
	}
}

// Serve runs the WebSocket endpoint until ctx is canceled. Connected
// clients are closed on shutdown.
func (s *Server) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.httpSrv = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("bridge listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New(fmt.Errorf("bridge server failed: %w", err)).
				Component("bridge").
				Category(errors.CategoryWebSocket).
				Context("addr", s.addr).
				Build()
		}
		return nil
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	// The endpoint binds to localhost; the overlay runs on the same
	// machine, so any local origin is acceptable.
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Message, sendQueueSize),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("overlay connected", "clients", count)

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop consumes and discards inbound frames; its only purpose is to
// notice when the client goes away.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

// drop unregisters and closes a client. Safe to call more than once.
func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, present := s.clients[c]
	delete(s.clients, c)
	count := len(s.clients)
	s.mu.Unlock()
	if !present {
		return
	}

	close(c.done)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	_ = c.conn.Close()
	s.logger.Info("overlay disconnected", "clients", count)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		s.drop(c)
	}
}

// Broadcast queues msg for every connected client. Clients whose queue is
// full are dropped rather than allowed to stall the caller.
func (s *Server) Broadcast(msg Message) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			s.logger.Warn("overlay client too slow, dropping", "action", msg.Action)
			s.drop(c)
		}
	}
}

// ClientCount reports how many overlay clients are connected.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ShowRecording tells the overlay a recording is in progress.
func (s *Server) ShowRecording() { s.Broadcast(Message{Action: ActionShowRecording}) }

// ShowProcessing tells the overlay the captured audio is being transcribed.
func (s *Server) ShowProcessing() { s.Broadcast(Message{Action: ActionShowProcessing}) }

// ShowSuccess shows the final text briefly before the overlay hides itself.
func (s *Server) ShowSuccess(text string) {
	s.Broadcast(Message{Action: ActionShowSuccess, Text: text})
}

// ShowError surfaces a failure message on the overlay.
func (s *Server) ShowError(text string) {
	s.Broadcast(Message{Action: ActionShowError, Text: text})
}

// Hide dismisses the overlay.
func (s *Server) Hide() { s.Broadcast(Message{Action: ActionHide}) }

// DurationUpdate refreshes the elapsed-seconds counter on the overlay.
func (s *Server) DurationUpdate(seconds int) {
	s.Broadcast(Message{Action: ActionShowRecording, Seconds: seconds})
}
