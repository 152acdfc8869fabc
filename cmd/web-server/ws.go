package main

import (
	"log"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unklstewy/b200-landing/internal/auth"
	"github.com/unklstewy/b200-landing/pkg/landing"
)

// WebSocket message types
const (
	msgCalculate      = "calculate"
	msgResult         = "result"
	msgError          = "error"
	msgTablesReloaded = "tables_reloaded"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 4096
)

// socketMessage is exchanged in both directions. Clients send calculate
// requests carrying Input; the server answers with result or error and
// pushes tables_reloaded when the active dataset changes.
type socketMessage struct {
	Type    string               `json:"type"`
	Input   *landing.Input       `json:"input,omitempty"`
	Result  *calculationResponse `json:"result,omitempty"`
	Error   *apiError            `json:"error,omitempty"`
	Dataset string               `json:"dataset,omitempty"`
}

type socketClient struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *socketClient) send(msg socketMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(msg)
}

func (c *socketClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// socketHub tracks open connections for broadcasts and shutdown.
type socketHub struct {
	mu      sync.Mutex
	clients map[*socketClient]struct{}
}

func newSocketHub() *socketHub {
	return &socketHub{clients: make(map[*socketClient]struct{})}
}

func (h *socketHub) add(c *socketClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *socketHub) remove(c *socketClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *socketHub) snapshot() []*socketClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*socketClient, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *socketHub) broadcast(msg socketMessage) {
	for _, c := range h.snapshot() {
		if err := c.send(msg); err != nil {
			log.Printf("WebSocket broadcast failed: %v", err)
		}
	}
}

func (s *Server) closeSockets() {
	for _, c := range s.sockets.snapshot() {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}

// checkOrigin accepts the configured CORS origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := s.cfg.Server.AllowedOrigins
	return slices.Contains(allowed, "*") || slices.ContainsFunc(allowed, func(o string) bool {
		return strings.EqualFold(o, origin)
	})
}

// handleWebSocket runs calculations over a persistent connection, used by
// clients that recompute on every slider change.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	claims, err := s.authSvc.ValidateToken(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	if !auth.CanCalculate(claims.Role) {
		respondError(w, http.StatusForbidden, auth.ErrUnauthorized.Error())
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin:       s.checkOrigin,
		EnableCompression: false,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &socketClient{conn: conn}
	s.sockets.add(client)
	defer func() {
		s.sockets.remove(client)
		conn.Close()
	}()

	log.Printf("🔌 WebSocket connected: %s (%s)", claims.Username, r.RemoteAddr)

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error (%s): %v", claims.Username, err)
			}
			return
		}

		if err := client.send(s.answer(msg)); err != nil {
			log.Printf("WebSocket write error (%s): %v", claims.Username, err)
			return
		}
	}
}

// answer handles one client message.
func (s *Server) answer(msg socketMessage) socketMessage {
	if msg.Type != msgCalculate || msg.Input == nil {
		return socketMessage{Type: msgError, Error: &apiError{Error: "expected calculate message with input", Kind: "bad_request"}}
	}

	resp, _, err := s.calculate(*msg.Input)
	if err != nil {
		_, body := classify(err)
		return socketMessage{Type: msgError, Error: &body}
	}
	return socketMessage{Type: msgResult, Result: resp, Dataset: resp.Dataset}
}
