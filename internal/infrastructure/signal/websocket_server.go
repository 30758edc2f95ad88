package signal

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketServer pushes telemetry snapshots to overlay clients. Each
// connection subscribes to one session; every snapshot the sampler
// publishes for that session is forwarded as a JSON frame. Clients send
// nothing except pong control frames.
type WebSocketServer struct {
	sessions ports.SessionService

	mu          sync.RWMutex
	subscribers map[domain.SessionID]map[*subscriber]struct{}

	pingInterval time.Duration
	pongTimeout  time.Duration
	writeTimeout time.Duration

	maxConnections int
	connCount      int

	logger *zap.SugaredLogger
}

type subscriber struct {
	conn *websocket.Conn
	send chan domain.VideoStats
}

// PushMessage is the frame sent to subscribed clients.
type PushMessage struct {
	Type     string            `json:"type"`
	Snapshot domain.VideoStats `json:"snapshot"`
}

func NewWebSocketServer(sessions ports.SessionService, logger *zap.SugaredLogger) *WebSocketServer {
	return &WebSocketServer{
		sessions:     sessions,
		subscribers:  make(map[domain.SessionID]map[*subscriber]struct{}),
		pingInterval: 30 * time.Second,
		pongTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// SetPingInterval sets ping interval for WebSocket connections
func (s *WebSocketServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// SetPongTimeout sets pong timeout for WebSocket connections
func (s *WebSocketServer) SetPongTimeout(timeout time.Duration) {
	s.pongTimeout = timeout
}

// SetMaxConnections caps concurrent subscriber connections; zero means
// unlimited.
func (s *WebSocketServer) SetMaxConnections(max int) {
	s.maxConnections = max
}

var _ ports.SnapshotObserver = (*WebSocketServer)(nil)

// ObserveSnapshot fans a published snapshot out to the session's
// subscribers. Slow clients are skipped; the next snapshot arrives in a
// second anyway.
func (s *WebSocketServer) ObserveSnapshot(stats domain.VideoStats) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for sub := range s.subscribers[stats.SessionID] {
		select {
		case sub.send <- stats:
		default:
		}
	}
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := domain.SessionID(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id query parameter is required", http.StatusBadRequest)
		return
	}

	if _, err := s.sessions.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	if s.maxConnections > 0 && s.connCount >= s.maxConnections {
		s.mu.Unlock()
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	s.connCount++
	s.mu.Unlock()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		s.releaseConn()
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan domain.VideoStats, 4),
	}
	s.subscribe(sessionID, sub)

	s.logger.Infow("overlay client connected", "session_id", sessionID)

	// Send the latest snapshot immediately so the overlay renders
	// without waiting for the next tick.
	if snap, err := s.sessions.Snapshot(r.Context(), sessionID); err == nil {
		sub.send <- snap
	}

	go s.writeLoop(sessionID, sub)
	s.readLoop(sessionID, sub)
}

func (s *WebSocketServer) subscribe(id domain.SessionID, sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscribers[id] == nil {
		s.subscribers[id] = make(map[*subscriber]struct{})
	}
	s.subscribers[id][sub] = struct{}{}
}

func (s *WebSocketServer) unsubscribe(id domain.SessionID, sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if subs, ok := s.subscribers[id]; ok {
		if _, present := subs[sub]; present {
			delete(subs, sub)
			close(sub.send)
			s.connCount--
		}
		if len(subs) == 0 {
			delete(s.subscribers, id)
		}
	}
}

func (s *WebSocketServer) releaseConn() {
	s.mu.Lock()
	s.connCount--
	s.mu.Unlock()
}

// readLoop consumes control frames and detects disconnects. Subscribers
// are push-only; any data frame from the client is discarded.
func (s *WebSocketServer) readLoop(id domain.SessionID, sub *subscriber) {
	defer func() {
		s.unsubscribe(id, sub)
		sub.conn.Close()
		s.logger.Infow("overlay client disconnected", "session_id", id)
	}()

	sub.conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
		return nil
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debugw("websocket read failed", "session_id", id, "error", err)
			}
			return
		}
	}
}

func (s *WebSocketServer) writeLoop(id domain.SessionID, sub *subscriber) {
	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case stats, ok := <-sub.send:
			if !ok {
				return
			}
			sub.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := sub.conn.WriteJSON(PushMessage{Type: "snapshot", Snapshot: stats}); err != nil {
				s.logger.Debugw("failed to push snapshot", "session_id", id, "error", err)
				sub.conn.Close()
				return
			}

		case <-pingTicker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sub.conn.Close()
				return
			}
		}
	}
}

func (s *WebSocketServer) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	connectionCount := s.connCount
	s.mu.RUnlock()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"connections": connectionCount,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// SubscriberCount reports active subscribers for one session.
func (s *WebSocketServer) SubscriberCount(id domain.SessionID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers[id])
}

// ConnectionCount reports total active subscriber connections.
func (s *WebSocketServer) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connCount
}
