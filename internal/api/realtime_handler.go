package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/taskboard/internal/api/middleware"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/platform/logger"
)

// Websocket timings and limits.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 4096

	// SendBufferSize is how many undelivered messages a connection may hold
	// before further messages are dropped for it.
	SendBufferSize = 64
)

// Connection send failures. A failed send means that client misses the
// message; nothing is retried.
var (
	ErrClientClosed     = errors.New("client connection closed")
	ErrClientBufferFull = errors.New("client send buffer full")
)

// ConnectionRegistry tracks live broadcast connections.
type ConnectionRegistry interface {
	Register(id string, client events.Client)
	Unregister(id string)
}

// ConnectedPayload is the body of the connected event sent to a new client.
type ConnectedPayload struct {
	ConnectionID string     `json:"connection_id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
}

// RealtimeHandler upgrades GET /ws to a websocket and registers the
// connection for task event broadcasts.
type RealtimeHandler struct {
	registry      ConnectionRegistry
	authenticator middleware.TokenAuthenticator
	upgrader      websocket.Upgrader
	logger        *slog.Logger
}

// NewRealtimeHandler creates a RealtimeHandler. authenticator may be nil, in
// which case ?token= is ignored.
func NewRealtimeHandler(
	registry ConnectionRegistry,
	authenticator middleware.TokenAuthenticator,
	log *slog.Logger,
) *RealtimeHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RealtimeHandler{
		registry:      registry,
		authenticator: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log.With("component", "realtime"),
	}
}

// ServeHTTP implements http.Handler.
func (h *RealtimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id := ulid.Make().String()
	log = log.With("connection_id", id)

	// Connections are accepted without a token; a valid token only tags the
	// connection's logs with the user.
	var userID *uuid.UUID
	if token := r.URL.Query().Get("token"); token != "" && h.authenticator != nil {
		claims, err := h.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			log.Debug("websocket token rejected, continuing anonymously", "error", err)
		} else {
			userID = &claims.UserID
			log = log.With("user_id", claims.UserID)
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		log.Debug("websocket upgrade failed", "error", err)
		return
	}

	client := newWSClient(conn, log)

	hello, err := events.NewEvent(events.Connected, ConnectedPayload{ConnectionID: id, UserID: userID})
	if err == nil {
		if msg, err := json.Marshal(hello); err == nil {
			_ = client.Send(msg)
		}
	}

	h.registry.Register(id, client)
	log.Info("websocket connected")

	go client.writePump()
	client.readPump()

	h.registry.Unregister(id)
	client.close()
	log.Info("websocket disconnected")
}

// wsClient is one websocket connection. Send never blocks; a writer
// goroutine drains the buffer onto the socket.
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

var _ events.Client = (*wsClient)(nil)

func newWSClient(conn *websocket.Conn, log *slog.Logger) *wsClient {
	return &wsClient{
		conn:   conn,
		send:   make(chan []byte, SendBufferSize),
		done:   make(chan struct{}),
		logger: log,
	}
}

// Send implements events.Client.
func (c *wsClient) Send(message []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		return ErrClientBufferFull
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// readPump consumes inbound frames so pongs and close frames are processed.
// Client messages carry no meaning and are discarded.
func (c *wsClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
	}
}

// writePump is the only writer on the connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
