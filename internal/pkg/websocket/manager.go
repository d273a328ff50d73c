package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/constants"
	jwtpkg "github.com/piresc/hamroride/internal/pkg/jwt"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// MessageHandler processes one decoded client message
type MessageHandler func(ctx context.Context, client *Client, msg models.WSMessage)

// Client is one authenticated websocket connection
type Client struct {
	ID        string
	Principal *models.Principal

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu       sync.Mutex
	channels map[string]struct{}
}

// Send writes one event to the client. Safe for concurrent use.
func (cl *Client) Send(event string, data interface{}) error {
	if cl.conn == nil {
		return nil
	}

	rawData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshaling message data: %w", err)
	}

	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return cl.conn.WriteJSON(models.WSMessage{Event: event, Data: rawData})
}

// SendError writes an error event to the client
func (cl *Client) SendError(code, message string) error {
	return cl.Send(constants.EventError, models.WSErrorMessage{Code: code, Message: message})
}

// Channels returns the channels the client is subscribed to
func (cl *Client) Channels() []string {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make([]string, 0, len(cl.channels))
	for ch := range cl.channels {
		out = append(out, ch)
	}
	return out
}

func (cl *Client) ping() error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return cl.conn.WriteMessage(websocket.PingMessage, nil)
}

// Manager manages WebSocket connections and channel subscriptions
type Manager struct {
	sync.RWMutex
	clients  map[string]*Client
	channels map[string]map[string]*Client
	cfg      models.JWTConfig
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager(jwtConfig models.JWTConfig) *Manager {
	return &Manager{
		clients:  make(map[string]*Client),
		channels: make(map[string]map[string]*Client),
		cfg:      jwtConfig,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection authenticates, upgrades and serves a connection until it closes
func (m *Manager) HandleConnection(c echo.Context, onMessage MessageHandler) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:        uuid.NewString(),
		Principal: principal,
		conn:      ws,
		channels:  make(map[string]struct{}),
	}
	m.addClient(client)
	defer func() {
		m.removeClient(client)
		ws.Close()
	}()

	logger.Debug("WebSocket client connected",
		logger.UserID(principal.UserID),
		logger.String("client_id", client.ID))

	done := make(chan struct{})
	defer close(done)
	go m.keepAlive(client, done)

	m.readLoop(c.Request().Context(), client, onMessage)
	return nil
}

// authenticate accepts the bearer token from the Authorization header or the
// token query parameter, since browsers cannot set headers on upgrade requests
func (m *Manager) authenticate(c echo.Context) (*models.Principal, error) {
	token := c.QueryParam("token")
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		var ok bool
		token, ok = middleware.BearerToken(authHeader)
		if !ok {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}
	}
	if token == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authorization is required")
	}

	principal, err := jwtpkg.ValidateToken(token, m.cfg)
	if err != nil {
		logger.Warn("Token validation failed", logger.Err(err))
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return principal, nil
}

func (m *Manager) readLoop(ctx context.Context, client *Client, onMessage MessageHandler) {
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read error",
					logger.String("client_id", client.ID),
					logger.Err(err))
			}
			return
		}

		var msg models.WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Event == "" {
			_ = client.SendError(constants.ErrorInvalidFormat, "Invalid message format")
			continue
		}

		if msg.Event == constants.EventPing {
			_ = client.Send(constants.EventPong, struct{}{})
			continue
		}

		onMessage(ctx, client, msg)
	}
}

func (m *Manager) keepAlive(client *Client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
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
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()
	m.clients[client.ID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()
	delete(m.clients, client.ID)
	for _, ch := range client.Channels() {
		if subs, ok := m.channels[ch]; ok {
			delete(subs, client.ID)
			if len(subs) == 0 {
				delete(m.channels, ch)
			}
		}
	}
}

// Subscribe registers client on channel. Authorization is the caller's job.
func (m *Manager) Subscribe(client *Client, channel string) {
	m.Lock()
	defer m.Unlock()
	subs, ok := m.channels[channel]
	if !ok {
		subs = make(map[string]*Client)
		m.channels[channel] = subs
	}
	subs[client.ID] = client

	client.mu.Lock()
	client.channels[channel] = struct{}{}
	client.mu.Unlock()
}

// Unsubscribe removes client from channel
func (m *Manager) Unsubscribe(client *Client, channel string) {
	m.Lock()
	defer m.Unlock()
	if subs, ok := m.channels[channel]; ok {
		delete(subs, client.ID)
		if len(subs) == 0 {
			delete(m.channels, channel)
		}
	}

	client.mu.Lock()
	delete(client.channels, channel)
	client.mu.Unlock()
}

// Subscribers returns a snapshot of the clients on channel
func (m *Manager) Subscribers(channel string) []*Client {
	m.RLock()
	defer m.RUnlock()
	subs := m.channels[channel]
	out := make([]*Client, 0, len(subs))
	for _, cl := range subs {
		out = append(out, cl)
	}
	return out
}

// Broadcast sends event to every subscriber of channel accepted by allow
// (nil allows all) and returns how many writes succeeded
func (m *Manager) Broadcast(channel, event string, data interface{}, allow func(*Client) bool) int {
	sent := 0
	for _, cl := range m.Subscribers(channel) {
		if allow != nil && !allow(cl) {
			continue
		}
		if err := cl.Send(event, data); err != nil {
			logger.Warn("Error sending message to client",
				logger.String("client_id", cl.ID),
				logger.String("channel", channel),
				logger.Err(err))
			continue
		}
		sent++
	}
	return sent
}

// ClientCount returns the number of open connections
func (m *Manager) ClientCount() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.clients)
}
