package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"PharmaWatch/internal/domain/models"
	"PharmaWatch/internal/usecase"
	applogger "PharmaWatch/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 16
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// runEvent is pushed to every connected dashboard when a product run
// completes. Signals ride along so clients can alert without polling.
type runEvent struct {
	Type        string                `json:"type"`
	Product     string                `json:"product"`
	Quarters    int                   `json:"quarters"`
	Anomalies   int                   `json:"anomalies"`
	Signals     []models.SignalRecord `json:"signals,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Broadcaster fans completed-run events out to websocket subscribers. Slow
// clients are dropped rather than allowed to stall the feed.
type Broadcaster struct {
	logger *applogger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewBroadcaster(logger *applogger.Logger) *Broadcaster {
	return &Broadcaster{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

func (b *Broadcaster) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", b.Serve)
}

// Serve upgrades the connection and keeps it until the peer goes away.
func (b *Broadcaster) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	b.mu.Lock()
	b.clients[cl] = struct{}{}
	n := len(b.clients)
	b.mu.Unlock()
	b.logger.Info("ws client connected", applogger.Int("clients", n))

	go b.writeLoop(cl)
	b.readLoop(cl)
	return nil
}

// NotifyRun implements usecase.Notifier.
func (b *Broadcaster) NotifyRun(bundle *models.MonitorBundle) {
	evt := runEvent{
		Type:        "run_completed",
		Product:     bundle.Product,
		Quarters:    len(bundle.Series),
		Anomalies:   len(bundle.Anomalies),
		Signals:     bundle.Signals,
		GeneratedAt: bundle.GeneratedAt,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		b.logger.Error("marshal ws event failed", applogger.Error(err))
		return
	}

	b.mu.Lock()
	for cl := range b.clients {
		select {
		case cl.send <- payload:
		default:
			delete(b.clients, cl)
			close(cl.send)
			b.logger.Warn("ws client dropped, send buffer full")
		}
	}
	b.mu.Unlock()
}

// Close disconnects all clients.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for cl := range b.clients {
		close(cl.send)
		delete(b.clients, cl)
	}
}

func (b *Broadcaster) writeLoop(cl *client) {
	defer cl.conn.Close()
	for msg := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop discards inbound frames; its only job is noticing disconnects.
func (b *Broadcaster) readLoop(cl *client) {
	cl.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			break
		}
	}
	b.mu.Lock()
	if _, ok := b.clients[cl]; ok {
		delete(b.clients, cl)
		close(cl.send)
	}
	b.mu.Unlock()
}

var _ usecase.Notifier = (*Broadcaster)(nil)
