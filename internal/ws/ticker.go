package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evtariff/internal/tariff"
)

// QuoteFunc resolves the current rate for broadcasting.
type QuoteFunc func(ctx context.Context, at time.Time) (tariff.Quote, error)

// Ticker pushes the currently resolved unit price to subscribed clients on
// a fixed interval and immediately after rule-set changes, so dashboards
// track rate transitions without polling.
type Ticker struct {
	quote    QuoteFunc
	interval time.Duration
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	kick    chan struct{}
}

// NewTicker builds ticker.
func NewTicker(quote QuoteFunc, interval time.Duration, logger *zap.Logger) *Ticker {
	return &Ticker{
		quote:    quote,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
		kick:    make(chan struct{}, 1),
	}
}

// HandleWS is the HTTP handler for /pricing/live.
func (t *Ticker) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	t.mu.Lock()
	t.clients[conn] = struct{}{}
	t.mu.Unlock()
	t.logger.Info("live rate subscriber connected", zap.String("remote", conn.RemoteAddr().String()))

	// Drain incoming frames to detect disconnects.
	go func() {
		defer t.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// RuleSetChanged triggers an immediate broadcast after a rule write.
func (t *Ticker) RuleSetChanged() {
	select {
	case t.kick <- struct{}{}:
	default:
	}
}

// Run broadcasts until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.closeAll()
			return
		case <-ticker.C:
			t.broadcast(ctx)
		case <-t.kick:
			t.broadcast(ctx)
		}
	}
}

func (t *Ticker) broadcast(ctx context.Context) {
	t.mu.Lock()
	subscriberCount := len(t.clients)
	t.mu.Unlock()
	if subscriberCount == 0 {
		return
	}

	quote, err := t.quote(ctx, time.Now())
	if err != nil {
		t.logger.Warn("live rate resolution failed", zap.Error(err))
		return
	}

	t.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(t.clients))
	for conn := range t.clients {
		conns = append(conns, conn)
	}
	t.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(quote); err != nil {
			t.drop(conn)
		}
	}
}

func (t *Ticker) drop(conn *websocket.Conn) {
	t.mu.Lock()
	_, present := t.clients[conn]
	delete(t.clients, conn)
	t.mu.Unlock()
	if present {
		conn.Close()
		t.logger.Info("live rate subscriber disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}
}

func (t *Ticker) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for conn := range t.clients {
		conn.Close()
	}
	t.clients = make(map[*websocket.Conn]struct{})
}
