package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stvenmobile/sparky/internal/bus"
	"github.com/stvenmobile/sparky/internal/config"
)

// WSClient receives JSON messages from a websocket and hands them to a
// Handler, reconnecting with exponential backoff.
type WSClient struct {
	url     string
	handler Handler
	bus     *bus.EventBus
	logger  zerolog.Logger
	dialer  *websocket.Dialer

	minBackoff time.Duration
	maxBackoff time.Duration

	mu        sync.RWMutex
	connected bool
	onState   func(connected bool)
}

// NewWSClient creates a client for cfg.WebSocketURL. b may be nil.
func NewWSClient(cfg config.CommandsConfig, handler Handler, b *bus.EventBus, logger zerolog.Logger) *WSClient {
	c := &WSClient{
		url:        cfg.WebSocketURL,
		handler:    handler,
		bus:        b,
		logger:     logger,
		dialer:     websocket.DefaultDialer,
		minBackoff: cfg.ReconnectMin,
		maxBackoff: cfg.ReconnectMax,
	}
	if c.minBackoff <= 0 {
		c.minBackoff = 3 * time.Second
	}
	if c.maxBackoff < c.minBackoff {
		c.maxBackoff = c.minBackoff
	}
	return c
}

// OnConnState registers a callback for connection changes.
func (c *WSClient) OnConnState(fn func(connected bool)) {
	c.onState = fn
}

// IsConnected returns connection status
func (c *WSClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *WSClient) setConnected(up bool) {
	c.mu.Lock()
	changed := c.connected != up
	c.connected = up
	c.mu.Unlock()
	if !changed {
		return
	}

	if c.onState != nil {
		c.onState(up)
	}
	if c.bus != nil {
		t := bus.EventTypeDisconnected
		if up {
			t = bus.EventTypeConnected
		}
		c.bus.Publish(bus.Event{Type: t, Data: map[string]any{"url": c.url}})
	}
}

// Run maintains the connection until ctx is done.
func (c *WSClient) Run(ctx context.Context) error {
	backoff := c.minBackoff
	consecutiveFailures := 0

	for {
		err := c.connectWS(ctx)
		c.setConnected(false)
		if ctx.Err() != nil {
			return nil
		}

		if err == nil {
			// Reset backoff after a clean session
			backoff = c.minBackoff
			consecutiveFailures = 0
		} else {
			consecutiveFailures++
			if consecutiveFailures >= 3 {
				if consecutiveFailures == 3 {
					c.logger.Warn().
						Err(err).
						Int("failures", consecutiveFailures).
						Msg("Command websocket not available, will retry less frequently")
				} else {
					c.logger.Debug().
						Int("failures", consecutiveFailures).
						Msg("Command websocket still unavailable")
				}
				backoff = c.maxBackoff
			} else {
				c.logger.Warn().Err(err).Dur("backoff", backoff).Msg("Command websocket failed, reconnecting")
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		if backoff < c.maxBackoff {
			backoff = min(backoff*2, c.maxBackoff)
		}
	}
}

// connectWS runs one session. A nil error means the peer closed normally.
func (c *WSClient) connectWS(ctx context.Context) error {
	c.logger.Info().Str("url", c.url).Msg("Connecting to command websocket")

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	c.setConnected(true)
	c.logger.Info().Msg("Connected to command websocket")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse command message")
			continue
		}
		// rejections are logged and counted by the handler
		_ = c.handler.Handle(msg)
	}
}
