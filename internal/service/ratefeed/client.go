package ratefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"YieldPull/internal/domain/models"
	drepo "YieldPull/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a RateStream backed by the upstream rates WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	countries      []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new rate feed stream.
func New(apiKey, websocketURL string, countries []string, reconnectDelay, pingInterval time.Duration) drepo.RateStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		countries:      countries,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("ratefeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("ratefeed: connected")
	return nil
}

// Subscribe subscribes to configured countries.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("ratefeed not connected")
	}
	for _, country := range c.countries {
		msg := map[string]string{"type": "subscribe", "country": country}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", country, err)
		}
		log.Printf("ratefeed: subscribed %s", country)
	}
	return nil
}

type feedRate struct {
	C string  `json:"c"` // country
	L string  `json:"l"` // maturity label
	R float64 `json:"r"` // yield percent
	T int64   `json:"t"` // ms
}

type feedMessage struct {
	Type string     `json:"type"`
	Data []feedRate `json:"data"`
}

// Read streams RateUpdate events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.RateUpdate, <-chan error) {
	updates := make(chan *models.RateUpdate, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(updates)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("ratefeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("ratefeed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-rate frames
					continue
				}
				if m.Type != "rates" {
					continue
				}
				for _, d := range m.Data {
					sec := d.T / 1000
					u := &models.RateUpdate{Country: d.C, Label: d.L, Rate: d.R, Timestamp: sec}
					select {
					case updates <- u:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return updates, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
