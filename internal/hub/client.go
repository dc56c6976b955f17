package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/campfire-chat/campfire/internal/config"
	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/logging"
)

// Client is one live transport session: the websocket connection, its
// outbound queue, and the connection's identity profile.
type Client struct {
	id      string
	Profile *domain.Profile
	conn    *websocket.Conn
	Send    chan []byte
	cfg     config.WebSocketConfig

	closed bool // guarded by the owning hub's mutex
}

func NewClient(id string, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	return &Client{
		id:      id,
		Profile: domain.NewProfile(id),
		conn:    conn,
		Send:    make(chan []byte, cfg.SendBuffer),
		cfg:     cfg,
	}
}

// ID returns the client's current identity. It changes only via
// Hub.Rekey.
func (c *Client) ID() string {
	return c.id
}

// ReadPump pulls inbound frames and hands them to onEvent. It exits on
// any transport error; onClose always runs exactly once on the way out.
func (c *Client) ReadPump(onEvent func(*Client, []byte), onClose func(*Client)) {
	defer func() {
		onClose(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				lg := logging.L()
				lg.Warn().Str(logging.FieldConnID, c.id).Err(err).Msg("websocket read failed")
			}
			break
		}
		onEvent(c, frame)
	}
}

// WritePump drains the send queue onto the wire and keeps the
// connection alive with pings. It exits when the queue is closed or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent marshals an event onto the outbound queue. A full queue
// drops the event; the hub's broadcast path handles disconnecting slow
// consumers.
func (c *Client) SendEvent(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.trySend(data)
	return nil
}

func (c *Client) trySend(data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}
