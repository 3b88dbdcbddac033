package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WebSocketDialer connects to a tracking server speaking JSON frames over a websocket.
type WebSocketDialer struct {
	Dialer      *websocket.Dialer
	Header      http.Header
	ReadTimeout time.Duration
}

func NewWebSocketDialer(readTimeout time.Duration, header http.Header) *WebSocketDialer {
	return &WebSocketDialer{
		Dialer:      websocket.DefaultDialer,
		Header:      header,
		ReadTimeout: readTimeout,
	}
}

func (d *WebSocketDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, resp, err := dialer.DialContext(ctx, endpoint, d.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	c := &wsConn{ws: ws, readTimeout: d.ReadTimeout, done: make(chan struct{})}
	if d.ReadTimeout > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(d.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(d.ReadTimeout))
		})
		go c.keepAlive(d.ReadTimeout / 2)
	}
	return c, nil
}

type wsConn struct {
	ws          *websocket.Conn
	readTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func (c *wsConn) ReadFrame(_ context.Context) (Frame, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return Frame{}, ErrConnectionClosed
		}
		return Frame{}, err
	}
	if c.readTimeout > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return f, nil
}

func (c *wsConn) WriteFrame(ctx context.Context, f Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}
	_ = c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteJSON(f)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

func (c *wsConn) keepAlive(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
