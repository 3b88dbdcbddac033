package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsServer(t *testing.T, handle func(ws *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		handle(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketDialer_ExchangesFrames(t *testing.T) {
	//Arrange
	received := make(chan Frame, 1)
	endpoint := wsServer(t, func(ws *websocket.Conn) {
		_ = ws.WriteJSON(Frame{Event: "connected"})
		var f Frame
		if err := ws.ReadJSON(&f); err == nil {
			received <- f
		}
	})
	conn, err := NewWebSocketDialer(time.Second, http.Header{"Authorization": {"Bearer t"}}).Dial(context.Background(), endpoint)
	require.NoError(t, err)
	defer conn.Close()

	//Act
	in, readErr := conn.ReadFrame(context.Background())
	writeErr := conn.WriteFrame(context.Background(), Frame{Event: "track_order", Data: json.RawMessage(`{"orderId":"#A"}`)})

	//Assert
	require.NoError(t, readErr)
	require.NoError(t, writeErr)
	assert.Equal(t, "connected", in.Event)
	select {
	case out := <-received:
		assert.Equal(t, "track_order", out.Event)
		assert.JSONEq(t, `{"orderId":"#A"}`, string(out.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the command frame")
	}
}

func TestWebSocketDialer_ReadTimeoutFailsSilentServer(t *testing.T) {
	//Arrange
	release := make(chan struct{})
	endpoint := wsServer(t, func(*websocket.Conn) {
		// never reads, so client pings go unanswered
		<-release
	})
	t.Cleanup(func() { close(release) })
	conn, err := NewWebSocketDialer(100*time.Millisecond, nil).Dial(context.Background(), endpoint)
	require.NoError(t, err)
	defer conn.Close()

	//Act
	start := time.Now()
	_, readErr := conn.ReadFrame(context.Background())

	//Assert
	require.Error(t, readErr)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWebSocketDialer_MalformedFrame(t *testing.T) {
	endpoint := wsServer(t, func(ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.TextMessage, []byte("not json"))
		_, _, _ = ws.ReadMessage()
	})
	conn, err := NewWebSocketDialer(0, nil).Dial(context.Background(), endpoint)
	require.NoError(t, err)
	defer conn.Close()

	_, readErr := conn.ReadFrame(context.Background())

	assert.ErrorIs(t, readErr, ErrMalformedFrame)
}
