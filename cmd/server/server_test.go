package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRelaysAndShutsDown(t *testing.T) {
	app := newTestApplication(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	dial := func() *websocket.Conn {
		conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/socket", nil)
		require.NoError(t, err)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	sender, receiver := dial(), dial()
	require.Eventually(t, func() bool { return app.relay.Connections() == 2 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"taskUpdated","data":{"id":"t1","status":"done"}}`)))
	require.NoError(t, receiver.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := receiver.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"taskUpdated","data":{"id":"t1","status":"done"}}`, string(frame))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	require.NoError(t, receiver.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = receiver.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
