package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConnConcurrentWriters drives WriteRaw and WriteTyped from separate
// goroutines over one connection, the same shape as the relay goroutine
// racing read-loop replies. gorilla panics on concurrent writes, so this
// passes only if the wrapper serializes them.
func TestConnConcurrentWriters(t *testing.T) {
	const perWriter = 50

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn := Wrap(raw)
		defer conn.Close()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := conn.WriteRaw([]byte(`{"event":"message"}`)); err != nil {
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := conn.WriteTyped(PongResponse{Event: EventPong}); err != nil {
					return
				}
			}
		}()
		wg.Wait()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	for i := 0; i < 2*perWriter; i++ {
		_, payload, err := client.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"event"`)
	}
}

func TestConnWriteError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn := Wrap(raw)
		defer conn.Close()
		conn.WriteError("unknown action: reboot")
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	var resp ErrorResponse
	require.NoError(t, client.ReadJSON(&resp))
	assert.Equal(t, EventError, resp.Event)
	assert.Equal(t, "unknown action: reboot", resp.Error)
}
