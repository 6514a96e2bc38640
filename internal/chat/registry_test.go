package chat_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doppler-bar/barpos/internal/chat"
)

// dialPair upgrades one websocket against a test server and returns both
// the client side and the registered server-side connection.
func dialPair(t *testing.T, registry *chat.Registry, channel, name string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		conn := registry.Add(channel, ws, name)
		close(registered)

		for {
			messageType, data, err := ws.ReadMessage()
			if err != nil {
				registry.Remove(channel, conn)
				return
			}
			registry.Broadcast(channel, conn, messageType, data)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	<-registered
	return client
}

func TestRegistry_BroadcastSkipsSender(t *testing.T) {
	registry := chat.NewRegistry()

	bar := dialPair(t, registry, "bar", "bar-terminal")
	floor := dialPair(t, registry, "bar", "floor-terminal")

	require.NoError(t, floor.WriteMessage(websocket.TextMessage, []byte("2 margaritas for table 4")))

	require.NoError(t, bar.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := bar.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "2 margaritas for table 4", string(data))

	// The sender must not receive its own message back.
	require.NoError(t, floor.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = floor.ReadMessage()
	assert.Error(t, err)
}

func TestRegistry_ChannelsAreIsolated(t *testing.T) {
	registry := chat.NewRegistry()

	bar := dialPair(t, registry, "bar", "bar-terminal")
	kitchen := dialPair(t, registry, "kitchen", "kitchen-terminal")

	require.NoError(t, bar.WriteMessage(websocket.TextMessage, []byte("bar only")))

	require.NoError(t, kitchen.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := kitchen.ReadMessage()
	assert.Error(t, err, "messages must stay inside their channel")
}
