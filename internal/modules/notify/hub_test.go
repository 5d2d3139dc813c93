package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialFeed connects a client to the hub the way the ws handler does:
// the server side of the upgrade is subscribed under the given user id.
func dialFeed(t *testing.T, hub *Hub, userID int64) *websocket.Conn {
	t.Helper()

	subscribed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Subscribe(userID, conn)
		close(subscribed)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case <-subscribed:
	case <-time.After(time.Second):
		t.Fatal("subscription did not complete")
	}
	return client
}

func TestHubPushReachesSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	client := dialFeed(t, hub, 7)

	ev := Event{Type: EventRequestCreated, RequestID: 12, At: time.Now()}
	assert.True(t, hub.Push(7, ev))

	var got Event
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, EventRequestCreated, got.Type)
	assert.Equal(t, int64(12), got.RequestID)
}

func TestHubPushToUnknownUser(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	assert.False(t, hub.Push(99, Event{Type: EventRequestCreated}))
}

func TestHubDropStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	dialFeed(t, hub, 7)
	hub.Drop(7)

	assert.False(t, hub.Push(7, Event{Type: EventRequestResolved}))
}
