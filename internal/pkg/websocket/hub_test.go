package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop(), nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dept := int64(1)
		if r.URL.Query().Get("dept") == "2" {
			dept = 2
		}
		_ = hub.ServeWS(w, r, dept, 42)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToDepartmentOnly(t *testing.T) {
	hub, srv := startHub(t)
	ce := dial(t, srv, "dept=1")
	me := dial(t, srv, "dept=2")

	require.Eventually(t, func() bool { return hub.TotalClients() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.ClientsCount(1))

	hub.Publish(&Event{Type: EventAttendanceMarked, DepartmentID: 1, LectureID: 9, Present: 30, Absent: 2})

	ce.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ce.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, EventAttendanceMarked, got.Type)
	assert.Equal(t, int64(9), got.LectureID)
	assert.Equal(t, 30, got.Present)
	assert.False(t, got.Timestamp.IsZero())

	me.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = me.ReadMessage()
	assert.Error(t, err)
}

func TestBurstArrivesOneEventPerFrame(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "dept=1")
	require.Eventually(t, func() bool { return hub.ClientsCount(1) == 1 }, 2*time.Second, 10*time.Millisecond)

	for i := int64(1); i <= 5; i++ {
		hub.Publish(&Event{Type: EventAttendanceMarked, DepartmentID: 1, LectureID: i})
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := int64(1); i <= 5; i++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var got Event
		require.NoError(t, json.Unmarshal(data, &got), string(data))
		assert.Equal(t, i, got.LectureID)
	}
}

func TestHubListenersAndConnectionCallback(t *testing.T) {
	hub := NewHub(zerolog.Nop(), nil)
	counts := make(chan int, 4)
	hub.OnConnectionsChanged(func(n int) { counts <- n })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	listener := make(chan *Event, 1)
	hub.AddListener(listener)
	hub.Publish(&Event{Type: EventAttendanceMarked, DepartmentID: 3})

	select {
	case e := <-listener:
		assert.Equal(t, int64(3), e.DepartmentID)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not receive the event")
	}

	hub.RemoveListener(listener)
	hub.Publish(&Event{Type: EventAttendanceMarked, DepartmentID: 3})
	select {
	case <-listener:
		t.Fatal("removed listener received an event")
	case <-time.After(100 * time.Millisecond):
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, 3, 1)
	}))
	defer srv.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	select {
	case n := <-counts:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("connection callback not called")
	}
	conn.Close()
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed("", []string{"http://a"}))
	assert.True(t, originAllowed("http://x", nil))
	assert.True(t, originAllowed("http://A", []string{"http://a"}))
	assert.False(t, originAllowed("http://evil", []string{"http://a"}))
	assert.True(t, originAllowed("http://any", []string{"*"}))
}
