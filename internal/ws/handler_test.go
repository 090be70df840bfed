package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	registry := NewRegistry()
	handler := NewHandler(registry, NewHub(registry))

	router := gin.New()
	router.GET("/ws", handler.HandleWebSocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))

	return event
}

func writeMessage(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(v))
}

// connect dials and consumes the connection_established greeting.
func connect(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn := dialWS(t, srv)
	event := readEvent(t, conn)
	require.Equal(t, EventConnectionEstablished, event.Type)
	require.NotEmpty(t, event.ClientID)

	return conn
}

func joinAs(t *testing.T, srv *httptest.Server, venueID uint, role Role, customerName string) *websocket.Conn {
	t.Helper()

	conn := connect(t, srv)
	writeMessage(t, conn, map[string]any{
		"type":         "join_bar",
		"venueId":      venueID,
		"role":         role,
		"customerName": customerName,
	})
	event := readEvent(t, conn)
	require.Equal(t, EventBarJoined, event.Type)

	return conn
}

func TestWebSocketConnectionEstablished(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	event := readEvent(t, conn)

	assert.Equal(t, EventConnectionEstablished, event.Type)
	assert.NotEmpty(t, event.ClientID)
	assert.False(t, event.DeliveredAt.IsZero())
}

func TestWebSocketGuestJoinNotifiesBartenders(t *testing.T) {
	srv := newTestServer(t)
	bartender := joinAs(t, srv, 1, RoleBartender, "")

	guest := connect(t, srv)
	writeMessage(t, guest, map[string]any{
		"type":         "join_bar",
		"venueId":      1,
		"role":         "guest",
		"customerName": "Alice",
	})

	joined := readEvent(t, guest)
	assert.Equal(t, EventBarJoined, joined.Type)
	assert.Equal(t, uint(1), joined.VenueID)
	assert.Equal(t, RoleGuest, joined.Role)
	assert.Equal(t, "Alice", joined.CustomerName)

	notice := readEvent(t, bartender)
	assert.Equal(t, EventGuestConnected, notice.Type)
	assert.Equal(t, "Alice", notice.CustomerName)
	assert.Equal(t, 2, notice.ConnectionCount)
}

func TestWebSocketBartenderJoin(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)

	writeMessage(t, conn, map[string]any{
		"type":    "join_bar",
		"venueId": 1,
		"role":    "bartender",
	})

	event := readEvent(t, conn)
	assert.Equal(t, EventBarJoined, event.Type)
	assert.Equal(t, RoleBartender, event.Role)
	assert.Empty(t, event.CustomerName)
}

func TestWebSocketJoinValidation(t *testing.T) {
	tests := []struct {
		name    string
		message map[string]any
		wantMsg string
	}{
		{
			name:    "missing venue and role",
			message: map[string]any{"type": "join_bar"},
			wantMsg: "venueId and role are required to join a bar",
		},
		{
			name:    "unknown role",
			message: map[string]any{"type": "join_bar", "venueId": 1, "role": "owner"},
			wantMsg: "role must be bartender or guest",
		},
		{
			name:    "guest without name",
			message: map[string]any{"type": "join_bar", "venueId": 1, "role": "guest", "customerName": "  "},
			wantMsg: "customerName is required for guests",
		},
	}

	srv := newTestServer(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := connect(t, srv)
			writeMessage(t, conn, tc.message)

			event := readEvent(t, conn)
			assert.Equal(t, EventError, event.Type)
			assert.Equal(t, tc.wantMsg, event.Message)
		})
	}
}

func TestWebSocketPingPong(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)

	writeMessage(t, conn, map[string]any{"type": "ping"})

	event := readEvent(t, conn)
	assert.Equal(t, EventPong, event.Type)
}

func TestWebSocketStatsForBartender(t *testing.T) {
	srv := newTestServer(t)
	bartender := joinAs(t, srv, 1, RoleBartender, "")
	joinAs(t, srv, 1, RoleGuest, "Alice")

	notice := readEvent(t, bartender)
	require.Equal(t, EventGuestConnected, notice.Type)

	writeMessage(t, bartender, map[string]any{"type": "get_stats"})

	event := readEvent(t, bartender)
	require.Equal(t, EventStats, event.Type)
	require.NotNil(t, event.Stats)
	assert.Equal(t, 2, event.Stats.TotalConnections)
	assert.Equal(t, 1, event.Stats.Bartenders)
	assert.Equal(t, 1, event.Stats.Guests)
	assert.Equal(t, []string{"Alice"}, event.Stats.GuestNames)
}

func TestWebSocketStatsIgnoredForGuests(t *testing.T) {
	srv := newTestServer(t)
	guest := joinAs(t, srv, 1, RoleGuest, "Alice")

	writeMessage(t, guest, map[string]any{"type": "get_stats"})
	// A stats request from a guest gets no reply; the next reply must be the
	// pong for the ping that follows it.
	writeMessage(t, guest, map[string]any{"type": "ping"})

	event := readEvent(t, guest)
	assert.Equal(t, EventPong, event.Type)
}

func TestWebSocketLeaveNotifiesBartenders(t *testing.T) {
	srv := newTestServer(t)
	bartender := joinAs(t, srv, 1, RoleBartender, "")
	guest := joinAs(t, srv, 1, RoleGuest, "Alice")

	notice := readEvent(t, bartender)
	require.Equal(t, EventGuestConnected, notice.Type)

	writeMessage(t, guest, map[string]any{"type": "leave_bar"})

	left := readEvent(t, guest)
	assert.Equal(t, EventBarLeft, left.Type)

	gone := readEvent(t, bartender)
	assert.Equal(t, EventGuestDisconnected, gone.Type)
	assert.Equal(t, "Alice", gone.CustomerName)
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)

	writeMessage(t, conn, map[string]any{"type": "order_beer"})

	event := readEvent(t, conn)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, "unknown message type: order_beer", event.Message)
}

func TestWebSocketMalformedMessage(t *testing.T) {
	srv := newTestServer(t)
	conn := connect(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	event := readEvent(t, conn)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, "invalid message format", event.Message)
}
