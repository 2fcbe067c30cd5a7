package stream_test

import (
	"bufio"
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

	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/stream"
	"github.com/mcoot/autosnake/internal/testutil"
)

func snapshotEvent(gameID model.GameID, score int) model.Event {
	return model.Event{
		Type:     model.EventSnapshot,
		GameID:   gameID,
		Outcome:  model.OutcomeMoved,
		Snapshot: &model.Snapshot{GridSize: 5, Score: score, Status: model.StatusRunning},
	}
}

// readSSEEvent reads lines up to the next blank line and returns the event
// name and data, skipping keepalive comments
func readSSEEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && name != "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data += strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestServeSSE(t *testing.T) {
	hubs := stream.NewHubManager(testutil.NopLogger())
	defer hubs.CloseAll()
	hub := hubs.GetOrCreateHub("GAME1")
	publisher := stream.NewPublisher(hubs, testutil.NopLogger())

	initial, err := stream.NewMessage(snapshotEvent("GAME1", 0))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stream.ServeSSE(w, r, hub, initial)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	name, data := readSSEEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.Contains(t, data, `"client_id"`)

	name, data = readSSEEvent(t, reader)
	assert.Equal(t, "snapshot", name)
	assert.JSONEq(t, string(initial.Data), data)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	publisher.Publish(snapshotEvent("GAME1", 30))

	name, data = readSSEEvent(t, reader)
	assert.Equal(t, "snapshot", name)
	var event model.Event
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, 30, event.Snapshot.Score)

	cancel()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServeSSE_EndsWhenHubCloses(t *testing.T) {
	hubs := stream.NewHubManager(testutil.NopLogger())
	hub := hubs.GetOrCreateHub("GAME1")
	publisher := stream.NewPublisher(hubs, testutil.NopLogger())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stream.ServeSSE(w, r, hub)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)
	name, _ := readSSEEvent(t, reader)
	require.Equal(t, "connected", name)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	publisher.Publish(model.Event{Type: model.EventDeleted, GameID: "GAME1"})
	publisher.Close("GAME1")

	name, _ = readSSEEvent(t, reader)
	assert.Equal(t, "deleted", name)
	_, err = reader.ReadString('\n')
	assert.Error(t, err) // Stream ended
}

func TestServeWS(t *testing.T) {
	hubs := stream.NewHubManager(testutil.NopLogger())
	defer hubs.CloseAll()
	hub := hubs.GetOrCreateHub("GAME1")
	publisher := stream.NewPublisher(hubs, testutil.NopLogger())

	initial, err := stream.NewMessage(snapshotEvent("GAME1", 0))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stream.ServeWS(w, r, hub, testutil.NopLogger(), initial)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, string(initial.Data), string(data))

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	publisher.Publish(snapshotEvent("GAME1", 20))

	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	var event model.Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, model.EventSnapshot, event.Type)
	assert.Equal(t, 20, event.Snapshot.Score)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPublisher_IgnoresGamesWithoutHub(t *testing.T) {
	hubs := stream.NewHubManager(testutil.NopLogger())
	publisher := stream.NewPublisher(hubs, testutil.NopLogger())

	publisher.Publish(snapshotEvent("NOBODY", 0))
	assert.Nil(t, hubs.GetHub("NOBODY"))
}
