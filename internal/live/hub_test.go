package live

import (
	"context"
	"effisense-go/internal/model"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: h, send: make(chan Message, buffer)}
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	h := NewHub()
	a, b := newTestClient(h, 1), newTestClient(h, 1)
	h.Register(a)
	h.Register(b)

	n := h.Broadcast(Message{Type: MessageTypeUsageUpdate, Data: model.UsageEvent{UsageID: 3}})

	assert.Equal(t, 2, n)
	for _, c := range []*Client{a, b} {
		msg := <-c.send
		assert.Equal(t, MessageTypeUsageUpdate, msg.Type)
		assert.Equal(t, uint(3), msg.Data.(model.UsageEvent).UsageID)
	}
}

func TestHub_BroadcastRemovesClosedAndFullClients(t *testing.T) {
	h := NewHub()
	healthy := newTestClient(h, 2)
	closed := newTestClient(h, 2)
	full := newTestClient(h, 0)
	h.Register(healthy)
	h.Register(closed)
	h.Register(full)
	closed.markClosed()

	n := h.Broadcast(Message{Type: MessageTypeUsageUpdate})

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, h.ClientCount())
	_, ok := <-closed.send
	assert.False(t, ok, "queue of a removed client is closed")
}

func TestHub_UnregisterTwiceIsSafe(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 1)
	h.Register(c)

	h.Unregister(c)
	h.Unregister(c)

	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_ServeClosesClientsOnCancel(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 1)
	h.Register(c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, h.ClientCount())
	assert.True(t, c.isClosed())
}

type recordingSink struct {
	events []model.UsageEvent
	err    error
}

func (r *recordingSink) PublishUsageCreated(_ context.Context, e model.UsageEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanout_FailingSinkDoesNotStopOthers(t *testing.T) {
	broken := &recordingSink{err: errors.New("down")}
	healthy := &recordingSink{}
	f := NewFanout(Sink{Name: "broken", Publisher: broken}, Sink{Name: "nil"}, Sink{Name: "healthy", Publisher: healthy})

	err := f.PublishUsageCreated(context.Background(), model.UsageEvent{UsageID: 9})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, broken.events, 1)
	assert.Len(t, healthy.events, 1)
	assert.Equal(t, []string{"broken", "healthy"}, f.Sinks())
}

func TestRedisRelay_DeliverForwardsToHub(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, 1)
	h.Register(c)
	r := NewRedisRelay(nil, "events", h)

	require.NoError(t, r.deliver(`{"usageId":5,"applianceName":"Fridge","homeName":"Flat","date":"2024-05-01 10:30","energyUsed":1.5,"usageFrequency":3}`))
	msg := <-c.send
	assert.Equal(t, "Fridge", msg.Data.(model.UsageEvent).ApplianceName)

	assert.Error(t, r.deliver("not json"))
}

func TestWebsocketSession(t *testing.T) {
	h := NewHub()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(h, conn, 1).Start()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	note := "Quick morning check"
	require.NoError(t, h.PublishUsageCreated(context.Background(), model.UsageEvent{UsageID: 11, ApplianceName: "Kettle", ContextNotes: &note}))

	var got struct {
		Type string           `json:"type"`
		Data model.UsageEvent `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, MessageTypeUsageUpdate, got.Type)
	assert.Equal(t, uint(11), got.Data.UsageID)
	assert.Equal(t, "Quick morning check", *got.Data.ContextNotes)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypePing}))
	var pong Message
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, MessageTypePong, pong.Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
