package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRoutesByIntegration(t *testing.T) {
	hub := NewHub()
	a := NewClient(hub, nil, "int-a")
	b := NewClient(hub, nil, "int-b")
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.GetConnectionCount())

	delivered := hub.SendToIntegration("int-a", AlertsEvent([]byte(`{"alerts":[]}`)))
	assert.Equal(t, 1, delivered)

	select {
	case msg := <-a.Send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventAlertsEvaluated, event.Type)
		assert.JSONEq(t, `{"alerts":[]}`, string(event.Data))
	default:
		t.Fatal("expected a message for int-a")
	}
	assert.Len(t, b.Send, 0)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	c := NewClient(hub, nil, "int-a")
	hub.Register(c)

	for i := 0; i < sendBuffer; i++ {
		hub.SendToIntegration("int-a", AlertsEvent([]byte(`{}`)))
	}
	assert.Equal(t, 1, hub.GetConnectionCount())

	assert.Equal(t, 0, hub.SendToIntegration("int-a", AlertsEvent([]byte(`{}`))))
	assert.Equal(t, 0, hub.GetConnectionCount())

	// Unregister after a drop must not double close.
	assert.NotPanics(t, func() { hub.Unregister(c) })
}

func TestHubClose(t *testing.T) {
	hub := NewHub()
	c := NewClient(hub, nil, "int-a")
	hub.Register(c)

	hub.Close()
	assert.Equal(t, 0, hub.GetConnectionCount())
	_, open := <-c.Send
	assert.False(t, open)
}

func TestParseAlertChannel(t *testing.T) {
	id, ok := parseAlertChannel("integration:shop-1:alerts")
	assert.True(t, ok)
	assert.Equal(t, "shop-1", id)

	for _, channel := range []string{"integration::alerts", "integration:alerts", "workspace:x:events", "integration:x:logs"} {
		_, ok := parseAlertChannel(channel)
		assert.False(t, ok, channel)
	}
}

func TestSubscriberRelaysAlertBatches(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hub := NewHub()
	c := NewClient(hub, nil, "int-a")
	hub.Register(c)

	sub := NewSubscriber(rdb, hub)
	require.NoError(t, sub.Start(context.Background()))
	t.Cleanup(sub.Stop)

	require.NoError(t, rdb.Publish(context.Background(), "integration:int-a:alerts", `{"integrationId":"int-a"}`).Err())

	select {
	case msg := <-c.Send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventAlertsEvaluated, event.Type)
		assert.JSONEq(t, `{"integrationId":"int-a"}`, string(event.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("alert batch was not relayed")
	}
}
