package httpx

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
	"github.com/gitwithsonu015/campus-sos/internal/notify/broadcast"
)

func TestStreamEvents(t *testing.T) {
	hub := broadcast.NewHub(4)
	t.Cleanup(func() { _ = hub.Close() })

	router := NewRouter(RouterServices{
		Alerts: &mockLifecycle{},
		Events: hub,
		Logger: testLogger(),
	})

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Wait for the subscription to register before publishing.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	alert := &model.Alert{
		ID:      "alert-1",
		OwnerID: "u1",
		Status:  model.AlertStatusActive,
	}
	require.NoError(t, hub.Notify(context.Background(), alert))

	reader := bufio.NewReader(resp.Body)
	eventLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: alert.created", strings.TrimSpace(eventLine))

	dataLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dataLine, "data: "))
	assert.Contains(t, dataLine, `"id":"alert-1"`)
	assert.Contains(t, dataLine, `"status":"active"`)
}

func TestStreamEvents_UpdateEvent(t *testing.T) {
	hub := broadcast.NewHub(4)
	t.Cleanup(func() { _ = hub.Close() })

	router := NewRouter(RouterServices{
		Alerts: &mockLifecycle{},
		Events: hub,
		Logger: testLogger(),
	})

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	alert := model.Alert{
		ID:      "alert-1",
		OwnerID: "u1",
		Status:  model.AlertStatusCancelled,
	}
	require.NoError(t, hub.Publish(context.Background(), model.AlertEvent{
		Type:  model.AlertEventUpdated,
		Alert: alert,
	}))

	reader := bufio.NewReader(resp.Body)
	eventLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: alert.updated", strings.TrimSpace(eventLine))
}

func TestNewRouter_NoEventSource(t *testing.T) {
	router := NewRouter(RouterServices{Alerts: &mockLifecycle{}, Logger: testLogger()})

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
