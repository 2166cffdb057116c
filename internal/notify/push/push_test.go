package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

type mockDirectory struct {
	tokensFunc   func(ctx context.Context, scope string) ([]string, error)
	contactsFunc func(ctx context.Context, ownerID string) ([]string, error)
}

func (m *mockDirectory) TokensFor(ctx context.Context, scope string) ([]string, error) {
	return m.tokensFunc(ctx, scope)
}

func (m *mockDirectory) ContactsFor(ctx context.Context, ownerID string) ([]string, error) {
	if m.contactsFunc == nil {
		return nil, nil
	}
	return m.contactsFunc(ctx, ownerID)
}

func testAlert() *model.Alert {
	return &model.Alert{
		ID:        "alert-1",
		OwnerID:   "u1",
		OwnerName: "Jordan Lee",
		Location:  model.Location{Lat: 12.34, Lng: 56.78},
		Message:   "SOS — help needed",
		Status:    model.AlertStatusActive,
	}
}

func TestClient_NotifySendsMulticast(t *testing.T) {
	var (
		gotAuth    string
		gotPayload multicastMessage
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	directory := &mockDirectory{tokensFunc: func(_ context.Context, scope string) ([]string, error) {
		assert.Equal(t, "campus", scope)
		return []string{"tok-a", "tok-b", "tok-a", " ", "tok-c"}, nil
	}}

	client, err := NewClient(Config{
		Endpoint:  server.URL,
		ServerKey: "secret-key",
		Directory: directory,
	})
	require.NoError(t, err)

	require.NoError(t, client.Notify(context.Background(), testAlert()))

	assert.Equal(t, "key=secret-key", gotAuth)
	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, gotPayload.RegistrationIDs)
	assert.Equal(t, "Campus SOS", gotPayload.Notification.Title)
	assert.Equal(t, "Jordan Lee: SOS — help needed", gotPayload.Notification.Body)
	assert.Equal(t, map[string]string{
		"alertId": "alert-1",
		"lat":     "12.34",
		"lng":     "56.78",
	}, gotPayload.Data)
}

func TestClient_NotifyNoTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when there are no tokens")
	}))
	defer server.Close()

	directory := &mockDirectory{tokensFunc: func(context.Context, string) ([]string, error) {
		return nil, nil
	}}

	client, err := NewClient(Config{Endpoint: server.URL, Directory: directory})
	require.NoError(t, err)

	err = client.Notify(context.Background(), testAlert())
	assert.ErrorIs(t, err, core.ErrNoRecipients)
}

func TestClient_NotifyDirectoryError(t *testing.T) {
	directory := &mockDirectory{tokensFunc: func(context.Context, string) ([]string, error) {
		return nil, errors.New("directory down")
	}}

	client, err := NewClient(Config{Endpoint: "http://localhost:0", Directory: directory})
	require.NoError(t, err)

	err = client.Notify(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve push tokens")
}

func TestClient_NotifyGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid server key", http.StatusUnauthorized)
	}))
	defer server.Close()

	directory := &mockDirectory{tokensFunc: func(context.Context, string) ([]string, error) {
		return []string{"tok-a"}, nil
	}}

	client, err := NewClient(Config{Endpoint: server.URL, Directory: directory})
	require.NoError(t, err)

	err = client.Notify(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid server key")
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Directory: &mockDirectory{}})
	assert.EqualError(t, err, "push endpoint is required")

	_, err = NewClient(Config{Endpoint: "http://push.local"})
	assert.EqualError(t, err, "contact directory is required")
}

func TestClient_CustomScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var gotScope string
	directory := &mockDirectory{tokensFunc: func(_ context.Context, scope string) ([]string, error) {
		gotScope = scope
		return []string{"tok-a"}, nil
	}}

	client, err := NewClient(Config{Endpoint: server.URL, Scope: "dorm-7", Directory: directory})
	require.NoError(t, err)

	require.NoError(t, client.Notify(context.Background(), testAlert()))
	assert.Equal(t, "dorm-7", gotScope)
}
