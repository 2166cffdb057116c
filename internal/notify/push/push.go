package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

const notificationTitle = "Campus SOS"

// Config captures the subset of push gateway behaviour we need.
type Config struct {
	Endpoint  string
	ServerKey string
	Scope     string
	Timeout   time.Duration
	Client    *http.Client
	Directory core.ContactDirectory
}

// Client delivers alert push notifications through an FCM-compatible HTTP
// multicast endpoint. It implements core.NotificationSink.
type Client struct {
	endpoint  string
	serverKey string
	scope     string
	client    *http.Client
	directory core.ContactDirectory
}

// multicastMessage is the wire payload sent to the push gateway.
type multicastMessage struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    notification      `json:"notification"`
	Data            map[string]string `json:"data"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewClient builds a push client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("push endpoint is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("contact directory is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	scope := strings.TrimSpace(cfg.Scope)
	if scope == "" {
		scope = "campus"
	}

	return &Client{
		endpoint:  endpoint,
		serverKey: strings.TrimSpace(cfg.ServerKey),
		scope:     scope,
		client:    hc,
		directory: cfg.Directory,
	}, nil
}

// Name identifies the sink in dispatch outcomes.
func (c *Client) Name() string { return "push" }

// Notify sends one multicast push message for the alert to every device token
// subscribed to the configured scope. It returns core.ErrNoRecipients when no
// tokens are registered.
func (c *Client) Notify(ctx context.Context, alert *model.Alert) error {
	tokens, err := c.directory.TokensFor(ctx, c.scope)
	if err != nil {
		return fmt.Errorf("resolve push tokens: %w", err)
	}

	tokens = dedupe(tokens)
	if len(tokens) == 0 {
		return core.ErrNoRecipients
	}

	body, err := json.Marshal(buildMessage(tokens, alert))
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	return c.post(ctx, body)
}

func buildMessage(tokens []string, alert *model.Alert) multicastMessage {
	sender := alert.OwnerName
	if sender == "" {
		sender = alert.OwnerID
	}

	return multicastMessage{
		RegistrationIDs: tokens,
		Notification: notification{
			Title: notificationTitle,
			Body:  fmt.Sprintf("%s: %s", sender, alert.Message),
		},
		Data: map[string]string{
			"alertId": alert.ID,
			"lat":     strconv.FormatFloat(alert.Location.Lat, 'f', -1, 64),
			"lng":     strconv.FormatFloat(alert.Location.Lng, 'f', -1, 64),
		},
	}
}

// dedupe removes duplicate tokens while preserving first-seen order. The
// directory may return the same token more than once when a device was
// registered repeatedly.
func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serverKey != "" {
		req.Header.Set("Authorization", "key="+c.serverKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push gateway %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	return nil
}
