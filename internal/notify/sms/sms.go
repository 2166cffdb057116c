package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gitwithsonu015/campus-sos/internal/core"
	"github.com/gitwithsonu015/campus-sos/internal/domain/model"
)

// Config captures the subset of SMS gateway behaviour we need.
type Config struct {
	// Endpoint is the full messages URL of a Twilio-compatible REST API,
	// e.g. https://api.twilio.com/2010-04-01/Accounts/{sid}/Messages.json.
	Endpoint   string
	AccountSID string
	AuthToken  string
	From       string
	Timeout    time.Duration
	Client     *http.Client
	Directory  core.ContactDirectory
}

// Client delivers alert SMS messages to the owner's emergency contacts via a
// Twilio-compatible REST endpoint. It implements core.NotificationSink.
type Client struct {
	endpoint   string
	accountSID string
	authToken  string
	from       string
	client     *http.Client
	directory  core.ContactDirectory
}

// NewClient builds an SMS client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("sms endpoint is required")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("sms sender number is required")
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

	return &Client{
		endpoint:   endpoint,
		accountSID: strings.TrimSpace(cfg.AccountSID),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		from:       from,
		client:     hc,
		directory:  cfg.Directory,
	}, nil
}

// Name identifies the sink in dispatch outcomes.
func (c *Client) Name() string { return "sms" }

// Notify sends one SMS per registered emergency contact of the alert's owner.
// It returns core.ErrNoRecipients when the owner has no contacts. When some
// sends fail, the failures are aggregated into a single classified error;
// delivery to the remaining contacts still proceeds.
func (c *Client) Notify(ctx context.Context, alert *model.Alert) error {
	contacts, err := c.directory.ContactsFor(ctx, alert.OwnerID)
	if err != nil {
		return fmt.Errorf("resolve emergency contacts: %w", err)
	}
	if len(contacts) == 0 {
		return core.ErrNoRecipients
	}

	body := messageBody(alert)

	var (
		failures     []error
		allRejected  = true
		attemptCount int
	)
	for _, to := range contacts {
		to = strings.TrimSpace(to)
		if to == "" {
			continue
		}
		attemptCount++

		if err := c.send(ctx, to, body); err != nil {
			failures = append(failures, fmt.Errorf("send to %s: %w", to, err))
			if core.ClassifySinkError(err) != model.FailureKindInvalidRecipient {
				allRejected = false
			}
		}
	}

	if attemptCount == 0 {
		return core.ErrNoRecipients
	}
	if len(failures) == 0 {
		return nil
	}

	kind := model.FailureKindTransportError
	if allRejected {
		kind = model.FailureKindInvalidRecipient
	}
	return core.NewSinkError(kind, errors.Join(failures...))
}

// messageBody renders the alert text with a maps link to the reported location.
func messageBody(alert *model.Alert) string {
	sender := alert.OwnerName
	if sender == "" {
		sender = alert.OwnerID
	}
	lat := strconv.FormatFloat(alert.Location.Lat, 'f', -1, 64)
	lng := strconv.FormatFloat(alert.Location.Lng, 'f', -1, 64)
	return fmt.Sprintf(
		"SOS from %s: https://maps.google.com/?q=%s,%s — Please contact emergency services if needed.",
		sender, lat, lng)
}

func (c *Client) send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.accountSID != "" {
		req.SetBasicAuth(c.accountSID, c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := fmt.Errorf("sms gateway %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	if isInvalidRecipient(resp.StatusCode, respBody) {
		return core.NewSinkError(model.FailureKindInvalidRecipient, apiErr)
	}
	return apiErr
}

// twilioError is the error shape Twilio-compatible gateways return.
type twilioError struct {
	Code int `json:"code"`
}

// Error codes for numbers that can never receive the message.
const (
	codeInvalidToNumber  = 21211
	codeNotMobileNumber  = 21614
	codeUnroutableNumber = 21612
)

func isInvalidRecipient(status int, body []byte) bool {
	if status != http.StatusBadRequest {
		return false
	}
	var apiErr twilioError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return false
	}
	switch apiErr.Code {
	case codeInvalidToNumber, codeNotMobileNumber, codeUnroutableNumber:
		return true
	}
	return false
}
