package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-airtable/core"
)

const macHeader = "X-Airtable-Content-MAC"
const macPrefix = "hmac-sha256="

// Ping is the notification body the service POSTs when new payloads are
// available. It carries no payload data; receivers poll ListPayloads.
type Ping struct {
	Base      PingRef    `json:"base"`
	Webhook   PingRef    `json:"webhook"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type PingRef struct {
	ID string `json:"id"`
}

type PingHandler func(ctx context.Context, ping Ping) error

// Receiver verifies and decodes notification pings. The MAC secret is the
// base64 value returned once at webhook creation.
type Receiver struct {
	secret  []byte
	handler PingHandler
	bursts  BurstController
}

type ReceiverOption func(*Receiver)

// WithBurstController suppresses repeat pings per the controller's policy.
// Suppressed pings are verified but never reach the handler.
func WithBurstController(controller BurstController) ReceiverOption {
	return func(r *Receiver) {
		r.bursts = controller
	}
}

func NewReceiver(macSecretBase64 string, handler PingHandler, opts ...ReceiverOption) (*Receiver, error) {
	macSecretBase64 = strings.TrimSpace(macSecretBase64)
	if macSecretBase64 == "" {
		return nil, fmt.Errorf("webhooks: mac secret is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("webhooks: ping handler is required")
	}
	secret, err := base64.StdEncoding.DecodeString(macSecretBase64)
	if err != nil {
		return nil, fmt.Errorf("webhooks: decode mac secret: %w", err)
	}
	receiver := &Receiver{secret: secret, handler: handler}
	for _, opt := range opts {
		if opt != nil {
			opt(receiver)
		}
	}
	return receiver, nil
}

// Receive verifies the MAC header against the raw body and hands the decoded
// ping to the handler. An invalid or missing signature never reaches the
// handler.
func (r *Receiver) Receive(ctx context.Context, headers map[string]string, body []byte) error {
	if r == nil || r.handler == nil {
		return fmt.Errorf("webhooks: receiver is not configured")
	}

	if err := r.verify(headers, body); err != nil {
		return err
	}

	ping := Ping{}
	if err := json.Unmarshal(body, &ping); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "webhooks: decode notification ping").
			WithTextCode(core.ClientErrorBadInput)
	}

	if r.bursts != nil {
		decision, err := r.bursts.Allow(ctx, ping)
		if err != nil {
			return err
		}
		if !decision.Allow {
			return nil
		}
	}
	return r.handler(ctx, ping)
}

func (r *Receiver) verify(headers map[string]string, body []byte) error {
	provided := headerValue(headers, macHeader)
	if provided == "" {
		return unauthorizedError("webhooks: missing content mac header")
	}
	if !strings.HasPrefix(provided, macPrefix) {
		return unauthorizedError("webhooks: malformed content mac header")
	}
	providedMAC, err := hex.DecodeString(strings.TrimPrefix(provided, macPrefix))
	if err != nil {
		return unauthorizedError("webhooks: malformed content mac header")
	}

	mac := hmac.New(sha256.New, r.secret)
	mac.Write(body)
	if !hmac.Equal(providedMAC, mac.Sum(nil)) {
		return unauthorizedError("webhooks: content mac mismatch")
	}
	return nil
}

func unauthorizedError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.ClientErrorUnauthorized)
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
