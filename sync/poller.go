// Package sync orchestrates durable change-feed consumption: it joins the
// cursor consumer with a persistent cursor store so polls resume where the
// previous process stopped.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-airtable/core"
	"github.com/goliatone/go-airtable/webhooks"
)

const initialCursor int64 = 1

// PayloadHandler receives the payloads of one poll run after the cursor has
// been durably advanced. Handler failures do not rewind the cursor; delivery
// is at-least-once and the handler owns idempotency.
type PayloadHandler func(ctx context.Context, webhookID string, payloads []webhooks.Payload) error

// PayloadReceivedMessage is dispatched per payload when a command dispatcher
// is wired.
type PayloadReceivedMessage struct {
	WebhookID string
	RunID     string
	Payload   webhooks.Payload
}

func (PayloadReceivedMessage) Type() string { return "airtable.webhook.payload.received" }

type RunResult struct {
	RunID         string
	WebhookID     string
	Payloads      []webhooks.Payload
	NextCursor    int64
	StartedCursor int64
}

// Poller runs one drain cycle per invocation. The cursor is advanced with an
// optimistic expected-value check before the handler runs, so a crash between
// advance and handling replays nothing but a crash before advance replays the
// whole batch.
type Poller struct {
	Consumer   *webhooks.CursorConsumer
	Cursors    core.WebhookCursorStore
	Handler    PayloadHandler
	Dispatcher core.CommandDispatcher
	Logger     core.Logger
	Now        func() time.Time
}

func NewPoller(consumer *webhooks.CursorConsumer, cursors core.WebhookCursorStore) *Poller {
	_, logger := glog.Resolve("airtable-sync", nil, nil)
	return &Poller{
		Consumer: consumer,
		Cursors:  cursors,
		Logger:   logger,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// RunOnce drains the feed for webhookID starting from the stored cursor.
// A webhook that has never been polled starts at cursor 1.
func (p *Poller) RunOnce(ctx context.Context, webhookID string) (RunResult, error) {
	if p == nil || p.Consumer == nil || p.Cursors == nil {
		return RunResult{}, fmt.Errorf("sync: poller requires consumer and cursor store")
	}
	webhookID = strings.TrimSpace(webhookID)
	if webhookID == "" {
		return RunResult{}, fmt.Errorf("sync: webhook id is required")
	}

	runID := uuid.NewString()
	startCursor, knownCursor, err := p.loadCursor(ctx, webhookID)
	if err != nil {
		return RunResult{}, err
	}

	drained, err := p.Consumer.Drain(ctx, webhookID, startCursor)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		RunID:         runID,
		WebhookID:     webhookID,
		Payloads:      drained.Payloads,
		NextCursor:    drained.NextCursor,
		StartedCursor: startCursor,
	}

	if err := p.persistCursor(ctx, webhookID, startCursor, knownCursor, drained.NextCursor); err != nil {
		return RunResult{}, err
	}

	if p.Handler != nil && len(drained.Payloads) > 0 {
		if err := p.Handler(ctx, webhookID, drained.Payloads); err != nil {
			p.logError("payload handler failed", err, webhookID, runID)
			return result, err
		}
	}
	if p.Dispatcher != nil {
		for _, payload := range drained.Payloads {
			msg := PayloadReceivedMessage{WebhookID: webhookID, RunID: runID, Payload: payload}
			if err := p.Dispatcher.Dispatch(ctx, msg); err != nil {
				p.logError("payload dispatch failed", err, webhookID, runID)
				return result, err
			}
		}
	}

	p.logInfo("poll run complete", webhookID, runID, len(drained.Payloads), drained.NextCursor)
	return result, nil
}

// loadCursor returns the stored watermark, or the initial cursor with
// knownCursor=false when the webhook has never been polled.
func (p *Poller) loadCursor(ctx context.Context, webhookID string) (int64, bool, error) {
	cursor, err := p.Cursors.Get(ctx, webhookID)
	if err != nil {
		if errors.Is(err, core.ErrCursorNotFound) {
			return initialCursor, false, nil
		}
		return 0, false, err
	}
	if cursor.Value <= 0 {
		return initialCursor, true, nil
	}
	return cursor.Value, true, nil
}

func (p *Poller) persistCursor(
	ctx context.Context,
	webhookID string,
	startCursor int64,
	knownCursor bool,
	nextCursor int64,
) error {
	now := p.now()
	if !knownCursor {
		_, err := p.Cursors.Upsert(ctx, core.UpsertWebhookCursorInput{
			WebhookID:    webhookID,
			Value:        nextCursor,
			LastPolledAt: &now,
		})
		return err
	}
	_, err := p.Cursors.Advance(ctx, core.AdvanceWebhookCursorInput{
		WebhookID:     webhookID,
		ExpectedValue: startCursor,
		Value:         nextCursor,
		LastPolledAt:  &now,
	})
	return err
}

func (p *Poller) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Poller) logInfo(message string, webhookID string, runID string, payloads int, nextCursor int64) {
	if p == nil || p.Logger == nil {
		return
	}
	p.Logger.Info(message,
		"webhook_id", webhookID,
		"run_id", runID,
		"payloads", payloads,
		"next_cursor", nextCursor,
	)
}

func (p *Poller) logError(message string, err error, webhookID string, runID string) {
	if p == nil || p.Logger == nil {
		return
	}
	p.Logger.Error(message,
		"webhook_id", webhookID,
		"run_id", runID,
		"error", err,
	)
}

var _ core.CommandMessage = PayloadReceivedMessage{}
