package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-airtable/core"
	"github.com/goliatone/go-airtable/webhooks"
)

type scriptedLister struct {
	batches []webhooks.PayloadList
	calls   int
}

func (s *scriptedLister) ListPayloads(_ context.Context, _ string, cursor int64, _ int) (webhooks.PayloadList, error) {
	if s.calls >= len(s.batches) {
		return webhooks.PayloadList{Cursor: cursor}, nil
	}
	batch := s.batches[s.calls]
	s.calls++
	return batch, nil
}

type recordingDispatcher struct {
	messages []any
	err      error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, msg any) error {
	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, msg)
	return nil
}

func newTestPoller(t *testing.T, batches []webhooks.PayloadList) (*Poller, *MemoryCursorStore) {
	t.Helper()
	consumer, err := webhooks.NewCursorConsumer(&scriptedLister{batches: batches})
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}
	store := NewMemoryCursorStore()
	poller := NewPoller(consumer, store)
	poller.Now = func() time.Time {
		return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	}
	return poller, store
}

func TestPoller_FirstRunStartsAtInitialCursor(t *testing.T) {
	poller, store := newTestPoller(t, []webhooks.PayloadList{
		{
			Payloads:      []webhooks.Payload{{BaseTransactionNumber: 1}, {BaseTransactionNumber: 2}},
			Cursor:        3,
			MightHaveMore: false,
		},
	})

	result, err := poller.RunOnce(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("run poll: %v", err)
	}
	if result.StartedCursor != 1 {
		t.Fatalf("expected initial cursor 1, got %d", result.StartedCursor)
	}
	if result.NextCursor != 3 || len(result.Payloads) != 2 {
		t.Fatalf("unexpected run result %+v", result)
	}
	if result.RunID == "" {
		t.Fatalf("expected run id")
	}

	cursor, err := store.Get(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("load cursor: %v", err)
	}
	if cursor.Value != 3 {
		t.Fatalf("expected persisted cursor 3, got %d", cursor.Value)
	}
	if cursor.LastPolledAt == nil {
		t.Fatalf("expected last polled timestamp")
	}
}

func TestPoller_ResumesFromStoredCursor(t *testing.T) {
	poller, store := newTestPoller(t, []webhooks.PayloadList{
		{Payloads: []webhooks.Payload{{BaseTransactionNumber: 9}}, Cursor: 10, MightHaveMore: false},
	})
	if _, err := store.Upsert(context.Background(), core.UpsertWebhookCursorInput{WebhookID: "achWH1", Value: 9}); err != nil {
		t.Fatalf("seed cursor: %v", err)
	}

	result, err := poller.RunOnce(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("run poll: %v", err)
	}
	if result.StartedCursor != 9 || result.NextCursor != 10 {
		t.Fatalf("unexpected cursors %+v", result)
	}

	cursor, err := store.Get(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("load cursor: %v", err)
	}
	if cursor.Value != 10 {
		t.Fatalf("expected advanced cursor 10, got %d", cursor.Value)
	}
}

func TestPoller_CursorPersistedBeforeHandlerRuns(t *testing.T) {
	poller, store := newTestPoller(t, []webhooks.PayloadList{
		{Payloads: []webhooks.Payload{{BaseTransactionNumber: 1}}, Cursor: 2, MightHaveMore: false},
	})

	handlerErr := fmt.Errorf("downstream unavailable")
	var cursorAtHandlerTime int64
	poller.Handler = func(ctx context.Context, _ string, _ []webhooks.Payload) error {
		cursor, err := store.Get(ctx, "achWH1")
		if err != nil {
			t.Fatalf("load cursor inside handler: %v", err)
		}
		cursorAtHandlerTime = cursor.Value
		return handlerErr
	}

	result, err := poller.RunOnce(context.Background(), "achWH1")
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if cursorAtHandlerTime != 2 {
		t.Fatalf("cursor must be durable before the handler runs, saw %d", cursorAtHandlerTime)
	}
	if len(result.Payloads) != 1 {
		t.Fatalf("expected payloads in result even on handler failure")
	}
}

func TestPoller_DispatchesCommandPerPayload(t *testing.T) {
	poller, _ := newTestPoller(t, []webhooks.PayloadList{
		{
			Payloads:      []webhooks.Payload{{BaseTransactionNumber: 1}, {BaseTransactionNumber: 2}},
			Cursor:        3,
			MightHaveMore: false,
		},
	})
	dispatcher := &recordingDispatcher{}
	poller.Dispatcher = dispatcher

	result, err := poller.RunOnce(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("run poll: %v", err)
	}
	if len(dispatcher.messages) != 2 {
		t.Fatalf("expected 2 dispatched messages, got %d", len(dispatcher.messages))
	}
	first, ok := dispatcher.messages[0].(PayloadReceivedMessage)
	if !ok {
		t.Fatalf("unexpected message type %T", dispatcher.messages[0])
	}
	if first.WebhookID != "achWH1" || first.RunID != result.RunID {
		t.Fatalf("unexpected message %+v", first)
	}
	if first.Payload.BaseTransactionNumber != 1 {
		t.Fatalf("expected first payload first, got %d", first.Payload.BaseTransactionNumber)
	}
	if first.Type() != "airtable.webhook.payload.received" {
		t.Fatalf("unexpected message type %q", first.Type())
	}
}

func TestPoller_EmptyPollStillAdvancesTimestamp(t *testing.T) {
	poller, store := newTestPoller(t, []webhooks.PayloadList{
		{Payloads: nil, Cursor: 5, MightHaveMore: false},
	})
	if _, err := store.Upsert(context.Background(), core.UpsertWebhookCursorInput{WebhookID: "achWH1", Value: 5}); err != nil {
		t.Fatalf("seed cursor: %v", err)
	}

	result, err := poller.RunOnce(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("run poll: %v", err)
	}
	if len(result.Payloads) != 0 || result.NextCursor != 5 {
		t.Fatalf("unexpected result %+v", result)
	}
	cursor, err := store.Get(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("load cursor: %v", err)
	}
	if cursor.LastPolledAt == nil {
		t.Fatalf("expected poll timestamp on empty poll")
	}
}

func TestMemoryCursorStore_AdvanceConflict(t *testing.T) {
	store := NewMemoryCursorStore()
	if _, err := store.Upsert(context.Background(), core.UpsertWebhookCursorInput{WebhookID: "achWH1", Value: 7}); err != nil {
		t.Fatalf("seed cursor: %v", err)
	}

	_, err := store.Advance(context.Background(), core.AdvanceWebhookCursorInput{
		WebhookID:     "achWH1",
		ExpectedValue: 5,
		Value:         9,
	})
	if !errors.Is(err, core.ErrCursorConflict) {
		t.Fatalf("expected cursor conflict, got %v", err)
	}

	cursor, err := store.Get(context.Background(), "achWH1")
	if err != nil {
		t.Fatalf("load cursor: %v", err)
	}
	if cursor.Value != 7 {
		t.Fatalf("conflict must not move the cursor, got %d", cursor.Value)
	}
}

func TestMemoryCursorStore_GetUnknownWebhook(t *testing.T) {
	store := NewMemoryCursorStore()
	_, err := store.Get(context.Background(), "achMISSING")
	if !errors.Is(err, core.ErrCursorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
