package webhooks

import (
	"context"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-airtable/core"
)

type stubLister struct {
	batches []PayloadList
	cursors []int64
	calls   int
}

func (s *stubLister) ListPayloads(_ context.Context, _ string, cursor int64, _ int) (PayloadList, error) {
	s.cursors = append(s.cursors, cursor)
	if s.calls >= len(s.batches) {
		return PayloadList{Cursor: cursor}, nil
	}
	batch := s.batches[s.calls]
	s.calls++
	return batch, nil
}

func payloadAt(transaction int64) Payload {
	return Payload{BaseTransactionNumber: transaction}
}

func TestCursorConsumer_DrainMergesBatchesInOrder(t *testing.T) {
	lister := &stubLister{
		batches: []PayloadList{
			{Payloads: []Payload{payloadAt(5), payloadAt(6)}, Cursor: 7, MightHaveMore: true, PayloadFormat: "v0"},
			{Payloads: []Payload{payloadAt(7)}, Cursor: 8, MightHaveMore: true},
			{Payloads: nil, Cursor: 8, MightHaveMore: false},
		},
	}
	consumer, err := NewCursorConsumer(lister)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}

	result, err := consumer.Drain(context.Background(), "achWH1", 5)
	if err != nil {
		t.Fatalf("drain payloads: %v", err)
	}
	if len(result.Payloads) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(result.Payloads))
	}
	for index, want := range []int64{5, 6, 7} {
		if result.Payloads[index].BaseTransactionNumber != want {
			t.Fatalf("expected transaction %d at index %d, got %d", want, index, result.Payloads[index].BaseTransactionNumber)
		}
	}
	if result.NextCursor != 8 {
		t.Fatalf("expected next cursor 8, got %d", result.NextCursor)
	}
	if result.MightHaveMore {
		t.Fatalf("expected drained feed")
	}
	if result.PayloadFormat != "v0" {
		t.Fatalf("expected payload format carried through, got %q", result.PayloadFormat)
	}
	if len(lister.cursors) != 3 || lister.cursors[0] != 5 || lister.cursors[1] != 7 || lister.cursors[2] != 8 {
		t.Fatalf("unexpected cursor sequence %v", lister.cursors)
	}
}

func TestCursorConsumer_EmptyTerminalPollIsNotAnError(t *testing.T) {
	lister := &stubLister{
		batches: []PayloadList{{Payloads: nil, Cursor: 12, MightHaveMore: false}},
	}
	consumer, err := NewCursorConsumer(lister)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}

	result, err := consumer.Collect(context.Background(), "achWH1", 12)
	if err != nil {
		t.Fatalf("collect payloads: %v", err)
	}
	if len(result.Payloads) != 0 || result.NextCursor != 12 || result.MightHaveMore {
		t.Fatalf("unexpected terminal poll result %+v", result)
	}
}

func TestCursorConsumer_OrderViolationWithinBatchFails(t *testing.T) {
	lister := &stubLister{
		batches: []PayloadList{
			{Payloads: []Payload{payloadAt(5), payloadAt(5)}, Cursor: 6, MightHaveMore: false},
		},
	}
	consumer, err := NewCursorConsumer(lister)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}

	_, err = consumer.Collect(context.Background(), "achWH1", 5)
	if err == nil {
		t.Fatalf("expected order violation error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.TextCode != core.ClientErrorPayloadOrder {
		t.Fatalf("expected %q text code, got %q", core.ClientErrorPayloadOrder, rich.TextCode)
	}
}

func TestCursorConsumer_OrderViolationAcrossBatchesFails(t *testing.T) {
	lister := &stubLister{
		batches: []PayloadList{
			{Payloads: []Payload{payloadAt(5), payloadAt(6)}, Cursor: 7, MightHaveMore: true},
			{Payloads: []Payload{payloadAt(6)}, Cursor: 7, MightHaveMore: false},
		},
	}
	consumer, err := NewCursorConsumer(lister)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}

	_, err = consumer.Drain(context.Background(), "achWH1", 5)
	if err == nil {
		t.Fatalf("expected cross-batch order violation error")
	}
	if !strings.Contains(err.Error(), "order violation") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCursorConsumer_DrainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	consumer, err := NewCursorConsumer(&stubLister{})
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}
	_, err = consumer.Drain(ctx, "achWH1", 1)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if rich.TextCode != core.ClientErrorCanceled {
		t.Fatalf("expected %q text code, got %q", core.ClientErrorCanceled, rich.TextCode)
	}
}
