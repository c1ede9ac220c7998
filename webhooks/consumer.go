package webhooks

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-airtable/core"
)

// PayloadLister is the slice of API the consumer needs.
type PayloadLister interface {
	ListPayloads(ctx context.Context, webhookID string, cursor int64, limit int) (PayloadList, error)
}

// DrainResult accumulates one full consumption run. NextCursor must be
// persisted by the caller before acting on Payloads so a restart replays
// rather than skips (at-least-once delivery).
type DrainResult struct {
	Payloads      []Payload
	NextCursor    int64
	MightHaveMore bool
	PayloadFormat string
}

// CursorConsumer reads the change feed in server order. It never reorders
// payloads and fails on the first ordering violation instead of silently
// repairing it.
type CursorConsumer struct {
	Lister PayloadLister
	// Limit caps payloads per request when positive.
	Limit int
}

func NewCursorConsumer(lister PayloadLister) (*CursorConsumer, error) {
	if lister == nil {
		return nil, fmt.Errorf("webhooks: payload lister is required")
	}
	return &CursorConsumer{Lister: lister}, nil
}

// Collect performs a single ListPayloads exchange and validates ordering
// within the batch. An empty batch with MightHaveMore=false is a valid
// terminal poll state, not a failure.
func (c *CursorConsumer) Collect(ctx context.Context, webhookID string, cursor int64) (DrainResult, error) {
	if c == nil || c.Lister == nil {
		return DrainResult{}, fmt.Errorf("webhooks: consumer is not configured")
	}

	list, err := c.Lister.ListPayloads(ctx, webhookID, cursor, c.Limit)
	if err != nil {
		return DrainResult{}, err
	}
	if err := verifyBatchOrder(webhookID, 0, list.Payloads); err != nil {
		return DrainResult{}, err
	}

	nextCursor := list.Cursor
	if nextCursor <= 0 {
		nextCursor = cursor
	}
	return DrainResult{
		Payloads:      list.Payloads,
		NextCursor:    nextCursor,
		MightHaveMore: list.MightHaveMore,
		PayloadFormat: list.PayloadFormat,
	}, nil
}

// Drain loops Collect while the service reports more payloads, merging
// batches in arrival order. Transaction numbers must be strictly increasing
// across the whole run, including across batch boundaries.
func (c *CursorConsumer) Drain(ctx context.Context, webhookID string, cursor int64) (DrainResult, error) {
	if c == nil || c.Lister == nil {
		return DrainResult{}, fmt.Errorf("webhooks: consumer is not configured")
	}

	result := DrainResult{NextCursor: cursor}
	lastTransaction := int64(0)
	for {
		if err := ctx.Err(); err != nil {
			return DrainResult{}, goerrors.Wrap(err, goerrors.CategoryOperation, "webhooks: drain canceled").
				WithTextCode(core.ClientErrorCanceled).
				WithMetadata(map[string]any{"webhook_id": webhookID})
		}

		list, err := c.Lister.ListPayloads(ctx, webhookID, result.NextCursor, c.Limit)
		if err != nil {
			return DrainResult{}, err
		}
		if err := verifyBatchOrder(webhookID, lastTransaction, list.Payloads); err != nil {
			return DrainResult{}, err
		}

		result.Payloads = append(result.Payloads, list.Payloads...)
		if len(list.Payloads) > 0 {
			lastTransaction = list.Payloads[len(list.Payloads)-1].BaseTransactionNumber
		}
		if list.Cursor > 0 {
			result.NextCursor = list.Cursor
		}
		if list.PayloadFormat != "" {
			result.PayloadFormat = list.PayloadFormat
		}
		if !list.MightHaveMore {
			result.MightHaveMore = false
			return result, nil
		}
	}
}

// verifyBatchOrder checks strict baseTransactionNumber monotonicity within a
// batch and against the last transaction of the previous batch. A violation
// means the feed cannot be trusted and must surface, never be reordered away.
func verifyBatchOrder(webhookID string, lastTransaction int64, payloads []Payload) error {
	previous := lastTransaction
	for index, payload := range payloads {
		if payload.BaseTransactionNumber <= previous {
			return goerrors.New(
				fmt.Sprintf(
					"webhooks: payload order violation at index %d: transaction %d follows %d",
					index, payload.BaseTransactionNumber, previous,
				),
				goerrors.CategoryExternal,
			).
				WithTextCode(core.ClientErrorPayloadOrder).
				WithMetadata(map[string]any{
					"webhook_id":           webhookID,
					"index":                index,
					"transaction":          payload.BaseTransactionNumber,
					"previous_transaction": previous,
				})
		}
		previous = payload.BaseTransactionNumber
	}
	return nil
}
