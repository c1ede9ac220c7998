// Package webhooks models the change feed a base emits: payload decoding,
// webhook registration lifecycle, cursor-driven payload consumption, and
// notification ping verification.
//
// Payloads are immutable value objects ordered by baseTransactionNumber.
// A single payload may touch several tables at once; the full
// ChangedTablesByID map is exposed and callers iterate every entry rather
// than assuming a single table changed.
package webhooks
