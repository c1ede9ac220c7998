// Package airtable is the top level entry point for the Airtable Web API
// client. It re-exports the core types and options so most callers only
// import this package.
package airtable

import (
	"github.com/goliatone/go-airtable/core"
	"github.com/goliatone/go-airtable/ratelimit"
)

var (
	_ core.RetryPolicy = ratelimit.FixedDelayPolicy{}
	_ core.RetryPolicy = ratelimit.ExponentialPolicy{}
)

type Config = core.Config
type RetryConfig = core.RetryConfig

type Option = core.Option

type Client = core.Client

type Record = core.Record
type RecordWrite = core.RecordWrite
type RecordPage = core.RecordPage
type ListRecordsRequest = core.ListRecordsRequest
type SortSpec = core.SortSpec
type WriteOptions = core.WriteOptions
type UpsertSpec = core.UpsertSpec
type WriteResult = core.WriteResult
type DeleteResult = core.DeleteResult

type Attachment = core.Attachment
type AttachmentUpload = core.AttachmentUpload

type Collaborator = core.Collaborator
type Comment = core.Comment
type CommentPage = core.CommentPage

type WebhookCursor = core.WebhookCursor

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithTransport         = core.WithTransport
	WithRetryPolicy       = core.WithRetryPolicy
	WithCursorStore       = core.WithCursorStore
	WithCommandDispatcher = core.WithCommandDispatcher
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func New(cfg Config, opts ...Option) (*Client, error) {
	return core.New(cfg, opts...)
}
