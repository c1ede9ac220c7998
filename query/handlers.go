package query

import (
	"context"

	"github.com/goliatone/go-airtable/core"
)

// RecordReader is the read-only slice of the client used by queries.
// *core.Client satisfies it.
type RecordReader interface {
	ListRecords(ctx context.Context, table string, req core.ListRecordsRequest) ([]core.Record, error)
	ListRecordsPage(ctx context.Context, table string, req core.ListRecordsRequest) (core.RecordPage, error)
	GetRecord(ctx context.Context, table string, recordID string) (core.Record, error)
	ListComments(ctx context.Context, table string, recordID string, pageSize int) ([]core.Comment, error)
}

type ListRecordsQuery struct {
	reader RecordReader
}

func NewListRecordsQuery(reader RecordReader) *ListRecordsQuery {
	return &ListRecordsQuery{reader: reader}
}

func (q *ListRecordsQuery) Query(ctx context.Context, msg ListRecordsMessage) ([]core.Record, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: record reader is required")
	}
	return q.reader.ListRecords(ctx, msg.Table, msg.Request)
}

type ListRecordsPageQuery struct {
	reader RecordReader
}

func NewListRecordsPageQuery(reader RecordReader) *ListRecordsPageQuery {
	return &ListRecordsPageQuery{reader: reader}
}

func (q *ListRecordsPageQuery) Query(ctx context.Context, msg ListRecordsPageMessage) (core.RecordPage, error) {
	if q == nil || q.reader == nil {
		return core.RecordPage{}, queryDependencyError("query: record reader is required")
	}
	return q.reader.ListRecordsPage(ctx, msg.Table, msg.Request)
}

type GetRecordQuery struct {
	reader RecordReader
}

func NewGetRecordQuery(reader RecordReader) *GetRecordQuery {
	return &GetRecordQuery{reader: reader}
}

func (q *GetRecordQuery) Query(ctx context.Context, msg GetRecordMessage) (core.Record, error) {
	if q == nil || q.reader == nil {
		return core.Record{}, queryDependencyError("query: record reader is required")
	}
	return q.reader.GetRecord(ctx, msg.Table, msg.RecordID)
}

type ListCommentsQuery struct {
	reader RecordReader
}

func NewListCommentsQuery(reader RecordReader) *ListCommentsQuery {
	return &ListCommentsQuery{reader: reader}
}

func (q *ListCommentsQuery) Query(ctx context.Context, msg ListCommentsMessage) ([]core.Comment, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: record reader is required")
	}
	return q.reader.ListComments(ctx, msg.Table, msg.RecordID, msg.PageSize)
}
