package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-airtable/core"
)

type stubRecordReader struct {
	listRecordsFn     func(ctx context.Context, table string, req core.ListRecordsRequest) ([]core.Record, error)
	listRecordsPageFn func(ctx context.Context, table string, req core.ListRecordsRequest) (core.RecordPage, error)
	getRecordFn       func(ctx context.Context, table string, recordID string) (core.Record, error)
	listCommentsFn    func(ctx context.Context, table string, recordID string, pageSize int) ([]core.Comment, error)
}

func (s stubRecordReader) ListRecords(ctx context.Context, table string, req core.ListRecordsRequest) ([]core.Record, error) {
	return s.listRecordsFn(ctx, table, req)
}

func (s stubRecordReader) ListRecordsPage(ctx context.Context, table string, req core.ListRecordsRequest) (core.RecordPage, error) {
	return s.listRecordsPageFn(ctx, table, req)
}

func (s stubRecordReader) GetRecord(ctx context.Context, table string, recordID string) (core.Record, error) {
	return s.getRecordFn(ctx, table, recordID)
}

func (s stubRecordReader) ListComments(ctx context.Context, table string, recordID string, pageSize int) ([]core.Comment, error) {
	return s.listCommentsFn(ctx, table, recordID, pageSize)
}

func TestListRecordsQuery_QueryDelegates(t *testing.T) {
	expected := []core.Record{
		{ID: "rec1", Fields: map[string]any{"Name": "First"}},
		{ID: "rec2", Fields: map[string]any{"Name": "Second"}},
	}
	called := false
	reader := stubRecordReader{
		listRecordsFn: func(_ context.Context, table string, req core.ListRecordsRequest) ([]core.Record, error) {
			called = true
			if table != "Tasks" {
				t.Fatalf("expected table Tasks, got %q", table)
			}
			if req.View != "Grid view" || req.MaxRecords != 100 {
				t.Fatalf("unexpected list request: %#v", req)
			}
			return expected, nil
		},
	}

	qry := NewListRecordsQuery(reader)
	result, err := qry.Query(context.Background(), ListRecordsMessage{
		Table:   "Tasks",
		Request: core.ListRecordsRequest{View: "Grid view", MaxRecords: 100},
	})
	if err != nil {
		t.Fatalf("query records: %v", err)
	}
	if !called {
		t.Fatalf("expected record reader invocation")
	}
	if len(result) != 2 || result[0].ID != "rec1" || result[1].ID != "rec2" {
		t.Fatalf("unexpected records result: %#v", result)
	}
}

func TestListRecordsPageQuery_PassesOffsetThrough(t *testing.T) {
	reader := stubRecordReader{
		listRecordsPageFn: func(_ context.Context, table string, req core.ListRecordsRequest) (core.RecordPage, error) {
			if req.Offset != "itrJ7Bc4EperLPyfF/recNext" {
				t.Fatalf("expected offset to pass through, got %q", req.Offset)
			}
			return core.RecordPage{
				Records: []core.Record{{ID: "recNext"}},
				Offset:  "itrJ7Bc4EperLPyfF/recLast",
			}, nil
		},
	}

	qry := NewListRecordsPageQuery(reader)
	page, err := qry.Query(context.Background(), ListRecordsPageMessage{
		Table:   "Tasks",
		Request: core.ListRecordsRequest{Offset: "itrJ7Bc4EperLPyfF/recNext"},
	})
	if err != nil {
		t.Fatalf("query record page: %v", err)
	}
	if page.Offset != "itrJ7Bc4EperLPyfF/recLast" {
		t.Fatalf("expected continuation offset, got %q", page.Offset)
	}
}

func TestGetRecordQuery_QueryDelegates(t *testing.T) {
	reader := stubRecordReader{
		getRecordFn: func(_ context.Context, table string, recordID string) (core.Record, error) {
			if table != "Tasks" || recordID != "rec1" {
				t.Fatalf("unexpected get request: %q %q", table, recordID)
			}
			return core.Record{ID: "rec1", Fields: map[string]any{"Name": "First"}}, nil
		},
	}

	qry := NewGetRecordQuery(reader)
	record, err := qry.Query(context.Background(), GetRecordMessage{Table: "Tasks", RecordID: "rec1"})
	if err != nil {
		t.Fatalf("query record: %v", err)
	}
	if record.ID != "rec1" {
		t.Fatalf("unexpected record result: %#v", record)
	}
}

func TestListCommentsQuery_QueryDelegates(t *testing.T) {
	reader := stubRecordReader{
		listCommentsFn: func(_ context.Context, table string, recordID string, pageSize int) ([]core.Comment, error) {
			if table != "Tasks" || recordID != "rec1" || pageSize != 25 {
				t.Fatalf("unexpected comments request: %q %q %d", table, recordID, pageSize)
			}
			return []core.Comment{{ID: "com1", Text: "hello"}}, nil
		},
	}

	qry := NewListCommentsQuery(reader)
	comments, err := qry.Query(context.Background(), ListCommentsMessage{Table: "Tasks", RecordID: "rec1", PageSize: 25})
	if err != nil {
		t.Fatalf("query comments: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != "com1" {
		t.Fatalf("unexpected comments result: %#v", comments)
	}
}

func TestQueryMessages_Validate(t *testing.T) {
	cases := []struct {
		name    string
		message interface{ Validate() error }
		wantErr bool
	}{
		{name: "list ok", message: ListRecordsMessage{Table: "Tasks"}},
		{name: "list missing table", message: ListRecordsMessage{}, wantErr: true},
		{name: "list rejects offset", message: ListRecordsMessage{Table: "Tasks", Request: core.ListRecordsRequest{Offset: "itr/rec"}}, wantErr: true},
		{name: "list negative page size", message: ListRecordsMessage{Table: "Tasks", Request: core.ListRecordsRequest{PageSize: -1}}, wantErr: true},
		{name: "page accepts offset", message: ListRecordsPageMessage{Table: "Tasks", Request: core.ListRecordsRequest{Offset: "itr/rec"}}},
		{name: "page missing table", message: ListRecordsPageMessage{}, wantErr: true},
		{name: "get ok", message: GetRecordMessage{Table: "Tasks", RecordID: "rec1"}},
		{name: "get missing record id", message: GetRecordMessage{Table: "Tasks"}, wantErr: true},
		{name: "comments ok", message: ListCommentsMessage{Table: "Tasks", RecordID: "rec1"}},
		{name: "comments negative page size", message: ListCommentsMessage{Table: "Tasks", RecordID: "rec1", PageSize: -1}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.message.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
