package query

import (
	"strings"

	"github.com/goliatone/go-airtable/core"
)

const (
	TypeListRecords     = "airtable.query.record.list"
	TypeListRecordsPage = "airtable.query.record.list_page"
	TypeGetRecord       = "airtable.query.record.get"
	TypeListComments    = "airtable.query.comment.list"
)

type ListRecordsMessage struct {
	Table   string
	Request core.ListRecordsRequest
}

func (ListRecordsMessage) Type() string { return TypeListRecords }

func (m ListRecordsMessage) Validate() error {
	if err := validateListRequest(m.Table, m.Request); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.Offset) != "" {
		return queryInvalidInputError("query: offset is managed by the client and must be empty")
	}
	return nil
}

type ListRecordsPageMessage struct {
	Table   string
	Request core.ListRecordsRequest
}

func (ListRecordsPageMessage) Type() string { return TypeListRecordsPage }

func (m ListRecordsPageMessage) Validate() error {
	return validateListRequest(m.Table, m.Request)
}

type GetRecordMessage struct {
	Table    string
	RecordID string
}

func (GetRecordMessage) Type() string { return TypeGetRecord }

func (m GetRecordMessage) Validate() error {
	if strings.TrimSpace(m.Table) == "" {
		return queryInvalidInputError("query: table is required")
	}
	if strings.TrimSpace(m.RecordID) == "" {
		return queryInvalidInputError("query: record id is required")
	}
	return nil
}

type ListCommentsMessage struct {
	Table    string
	RecordID string
	PageSize int
}

func (ListCommentsMessage) Type() string { return TypeListComments }

func (m ListCommentsMessage) Validate() error {
	if strings.TrimSpace(m.Table) == "" {
		return queryInvalidInputError("query: table is required")
	}
	if strings.TrimSpace(m.RecordID) == "" {
		return queryInvalidInputError("query: record id is required")
	}
	if m.PageSize < 0 {
		return queryInvalidInputError("query: page size must be >= 0")
	}
	return nil
}

func validateListRequest(table string, req core.ListRecordsRequest) error {
	if strings.TrimSpace(table) == "" {
		return queryInvalidInputError("query: table is required")
	}
	if req.PageSize < 0 {
		return queryInvalidInputError("query: page size must be >= 0")
	}
	if req.MaxRecords < 0 {
		return queryInvalidInputError("query: max records must be >= 0")
	}
	return nil
}
