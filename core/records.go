package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type batchWriteBody struct {
	Records               []RecordWrite `json:"records"`
	Typecast              bool          `json:"typecast,omitempty"`
	ReturnFieldsByFieldID bool          `json:"returnFieldsByFieldId,omitempty"`
	PerformUpsert         *UpsertSpec   `json:"performUpsert,omitempty"`
}

type singleWriteBody struct {
	Fields                map[string]any `json:"fields"`
	Typecast              bool           `json:"typecast,omitempty"`
	ReturnFieldsByFieldID bool           `json:"returnFieldsByFieldId,omitempty"`
}

type deleteRecordsResponse struct {
	Records []DeleteResult `json:"records"`
}

// ListRecords fetches every page the query spans and returns the records in
// server order. MaxRecords, when set, bounds the result regardless of how
// many pages the data would otherwise cover. The request's Offset must be
// empty; continuation is internal to this call.
func (c *Client) ListRecords(ctx context.Context, table string, req ListRecordsRequest) ([]Record, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, c.mapError(fmt.Errorf("core: table name or id is required"))
	}
	if strings.TrimSpace(req.Offset) != "" {
		return nil, c.mapError(fmt.Errorf("core: offset must be empty, pagination is managed internally"))
	}

	return CollectPages(ctx, req.MaxRecords, func(ctx context.Context, offset string) ([]Record, string, error) {
		pageReq := req
		pageReq.Offset = offset
		page, err := c.ListRecordsPage(ctx, table, pageReq)
		if err != nil {
			return nil, "", err
		}
		return page.Records, page.Offset, nil
	})
}

// ListRecordsPage fetches exactly one page. The returned Offset, when
// non-empty, must be echoed verbatim on the next request.
func (c *Client) ListRecordsPage(ctx context.Context, table string, req ListRecordsRequest) (RecordPage, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return RecordPage{}, c.mapError(fmt.Errorf("core: table name or id is required"))
	}
	page := RecordPage{}
	err := c.DoJSON(ctx, http.MethodPost, c.tablePath(table, "listRecords"), nil, req, &page)
	if err != nil {
		return RecordPage{}, err
	}
	return page, nil
}

func (c *Client) GetRecord(ctx context.Context, table string, recordID string) (Record, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	if table == "" || recordID == "" {
		return Record{}, c.mapError(fmt.Errorf("core: table and record id are required"))
	}
	record := Record{}
	if err := c.DoJSON(ctx, http.MethodGet, c.tablePath(table, recordID), nil, nil, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

func (c *Client) CreateRecord(
	ctx context.Context,
	table string,
	fields map[string]any,
	opts WriteOptions,
) (Record, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Record{}, c.mapError(fmt.Errorf("core: table name or id is required"))
	}
	if len(fields) == 0 {
		return Record{}, c.mapError(fmt.Errorf("core: fields are required"))
	}
	record := Record{}
	body := singleWriteBody{
		Fields:                fields,
		Typecast:              opts.Typecast,
		ReturnFieldsByFieldID: opts.ReturnFieldsByFieldID,
	}
	if err := c.DoJSON(ctx, http.MethodPost, c.tablePath(table), nil, body, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// CreateRecords writes a batch of up to ten new records.
func (c *Client) CreateRecords(
	ctx context.Context,
	table string,
	writes []RecordWrite,
	opts WriteOptions,
) (WriteResult, error) {
	return c.batchWrite(ctx, http.MethodPost, table, writes, opts, nil, false)
}

// UpdateRecords patches only the fields present in each write; untouched
// fields keep their values.
func (c *Client) UpdateRecords(
	ctx context.Context,
	table string,
	writes []RecordWrite,
	opts WriteOptions,
) (WriteResult, error) {
	return c.batchWrite(ctx, http.MethodPatch, table, writes, opts, nil, true)
}

// ReplaceRecords overwrites each record wholesale; fields absent from the
// write are cleared.
func (c *Client) ReplaceRecords(
	ctx context.Context,
	table string,
	writes []RecordWrite,
	opts WriteOptions,
) (WriteResult, error) {
	return c.batchWrite(ctx, http.MethodPut, table, writes, opts, nil, true)
}

// UpsertRecords matches each write against existing records on the merge
// fields, updating matches and creating the rest. The result reports which
// record ids were created and which were updated.
func (c *Client) UpsertRecords(
	ctx context.Context,
	table string,
	writes []RecordWrite,
	fieldsToMergeOn []string,
	opts WriteOptions,
) (WriteResult, error) {
	if len(fieldsToMergeOn) == 0 {
		return WriteResult{}, c.mapError(fmt.Errorf("core: fields to merge on are required for upsert"))
	}
	spec := &UpsertSpec{FieldsToMergeOn: fieldsToMergeOn}
	return c.batchWrite(ctx, http.MethodPatch, table, writes, opts, spec, false)
}

func (c *Client) UpdateRecord(
	ctx context.Context,
	table string,
	recordID string,
	fields map[string]any,
	opts WriteOptions,
) (Record, error) {
	return c.singleWrite(ctx, http.MethodPatch, table, recordID, fields, opts)
}

func (c *Client) ReplaceRecord(
	ctx context.Context,
	table string,
	recordID string,
	fields map[string]any,
	opts WriteOptions,
) (Record, error) {
	return c.singleWrite(ctx, http.MethodPut, table, recordID, fields, opts)
}

func (c *Client) DeleteRecord(ctx context.Context, table string, recordID string) (DeleteResult, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	if table == "" || recordID == "" {
		return DeleteResult{}, c.mapError(fmt.Errorf("core: table and record id are required"))
	}
	result := DeleteResult{}
	if err := c.DoJSON(ctx, http.MethodDelete, c.tablePath(table, recordID), nil, nil, &result); err != nil {
		return DeleteResult{}, err
	}
	return result, nil
}

// DeleteRecords removes up to ten records in one call.
func (c *Client) DeleteRecords(ctx context.Context, table string, recordIDs []string) ([]DeleteResult, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, c.mapError(fmt.Errorf("core: table name or id is required"))
	}
	if len(recordIDs) == 0 {
		return nil, c.mapError(fmt.Errorf("core: record ids are required"))
	}

	values := url.Values{}
	for _, id := range recordIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, c.mapError(fmt.Errorf("core: record id must not be empty"))
		}
		values.Add("records[]", id)
	}

	response := deleteRecordsResponse{}
	path := c.tablePath(table) + "?" + values.Encode()
	if err := c.DoJSON(ctx, http.MethodDelete, path, nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Records, nil
}

func (c *Client) batchWrite(
	ctx context.Context,
	method string,
	table string,
	writes []RecordWrite,
	opts WriteOptions,
	upsert *UpsertSpec,
	requireIDs bool,
) (WriteResult, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return WriteResult{}, c.mapError(fmt.Errorf("core: table name or id is required"))
	}
	if len(writes) == 0 {
		return WriteResult{}, c.mapError(fmt.Errorf("core: at least one record write is required"))
	}
	for i, write := range writes {
		if requireIDs && strings.TrimSpace(write.ID) == "" {
			return WriteResult{}, c.mapError(fmt.Errorf("core: record write %d is missing an id", i))
		}
		if len(write.Fields) == 0 {
			return WriteResult{}, c.mapError(fmt.Errorf("core: record write %d has no fields", i))
		}
	}

	body := batchWriteBody{
		Records:               writes,
		Typecast:              opts.Typecast,
		ReturnFieldsByFieldID: opts.ReturnFieldsByFieldID,
		PerformUpsert:         upsert,
	}
	result := WriteResult{}
	if err := c.DoJSON(ctx, method, c.tablePath(table), nil, body, &result); err != nil {
		return WriteResult{}, err
	}
	return result, nil
}

func (c *Client) singleWrite(
	ctx context.Context,
	method string,
	table string,
	recordID string,
	fields map[string]any,
	opts WriteOptions,
) (Record, error) {
	table = strings.TrimSpace(table)
	recordID = strings.TrimSpace(recordID)
	if table == "" || recordID == "" {
		return Record{}, c.mapError(fmt.Errorf("core: table and record id are required"))
	}
	if len(fields) == 0 {
		return Record{}, c.mapError(fmt.Errorf("core: fields are required"))
	}
	record := Record{}
	body := singleWriteBody{
		Fields:                fields,
		Typecast:              opts.Typecast,
		ReturnFieldsByFieldID: opts.ReturnFieldsByFieldID,
	}
	if err := c.DoJSON(ctx, method, c.tablePath(table, recordID), nil, body, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

func (c *Client) tablePath(table string, extra ...string) string {
	segments := append([]string{c.BaseID(), url.PathEscape(strings.TrimSpace(table))}, extra...)
	return strings.Join(segments, "/")
}
