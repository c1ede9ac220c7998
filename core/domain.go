package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrFieldNotFound     = errors.New("core: field not found")
	ErrFieldTypeMismatch = errors.New("core: field type mismatch")
	ErrCursorNotFound    = errors.New("core: webhook cursor not found")
	ErrCursorConflict    = errors.New("core: webhook cursor advance conflict")
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type CellFormat string

const (
	CellFormatJSON   CellFormat = "json"
	CellFormatString CellFormat = "string"
)

// Record is one row of a table as returned by the service. Instances are
// value objects; a fresh Record is produced per fetch or mutation response.
type Record struct {
	ID           string         `json:"id,omitempty"`
	CreatedTime  *time.Time     `json:"createdTime,omitempty"`
	Fields       map[string]any `json:"fields"`
	CommentCount *int           `json:"commentCount,omitempty"`
}

// Field reports the raw value for name. The service omits empty cells, so a
// missing key means "absent", not "present-but-empty".
func (r Record) Field(name string) (any, bool) {
	if len(r.Fields) == 0 {
		return nil, false
	}
	value, ok := r.Fields[name]
	return value, ok
}

func (r Record) StringField(name string) (string, error) {
	value, ok := r.Field(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	typed, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, not string", ErrFieldTypeMismatch, name, value)
	}
	return typed, nil
}

func (r Record) NumberField(name string) (float64, error) {
	value, ok := r.Field(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	}
	return 0, fmt.Errorf("%w: field %q is %T, not number", ErrFieldTypeMismatch, name, value)
}

func (r Record) BoolField(name string) (bool, error) {
	value, ok := r.Field(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	typed, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: field %q is %T, not bool", ErrFieldTypeMismatch, name, value)
	}
	return typed, nil
}

func (r Record) StringListField(name string) ([]string, error) {
	value, ok := r.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...), nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, entry := range typed {
			str, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf(
					"%w: field %q contains %T, not string",
					ErrFieldTypeMismatch, name, entry,
				)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: field %q is %T, not string list", ErrFieldTypeMismatch, name, value)
}

// Thumbnail is a server-rendered preview of an attachment.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type AttachmentThumbnails struct {
	Small *Thumbnail `json:"small,omitempty"`
	Large *Thumbnail `json:"large,omitempty"`
	Full  *Thumbnail `json:"full,omitempty"`
}

// Attachment is the read model of an attachment cell entry. Every field
// except URL and Filename is assigned by the server and must never be echoed
// back in a write request; use ForUpload for that.
type Attachment struct {
	ID         string                `json:"id,omitempty"`
	URL        string                `json:"url,omitempty"`
	Filename   string                `json:"filename,omitempty"`
	Size       int64                 `json:"size,omitempty"`
	Type       string                `json:"type,omitempty"`
	Width      int                   `json:"width,omitempty"`
	Height     int                   `json:"height,omitempty"`
	Thumbnails *AttachmentThumbnails `json:"thumbnails,omitempty"`
}

// AttachmentUpload is the write model: the only fields the service accepts
// when attaching a file to a cell.
type AttachmentUpload struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

func (a Attachment) ForUpload() AttachmentUpload {
	return AttachmentUpload{
		URL:      strings.TrimSpace(a.URL),
		Filename: strings.TrimSpace(a.Filename),
	}
}

// AttachmentUploads converts a fetched attachment list into write shape.
func AttachmentUploads(attachments []Attachment) []AttachmentUpload {
	if len(attachments) == 0 {
		return nil
	}
	uploads := make([]AttachmentUpload, 0, len(attachments))
	for _, attachment := range attachments {
		uploads = append(uploads, attachment.ForUpload())
	}
	return uploads
}

type SortSpec struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction,omitempty"`
}

// ListRecordsRequest mirrors the listRecords body. Offset is the opaque
// continuation token and is echoed verbatim; the client never constructs one.
type ListRecordsRequest struct {
	Fields                []string   `json:"fields,omitempty"`
	FilterByFormula       string     `json:"filterByFormula,omitempty"`
	MaxRecords            int        `json:"maxRecords,omitempty"`
	PageSize              int        `json:"pageSize,omitempty"`
	Sort                  []SortSpec `json:"sort,omitempty"`
	View                  string     `json:"view,omitempty"`
	CellFormat            CellFormat `json:"cellFormat,omitempty"`
	TimeZone              string     `json:"timeZone,omitempty"`
	UserLocale            string     `json:"userLocale,omitempty"`
	ReturnFieldsByFieldID bool       `json:"returnFieldsByFieldId,omitempty"`
	Offset                string     `json:"offset,omitempty"`
}

type RecordPage struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type RecordWrite struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type WriteOptions struct {
	Typecast              bool
	ReturnFieldsByFieldID bool
}

type UpsertSpec struct {
	FieldsToMergeOn []string `json:"fieldsToMergeOn"`
}

type WriteResult struct {
	Records        []Record `json:"records"`
	CreatedRecords []string `json:"createdRecords,omitempty"`
	UpdatedRecords []string `json:"updatedRecords,omitempty"`
}

type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type Collaborator struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Comment text carries mentions verbatim using the @[usrXXX] syntax.
type Comment struct {
	ID              string       `json:"id"`
	Author          Collaborator `json:"author"`
	Text            string       `json:"text"`
	CreatedTime     *time.Time   `json:"createdTime,omitempty"`
	LastUpdatedTime *time.Time   `json:"lastUpdatedTime,omitempty"`
}

type CommentPage struct {
	Comments []Comment `json:"comments"`
	Offset   string    `json:"offset,omitempty"`
}

// WebhookCursor is the durable watermark for one webhook's payload feed.
// Value is the next unconsumed transaction number.
type WebhookCursor struct {
	WebhookID    string
	Value        int64
	LastPolledAt *time.Time
	UpdatedAt    time.Time
	Metadata     map[string]any
}

type UpsertWebhookCursorInput struct {
	WebhookID    string
	Value        int64
	LastPolledAt *time.Time
	Metadata     map[string]any
}

// AdvanceWebhookCursorInput moves a cursor forward only when the stored value
// still matches ExpectedValue, so concurrent pollers cannot silently rewind
// each other.
type AdvanceWebhookCursorInput struct {
	WebhookID     string
	ExpectedValue int64
	Value         int64
	LastPolledAt  *time.Time
	Metadata      map[string]any
}
