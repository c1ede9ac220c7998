// Package codec converts between raw record field maps and caller-defined
// struct types, and enforces the attachment write shape.
//
// Conversion is subset-tolerant in both directions: struct members with no
// matching field stay at their zero value, and fields with no matching member
// are ignored. Attachment cells are asymmetric: reads carry server-assigned
// metadata (id, size, thumbnails) that writes must never echo back, so
// WriteFields reduces attachment lists to url plus filename before submission.
package codec

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-airtable/core"
)

// ToTyped decodes a record's field map into T using json struct tags. Field
// names match the column names the service returned, so T's tags should use
// the same casing as the table schema.
func ToTyped[T any](record core.Record) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return out, codecError(fmt.Sprintf("codec: build decoder: %v", err))
	}
	if err := decoder.Decode(record.Fields); err != nil {
		return out, goerrors.Wrap(err, goerrors.CategoryBadInput, "codec: decode record fields").
			WithTextCode(core.ClientErrorBadInput).
			WithMetadata(map[string]any{"record_id": record.ID})
	}
	return out, nil
}

// FromTyped encodes a struct into a field map suitable for a write request.
// Nil pointer members and zero-value members tagged omitempty are dropped so
// the write only touches the cells the caller populated.
func FromTyped[T any](value T) (map[string]any, error) {
	fields := map[string]any{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &fields,
	})
	if err != nil {
		return nil, codecError(fmt.Sprintf("codec: build encoder: %v", err))
	}
	if err := decoder.Decode(value); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "codec: encode typed value").
			WithTextCode(core.ClientErrorBadInput)
	}
	for name, cell := range fields {
		if cell == nil {
			delete(fields, name)
			continue
		}
		rv := reflect.ValueOf(cell)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			delete(fields, name)
		}
	}
	return fields, nil
}

// ExtractAttachments reads the attachment list stored under field. An absent
// field returns (nil, false, nil). A present value that is not shaped like an
// attachment list fails loudly rather than degrading to an empty result.
func ExtractAttachments(record core.Record, field string) ([]core.Attachment, bool, error) {
	raw, ok := record.Field(field)
	if !ok {
		return nil, false, nil
	}

	entries, ok := raw.([]any)
	if !ok {
		if typed, isTyped := raw.([]core.Attachment); isTyped {
			return append([]core.Attachment(nil), typed...), true, nil
		}
		return nil, true, notAttachmentError(record.ID, field, fmt.Sprintf("value is %T, expected a list", raw))
	}

	attachments := make([]core.Attachment, 0, len(entries))
	for index, entry := range entries {
		cell, ok := entry.(map[string]any)
		if !ok {
			return nil, true, notAttachmentError(record.ID, field,
				fmt.Sprintf("entry %d is %T, expected an object", index, entry))
		}
		attachment := core.Attachment{}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &attachment,
		})
		if err != nil {
			return nil, true, codecError(fmt.Sprintf("codec: build attachment decoder: %v", err))
		}
		if err := decoder.Decode(cell); err != nil {
			return nil, true, notAttachmentError(record.ID, field,
				fmt.Sprintf("entry %d: %v", index, err))
		}
		if attachment.URL == "" && attachment.ID == "" {
			return nil, true, notAttachmentError(record.ID, field,
				fmt.Sprintf("entry %d has neither id nor url", index))
		}
		attachments = append(attachments, attachment)
	}
	return attachments, true, nil
}

// WriteFields deep-copies fields for submission, converting any attachment
// list it finds into upload shape. All other values pass through unchanged.
func WriteFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		out[name] = writeValue(value)
	}
	return out
}

func writeValue(value any) any {
	switch cell := value.(type) {
	case []core.Attachment:
		return core.AttachmentUploads(cell)
	case []core.AttachmentUpload:
		return append([]core.AttachmentUpload(nil), cell...)
	case core.Attachment:
		return cell.ForUpload()
	case []any:
		if uploads, ok := attachmentListToUploads(cell); ok {
			return uploads
		}
		copied := make([]any, len(cell))
		for index, entry := range cell {
			copied[index] = writeValue(entry)
		}
		return copied
	case map[string]any:
		copied := make(map[string]any, len(cell))
		for key, entry := range cell {
			copied[key] = writeValue(entry)
		}
		return copied
	default:
		return value
	}
}

// attachmentListToUploads detects a fetched attachment list in its raw
// map form. Objects qualify when every entry carries a url alongside the
// server-assigned id, which no other cell shape produces.
func attachmentListToUploads(entries []any) ([]map[string]any, bool) {
	if len(entries) == 0 {
		return nil, false
	}
	uploads := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		cell, ok := entry.(map[string]any)
		if !ok {
			return nil, false
		}
		url, hasURL := cell["url"].(string)
		_, hasID := cell["id"].(string)
		if !hasURL || !hasID || url == "" {
			return nil, false
		}
		upload := map[string]any{"url": url}
		if filename, ok := cell["filename"].(string); ok && filename != "" {
			upload["filename"] = filename
		}
		uploads = append(uploads, upload)
	}
	return uploads, true
}

func notAttachmentError(recordID string, field string, detail string) error {
	return goerrors.New(
		fmt.Sprintf("codec: field %q is not an attachment field", field),
		goerrors.CategoryBadInput,
	).
		WithTextCode(core.ClientErrorNotAttachmentField).
		WithMetadata(map[string]any{
			"record_id": recordID,
			"field":     field,
			"detail":    detail,
		})
}

func codecError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithTextCode(core.ClientErrorInternal)
}
