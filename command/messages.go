package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-airtable/core"
)

const (
	TypeCreateRecord   = "airtable.command.record.create"
	TypeCreateRecords  = "airtable.command.record.create_batch"
	TypeUpdateRecords  = "airtable.command.record.update_batch"
	TypeReplaceRecords = "airtable.command.record.replace_batch"
	TypeUpsertRecords  = "airtable.command.record.upsert"
	TypeDeleteRecords  = "airtable.command.record.delete_batch"
	TypeCreateComment  = "airtable.command.comment.create"
	TypeUpdateComment  = "airtable.command.comment.update"
	TypeDeleteComment  = "airtable.command.comment.delete"
)

type CreateRecordMessage struct {
	Table   string
	Fields  map[string]any
	Options core.WriteOptions
}

func (CreateRecordMessage) Type() string { return TypeCreateRecord }

func (m CreateRecordMessage) Validate() error {
	if strings.TrimSpace(m.Table) == "" {
		return commandInvalidInputError("command: table is required")
	}
	if len(m.Fields) == 0 {
		return commandInvalidInputError("command: fields are required")
	}
	return nil
}

type CreateRecordsMessage struct {
	Table   string
	Writes  []core.RecordWrite
	Options core.WriteOptions
}

func (CreateRecordsMessage) Type() string { return TypeCreateRecords }

func (m CreateRecordsMessage) Validate() error {
	return validateBatch(m.Table, m.Writes, false)
}

type UpdateRecordsMessage struct {
	Table   string
	Writes  []core.RecordWrite
	Options core.WriteOptions
}

func (UpdateRecordsMessage) Type() string { return TypeUpdateRecords }

func (m UpdateRecordsMessage) Validate() error {
	return validateBatch(m.Table, m.Writes, true)
}

type ReplaceRecordsMessage struct {
	Table   string
	Writes  []core.RecordWrite
	Options core.WriteOptions
}

func (ReplaceRecordsMessage) Type() string { return TypeReplaceRecords }

func (m ReplaceRecordsMessage) Validate() error {
	return validateBatch(m.Table, m.Writes, true)
}

type UpsertRecordsMessage struct {
	Table           string
	Writes          []core.RecordWrite
	FieldsToMergeOn []string
	Options         core.WriteOptions
}

func (UpsertRecordsMessage) Type() string { return TypeUpsertRecords }

func (m UpsertRecordsMessage) Validate() error {
	if err := validateBatch(m.Table, m.Writes, false); err != nil {
		return err
	}
	if len(m.FieldsToMergeOn) == 0 {
		return commandInvalidInputError("command: fields to merge on are required")
	}
	return nil
}

type DeleteRecordsMessage struct {
	Table     string
	RecordIDs []string
}

func (DeleteRecordsMessage) Type() string { return TypeDeleteRecords }

func (m DeleteRecordsMessage) Validate() error {
	if strings.TrimSpace(m.Table) == "" {
		return commandInvalidInputError("command: table is required")
	}
	if len(m.RecordIDs) == 0 {
		return commandInvalidInputError("command: record ids are required")
	}
	for _, id := range m.RecordIDs {
		if strings.TrimSpace(id) == "" {
			return commandInvalidInputError("command: record id must not be empty")
		}
	}
	return nil
}

type CreateCommentMessage struct {
	Table    string
	RecordID string
	Text     string
}

func (CreateCommentMessage) Type() string { return TypeCreateComment }

func (m CreateCommentMessage) Validate() error {
	if err := validateRecordRef(m.Table, m.RecordID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Text) == "" {
		return commandInvalidInputError("command: comment text is required")
	}
	return nil
}

type UpdateCommentMessage struct {
	Table     string
	RecordID  string
	CommentID string
	Text      string
}

func (UpdateCommentMessage) Type() string { return TypeUpdateComment }

func (m UpdateCommentMessage) Validate() error {
	if err := validateRecordRef(m.Table, m.RecordID); err != nil {
		return err
	}
	if strings.TrimSpace(m.CommentID) == "" {
		return commandInvalidInputError("command: comment id is required")
	}
	if strings.TrimSpace(m.Text) == "" {
		return commandInvalidInputError("command: comment text is required")
	}
	return nil
}

type DeleteCommentMessage struct {
	Table     string
	RecordID  string
	CommentID string
}

func (DeleteCommentMessage) Type() string { return TypeDeleteComment }

func (m DeleteCommentMessage) Validate() error {
	if err := validateRecordRef(m.Table, m.RecordID); err != nil {
		return err
	}
	if strings.TrimSpace(m.CommentID) == "" {
		return commandInvalidInputError("command: comment id is required")
	}
	return nil
}

func validateBatch(table string, writes []core.RecordWrite, requireIDs bool) error {
	if strings.TrimSpace(table) == "" {
		return commandInvalidInputError("command: table is required")
	}
	if len(writes) == 0 {
		return commandInvalidInputError("command: at least one record write is required")
	}
	for i, write := range writes {
		if requireIDs && strings.TrimSpace(write.ID) == "" {
			return commandInvalidInputError(fmt.Sprintf("command: record write %d is missing an id", i))
		}
		if len(write.Fields) == 0 {
			return commandInvalidInputError(fmt.Sprintf("command: record write %d has no fields", i))
		}
	}
	return nil
}

func validateRecordRef(table string, recordID string) error {
	if strings.TrimSpace(table) == "" {
		return commandInvalidInputError("command: table is required")
	}
	if strings.TrimSpace(recordID) == "" {
		return commandInvalidInputError("command: record id is required")
	}
	return nil
}
