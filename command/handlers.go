package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-airtable/core"
)

// MutatingService is the slice of the client used by write commands.
// *core.Client satisfies it.
type MutatingService interface {
	CreateRecord(ctx context.Context, table string, fields map[string]any, opts core.WriteOptions) (core.Record, error)
	CreateRecords(ctx context.Context, table string, writes []core.RecordWrite, opts core.WriteOptions) (core.WriteResult, error)
	UpdateRecords(ctx context.Context, table string, writes []core.RecordWrite, opts core.WriteOptions) (core.WriteResult, error)
	ReplaceRecords(ctx context.Context, table string, writes []core.RecordWrite, opts core.WriteOptions) (core.WriteResult, error)
	UpsertRecords(ctx context.Context, table string, writes []core.RecordWrite, fieldsToMergeOn []string, opts core.WriteOptions) (core.WriteResult, error)
	DeleteRecords(ctx context.Context, table string, recordIDs []string) ([]core.DeleteResult, error)
	CreateComment(ctx context.Context, table string, recordID string, text string) (core.Comment, error)
	UpdateComment(ctx context.Context, table string, recordID string, commentID string, text string) (core.Comment, error)
	DeleteComment(ctx context.Context, table string, recordID string, commentID string) (core.DeleteResult, error)
}

type CreateRecordCommand struct {
	service MutatingService
}

func NewCreateRecordCommand(service MutatingService) *CreateRecordCommand {
	return &CreateRecordCommand{service: service}
}

func (c *CreateRecordCommand) Execute(ctx context.Context, msg CreateRecordMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: record service is required")
	}
	out, err := c.service.CreateRecord(ctx, msg.Table, msg.Fields, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateRecordsCommand struct {
	service MutatingService
}

func NewCreateRecordsCommand(service MutatingService) *CreateRecordsCommand {
	return &CreateRecordsCommand{service: service}
}

func (c *CreateRecordsCommand) Execute(ctx context.Context, msg CreateRecordsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: record service is required")
	}
	out, err := c.service.CreateRecords(ctx, msg.Table, msg.Writes, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateRecordsCommand struct {
	service MutatingService
}

func NewUpdateRecordsCommand(service MutatingService) *UpdateRecordsCommand {
	return &UpdateRecordsCommand{service: service}
}

func (c *UpdateRecordsCommand) Execute(ctx context.Context, msg UpdateRecordsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: record service is required")
	}
	out, err := c.service.UpdateRecords(ctx, msg.Table, msg.Writes, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ReplaceRecordsCommand struct {
	service MutatingService
}

func NewReplaceRecordsCommand(service MutatingService) *ReplaceRecordsCommand {
	return &ReplaceRecordsCommand{service: service}
}

func (c *ReplaceRecordsCommand) Execute(ctx context.Context, msg ReplaceRecordsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: record service is required")
	}
	out, err := c.service.ReplaceRecords(ctx, msg.Table, msg.Writes, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpsertRecordsCommand struct {
	service MutatingService
}

func NewUpsertRecordsCommand(service MutatingService) *UpsertRecordsCommand {
	return &UpsertRecordsCommand{service: service}
}

func (c *UpsertRecordsCommand) Execute(ctx context.Context, msg UpsertRecordsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: record service is required")
	}
	out, err := c.service.UpsertRecords(ctx, msg.Table, msg.Writes, msg.FieldsToMergeOn, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteRecordsCommand struct {
	service MutatingService
}

func NewDeleteRecordsCommand(service MutatingService) *DeleteRecordsCommand {
	return &DeleteRecordsCommand{service: service}
}

func (c *DeleteRecordsCommand) Execute(ctx context.Context, msg DeleteRecordsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: record service is required")
	}
	out, err := c.service.DeleteRecords(ctx, msg.Table, msg.RecordIDs)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateCommentCommand struct {
	service MutatingService
}

func NewCreateCommentCommand(service MutatingService) *CreateCommentCommand {
	return &CreateCommentCommand{service: service}
}

func (c *CreateCommentCommand) Execute(ctx context.Context, msg CreateCommentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: comment service is required")
	}
	out, err := c.service.CreateComment(ctx, msg.Table, msg.RecordID, msg.Text)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateCommentCommand struct {
	service MutatingService
}

func NewUpdateCommentCommand(service MutatingService) *UpdateCommentCommand {
	return &UpdateCommentCommand{service: service}
}

func (c *UpdateCommentCommand) Execute(ctx context.Context, msg UpdateCommentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: comment service is required")
	}
	out, err := c.service.UpdateComment(ctx, msg.Table, msg.RecordID, msg.CommentID, msg.Text)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteCommentCommand struct {
	service MutatingService
}

func NewDeleteCommentCommand(service MutatingService) *DeleteCommentCommand {
	return &DeleteCommentCommand{service: service}
}

func (c *DeleteCommentCommand) Execute(ctx context.Context, msg DeleteCommentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: comment service is required")
	}
	out, err := c.service.DeleteComment(ctx, msg.Table, msg.RecordID, msg.CommentID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
