package command

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-airtable/core"
)

var _ MutatingService = (*core.Client)(nil)

var (
	_ gocmd.Commander[CreateRecordMessage]   = (*CreateRecordCommand)(nil)
	_ gocmd.Commander[CreateRecordsMessage]  = (*CreateRecordsCommand)(nil)
	_ gocmd.Commander[UpdateRecordsMessage]  = (*UpdateRecordsCommand)(nil)
	_ gocmd.Commander[ReplaceRecordsMessage] = (*ReplaceRecordsCommand)(nil)
	_ gocmd.Commander[UpsertRecordsMessage]  = (*UpsertRecordsCommand)(nil)
	_ gocmd.Commander[DeleteRecordsMessage]  = (*DeleteRecordsCommand)(nil)
	_ gocmd.Commander[CreateCommentMessage]  = (*CreateCommentCommand)(nil)
	_ gocmd.Commander[UpdateCommentMessage]  = (*UpdateCommentCommand)(nil)
	_ gocmd.Commander[DeleteCommentMessage]  = (*DeleteCommentCommand)(nil)
)
