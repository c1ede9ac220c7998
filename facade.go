package airtable

import (
	"fmt"

	airtablecommand "github.com/goliatone/go-airtable/command"
	airtablequery "github.com/goliatone/go-airtable/query"
)

// CommandQueryService is the surface the facade wires commands and
// queries against. *core.Client satisfies it.
type CommandQueryService interface {
	airtablecommand.MutatingService
	airtablequery.RecordReader
}

var _ CommandQueryService = (*Client)(nil)

type Commands struct {
	CreateRecord   *airtablecommand.CreateRecordCommand
	CreateRecords  *airtablecommand.CreateRecordsCommand
	UpdateRecords  *airtablecommand.UpdateRecordsCommand
	ReplaceRecords *airtablecommand.ReplaceRecordsCommand
	UpsertRecords  *airtablecommand.UpsertRecordsCommand
	DeleteRecords  *airtablecommand.DeleteRecordsCommand
	CreateComment  *airtablecommand.CreateCommentCommand
	UpdateComment  *airtablecommand.UpdateCommentCommand
	DeleteComment  *airtablecommand.DeleteCommentCommand
}

type Queries struct {
	ListRecords     *airtablequery.ListRecordsQuery
	ListRecordsPage *airtablequery.ListRecordsPageQuery
	GetRecord       *airtablequery.GetRecordQuery
	ListComments    *airtablequery.ListCommentsQuery
}

// Facade bundles the command and query handlers for a single client so
// callers can register them with a dispatcher in one pass.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("airtable: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateRecord:   airtablecommand.NewCreateRecordCommand(service),
		CreateRecords:  airtablecommand.NewCreateRecordsCommand(service),
		UpdateRecords:  airtablecommand.NewUpdateRecordsCommand(service),
		ReplaceRecords: airtablecommand.NewReplaceRecordsCommand(service),
		UpsertRecords:  airtablecommand.NewUpsertRecordsCommand(service),
		DeleteRecords:  airtablecommand.NewDeleteRecordsCommand(service),
		CreateComment:  airtablecommand.NewCreateCommentCommand(service),
		UpdateComment:  airtablecommand.NewUpdateCommentCommand(service),
		DeleteComment:  airtablecommand.NewDeleteCommentCommand(service),
	}
	facade.queries = Queries{
		ListRecords:     airtablequery.NewListRecordsQuery(service),
		ListRecordsPage: airtablequery.NewListRecordsPageQuery(service),
		GetRecord:       airtablequery.NewGetRecordQuery(service),
		ListComments:    airtablequery.NewListCommentsQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
