package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-airtable/core"
)

var _ RecordReader = (*core.Client)(nil)

var (
	_ gocmd.Querier[ListRecordsMessage, []core.Record]       = (*ListRecordsQuery)(nil)
	_ gocmd.Querier[ListRecordsPageMessage, core.RecordPage] = (*ListRecordsPageQuery)(nil)
	_ gocmd.Querier[GetRecordMessage, core.Record]           = (*GetRecordQuery)(nil)
	_ gocmd.Querier[ListCommentsMessage, []core.Comment]     = (*ListCommentsQuery)(nil)
)
