package webhooks

import (
	"sort"
	"time"
)

// Payload is one atomic unit of change-feed data. BaseTransactionNumber is
// strictly monotonically increasing per webhook and is the only ordering key.
type Payload struct {
	Timestamp             *time.Time              `json:"timestamp,omitempty"`
	BaseTransactionNumber int64                   `json:"baseTransactionNumber"`
	ActionMetadata        *ActionMetadata         `json:"actionMetadata,omitempty"`
	PayloadFormat         string                  `json:"payloadFormat,omitempty"`
	CreatedTablesByID     map[string]TableCreated `json:"createdTablesById,omitempty"`
	ChangedTablesByID     map[string]TableChanged `json:"changedTablesById,omitempty"`
	DestroyedTableIDs     []string                `json:"destroyedTableIds,omitempty"`
	Error                 bool                    `json:"error,omitempty"`
	Code                  string                  `json:"code,omitempty"`
}

// ActionMetadata identifies what triggered the change and who performed it.
type ActionMetadata struct {
	Source         string          `json:"source,omitempty"`
	SourceMetadata *SourceMetadata `json:"sourceMetadata,omitempty"`
}

type SourceMetadata struct {
	User *ActingUser `json:"user,omitempty"`
}

type ActingUser struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// FieldDescriptor carries a field definition (or the slice of it the
// registration's include options requested).
type FieldDescriptor struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// FieldChange pairs the post-change definition with the pre-change one.
// Previous is only populated when the registration asked for previous field
// definitions.
type FieldChange struct {
	Current  *FieldDescriptor `json:"current,omitempty"`
	Previous *FieldDescriptor `json:"previous,omitempty"`
}

type TableCreated struct {
	Metadata    *TableMetadata             `json:"metadata,omitempty"`
	FieldsByID  map[string]FieldDescriptor `json:"fieldsById,omitempty"`
	RecordsByID map[string]RecordCreated   `json:"recordsById,omitempty"`
}

type TableMetadata struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

type TableMetadataChange struct {
	Current  *TableMetadata `json:"current,omitempty"`
	Previous *TableMetadata `json:"previous,omitempty"`
}

// TableChanged describes every mutation one payload applied to one table.
// All maps may be populated in the same payload.
type TableChanged struct {
	ChangedMetadata    *TableMetadataChange       `json:"changedMetadata,omitempty"`
	CreatedFieldsByID  map[string]FieldDescriptor `json:"createdFieldsById,omitempty"`
	ChangedFieldsByID  map[string]FieldChange     `json:"changedFieldsById,omitempty"`
	DestroyedFieldIDs  []string                   `json:"destroyedFieldIds,omitempty"`
	CreatedRecordsByID map[string]RecordCreated   `json:"createdRecordsById,omitempty"`
	ChangedRecordsByID map[string]RecordChanged   `json:"changedRecordsById,omitempty"`
	DestroyedRecordIDs []string                   `json:"destroyedRecordIds,omitempty"`
	ChangedViewsByID   map[string]ViewChanged     `json:"changedViewsById,omitempty"`
}

type RecordCreated struct {
	CreatedTime         *time.Time     `json:"createdTime,omitempty"`
	CellValuesByFieldID map[string]any `json:"cellValuesByFieldId,omitempty"`
}

// CellSnapshot holds the cell values for one record at one point in the
// change. Touched fields only; fields neither touched nor explicitly
// requested at registration time are absent.
type CellSnapshot struct {
	CellValuesByFieldID map[string]any `json:"cellValuesByFieldId,omitempty"`
}

// RecordChanged carries up to three snapshots: Current holds post-change
// values for touched fields, Previous pre-change values for the same fields,
// and Unchanged values the registration's include options requested even
// though they did not change.
type RecordChanged struct {
	Current   CellSnapshot  `json:"current"`
	Previous  *CellSnapshot `json:"previous,omitempty"`
	Unchanged *CellSnapshot `json:"unchanged,omitempty"`
}

// ViewChanged mirrors table-scoped record changes but reflects membership
// and ordering local to one view.
type ViewChanged struct {
	CreatedRecordsByID map[string]RecordCreated `json:"createdRecordsById,omitempty"`
	ChangedRecordsByID map[string]RecordChanged `json:"changedRecordsById,omitempty"`
	DestroyedRecordIDs []string                 `json:"destroyedRecordIds,omitempty"`
}

// ChangedTableIDs returns the ids of every table the payload changed in
// sorted order, for callers that want deterministic iteration.
func (p Payload) ChangedTableIDs() []string {
	return sortedKeysTableChanged(p.ChangedTablesByID)
}

// CreatedTableIDs returns the ids of every table the payload created in
// sorted order.
func (p Payload) CreatedTableIDs() []string {
	if len(p.CreatedTablesByID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(p.CreatedTablesByID))
	for id := range p.CreatedTablesByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t TableChanged) ChangedRecordIDs() []string {
	if len(t.ChangedRecordsByID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(t.ChangedRecordsByID))
	for id := range t.ChangedRecordsByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t TableChanged) CreatedRecordIDs() []string {
	if len(t.CreatedRecordsByID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(t.CreatedRecordsByID))
	for id := range t.CreatedRecordsByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeysTableChanged(tables map[string]TableChanged) []string {
	if len(tables) == 0 {
		return nil
	}
	ids := make([]string, 0, len(tables))
	for id := range tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
