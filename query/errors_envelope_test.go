package query

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-airtable/core"
)

func TestGetRecordMessage_ValidateReturnsRichError(t *testing.T) {
	err := (GetRecordMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", rich.Category)
	}
	if rich.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 code, got %d", rich.Code)
	}
	if rich.TextCode != core.ClientErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ClientErrorBadInput, rich.TextCode)
	}
}

func TestGetRecordQuery_NilReaderReturnsRichError(t *testing.T) {
	var qry *GetRecordQuery
	_, err := qry.Query(context.Background(), GetRecordMessage{Table: "Tasks", RecordID: "rec1"})
	if err == nil {
		t.Fatalf("expected query dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.ClientErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.ClientErrorInternal, rich.TextCode)
	}
}
