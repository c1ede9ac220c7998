package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-airtable/core"
)

func TestCreateRecordMessage_ValidateReturnsRichError(t *testing.T) {
	err := (CreateRecordMessage{}).Validate()
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
	if rich.TextCode != core.ClientErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.ClientErrorBadInput, rich.TextCode)
	}
}

func TestCreateRecordCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *CreateRecordCommand
	err := cmd.Execute(context.Background(), CreateRecordMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
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
