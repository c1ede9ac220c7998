package core

import (
	stderrors "errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestClientErrorMapper_AssignsStableCodes(t *testing.T) {
	cases := []struct {
		err      error
		category goerrors.Category
		textCode string
	}{
		{stderrors.New("core: request was rate limited"), goerrors.CategoryRateLimit, ClientErrorRateLimited},
		{fmt.Errorf("%w: wh1", ErrCursorConflict), goerrors.CategoryConflict, ClientErrorCursorConflict},
		{stderrors.New("context canceled"), goerrors.CategoryOperation, ClientErrorCanceled},
		{fmt.Errorf("%w: wh1", ErrCursorNotFound), goerrors.CategoryNotFound, ClientErrorNotFound},
		{stderrors.New("core: table name or id is required"), goerrors.CategoryBadInput, ClientErrorBadInput},
	}

	for _, tc := range cases {
		mapped := clientErrorMapper(tc.err)
		if mapped == nil {
			t.Fatalf("%v: expected mapped error", tc.err)
		}
		if mapped.Category != tc.category {
			t.Fatalf("%v: expected category %q, got %q", tc.err, tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.textCode {
			t.Fatalf("%v: expected text code %q, got %q", tc.err, tc.textCode, mapped.TextCode)
		}
		if mapped.Code == 0 {
			t.Fatalf("%v: expected http status on mapped error", tc.err)
		}
	}
}

func TestClientErrorMapper_PreservesRichErrors(t *testing.T) {
	original := goerrors.New("core: cursor advance rejected", goerrors.CategoryConflict).
		WithTextCode(ClientErrorCursorConflict).
		WithMetadata(map[string]any{"webhook_id": "achWH1"})

	mapped := clientErrorMapper(original)
	if mapped.TextCode != ClientErrorCursorConflict {
		t.Fatalf("expected text code preserved, got %q", mapped.TextCode)
	}
	if mapped.Metadata["webhook_id"] != "achWH1" {
		t.Fatalf("expected metadata preserved, got %v", mapped.Metadata)
	}
	if mapped.Code != 409 {
		t.Fatalf("expected conflict status filled in, got %d", mapped.Code)
	}
}

func TestClientErrorMapper_NilError(t *testing.T) {
	if mapped := clientErrorMapper(nil); mapped != nil {
		t.Fatalf("expected nil for nil error, got %v", mapped)
	}
}

func TestEnsureClientErrorEnvelope_FillsDefaults(t *testing.T) {
	err := ensureClientErrorEnvelope(goerrors.New("core: upstream exploded", goerrors.CategoryExternal))
	if err.Code != 502 {
		t.Fatalf("expected 502 for external category, got %d", err.Code)
	}
	if err.TextCode != ClientErrorExternalFailure {
		t.Fatalf("expected external text code, got %q", err.TextCode)
	}

	err = ensureClientErrorEnvelope(goerrors.New("", goerrors.CategoryInternal))
	if err.Message == "" {
		t.Fatalf("expected fallback message for internal errors")
	}
	if err.Code != 500 {
		t.Fatalf("expected 500 for internal category, got %d", err.Code)
	}
}
