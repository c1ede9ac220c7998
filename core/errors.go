package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ClientErrorBadInput           = "CLIENT_BAD_INPUT"
	ClientErrorUnauthorized       = "CLIENT_UNAUTHORIZED"
	ClientErrorForbidden          = "CLIENT_FORBIDDEN"
	ClientErrorNotFound           = "CLIENT_NOT_FOUND"
	ClientErrorRateLimited        = "CLIENT_RATE_LIMITED"
	ClientErrorRequestFailed      = "CLIENT_REQUEST_FAILED"
	ClientErrorExternalFailure    = "CLIENT_EXTERNAL_FAILURE"
	ClientErrorNotAttachmentField = "CLIENT_NOT_ATTACHMENT_FIELD"
	ClientErrorCursorConflict     = "CLIENT_CURSOR_CONFLICT"
	ClientErrorPayloadOrder       = "CLIENT_PAYLOAD_ORDER_VIOLATION"
	ClientErrorCanceled           = "CLIENT_CANCELED"
	ClientErrorInternal           = "CLIENT_INTERNAL_ERROR"
)

func clientErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureClientErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "throttl"):
		return newClientError(err.Error(), goerrors.CategoryRateLimit, ClientErrorRateLimited)
	case strings.Contains(msg, "cursor advance conflict"):
		return newClientError(err.Error(), goerrors.CategoryConflict, ClientErrorCursorConflict)
	case strings.Contains(msg, "context canceled"), strings.Contains(msg, "deadline exceeded"):
		return newClientError(err.Error(), goerrors.CategoryOperation, ClientErrorCanceled)
	case strings.Contains(msg, "not found"):
		return newClientError(err.Error(), goerrors.CategoryNotFound, ClientErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newClientError(err.Error(), goerrors.CategoryBadInput, ClientErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureClientErrorEnvelope(mapped)
}

func newClientError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureClientErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureClientErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = clientHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultClientTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultClientTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ClientErrorBadInput
	case goerrors.CategoryAuth:
		return ClientErrorUnauthorized
	case goerrors.CategoryAuthz:
		return ClientErrorForbidden
	case goerrors.CategoryNotFound:
		return ClientErrorNotFound
	case goerrors.CategoryRateLimit:
		return ClientErrorRateLimited
	case goerrors.CategoryConflict:
		return ClientErrorCursorConflict
	case goerrors.CategoryOperation:
		return ClientErrorRequestFailed
	case goerrors.CategoryExternal:
		return ClientErrorExternalFailure
	default:
		return ClientErrorInternal
	}
}

func clientHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
