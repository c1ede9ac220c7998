package webhooks

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Executor performs one authenticated JSON exchange against the service.
// core.Client satisfies this.
type Executor interface {
	BaseID() string
	DoJSON(ctx context.Context, method string, path string, query map[string]string, body any, out any) error
}

// Specification scopes which changes a webhook reports and which extra data
// each payload includes.
type Specification struct {
	Options SpecificationOptions `json:"options"`
}

type SpecificationOptions struct {
	Filters  SpecificationFilters  `json:"filters"`
	Includes *SpecificationInclude `json:"includes,omitempty"`
}

type SpecificationFilters struct {
	RecordChangeScope string   `json:"recordChangeScope,omitempty"`
	DataTypes         []string `json:"dataTypes"`
	ChangeTypes       []string `json:"changeTypes,omitempty"`
	FromSources       []string `json:"fromSources,omitempty"`
}

type SpecificationInclude struct {
	IncludeCellValuesInFieldIDs     []string `json:"includeCellValuesInFieldIds,omitempty"`
	IncludePreviousCellValues       bool     `json:"includePreviousCellValues,omitempty"`
	IncludePreviousFieldDefinitions bool     `json:"includePreviousFieldDefinitions,omitempty"`
}

// NotificationResult is the read-only record of the service's most recent
// attempt to deliver a notification ping. The client performs no remediation;
// re-enabling delivery is an explicit EnableNotifications call.
type NotificationResult struct {
	Success             bool               `json:"success"`
	CompletionTimestamp *time.Time         `json:"completionTimestamp,omitempty"`
	DurationMs          float64            `json:"durationMs,omitempty"`
	RetryNumber         int                `json:"retryNumber,omitempty"`
	Error               *NotificationError `json:"error,omitempty"`
	WillBeRetried       bool               `json:"willBeRetried,omitempty"`
}

type NotificationError struct {
	Message string `json:"message"`
}

type Webhook struct {
	ID                       string              `json:"id"`
	Specification            *Specification      `json:"specification,omitempty"`
	NotificationURL          string              `json:"notificationUrl,omitempty"`
	CursorForNextPayload     int64               `json:"cursorForNextPayload,omitempty"`
	LastNotificationResult   *NotificationResult `json:"lastNotificationResult,omitempty"`
	AreNotificationsEnabled  bool                `json:"areNotificationsEnabled"`
	IsHookEnabled            bool                `json:"isHookEnabled"`
	LastSuccessfulNotifyTime *time.Time          `json:"lastSuccessfulNotificationTime,omitempty"`
	ExpirationTime           *time.Time          `json:"expirationTime,omitempty"`
}

type CreateResult struct {
	ID              string     `json:"id"`
	MACSecretBase64 string     `json:"macSecretBase64"`
	ExpirationTime  *time.Time `json:"expirationTime,omitempty"`
}

type RefreshResult struct {
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
}

// PayloadList is one page of the change feed. Cursor is always present and
// points one past the last transaction returned; MightHaveMore asks the
// caller to re-poll immediately.
type PayloadList struct {
	Payloads      []Payload `json:"payloads"`
	Cursor        int64     `json:"cursor"`
	MightHaveMore bool      `json:"mightHaveMore"`
	PayloadFormat string    `json:"payloadFormat,omitempty"`
}

// API drives the webhook lifecycle endpoints for one base.
type API struct {
	executor Executor
}

func NewAPI(executor Executor) (*API, error) {
	if executor == nil {
		return nil, fmt.Errorf("webhooks: executor is required")
	}
	return &API{executor: executor}, nil
}

type createRequest struct {
	Specification   Specification `json:"specification"`
	NotificationURL string        `json:"notificationUrl,omitempty"`
}

type listResponse struct {
	Webhooks []Webhook `json:"webhooks"`
}

type enableRequest struct {
	Enable bool `json:"enable"`
}

// Create registers a webhook. The returned MAC secret is shown exactly once;
// callers that verify notification pings must store it.
func (a *API) Create(ctx context.Context, spec Specification, notificationURL string) (CreateResult, error) {
	if a == nil || a.executor == nil {
		return CreateResult{}, fmt.Errorf("webhooks: api is not configured")
	}
	result := CreateResult{}
	body := createRequest{Specification: spec, NotificationURL: strings.TrimSpace(notificationURL)}
	if err := a.executor.DoJSON(ctx, http.MethodPost, a.path(), nil, body, &result); err != nil {
		return CreateResult{}, err
	}
	return result, nil
}

func (a *API) List(ctx context.Context) ([]Webhook, error) {
	if a == nil || a.executor == nil {
		return nil, fmt.Errorf("webhooks: api is not configured")
	}
	response := listResponse{}
	if err := a.executor.DoJSON(ctx, http.MethodGet, a.path(), nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Webhooks, nil
}

func (a *API) Delete(ctx context.Context, webhookID string) error {
	webhookID = strings.TrimSpace(webhookID)
	if a == nil || a.executor == nil {
		return fmt.Errorf("webhooks: api is not configured")
	}
	if webhookID == "" {
		return fmt.Errorf("webhooks: webhook id is required")
	}
	return a.executor.DoJSON(ctx, http.MethodDelete, a.path(webhookID), nil, nil, nil)
}

// EnableNotifications toggles ping delivery to notificationUrl. The change
// feed keeps accumulating either way.
func (a *API) EnableNotifications(ctx context.Context, webhookID string, enable bool) error {
	webhookID = strings.TrimSpace(webhookID)
	if a == nil || a.executor == nil {
		return fmt.Errorf("webhooks: api is not configured")
	}
	if webhookID == "" {
		return fmt.Errorf("webhooks: webhook id is required")
	}
	return a.executor.DoJSON(ctx, http.MethodPost, a.path(webhookID, "enableNotifications"), nil, enableRequest{Enable: enable}, nil)
}

// Refresh extends the webhook's expiration window and returns the new
// expiration time.
func (a *API) Refresh(ctx context.Context, webhookID string) (RefreshResult, error) {
	webhookID = strings.TrimSpace(webhookID)
	if a == nil || a.executor == nil {
		return RefreshResult{}, fmt.Errorf("webhooks: api is not configured")
	}
	if webhookID == "" {
		return RefreshResult{}, fmt.Errorf("webhooks: webhook id is required")
	}
	result := RefreshResult{}
	if err := a.executor.DoJSON(ctx, http.MethodPost, a.path(webhookID, "refresh"), nil, nil, &result); err != nil {
		return RefreshResult{}, err
	}
	return result, nil
}

// ListPayloads fetches one page of the change feed starting at cursor.
// Cursor values start at 1; limit caps the page size when positive.
func (a *API) ListPayloads(ctx context.Context, webhookID string, cursor int64, limit int) (PayloadList, error) {
	webhookID = strings.TrimSpace(webhookID)
	if a == nil || a.executor == nil {
		return PayloadList{}, fmt.Errorf("webhooks: api is not configured")
	}
	if webhookID == "" {
		return PayloadList{}, fmt.Errorf("webhooks: webhook id is required")
	}

	query := map[string]string{}
	if cursor > 0 {
		query["cursor"] = strconv.FormatInt(cursor, 10)
	}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	list := PayloadList{}
	if err := a.executor.DoJSON(ctx, http.MethodGet, a.path(webhookID, "payloads"), query, nil, &list); err != nil {
		return PayloadList{}, err
	}
	return list, nil
}

func (a *API) path(extra ...string) string {
	segments := append([]string{"bases", a.executor.BaseID(), "webhooks"}, extra...)
	return strings.Join(segments, "/")
}
