package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-airtable/ratelimit"
)

// Client is one logical session against a single base. Calls are blocking
// and sequential; the client holds no background workers. Running separate
// clients concurrently is safe because sessions share no state.
type Client struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	transport       TransportAdapter
	retryPolicy     RetryPolicy
	cursorStore     WebhookCursorStore
	dispatcher      CommandDispatcher

	sleep func(ctx context.Context, d time.Duration) error
}

func New(runtime Config, options ...Option) (*Client, error) {
	builder := defaultClientBuilder(runtime)
	for _, option := range options {
		if option != nil {
			option(&builder)
		}
	}

	provider, logger := glog.Resolve("airtable", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("airtable"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	configProvider := builder.configProvider
	if configProvider == nil {
		configProvider = NewCfgxConfigProvider(nil)
	}
	loaded, err := configProvider.Load(context.Background(), DefaultConfig())
	if err != nil {
		return nil, defaultErrorMapper(err)
	}
	resolver := builder.optionsResolver
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	resolved, err := resolver.Resolve(DefaultConfig(), loaded, builder.runtimeConfig)
	if err != nil {
		return nil, defaultErrorMapper(err)
	}

	mapper := builder.errorMapper
	if mapper == nil {
		mapper = defaultErrorMapper
	}
	recorder := builder.metricsRecorder
	if recorder == nil {
		recorder = NopMetricsRecorder{}
	}
	if builder.transport == nil {
		return nil, mapper(fmt.Errorf("core: transport adapter is required"))
	}

	return &Client{
		config:          resolved,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: recorder,
		errorMapper:     mapper,
		transport:       builder.transport,
		retryPolicy:     builder.retryPolicy,
		cursorStore:     builder.cursorStore,
		dispatcher:      builder.dispatcher,
		sleep:           sleepContext,
	}, nil
}

func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

func (c *Client) BaseID() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.config.BaseID)
}

func (c *Client) Logger() Logger {
	if c == nil {
		return nil
	}
	return c.logger
}

func (c *Client) CursorStore() WebhookCursorStore {
	if c == nil {
		return nil
	}
	return c.cursorStore
}

func (c *Client) Dispatcher() CommandDispatcher {
	if c == nil {
		return nil
	}
	return c.dispatcher
}

type apiErrorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// The error field is a bare string on some endpoints; tolerate both shapes.
func (e *apiErrorEnvelope) UnmarshalJSON(data []byte) error {
	var loose struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &loose); err != nil {
		return err
	}
	if len(loose.Error) == 0 {
		return nil
	}
	var message string
	if err := json.Unmarshal(loose.Error, &message); err == nil {
		e.Error = apiError{Message: message}
		return nil
	}
	var structured apiError
	if err := json.Unmarshal(loose.Error, &structured); err != nil {
		return err
	}
	e.Error = structured
	return nil
}

// DoJSON performs one logical exchange: marshal, send, decode. A 429 answer
// is retried with the configured fixed delay, without bound, until the
// service stops rate limiting or ctx is canceled. All other failures are
// returned as mapped errors after at most one request.
func (c *Client) DoJSON(
	ctx context.Context,
	method string,
	path string,
	query map[string]string,
	body any,
	out any,
) error {
	if c == nil || c.transport == nil {
		return defaultErrorMapper(fmt.Errorf("core: client transport is required"))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var encoded []byte
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return c.mapError(goerrors.Wrap(err, goerrors.CategoryBadInput, "core: encode request body").
				WithTextCode(ClientErrorBadInput))
		}
		encoded = payload
	}

	req := TransportRequest{
		Method:               strings.ToUpper(strings.TrimSpace(method)),
		URL:                  c.requestURL(path),
		Headers:              c.requestHeaders(body != nil),
		Query:                query,
		Body:                 encoded,
		Timeout:              c.config.Timeout(),
		MaxResponseBodyBytes: c.config.MaxResponseBodyBytes,
	}

	startedAt := time.Now().UTC()
	res, err := c.exchange(ctx, req)
	c.observeOperation(ctx, startedAt, operationName(method, path), err, map[string]any{
		"method": req.Method,
		"path":   strings.TrimSpace(path),
	})
	if err != nil {
		return err
	}

	if out != nil && len(res.Body) > 0 {
		if err := json.Unmarshal(res.Body, out); err != nil {
			return c.mapError(goerrors.Wrap(err, goerrors.CategoryExternal, "core: decode response body").
				WithTextCode(ClientErrorExternalFailure).
				WithMetadata(map[string]any{"status_code": res.StatusCode}))
		}
	}
	return nil
}

func (c *Client) exchange(ctx context.Context, req TransportRequest) (TransportResponse, error) {
	attempt := 0
	for {
		res, err := c.transport.Do(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return TransportResponse{}, c.cancellationError(ctxErr)
			}
			return TransportResponse{}, c.mapError(err)
		}

		if res.StatusCode == http.StatusTooManyRequests {
			attempt++
			if !c.config.Retry.Enabled() {
				return TransportResponse{}, c.rateLimitedError(res, attempt)
			}
			delay := c.retryDelay(attempt, res.Headers)
			c.logRetry(ctx, req, attempt, delay)
			if err := c.sleep(ctx, delay); err != nil {
				return TransportResponse{}, c.cancellationError(err)
			}
			continue
		}

		if res.StatusCode < 200 || res.StatusCode > 299 {
			return TransportResponse{}, c.apiFailure(res)
		}
		return res, nil
	}
}

func (c *Client) retryDelay(attempt int, headers map[string]string) time.Duration {
	delay := c.config.Retry.Delay()
	if c.retryPolicy != nil {
		if next := c.retryPolicy.NextDelay(attempt); next > 0 {
			delay = next
		}
	}
	if !c.config.Retry.IgnoreRetryAfterHint {
		if hint, ok := ratelimit.RetryAfterHint(headers, time.Now().UTC()); ok && hint > delay {
			delay = hint
		}
	}
	return delay
}

func (c *Client) rateLimitedError(res TransportResponse, attempt int) error {
	return c.mapError(goerrors.New("core: request was rate limited", goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(ClientErrorRateLimited).
		WithMetadata(map[string]any{
			"attempt":       attempt,
			"retry_enabled": c.config.Retry.Enabled(),
		}))
}

// apiFailure decodes the service error envelope into the client error shape:
// a short message plus, when the service sent one, a detailed message in
// metadata. Non-2xx answers are never raised past this boundary undecoded.
func (c *Client) apiFailure(res TransportResponse) error {
	envelope := apiErrorEnvelope{}
	_ = json.Unmarshal(res.Body, &envelope)

	message := strings.TrimSpace(envelope.Error.Type)
	detail := strings.TrimSpace(envelope.Error.Message)
	if message == "" {
		message = http.StatusText(res.StatusCode)
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", res.StatusCode)
	}

	metadata := map[string]any{"status_code": res.StatusCode}
	if detail != "" {
		metadata["detail"] = detail
	}

	return c.mapError(goerrors.New("core: "+message, categoryForStatus(res.StatusCode)).
		WithCode(res.StatusCode).
		WithMetadata(metadata))
}

func (c *Client) cancellationError(cause error) error {
	return c.mapError(goerrors.Wrap(cause, goerrors.CategoryOperation, "core: request canceled").
		WithTextCode(ClientErrorCanceled))
}

func (c *Client) mapError(err error) error {
	if err == nil {
		return nil
	}
	if c != nil && c.errorMapper != nil {
		if mapped := c.errorMapper(err); mapped != nil {
			return mapped
		}
		return nil
	}
	return defaultErrorMapper(err)
}

func (c *Client) requestURL(path string) string {
	base := strings.TrimRight(strings.TrimSpace(c.config.BaseURL), "/")
	cleaned := strings.TrimLeft(strings.TrimSpace(path), "/")
	return base + "/" + cleaned
}

func (c *Client) requestHeaders(hasBody bool) map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + strings.TrimSpace(c.config.APIKey),
		"User-Agent":    strings.TrimSpace(c.config.UserAgent),
	}
	if hasBody {
		headers["Content-Type"] = "application/json"
	}
	return headers
}

func (c *Client) logRetry(ctx context.Context, req TransportRequest, attempt int, delay time.Duration) {
	c.logInfo(ctx, "rate limited, retrying", map[string]any{
		"method":   req.Method,
		"url":      req.URL,
		"attempt":  attempt,
		"delay_ms": delay.Milliseconds(),
	})
}

func categoryForStatus(status int) goerrors.Category {
	switch {
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusUnprocessableEntity, status == http.StatusBadRequest:
		return goerrors.CategoryBadInput
	case status >= 400 && status < 500:
		return goerrors.CategoryOperation
	default:
		return goerrors.CategoryExternal
	}
}

func operationName(method string, path string) string {
	// Metric and log labels must not carry query values such as record ids.
	path, _, _ = strings.Cut(path, "?")
	segments := strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/")
	last := ""
	if len(segments) > 0 {
		last = segments[len(segments)-1]
	}
	return strings.ToLower(strings.TrimSpace(method)) + "." + strings.ToLower(last)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
