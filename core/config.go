package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultBaseURL              = "https://api.airtable.com/v0"
	DefaultUserAgent            = "go-airtable"
	DefaultTimeout              = 30 * time.Second
	DefaultRetryDelay           = 2 * time.Second
	DefaultResponseBodyLimit    = 10 << 20
	DefaultWebhookPayloadLimit  = 50
	DefaultListRecordsPageLimit = 100
)

// RetryConfig controls resubmission of rate-limited requests. By default a
// 429 answer is retried after a fixed delay, without bound, until the service
// stops rate limiting or the context is canceled. The booleans are phrased as
// opt-outs so their zero value is the default behavior and a runtime override
// can always be distinguished from an unset field.
type RetryConfig struct {
	Disabled             bool `koanf:"disabled" mapstructure:"disabled"`
	DelayMS              int  `koanf:"delay_ms" mapstructure:"delay_ms"`
	IgnoreRetryAfterHint bool `koanf:"ignore_retry_after_hint" mapstructure:"ignore_retry_after_hint"`
}

func (c RetryConfig) Enabled() bool {
	return !c.Disabled
}

func (c RetryConfig) Delay() time.Duration {
	if c.DelayMS <= 0 {
		return DefaultRetryDelay
	}
	return time.Duration(c.DelayMS) * time.Millisecond
}

type Config struct {
	BaseURL              string      `koanf:"base_url" mapstructure:"base_url"`
	BaseID               string      `koanf:"base_id" mapstructure:"base_id"`
	APIKey               string      `koanf:"api_key" mapstructure:"api_key"`
	UserAgent            string      `koanf:"user_agent" mapstructure:"user_agent"`
	TimeoutMS            int         `koanf:"timeout_ms" mapstructure:"timeout_ms"`
	MaxResponseBodyBytes int64       `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
	Retry                RetryConfig `koanf:"retry" mapstructure:"retry"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
	}
}

func (c Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("core: base_url is required")
	}
	if strings.TrimSpace(c.BaseID) == "" {
		return fmt.Errorf("core: base_id is required")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("core: api_key is required")
	}
	return nil
}
