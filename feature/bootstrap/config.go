package bootstrap

import "time"

// Config holds run-scoped configuration.
type Config struct {
	// MaxWorkers is the per-endpoint worker budget. Forced to 1 in multilingual runs.
	MaxWorkers int `mapstructure:"max_workers" default:"5"`
	// Multilingual writes item names in every language of the instance.
	Multilingual bool `mapstructure:"multilingual" default:"false"`
	// ItemTopics is the topic merge mode for items (amend, replace).
	ItemTopics string `mapstructure:"item_topics" default:"amend"`
	// ItemPublish is the publish mode for created items (auto, publish, draft).
	ItemPublish string `mapstructure:"item_publish" default:"auto"`
	// UseReferenceCache memoizes reference lookups for the whole run.
	UseReferenceCache bool `mapstructure:"use_reference_cache" default:"false"`
	// GraceWindowMs is how long instance resolution waits for credentials and identifier.
	GraceWindowMs int `mapstructure:"grace_window_ms" default:"50"`
}

// APIConfig holds the remote endpoints and credentials.
type APIConfig struct {
	// ManagementURL is the schema and content management endpoint.
	ManagementURL string `mapstructure:"management_url" default:"https://pim.ossgroup.com/graphql"`
	// BaseURL prefixes the per-instance catalog and orders endpoints.
	BaseURL string `mapstructure:"base_url" default:"https://api.ossgroup.com"`
	// AccessTokenID and AccessTokenSecret authenticate against the management API.
	AccessTokenID     string `mapstructure:"access_token_id" default:""`
	AccessTokenSecret string `mapstructure:"access_token_secret" default:""`
	// Instance is the identifier of the target instance.
	Instance string `mapstructure:"instance" default:""`
	// RateLimit is the allowed requests per second per endpoint. Zero disables it.
	RateLimit float64 `mapstructure:"rate_limit" default:"0"`
	// TimeoutSeconds bounds one HTTP attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
	// MaxRetries for network errors, 429 and 5xx answers.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
}

// CatalogURL returns the catalog endpoint of an instance.
func (c APIConfig) CatalogURL(instance string) string {
	return c.BaseURL + "/" + instance + "/catalog"
}

// OrdersURL returns the orders endpoint of an instance.
func (c APIConfig) OrdersURL(instance string) string {
	return c.BaseURL + "/" + instance + "/orders"
}

const (
	ItemTopicsAmend   = "amend"
	ItemTopicsReplace = "replace"

	ItemPublishAuto    = "auto"
	ItemPublishAlways  = "publish"
	ItemPublishDraft   = "draft"
	defaultGraceWindow = 50 * time.Millisecond
)

// IsValid checks the enumerated settings.
func (c Config) IsValid() bool {
	switch c.ItemTopics {
	case ItemTopicsAmend, ItemTopicsReplace:
	default:
		return false
	}
	switch c.ItemPublish {
	case ItemPublishAuto, ItemPublishAlways, ItemPublishDraft:
	default:
		return false
	}
	return c.MaxWorkers >= 0
}

func (c Config) graceWindow() time.Duration {
	if c.GraceWindowMs <= 0 {
		return defaultGraceWindow
	}
	return time.Duration(c.GraceWindowMs) * time.Millisecond
}
