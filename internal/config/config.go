// Package config loads and validates webanalysis configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WEBANALYSIS_TICKETS_PASSWORD.
const EnvPrefix = "WEBANALYSIS"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Tickets  TicketsConfig  `mapstructure:"tickets"`
	Listings ListingsConfig `mapstructure:"listings"`
	Sitemap  SitemapConfig  `mapstructure:"sitemap"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// LoggingConfig toggles zap development features and file output.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

// HTTPConfig configures the plain and REST HTTP clients.
type HTTPConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// MaxBodyBytes caps plain GET responses; negative is unlimited.
	MaxBodyBytes int `mapstructure:"max_body_bytes"`
}

// Timeout returns the request timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// TicketsConfig points at a ServiceNow instance.
type TicketsConfig struct {
	InstanceURL string   `mapstructure:"instance_url"`
	Table       string   `mapstructure:"table"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	Fields      []string `mapstructure:"fields"`
	Columns     []string `mapstructure:"columns"`
	Limit       int      `mapstructure:"limit"`
	Query       string   `mapstructure:"query"`
}

// Endpoint returns the table API URL, e.g. https://x.service-now.com/api/now/table/incident.
func (t TicketsConfig) Endpoint() string {
	return strings.TrimRight(t.InstanceURL, "/") + "/api/now/table/" + t.Table
}

// SelectorConfig describes an element by tag and class attribute. Match is
// "exact" (default) or "contains".
type SelectorConfig struct {
	Tag   string `mapstructure:"tag"`
	Class string `mapstructure:"class"`
	Match string `mapstructure:"match"`
}

// ListingRule maps one listing field to the element holding its text.
type ListingRule struct {
	Field    string `mapstructure:"field"`
	Tag      string `mapstructure:"tag"`
	Class    string `mapstructure:"class"`
	Match    string `mapstructure:"match"`
	Missing  string `mapstructure:"missing"`
	Optional bool   `mapstructure:"optional"`
}

// ListingsConfig controls the rendered listings scrape.
type ListingsConfig struct {
	URL               string         `mapstructure:"url"`
	Headless          bool           `mapstructure:"headless"`
	SettleSeconds     int            `mapstructure:"settle_seconds"`
	NavTimeoutSeconds int            `mapstructure:"nav_timeout_seconds"`
	RequireListings   bool           `mapstructure:"require_listings"`
	Container         SelectorConfig `mapstructure:"container"`
	Rules             []ListingRule  `mapstructure:"rules"`
}

// SettleDelay returns how long the page may render after load.
func (l ListingsConfig) SettleDelay() time.Duration {
	return time.Duration(l.SettleSeconds) * time.Second
}

// NavTimeout returns the navigation budget.
func (l ListingsConfig) NavTimeout() time.Duration {
	return time.Duration(l.NavTimeoutSeconds) * time.Second
}

// SitemapConfig controls robots.txt and sitemap discovery.
type SitemapConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	RawElements   bool   `mapstructure:"raw_elements"`
	FollowIndex   bool   `mapstructure:"follow_index"`
	MaxIndexDepth int    `mapstructure:"max_index_depth"`
}

// OutputConfig selects presenters.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	Charts   bool   `mapstructure:"charts"`
	Console  bool   `mapstructure:"console"`
	HeadRows int    `mapstructure:"head_rows"`
}

// MetricsConfig controls the prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load builds a Config from disk and environment. An empty path searches
// for webanalysis.yaml in the working directory and $HOME/.webanalysis;
// a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("webanalysis")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.webanalysis")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DefaultTicketFields are requested from the table API.
var DefaultTicketFields = []string{
	"number", "contact_type", "state", "impact", "sys_created_by", "opened_at",
	"priority", "resolved_at", "closed_at", "short_description", "close_code",
	"subcategory", "escalation", "category", "urgency", "resolved_by",
	"reopen_count", "assigned_to",
}

// DefaultTicketColumns are shown by the columns report.
var DefaultTicketColumns = []string{
	"number", "impact", "contact_type", "sys_created_by", "opened_at",
	"priority", "impact", "urgency", "assigned_to", "resolved_at", "closed_at",
	"short_description", "close_code", "subcategory", "escalation", "category",
	"resolved_by", "reopen_count",
}

func defaultListingRules() []map[string]any {
	return []map[string]any{
		{"field": "Flat", "tag": "a", "class": "listing-search-item__link listing-search-item__link--title"},
		{"field": "Location", "tag": "div", "class": "sub-title", "match": "contains"},
		{"field": "Price", "tag": "div", "class": "listing-search-item__price"},
		{"field": "Area", "tag": "li", "class": "illustrated-features__item illustrated-features__item--surface-area"},
		{"field": "Number of Rooms", "tag": "li", "class": "number-of-rooms", "match": "contains"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 14)

	v.SetDefault("http.user_agent", "webanalysis/0.1")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_body_bytes", 50<<20)

	v.SetDefault("tickets.instance_url", "")
	v.SetDefault("tickets.table", "incident")
	v.SetDefault("tickets.username", "")
	v.SetDefault("tickets.password", "")
	v.SetDefault("tickets.fields", DefaultTicketFields)
	v.SetDefault("tickets.columns", DefaultTicketColumns)
	v.SetDefault("tickets.limit", 0)
	v.SetDefault("tickets.query", "")

	v.SetDefault("listings.url", "https://www.pararius.com/apartments/amsterdam?ac=1")
	v.SetDefault("listings.headless", true)
	v.SetDefault("listings.settle_seconds", 10)
	v.SetDefault("listings.nav_timeout_seconds", 60)
	v.SetDefault("listings.require_listings", true)
	v.SetDefault("listings.container.tag", "section")
	v.SetDefault("listings.container.class", "listing-search-item")
	v.SetDefault("listings.container.match", "exact")
	v.SetDefault("listings.rules", defaultListingRules())

	v.SetDefault("sitemap.base_url", "https://openai.com")
	v.SetDefault("sitemap.raw_elements", false)
	v.SetDefault("sitemap.follow_index", true)
	v.SetDefault("sitemap.max_index_depth", 2)

	v.SetDefault("output.dir", "charts")
	v.SetDefault("output.charts", true)
	v.SetDefault("output.console", true)
	v.SetDefault("output.head_rows", 5)

	v.SetDefault("metrics.textfile", "")
}

// Validate enforces limits shared by every command.
func (c Config) Validate() error {
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxBodyBytes == 0 {
		return fmt.Errorf("http.max_body_bytes must be non-zero (negative for unlimited)")
	}
	if c.Output.HeadRows < 0 {
		return fmt.Errorf("output.head_rows must be >= 0")
	}
	if c.Output.Charts && strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir must be set when charts are enabled")
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging.max_size_mb must be > 0 when logging.file is set")
	}
	if c.Sitemap.MaxIndexDepth < 0 {
		return fmt.Errorf("sitemap.max_index_depth must be >= 0")
	}
	if c.Listings.SettleSeconds < 0 || c.Listings.NavTimeoutSeconds < 0 {
		return fmt.Errorf("listings timings must be >= 0")
	}
	return nil
}

// ValidateTickets checks what the tickets command needs.
func (c Config) ValidateTickets() error {
	if err := validateBaseURL("tickets.instance_url", c.Tickets.InstanceURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Tickets.Table) == "" {
		return fmt.Errorf("tickets.table must be set")
	}
	if c.Tickets.Username == "" || c.Tickets.Password == "" {
		return fmt.Errorf("tickets.username and tickets.password must be set (env %s_TICKETS_USERNAME / %s_TICKETS_PASSWORD)", EnvPrefix, EnvPrefix)
	}
	if len(c.Tickets.Fields) == 0 {
		return fmt.Errorf("tickets.fields must not be empty")
	}
	if c.Tickets.Limit < 0 {
		return fmt.Errorf("tickets.limit must be >= 0")
	}
	return nil
}

// ValidateListings checks what the listings command needs.
func (c Config) ValidateListings() error {
	if err := validateBaseURL("listings.url", c.Listings.URL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Listings.Container.Tag) == "" {
		return fmt.Errorf("listings.container.tag must be set")
	}
	if err := validateMatch("listings.container.match", c.Listings.Container.Match); err != nil {
		return err
	}
	if len(c.Listings.Rules) == 0 {
		return fmt.Errorf("listings.rules must not be empty")
	}
	seen := make(map[string]bool, len(c.Listings.Rules))
	for i, rule := range c.Listings.Rules {
		if strings.TrimSpace(rule.Field) == "" || strings.TrimSpace(rule.Tag) == "" {
			return fmt.Errorf("listings.rules[%d] needs field and tag", i)
		}
		if seen[rule.Field] {
			return fmt.Errorf("listings.rules[%d]: duplicate field %q", i, rule.Field)
		}
		seen[rule.Field] = true
		if err := validateMatch(fmt.Sprintf("listings.rules[%d].match", i), rule.Match); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSitemap checks what the sitemap command needs.
func (c Config) ValidateSitemap() error {
	return validateBaseURL("sitemap.base_url", c.Sitemap.BaseURL)
}

func validateBaseURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s must be set", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}

func validateMatch(key, mode string) error {
	switch strings.ToLower(mode) {
	case "", "exact", "contains":
		return nil
	default:
		return fmt.Errorf("%s must be exact or contains, got %q", key, mode)
	}
}
