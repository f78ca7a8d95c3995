package am

import "time"

// Config represents the git1file client configuration
type Config struct {
	Service ServiceConfig `mapstructure:"service" toml:"service" json:"service" yaml:"service"`
	Preview PreviewConfig `mapstructure:"preview" toml:"preview" json:"preview" yaml:"preview"`
	Ingest  IngestConfig  `mapstructure:"ingest" toml:"ingest" json:"ingest" yaml:"ingest"`
	Export  ExportConfig  `mapstructure:"export" toml:"export" json:"export" yaml:"export"`
	UI      UIConfig      `mapstructure:"ui" toml:"ui" json:"ui" yaml:"ui"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics" json:"metrics" yaml:"metrics"`
}

// ServiceConfig locates the remote ingestion service
type ServiceConfig struct {
	// e.g. "http://localhost:8000/api/v1"
	BaseURL string `mapstructure:"base_url" toml:"base_url" json:"base_url" yaml:"base_url"`
	// ingest requests can take minutes on large repositories
	TimeoutSeconds int `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRedirects   int `mapstructure:"max_redirects" toml:"max_redirects" json:"max_redirects" yaml:"max_redirects"`
}

// PreviewConfig tunes the live stats preview
type PreviewConfig struct {
	// quiet interval before a preview fires
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
	// shorter input clears the panel instead
	MinSourceLength int `mapstructure:"min_source_length" toml:"min_source_length" json:"min_source_length" yaml:"min_source_length"`
	// 0 = unlimited
	MaxRequestsPerMinute int `mapstructure:"max_requests_per_minute" toml:"max_requests_per_minute" json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	TimeoutSeconds       int `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`
}

// IngestConfig holds the form defaults
type IngestConfig struct {
	Format          string `mapstructure:"format" toml:"format" json:"format" yaml:"format"`
	Mode            string `mapstructure:"mode" toml:"mode" json:"mode" yaml:"mode"`
	Compress        bool   `mapstructure:"compress" toml:"compress" json:"compress" yaml:"compress"`
	IncludeMarkdown bool   `mapstructure:"include_markdown" toml:"include_markdown" json:"include_markdown" yaml:"include_markdown"`
}

// ExportConfig controls where downloads land and how they are named
type ExportConfig struct {
	Dir    string `mapstructure:"dir" toml:"dir" json:"dir" yaml:"dir"`
	Prefix string `mapstructure:"prefix" toml:"prefix" json:"prefix" yaml:"prefix"`
}

// UIConfig configures the webview window
type UIConfig struct {
	Title  string `mapstructure:"title" toml:"title" json:"title" yaml:"title"`
	Width  int    `mapstructure:"width" toml:"width" json:"width" yaml:"width"`
	Height int    `mapstructure:"height" toml:"height" json:"height" yaml:"height"`
	Locale string `mapstructure:"locale" toml:"locale" json:"locale" yaml:"locale"` // BCP 47 tag for number formatting
	Debug  bool   `mapstructure:"debug" toml:"debug" json:"debug" yaml:"debug"`     // enables the webview inspector
}

// MetricsConfig exposes Prometheus metrics when Addr is set
type MetricsConfig struct {
	Addr string `mapstructure:"addr" toml:"addr" json:"addr" yaml:"addr"` // e.g. "127.0.0.1:9464"; empty = disabled
}

// Known output formats accepted by the ingestion service
var KnownFormats = []string{"plain", "markdown", "json", "xml"}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// ServiceTimeout returns the ingest request timeout
func (c *Config) ServiceTimeout() time.Duration {
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

// PreviewTimeout returns the stats request timeout
func (c *Config) PreviewTimeout() time.Duration {
	return time.Duration(c.Preview.TimeoutSeconds) * time.Second
}

// DebounceInterval returns the preview quiet interval
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Preview.DebounceMS) * time.Millisecond
}
