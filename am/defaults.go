package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default values. Exported for callers that build a Config without viper.
const (
	DefaultBaseURL         = "http://localhost:8000/api/v1"
	DefaultDebounceMS      = 500
	DefaultMinSourceLength = 3
	DefaultFormat          = "plain"
	DefaultMode            = "smart"
	DefaultExportPrefix    = "git1file"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service.base_url", DefaultBaseURL)
	v.SetDefault("service.timeout_seconds", 300) // large repositories take minutes
	v.SetDefault("service.max_redirects", 10)

	v.SetDefault("preview.debounce_ms", DefaultDebounceMS)
	v.SetDefault("preview.min_source_length", DefaultMinSourceLength)
	v.SetDefault("preview.max_requests_per_minute", 0)
	v.SetDefault("preview.timeout_seconds", 30)

	v.SetDefault("ingest.format", DefaultFormat)
	v.SetDefault("ingest.mode", DefaultMode)
	v.SetDefault("ingest.compress", true)
	v.SetDefault("ingest.include_markdown", false)

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.prefix", DefaultExportPrefix)

	v.SetDefault("ui.title", "git1file")
	v.SetDefault("ui.width", 1200)
	v.SetDefault("ui.height", 860)
	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.debug", false)

	v.SetDefault("metrics.addr", "")
}

// BindSensitiveEnvVars explicitly binds settings commonly overridden per shell
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("service.base_url", "GIT1FILE_SERVICE_URL")
	_ = v.BindEnv("metrics.addr", "GIT1FILE_METRICS_ADDR")
}

// Default returns a Config populated with defaults only
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// defaults always unmarshal
		panic(err)
	}
	return cfg
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Service: %s, Preview: {DebounceMS: %d, MinSourceLength: %d}, Ingest: {Format: %s, Mode: %s}}",
		c.Service.BaseURL, c.Preview.DebounceMS, c.Preview.MinSourceLength, c.Ingest.Format, c.Ingest.Mode)
}
