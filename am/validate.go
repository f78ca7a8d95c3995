package am

import (
	"net/url"
	"slices"

	"github.com/git1file/git1file/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return errors.New("service.base_url cannot be empty")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil {
		return errors.Wrapf(err, "service.base_url %q is not a valid URL", c.Service.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.WithHint(
			errors.Newf("service.base_url must use http or https, got %q", u.Scheme),
			"example: base_url = \"http://localhost:8000/api/v1\"")
	}
	if u.Host == "" {
		return errors.Newf("service.base_url %q has no host", c.Service.BaseURL)
	}

	if c.Service.TimeoutSeconds < 0 {
		return errors.Newf("service.timeout_seconds must be >= 0, got %d", c.Service.TimeoutSeconds)
	}
	if c.Service.MaxRedirects < 0 {
		return errors.Newf("service.max_redirects must be >= 0, got %d", c.Service.MaxRedirects)
	}

	// Zero selects the default interval
	if c.Preview.DebounceMS < 0 {
		return errors.Newf("preview.debounce_ms must be >= 0, got %d", c.Preview.DebounceMS)
	}
	if c.Preview.MinSourceLength < 0 {
		return errors.Newf("preview.min_source_length must be >= 0, got %d", c.Preview.MinSourceLength)
	}
	if c.Preview.MaxRequestsPerMinute < 0 {
		return errors.Newf("preview.max_requests_per_minute must be >= 0, got %d", c.Preview.MaxRequestsPerMinute)
	}
	if c.Preview.TimeoutSeconds < 0 {
		return errors.Newf("preview.timeout_seconds must be >= 0, got %d", c.Preview.TimeoutSeconds)
	}

	if !slices.Contains(KnownFormats, c.Ingest.Format) {
		return errors.Newf("ingest.format must be one of %v, got %q", KnownFormats, c.Ingest.Format)
	}
	if c.Ingest.Mode == "" {
		return errors.New("ingest.mode cannot be empty")
	}

	if c.Export.Prefix == "" {
		return errors.New("export.prefix cannot be empty")
	}

	if c.UI.Width < 0 || c.UI.Height < 0 {
		return errors.Newf("ui size must be positive, got %dx%d", c.UI.Width, c.UI.Height)
	}

	return nil
}
