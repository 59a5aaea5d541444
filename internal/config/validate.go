package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateVerify(); err != nil {
		return err
	}
	if err := c.validateMediaServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return errors.New("scan.workers must not be negative")
	}
	if c.Scan.ProbeTimeout <= 0 {
		return errors.New("scan.probe_timeout must be positive (seconds)")
	}
	if c.Scan.MaxFileSizeGiB < 0 {
		return errors.New("scan.max_file_size_gib must not be negative")
	}
	if c.Scan.MaxErrorSample <= 0 {
		return errors.New("scan.max_error_sample must be positive")
	}
	return nil
}

func (c *Config) validateVerify() error {
	if c.Verify.Workers <= 0 {
		return errors.New("verify.workers must be positive")
	}
	if c.Verify.DecodeTimeout <= 0 {
		return errors.New("verify.decode_timeout must be positive (seconds)")
	}
	if c.Verify.KeyframeTimeout <= 0 {
		return errors.New("verify.keyframe_timeout must be positive (seconds)")
	}
	if c.Verify.KeyframeWindow <= 0 {
		return errors.New("verify.keyframe_window must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateMediaServer() error {
	if !c.MediaServer.Enabled {
		return nil
	}
	if c.MediaServer.URL == "" {
		return errors.New("media_server.url must be set when media_server.enabled is true")
	}
	if c.MediaServer.APIKey == "" {
		return errors.New("media_server.api_key must be set when media_server.enabled is true (or set REELDEX_MEDIA_SERVER_API_KEY)")
	}
	if c.MediaServer.PageSize <= 0 {
		return errors.New("media_server.page_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
