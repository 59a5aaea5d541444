package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeVerify()
	c.normalizeMediaServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.ProbeTimeout == 0 {
		c.Scan.ProbeTimeout = defaultProbeTimeout
	}
	if c.Scan.ProgressSampleMilli == 0 {
		c.Scan.ProgressSampleMilli = defaultProgressSampleMilli
	}
	if c.Scan.MaxErrorSample == 0 {
		c.Scan.MaxErrorSample = defaultMaxErrorSample
	}
}

func (c *Config) normalizeVerify() {
	if c.Verify.Workers == 0 {
		c.Verify.Workers = defaultVerifyWorkers
	}
	if c.Verify.DecodeTimeout == 0 {
		c.Verify.DecodeTimeout = defaultDecodeTimeout
	}
	if c.Verify.KeyframeTimeout == 0 {
		c.Verify.KeyframeTimeout = defaultKeyframeTimeout
	}
	if c.Verify.KeyframeWindow == 0 {
		c.Verify.KeyframeWindow = defaultKeyframeWindow
	}
}

func (c *Config) normalizeMediaServer() {
	if c.MediaServer.APIKey == "" {
		if value, ok := os.LookupEnv("REELDEX_MEDIA_SERVER_API_KEY"); ok {
			c.MediaServer.APIKey = value
		}
	}
	c.MediaServer.URL = strings.TrimSpace(c.MediaServer.URL)
	c.MediaServer.APIKey = strings.TrimSpace(c.MediaServer.APIKey)
	if c.MediaServer.PageSize == 0 {
		c.MediaServer.PageSize = defaultMediaServerPageSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
