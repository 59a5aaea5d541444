package config

const (
	defaultLibraryDir          = "~/movies"
	defaultDataDir             = "~/.local/share/reeldex"
	defaultLogDir              = "~/.local/share/reeldex/logs"
	defaultProbeTimeout        = 60
	defaultDecodeTimeout       = 300
	defaultKeyframeTimeout     = 30
	defaultKeyframeWindow      = 60
	defaultVerifyWorkers       = 3
	defaultProgressSampleMilli = 500
	defaultMaxErrorSample      = 10
	defaultMediaServerPageSize = 200
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
//
// Scan.Workers defaults to zero, meaning "half of available parallelism",
// resolved at scan time rather than config load so the value tracks the
// machine the scan actually runs on.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			ProbeTimeout:        defaultProbeTimeout,
			ProgressSampleMilli: defaultProgressSampleMilli,
			MaxErrorSample:      defaultMaxErrorSample,
		},
		Verify: Verify{
			Workers:         defaultVerifyWorkers,
			DecodeTimeout:   defaultDecodeTimeout,
			KeyframeTimeout: defaultKeyframeTimeout,
			KeyframeWindow:  defaultKeyframeWindow,
		},
		MediaServer: MediaServer{
			PageSize: defaultMediaServerPageSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
