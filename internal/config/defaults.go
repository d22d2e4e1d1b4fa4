package config

const (
	defaultDataDir               = "~/.local/share/mangasync"
	defaultLogDir                = "~/.local/share/mangasync/logs"
	defaultCatalogBaseURL        = "https://api.mangacatalog.example/v2"
	defaultCatalogTimeoutSeconds = 10
	defaultFloorThreshold        = 40.0
	defaultAcceptThreshold       = 80.0
	defaultClosenessMargin       = 5.0
	defaultMaxCandidates         = 8
	defaultMatchWorkers          = 4
	defaultTitleWeight           = 55.0
	defaultFormatWeight          = 10.0
	defaultProgressWeight        = 10.0
	defaultGenreWeight           = 15.0
	defaultYearWeight            = 10.0
	defaultSyncBatchSize         = 10
	defaultSyncMaxAttempts       = 3
	defaultRetryInitialSeconds   = 2
	defaultRetryMaxSeconds       = 60
	defaultRequestTimeoutSeconds = 15
	defaultMinIntervalMillis     = 350
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			TimeoutSeconds: defaultCatalogTimeoutSeconds,
		},
		Matching: Matching{
			FloorThreshold:  defaultFloorThreshold,
			AcceptThreshold: defaultAcceptThreshold,
			ClosenessMargin: defaultClosenessMargin,
			MaxCandidates:   defaultMaxCandidates,
			Workers:         defaultMatchWorkers,
			TitleWeight:     defaultTitleWeight,
			FormatWeight:    defaultFormatWeight,
			ProgressWeight:  defaultProgressWeight,
			GenreWeight:     defaultGenreWeight,
			YearWeight:      defaultYearWeight,
		},
		Sync: Sync{
			BatchSize:             defaultSyncBatchSize,
			MaxAttempts:           defaultSyncMaxAttempts,
			RetryInitialSeconds:   defaultRetryInitialSeconds,
			RetryMaxSeconds:       defaultRetryMaxSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			MinIntervalMillis:     defaultMinIntervalMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
