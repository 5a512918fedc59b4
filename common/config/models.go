package config

type GeneralConfig struct {
	BindAddress  string `yaml:"bindAddress"`
	Port         int    `yaml:"port"`
	LogDirectory string `yaml:"logDirectory"`
	LogColors    bool   `yaml:"logColors"`
	JsonLogs     bool   `yaml:"jsonLogs"`
	LogLevel     string `yaml:"logLevel"`
}

type DatabaseConfig struct {
	Postgres string        `yaml:"postgres"`
	Pool     *DbPoolConfig `yaml:"pool"`
}

type DbPoolConfig struct {
	MaxConnections int `yaml:"maxConnections"`
	MaxIdle        int `yaml:"maxIdleConnections"`
}

type DatastoreConfig struct {
	Type       string            `yaml:"type"`
	Id         string            `yaml:"id"`
	MediaKinds []string          `yaml:"forKinds,flow"`
	Options    map[string]string `yaml:"opts,flow"`
}

// UploadsConfig carries the size-limit tiers for the ingestion pipeline.
// The thresholds are deliberately distinct: CompressAboveBytes <
// allowed ceiling so there is room to attempt a fix before rejecting, and
// ChunkAboveBytes is independent of both because a file can be acceptable
// yet still need chunked transfer for reliability.
type UploadsConfig struct {
	MaxSizeBytes       int64             `yaml:"maxSizeBytes"`
	MinSizeBytes       int64             `yaml:"minSizeBytes"`
	Images             LimitTierConfig   `yaml:"images"`
	Videos             VideoLimitsConfig `yaml:"videos"`
	CompressAboveBytes int64             `yaml:"compressAboveBytes"`
	ChunkAboveBytes    int64             `yaml:"chunkAboveBytes"`
	ChunkSizeBytes     int64             `yaml:"chunkSizeBytes"`
	DirectTimeout      DirectTimeoutConfig `yaml:"directTimeout"`
}

type LimitTierConfig struct {
	RecommendedMaxBytes int64 `yaml:"recommendedMaxBytes"`
	AllowedMaxBytes     int64 `yaml:"allowedMaxBytes"`
}

type VideoLimitsConfig struct {
	LimitTierConfig `yaml:",inline"`
	// PhoneRecommendedMaxBytes widens the recommended ceiling for clips that
	// look phone-recorded, so long-form smartphone video isn't flagged while
	// professionally encoded outliers still are.
	PhoneRecommendedMaxBytes int64 `yaml:"phoneRecommendedMaxBytes"`
}

type DirectTimeoutConfig struct {
	FloorSeconds   int   `yaml:"floorSeconds"`
	BytesPerSecond int64 `yaml:"bytesPerSecond"`
}

type CompressionConfig struct {
	MaxPixels   int `yaml:"maxPixels"`
	MinQuality  int `yaml:"minQuality"`
	StepQuality int `yaml:"stepQuality"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Enabled           bool    `yaml:"enabled"`
	BurstCount        int     `yaml:"burst"`
}

type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bindAddress"`
	Port        int    `yaml:"port"`
}

type SentryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Dsn         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}
