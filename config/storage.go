package config

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// MediaConfig holds asset pool settings.
type MediaConfig struct {
	QuotaBytes        int64           `mapstructure:"quota_bytes"`         // advisory ceiling for the whole pool
	MaxUploadBytes    int64           `mapstructure:"max_upload_bytes"`    // single upload limit
	PlaceholderWidth  int             `mapstructure:"placeholder_width"`   // px width of the blur preview
	ObjectPrefix      string          `mapstructure:"object_prefix"`       // remote key prefix
	ResourceType      string          `mapstructure:"resource_type"`       // storage type tag written on assets
	GalleryPositions  []string        `mapstructure:"gallery_positions"`   // allowed gallery tags
	LockTTL           time.Duration   `mapstructure:"lock_ttl"`            // per-asset lock lease
	LockWait          time.Duration   `mapstructure:"lock_wait"`           // how long a request waits for the lock
	LocalRetryDelays  []time.Duration `mapstructure:"local_retry_delays"`  // retries of the local step after a remote success
	AssetCacheTTL     time.Duration   `mapstructure:"asset_cache_ttl"`     // cache-aside TTL for asset reads
	ReferenceParallel bool            `mapstructure:"reference_parallel"` // fan probes out concurrently
}

var MediaConfigInstance *MediaConfig
var mediaConfigOnce sync.Once

// DefaultMediaConfig returns the built-in media settings.
func DefaultMediaConfig() MediaConfig {
	return MediaConfig{
		QuotaBytes:        10 * 1024 * 1024 * 1024, // 10GB
		MaxUploadBytes:    20 * 1024 * 1024,        // 20MB
		PlaceholderWidth:  10,
		ObjectPrefix:      "media",
		ResourceType:      "image",
		GalleryPositions:  []string{"MAIN", "SERVICES", "ABOUT", "PROJECTS"},
		LockTTL:           30 * time.Second,
		LockWait:          5 * time.Second,
		LocalRetryDelays:  []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second},
		AssetCacheTTL:     5 * time.Minute,
		ReferenceParallel: true,
	}
}

// InitMediaConfig loads media.yaml (optional) with MEDIA_* env overrides.
func InitMediaConfig() {
	mediaConfigOnce.Do(func() {
		cfg, err := LoadMediaConfig(getEnv("MEDIA_CONFIG", ""))
		if err != nil {
			defaults := DefaultMediaConfig()
			cfg = &defaults
		}
		MediaConfigInstance = cfg
	})
}

// LoadMediaConfig reads media settings from path, or from ./media.yaml and
// ./config/media.yaml when path is empty. A missing file is not an error.
func LoadMediaConfig(path string) (*MediaConfig, error) {
	v := viper.New()
	defaults := DefaultMediaConfig()
	v.SetDefault("quota_bytes", defaults.QuotaBytes)
	v.SetDefault("max_upload_bytes", defaults.MaxUploadBytes)
	v.SetDefault("placeholder_width", defaults.PlaceholderWidth)
	v.SetDefault("object_prefix", defaults.ObjectPrefix)
	v.SetDefault("resource_type", defaults.ResourceType)
	v.SetDefault("gallery_positions", defaults.GalleryPositions)
	v.SetDefault("lock_ttl", defaults.LockTTL)
	v.SetDefault("lock_wait", defaults.LockWait)
	v.SetDefault("local_retry_delays", defaults.LocalRetryDelays)
	v.SetDefault("asset_cache_ttl", defaults.AssetCacheTTL)
	v.SetDefault("reference_parallel", defaults.ReferenceParallel)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("media")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix("MEDIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &MediaConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.PlaceholderWidth <= 0 {
		cfg.PlaceholderWidth = defaults.PlaceholderWidth
	}
	if cfg.ObjectPrefix == "" {
		cfg.ObjectPrefix = defaults.ObjectPrefix
	}
	for i, p := range cfg.GalleryPositions {
		cfg.GalleryPositions[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	return cfg, nil
}

// Media returns the loaded media config, falling back to defaults.
func Media() MediaConfig {
	if MediaConfigInstance == nil {
		return DefaultMediaConfig()
	}
	return *MediaConfigInstance
}
