package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		// Upstream media API (search, stream URLs, track info)
		MediaAPIBaseURL string `envconfig:"MEDIA_API_BASE_URL" default:"https://media-api.local"`
		SearchLimit     int    `envconfig:"SEARCH_LIMIT" default:"15"`

		// Search retry behaviour
		MaxSearchRetries int `envconfig:"MAX_SEARCH_RETRIES" default:"3"`
		RetryBaseDelayMs int `envconfig:"RETRY_BASE_DELAY_MS" default:"1000"`
		RetryMaxDelayMs  int `envconfig:"RETRY_MAX_DELAY_MS" default:"5000"`

		// Lyrics sources, tried in order; first answering source wins
		SyncedLyricsBaseURL string `envconfig:"SYNCED_LYRICS_BASE_URL" default:"https://lrclib.net"`
		PlainLyricsBaseURL  string `envconfig:"PLAIN_LYRICS_BASE_URL" default:"https://api.lyrics.ovh"`

		// Cache
		CachePath                          string `envconfig:"CACHE_PATH" default:"data/cache.db"`
		CacheInvalidationIntervalInSeconds int    `envconfig:"CACHE_INVALIDATION_INTERVAL_IN_SECONDS" default:"3600"`
		StreamURLCacheTTLInSeconds         int    `envconfig:"STREAM_URL_CACHE_TTL_IN_SECONDS" default:"3600"`
		LyricsCacheTTLInSeconds            int    `envconfig:"LYRICS_CACHE_TTL_IN_SECONDS" default:"86400"`
		CacheAccessToken                   string `envconfig:"CACHE_ACCESS_TOKEN" default:""`

		// Rate limiting
		RateLimitPerSecond  int `envconfig:"RATE_LIMIT_PER_SECOND" default:"2"`
		RateLimitBurstLimit int `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"5"`

		// Circuit breaker guarding the upstream media API
		CircuitBreakerThreshold    int `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`
		CircuitBreakerCooldownSecs int `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"`
	}

	FeatureFlags struct {
		CacheCompression bool `envconfig:"FF_CACHE_COMPRESSION" default:"true"`
	}
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
