package main

import (
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"player-api-go/cache"
	"player-api-go/circuitbreaker"
	"player-api-go/config"
	"player-api-go/logcolors"
	"player-api-go/middleware"
	"player-api-go/search"
	"player-api-go/services/lyrics"
	"player-api-go/services/media"
)

var conf = config.Get()

var (
	persistentCache *cache.PersistentCache
	mediaClient     *media.Client
	resolver        *search.Resolver
	lyricsChain     *lyrics.Chain
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	err := godotenv.Load()
	if err != nil {
		log.Warn("Error loading .env file, using environment variables")
	}
}

func main() {
	var err error
	persistentCache, err = cache.NewPersistentCache(conf.Configuration.CachePath, conf.FeatureFlags.CacheCompression)
	if err != nil {
		log.Fatalf("%s Failed to initialize cache: %v", logcolors.LogCacheInit, err)
	}
	defer persistentCache.Close()

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:      "media-api",
		Threshold: conf.Configuration.CircuitBreakerThreshold,
		Cooldown:  time.Duration(conf.Configuration.CircuitBreakerCooldownSecs) * time.Second,
	})
	mediaClient = media.NewClient(conf.Configuration.MediaAPIBaseURL, breaker)

	resolver = search.New(mediaClient, search.Options{
		MaxRetries: conf.Configuration.MaxSearchRetries,
		BaseDelay:  time.Duration(conf.Configuration.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:   time.Duration(conf.Configuration.RetryMaxDelayMs) * time.Millisecond,
	})

	lyricsChain = lyrics.NewChain(
		lyrics.NewLRCLibProvider(conf.Configuration.SyncedLyricsBaseURL),
		lyrics.NewPlainTextProvider(conf.Configuration.PlainLyricsBaseURL),
	)

	go sweepCache()

	router := mux.NewRouter()
	setupRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: false,
	})

	limiter := middleware.NewIPRateLimiter(rate.Limit(conf.Configuration.RateLimitPerSecond), conf.Configuration.RateLimitBurstLimit)

	loggedRouter := middleware.LoggingMiddleware(router)
	corsHandler := c.Handler(loggedRouter)
	handler := limitMiddleware(corsHandler, limiter)

	log.Infof("%s Server listening on port %s", logcolors.LogServer, port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
