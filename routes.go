package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the API
func setupRoutes(router *mux.Router) {
	// Player-facing endpoints
	router.HandleFunc("/api/search", searchHandler)
	router.HandleFunc("/api/lyrics", lyricsHandler)
	router.HandleFunc("/api/stream/{id}", streamHandler)
	router.HandleFunc("/api/info/{id}", infoHandler)
	router.HandleFunc("/api/trending", trendingHandler)

	// Cache management endpoints
	router.HandleFunc("/cache", getCacheDump)
	router.HandleFunc("/cache/clear", clearCache)

	// Health and stats endpoints
	router.HandleFunc("/health", getHealthStatus)
	router.HandleFunc("/stats", getStats)

	// Help endpoint
	router.HandleFunc("/", helpHandler)
}
