package main

import (
	"encoding/json"
	"net/http"
)

// APIResponse centralizes header handling and JSON encoding for the
// HTTP handlers.
type APIResponse struct {
	w           http.ResponseWriter
	r           *http.Request
	cacheStatus string
	source      string
}

// Respond creates a response helper for the request.
func Respond(w http.ResponseWriter, r *http.Request) *APIResponse {
	return &APIResponse{w: w, r: r}
}

// SetCacheStatus sets the X-Cache-Status header value (HIT/MISS).
func (a *APIResponse) SetCacheStatus(status string) *APIResponse {
	a.cacheStatus = status
	return a
}

// SetSource sets the X-Source header value (which backend served it).
func (a *APIResponse) SetSource(source string) *APIResponse {
	a.source = source
	return a
}

func (a *APIResponse) writeHeaders() {
	a.w.Header().Set("Content-Type", "application/json")

	if a.cacheStatus != "" {
		a.w.Header().Set("X-Cache-Status", a.cacheStatus)
	}
	if a.source != "" {
		a.w.Header().Set("X-Source", a.source)
	}
	if rateLimitType, ok := a.r.Context().Value(rateLimitTypeKey).(string); ok && rateLimitType != "" {
		a.w.Header().Set("X-RateLimit-Type", rateLimitType)
	}
}

// JSON writes headers and encodes data as JSON (200 OK).
func (a *APIResponse) JSON(data interface{}) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(data)
}

// Error writes headers, sets the status code and encodes the body.
func (a *APIResponse) Error(statusCode int, data interface{}) error {
	a.writeHeaders()
	a.w.WriteHeader(statusCode)
	return json.NewEncoder(a.w).Encode(data)
}
