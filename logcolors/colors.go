package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Cache-related log prefixes
const (
	LogCacheInit   = Blue + "[Cache:Init]" + Reset
	LogCache       = Blue + "[Cache]" + Reset
	LogCacheClear  = Blue + "[Cache:Clear]" + Reset
	LogCacheSweep  = Blue + "[Cache:Sweep]" + Reset
	LogCacheLyrics = Green + "[Cache:Lyrics]" + Reset
	LogCacheStream = Green + "[Cache:Stream]" + Reset
)

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}

// Server/Init log prefixes
const (
	LogServer = Green + "[Server]" + Reset
	LogConfig = Cyan + "[Config]" + Reset
	LogStats  = Blue + "[Stats]" + Reset
)

// Search and lyrics log prefixes
const (
	LogRequest  = Purple + "[Request]" + Reset
	LogSearch   = Blue + "[Search]" + Reset
	LogRetry    = Purple + "[Search:Retry]" + Reset
	LogHTTP     = Cyan + "[HTTP]" + Reset
	LogSuccess  = Green + "[Success]" + Reset
	LogLyrics   = Blue + "[Lyrics]" + Reset
	LogFallback = Cyan + "[Fallback]" + Reset
	LogStream   = Cyan + "[Stream]" + Reset
	LogWarning  = Red + "[Warning]" + Reset
)
