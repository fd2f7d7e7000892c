package mcphub

import (
	"os"
	"regexp"
	"strings"
	"time"
)

// Header names are always compared and stored lower-cased.
const (
	headerContentType   = "content-type"
	headerAuthorization = "authorization"
)

// BuildHeaders constructs the header set for one outbound call to the given
// server: a JSON content type, every configured static header with ${NAME}
// environment interpolation applied, and the highest-priority available
// credential as a bearer token. An unexpired OAuth access token wins over a
// static or environment-resolved API key. A caller-set authorization header
// is never overwritten.
func BuildHeaders(base *BaseServerConfig) map[string]string {
	return buildHeaders(base, os.Getenv, time.Now())
}

func buildHeaders(base *BaseServerConfig, getenv func(string) string, now time.Time) map[string]string {
	headers := map[string]string{headerContentType: "application/json"}
	for name, value := range base.Headers {
		headers[strings.ToLower(name)] = interpolateEnv(value, getenv)
	}
	if _, exists := headers[headerAuthorization]; exists {
		return headers
	}
	if token := resolveBearer(base, getenv, now); token != "" {
		headers[headerAuthorization] = "Bearer " + token
	}
	return headers
}

func resolveBearer(base *BaseServerConfig, getenv func(string) string, now time.Time) string {
	if base.OAuth != nil && base.OAuth.AccessToken != "" && !base.OAuth.Expired(now) {
		return base.OAuth.AccessToken
	}
	if base.APIKey != "" {
		return interpolateEnv(base.APIKey, getenv)
	}
	if base.APIKeyEnv != "" {
		return getenv(base.APIKeyEnv)
	}
	return ""
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnv replaces ${NAME} references with the named environment
// value, or the empty string when unset. Bare $NAME is left untouched.
func interpolateEnv(value string, getenv func(string) string) string {
	if !strings.Contains(value, "${") {
		return value
	}
	return envRefPattern.ReplaceAllStringFunc(value, func(ref string) string {
		return getenv(ref[2 : len(ref)-1])
	})
}
