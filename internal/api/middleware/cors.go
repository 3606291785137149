package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds cross-origin settings for the API surface. Method and
// header lists fall back to the defaults below when empty.
type CORSConfig struct {
	AllowedOrigins  []string
	AllowAllOrigins bool
	AllowedMethods  []string
	AllowedHeaders  []string
}

var (
	defaultAllowedMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodOptions,
	}
	defaultAllowedHeaders = []string{
		"Origin", "Content-Type", "Content-Length", "Accept",
		"Authorization", "X-Request-ID",
	}
)

// CORS returns a middleware that handles cross-origin requests. With
// AllowAllOrigins the wildcard origin is sent without credentials;
// otherwise the request origin is echoed back only when it matches the
// allow list, and requests from other origins pass through without CORS
// headers (preflights get an empty 204).
func CORS(config CORSConfig) gin.HandlerFunc {
	methods := config.AllowedMethods
	if len(methods) == 0 {
		methods = defaultAllowedMethods
	}
	headers := config.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultAllowedHeaders
	}
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(headers, ", ")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		header := c.Writer.Header()

		switch {
		case config.AllowAllOrigins:
			header.Set("Access-Control-Allow-Origin", "*")
		case originAllowed(origin, config.AllowedOrigins):
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")
		default:
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
			return
		}

		header.Set("Access-Control-Allow-Methods", allowMethods)
		header.Set("Access-Control-Allow-Headers", allowHeaders)
		header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originAllowed reports whether origin matches the configured allow list.
func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, candidate := range allowed {
		if candidate == "*" || strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}
