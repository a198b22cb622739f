package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/nutri-hub/internal/config"
)

const (
	corsAllowMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsAllowHeaders = "Authorization,Content-Type"
)

// originMatcher reports whether an Origin header value is allowed.
// A "*" entry allows every origin.
type originMatcher struct {
	any     bool
	allowed map[string]bool
}

func newOriginMatcher(origins []string) originMatcher {
	m := originMatcher{allowed: make(map[string]bool, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			m.any = true
			continue
		}
		if o != "" {
			m.allowed[o] = true
		}
	}
	return m
}

func (m originMatcher) match(origin string) bool {
	if origin == "" {
		return false
	}
	return m.any || m.allowed[origin]
}

// CORSMiddleware returns an http.Handler that adds CORS headers.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	origins := newOriginMatcher(cfg.CORSAllowedOrigins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		ok := origins.match(origin)

		if ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")

			if cfg.CORSAllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		// Preflight never reaches the router
		if r.Method == http.MethodOptions && origin != "" {
			if ok {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", "600")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
