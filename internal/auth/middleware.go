package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fdg312/nutri-hub/internal/config"
	"github.com/fdg312/nutri-hub/internal/userctx"
)

// streamPath accepts the token as a query parameter: browsers cannot set
// headers on a websocket handshake.
const streamPath = "/v1/stream"

// Middleware проверяет Bearer-токен и кладёт sub в контекст запроса.
type Middleware struct {
	service  *Service
	logger   *zap.Logger
	required bool
}

func NewMiddleware(cfg *config.Config, service *Service, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		service:  service,
		logger:   logger,
		required: cfg.AuthRequired,
	}
}

// Wrap guards next. With AUTH_REQUIRED off, anonymous requests pass but a
// presented token must still be valid.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		raw, present := bearerToken(r)
		if !present {
			if m.required {
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.service.VerifyJWT(raw)
		if err != nil {
			m.logger.Debug("auth token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(userctx.WithUserID(r.Context(), userID)))
	})
}

// bearerToken reports whether the request carried any credentials. A
// malformed Authorization header counts as present with an empty token.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			return "", true
		}
		return strings.TrimSpace(token), true
	}
	if r.URL.Path == streamPath {
		if token := r.URL.Query().Get("access_token"); token != "" {
			return token, true
		}
	}
	return "", false
}

func isPublicPath(path string) bool {
	switch path {
	case "/healthz", "/metrics":
		return true
	}
	return strings.HasPrefix(path, "/v1/auth/")
}
