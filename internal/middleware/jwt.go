package middleware

import (
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/expensely/internal/auth"
	"github.com/vaughan-dsouza/expensely/internal/utils"
	"go.uber.org/zap"
)

const (
	MsgNotLoggedIn       = "not logged in"
	MsgAuthFailed        = "failed to authenticate"
	wwwAuthenticateValue = `Bearer realm="expensely"`
)

// TokenVerifier is the part of auth.TokenService the gateway needs.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate guards protected routes. A request only reaches next once a
// bearer token has been verified and the caller's id and role are bound to
// its context.
func Authenticate(v TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, MsgNotLoggedIn)
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				log.Debug("token rejected", zap.Error(err), zap.String("path", r.URL.Path))
				unauthorized(w, MsgAuthFailed)
				return
			}

			ctx := utils.WithIdentity(r.Context(), claims.UserID(), claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", wwwAuthenticateValue)
	utils.JSONError(w, http.StatusUnauthorized, msg)
}
