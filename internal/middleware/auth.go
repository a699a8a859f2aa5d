package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GiorgiUbiria/ewallet/internal/httputil"
	"github.com/GiorgiUbiria/ewallet/internal/logger"
	"go.uber.org/zap"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

type TokenParser interface {
	Parse(token string) (uint64, error)
}

// Authenticated rejects requests without a valid bearer token and stores the
// caller's account id in the request context.
func Authenticated(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteCodedError(w, http.StatusUnauthorized, "NO_TOKEN", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.WriteCodedError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid authorization header")
				return
			}

			accountID, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Log.Debug("token rejected", zap.Error(err))
				httputil.WriteCodedError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
		})
	}
}

func WithAccountID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

func AccountID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(accountIDKey).(uint64)
	return id, ok && id != 0
}
