package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithUserID stores a verified user id in ctx
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the verified user id placed by Middleware
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok && id > 0
}

// Middleware rejects requests without a valid bearer token and passes the
// verified user id to next through the request context.
func (t *Tokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeMessage(w, "Authorization header missing or invalid")
			return
		}

		userID, err := t.Verify(strings.TrimSpace(token))
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("token rejected")
			if errors.Is(err, ErrTokenExpired) {
				writeMessage(w, "Token has expired!")
				return
			}
			writeMessage(w, "Token is invalid!")
			return
		}

		ctx := WithUserID(r.Context(), userID)
		l := zerolog.Ctx(ctx).With().Int64("user_id", userID).Logger()
		next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
	})
}

func writeMessage(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
