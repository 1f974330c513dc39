package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sagaasachin/MaanClothing/internal/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ctxKey int

const userIDKey ctxKey = iota

func WithUserID(ctx context.Context, userID primitive.ObjectID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func getUserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	userID, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return userID, ok && !userID.IsZero()
}

// AuthMiddleware accepts an HMAC-signed bearer token and puts the user id
// into the request context. The id is read from the "id" claim, then "sub".
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc); err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			userID, err := primitive.ObjectIDFromHex(subject(claims))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "token does not identify a user")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = logger.With(ctx, zap.String("user_id", userID.Hex()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func subject(claims jwt.MapClaims) string {
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	sub, _ := claims.GetSubject()
	return sub
}

// RequestLogger puts a request-scoped logger carrying the chi request id into
// the context and writes one access log line per request.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx := logger.WithContext(r.Context(), base.With(zap.String("request_id", requestID)))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.FromContext(ctx).Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
