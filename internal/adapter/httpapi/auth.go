package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// UserIDKeyType is a custom type for the user ID context key to avoid
// collisions.
type UserIDKeyType string

// UserRoleKeyType is a custom type for the user role context key.
type UserRoleKeyType string

const (
	// UserIDKey holds the authenticated user id in the request context.
	UserIDKey UserIDKeyType = "authenticatedUserID"
	// UserRoleKey holds the authenticated user's role.
	UserRoleKey UserRoleKeyType = "authenticatedUserRole"
)

// Claims defines the JWT claims expected from the identity provider.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var errNoToken = errors.New("authorization token is not provided")

func parseBearerToken(r *http.Request, secret string) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errNoToken
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("authorization token format is invalid, expected 'Bearer <token>'")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, fmt.Errorf("token is invalid: %v", err)
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.UserID == "" {
		return nil, errors.New("user_id not found in token claims")
	}
	return claims, nil
}

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseBearerToken(r, secret)
			if err != nil {
				log.Debug("authentication failed", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalJWTAuth authenticates when a token is present and lets
// anonymous requests through. A token that is present but invalid is
// still rejected; invalid credentials never downgrade to anonymous.
func OptionalJWTAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseBearerToken(r, secret)
			if err != nil {
				if errors.Is(err, errNoToken) {
					next.ServeHTTP(w, r)
					return
				}
				log.Debug("authentication failed", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func withClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, UserRoleKey, claims.Role)
}

// actorFrom rebuilds the domain actor from context; an unauthenticated
// request yields the anonymous actor.
func actorFrom(ctx context.Context) domain.Actor {
	userID, _ := ctx.Value(UserIDKey).(string)
	role, _ := ctx.Value(UserRoleKey).(string)
	return domain.Actor{UserID: userID, Role: domain.Role(role)}
}
