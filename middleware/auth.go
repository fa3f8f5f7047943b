package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
)

type clerkIDKey struct{}

var (
	errNoAuthHeader    = errors.New("Authorization header required")
	errNotBearer       = errors.New("Invalid authorization format. Use 'Bearer <token>'")
	errMissingSubject  = errors.New("token has no subject")
	verifySessionToken = func(ctx context.Context, token string) (*clerk.SessionClaims, error) {
		return jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	}
)

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoAuthHeader
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errNotBearer
	}
	return strings.TrimSpace(token), nil
}

// authenticate returns the Clerk user id of the session token on r.
func authenticate(r *http.Request) (string, error) {
	token, err := bearerToken(r)
	if err != nil {
		return "", err
	}
	claims, err := verifySessionToken(r.Context(), token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}

// ClerkAuthMiddleware rejects requests without a valid Clerk session token.
func ClerkAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clerkID, err := authenticate(r)
		switch {
		case errors.Is(err, errNoAuthHeader), errors.Is(err, errNotBearer):
			respondWithError(w, http.StatusUnauthorized, err.Error())
			return
		case err != nil:
			log.Printf("Token verification failed: %v", err)
			respondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClerkID(r.Context(), clerkID)))
	})
}

// OptionalAuthMiddleware attaches the Clerk user id when a valid token is
// present. Anonymous or badly authenticated requests pass through as
// anonymous, so public reads like the feed and leaderboard keep working.
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if clerkID, err := authenticate(r); err == nil {
			r = r.WithContext(WithClerkID(r.Context(), clerkID))
		}
		next.ServeHTTP(w, r)
	})
}

func GetClerkID(ctx context.Context) (string, bool) {
	clerkID, ok := ctx.Value(clerkIDKey{}).(string)
	return clerkID, ok && clerkID != ""
}

// WithClerkID returns a context carrying clerkID, as the auth middleware does.
func WithClerkID(ctx context.Context, clerkID string) context.Context {
	return context.WithValue(ctx, clerkIDKey{}, clerkID)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
