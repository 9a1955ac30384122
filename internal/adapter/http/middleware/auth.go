package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/satelink/econledger/internal/domain"
)

type contextKey string

const principalContextKey contextKey = "principal"

// TokenVerifier checks a bearer token and returns its principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// AuthFailureRecorder is notified of every rejected credential.
type AuthFailureRecorder interface {
	RecordAuthFailure(ctx context.Context, ip string)
}

// AuthMetrics counts rejected credentials.
type AuthMetrics interface {
	AuthFailed(reason string)
}

// Authenticator verifies bearer tokens and reports failures to the anomaly
// counters.
type Authenticator struct {
	verifier TokenVerifier
	recorder AuthFailureRecorder
	metrics  AuthMetrics
}

// NewAuthenticator creates a new Authenticator. recorder and metrics may be nil.
func NewAuthenticator(verifier TokenVerifier, recorder AuthFailureRecorder, metrics AuthMetrics) *Authenticator {
	return &Authenticator{verifier: verifier, recorder: recorder, metrics: metrics}
}

// Wrap rejects requests without a valid bearer token.
func (a *Authenticator) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			a.reject(w, r, "missing_token", "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			a.reject(w, r, "malformed_header", "invalid authorization header format")
			return
		}

		principal, err := a.verifier.Verify(parts[1])
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, domain.ErrExpiredToken) {
				reason = "expired_token"
			}
			a.reject(w, r, reason, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, reason, message string) {
	if a.metrics != nil {
		a.metrics.AuthFailed(reason)
	}
	if a.recorder != nil {
		a.recorder.RecordAuthFailure(r.Context(), clientIP(r))
	}
	writeJSONError(w, http.StatusUnauthorized, message)
}

// RequireRole rejects principals whose role does not grant minRole.
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !principal.Role.Allows(minRole) {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the authenticated principal from context.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(domain.Principal)
	return p, ok
}

// clientIP returns the caller address without its port. Forwarded headers
// count only when the router trusts them and has folded them into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
