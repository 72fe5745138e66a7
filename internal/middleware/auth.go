package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"media-converter/internal/logging"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig configures BasicAuth.
type AuthConfig struct {
	Username     string
	PasswordHash string
	Realm        string
	// SkipPaths stay reachable without credentials so orchestrator probes work.
	SkipPaths []string
}

// DefaultAuthConfig returns an AuthConfig for the given credentials with the
// health endpoints exempt.
func DefaultAuthConfig(username, passwordHash string) AuthConfig {
	return AuthConfig{
		Username:     username,
		PasswordHash: passwordHash,
		Realm:        "media-converter",
		SkipPaths:    []string{"/health", "/healthz", "/livez", "/readyz"},
	}
}

// BasicAuth rejects requests without valid HTTP basic credentials. An empty
// PasswordHash disables the check.
func BasicAuth(config AuthConfig) func(http.Handler) http.Handler {
	hash := []byte(config.PasswordHash)
	challenge := `Basic realm="` + strings.ReplaceAll(config.Realm, `"`, "") + `", charset="UTF-8"`

	return func(next http.Handler) http.Handler {
		if len(hash) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range config.SkipPaths {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}

			user, pass, ok := r.BasicAuth()
			if ok && checkCredentials(config.Username, hash, user, pass) {
				next.ServeHTTP(w, r)
				return
			}

			if ok {
				logging.Warn("Rejected credentials for user %q from %s", sanitizeLogField(user), sanitizeLogField(getClientIP(r)))
			}

			w.Header().Set("WWW-Authenticate", challenge)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
		})
	}
}

func checkCredentials(wantUser string, hash []byte, user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password
	passOK := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
	return userOK && passOK
}
