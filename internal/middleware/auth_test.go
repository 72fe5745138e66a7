package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	handler := BasicAuth(DefaultAuthConfig("admin", string(hash)))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		path       string
		user, pass string
		setAuth    bool
		wantStatus int
	}{
		{"No credentials", "/api/convert", "", "", false, http.StatusUnauthorized},
		{"Wrong password", "/api/convert", "admin", "nope", true, http.StatusUnauthorized},
		{"Wrong user", "/api/convert", "root", "s3cret", true, http.StatusUnauthorized},
		{"Valid", "/api/convert", "admin", "s3cret", true, http.StatusOK},
		{"Health exempt", "/healthz", "", "", false, http.StatusOK},
		{"Readiness exempt", "/readyz", "", "", false, http.StatusOK},
		{"Static page protected", "/", "", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Code == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate challenge")
			}
		})
	}
}

func TestBasicAuthDisabled(t *testing.T) {
	handler := BasicAuth(DefaultAuthConfig("admin", ""))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/formats", http.NoBody))
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, want passthrough", w.Code)
	}
}
