package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/apex/log"
)

// cors allows any origin; the dashboard frontend is hosted separately.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Max-Age", "86400")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// basicAuth guards every path except the public ones. It is a no-op when
// no credentials are configured.
func (s *Server) basicAuth(next http.Handler, public ...string) http.Handler {
	if s.Auth.User == "" || s.Auth.Password == "" {
		return next
	}
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if open[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.Auth.User)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.Auth.Password)) == 1
		if !ok || !userOK || !passOK {
			log.WithField("remote", r.RemoteAddr).Warn("http.auth.rejected")
			w.Header().Set("WWW-Authenticate", `Basic realm="dashboard"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("http.request")
	})
}
