package web

import (
	"context"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/cache"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// History lists recorded load attempts.
type History interface {
	RecentLoads(ctx context.Context, limit int) ([]model.LoadEvent, error)
}

// Credentials enable Basic auth when both fields are non-empty.
type Credentials struct {
	User     string
	Password string
}

// Server serves the dashboard API.
type Server struct {
	Cache   *cache.Manager
	History History // optional
	Auth    Credentials
	Addr    string

	// ReloadLimiter throttles POST /reload; nil means unlimited.
	ReloadLimiter *rate.Limiter
}

// NewReloadLimiter allows rps forced reloads per second with the given
// burst. A non-positive rps disables the limit.
func NewReloadLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Handler returns the routed HTTP handler with CORS, auth and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/reload", s.handleReload)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/history", s.handleHistory)
	mux.Handle("/metrics", promhttp.Handler())

	return logRequests(cors(s.basicAuth(mux, "/health")))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("Serving at http://%s", s.Addr)
	return srv.ListenAndServe()
}
