package httpapi

import (
	"database/sql"
	"net/http"
)

// NewMux returns a mux serving the health check, static files from
// staticDir and, when metrics is non-nil, the Prometheus endpoint.
// Feature modules register their own routes on it.
func NewMux(db *sql.DB, staticDir string, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	if staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}
