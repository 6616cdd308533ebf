package api

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"support-bot-backend/internal/database"
	"support-bot-backend/internal/websocket"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

// APIServer is the operations-facing HTTP surface: health, metrics and the
// live ticket feed.
type APIServer struct {
	listenAddr      string
	db              *database.Database
	routeRegistrars []RouteRegistrar
	handler         *websocket.Handler
	metrics         *metrics
}

func NewAPIServer(listenAddr string, db *database.Database, handler *websocket.Handler, registrars ...RouteRegistrar) *APIServer {
	return &APIServer{
		listenAddr:      listenAddr,
		db:              db,
		handler:         handler,
		routeRegistrars: registrars,
		metrics:         newMetrics(prometheus.DefaultRegisterer, listenAddr),
	}
}

func (s *APIServer) Run() {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	fmt.Printf("Server listening on http://localhost%s\n", s.listenAddr)

	if err := http.ListenAndServe(s.listenAddr, s.metrics.instrument(mux)); err != nil {
		fmt.Printf("server stopped: %v\n", err)
	}
}

func (s *APIServer) Database() *database.Database {
	return s.db
}

func (s *APIServer) Handler() *websocket.Handler {
	return s.handler
}
