package web

import (
	"log"
	"net/http"

	"catalogsync_api/internal/catalog/app/web/handlers"
	"catalogsync_api/metrics"
	"catalogsync_api/pkg/middleware"
)

// SetupRoutes wires the handlers into a mux with the metrics middleware and
// starts serving. Every handler must be able to ping the database before the
// server comes up.
func SetupRoutes(addr string, productHandler *handlers.ProductHandler, syncHandler *handlers.SyncHandler, feedHandler *handlers.FeedHandler) {
	for _, handler := range []handlers.Handler{productHandler, syncHandler, feedHandler} {
		if handler == nil {
			log.Fatalf("Handler not provided")
		}
		if err := handler.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", productHandler.GetProductHandler)
	mux.HandleFunc("/api/sync", syncHandler.RunSyncHandler)
	mux.HandleFunc("/api/feeds", feedHandler.SubmitFeedHandler)
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := productHandler.Ping(); err != nil {
			http.Error(w, "Database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("pong"))
	})
	mux.Handle("/metrics", metrics.MetricsHandler())

	log.Printf("Catalog service listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.PrometheusMiddleware(mux)))
}
