package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterHealthEndpoints registers liveness endpoints on router.
func RegisterHealthEndpoints(router *mux.Router) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	router.Handle("/health", handler)
	router.Handle("/healthz", handler)
}
