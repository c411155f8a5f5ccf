package main

import (
	"net/http"

	"causemap/pkg/handlers"
	"causemap/pkg/lifecycle"
	"causemap/pkg/module"
)

// registerHealth mounts liveness and readiness probes on the native mux.
// Readiness follows the lifecycle coordinator: the server reports ready only
// after every startup hook has completed.
func registerHealth(router *module.Router, lc lifecycle.ReadinessChecker) {
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable,
				map[string]string{"status": "starting"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}
