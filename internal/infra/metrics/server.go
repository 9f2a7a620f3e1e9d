package metrics

import (
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Serve exposes the Prometheus registry and the liveness probe on a
// listener of its own, kept apart from the task API so scrapes survive
// API restarts.
func Serve(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", Healthz())

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("telemetry listener starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("telemetry listener failed", zap.Error(err))
		}
	}()

	return srv
}

// Healthz answers liveness probes. The API router mounts the same handler
// so every listener of the service reports health identically.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
}
