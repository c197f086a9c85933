package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/recipemap/internal/ctxlog"
)

// healthHandler reports OK once a snapshot has been published.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)

	snap := app.session.Current()
	if snap == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "BUILDING")
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK %s nodes=%d edges=%d\n", snap.BuildID(), snap.NodeCount(), snap.EdgeCount())
}

func (app *App) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// healthCheckServer initializes and runs the health check HTTP server.
func (app *App) healthCheckServer() {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Configuring health check server.")
	if app.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled")
		return
	}

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	app.httpServer = &http.Server{
		Addr:              addr,
		Handler:           app.healthMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
}

func (app *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(app.ctx)

	if app.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(app.ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}

	logger.Debug("Health check server shut down gracefully.")
	return nil
}
