package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type PrometheusServerConfig struct {
	Port int
}

// PrometheusServer exposes the default registry over HTTP for scraping.
type PrometheusServer struct {
	config *PrometheusServerConfig
	logger *zap.Logger
	server *http.Server
}

func NewPrometheusServer(cfg *PrometheusServerConfig, l *zap.Logger) *PrometheusServer {
	return &PrometheusServer{
		config: cfg,
		logger: l,
	}
}

// Start serves the /metrics endpoint in the background and shuts the server
// down when a value is received on quit.
func (ps *PrometheusServer) Start(quit chan bool) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	ps.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", ps.config.Port),
		Handler: mux,
	}

	go func() {
		ps.logger.Sugar().Infow("Starting prometheus server", zap.Int("port", ps.config.Port))
		if err := ps.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ps.logger.Sugar().Errorw("Prometheus server failed", zap.Error(err))
		}
	}()

	go func() {
		<-quit
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := ps.server.Shutdown(ctx); err != nil {
			ps.logger.Sugar().Errorw("Failed to shutdown prometheus server", zap.Error(err))
		}
	}()
	return nil
}
