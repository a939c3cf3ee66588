// Package rpcServer exposes the engine over HTTP. Mutations are routed
// through the distribution queue; reads go straight to the data service.
package rpcServer

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aixblock/rewards-engine/internal/config"
	"github.com/aixblock/rewards-engine/pkg/distributionQueue"
	"github.com/aixblock/rewards-engine/pkg/metrics"
	"github.com/aixblock/rewards-engine/pkg/metrics/metricsTypes"
	"github.com/aixblock/rewards-engine/pkg/service/rewardsDataService"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type RpcServerConfig struct {
	HttpPort int
}

type RpcServer struct {
	config       *RpcServerConfig
	queue        *distributionQueue.DistributionQueue
	dataService  *rewardsDataService.RewardsDataService
	metricsSink  *metrics.MetricsSink
	logger       *zap.Logger
	globalConfig *config.Config
	server       *http.Server
}

func NewRpcServer(
	cfg *RpcServerConfig,
	queue *distributionQueue.DistributionQueue,
	rds *rewardsDataService.RewardsDataService,
	ms *metrics.MetricsSink,
	l *zap.Logger,
	gCfg *config.Config,
) *RpcServer {
	return &RpcServer{
		config:       cfg,
		queue:        queue,
		dataService:  rds,
		metricsSink:  ms,
		logger:       l,
		globalConfig: gCfg,
	}
}

// Handler builds the full route tree. It is exported so tests can drive the
// server through httptest without binding a port.
func (s *RpcServer) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(chiMiddleware.Recoverer)
	router.Use(s.metricsMiddleware)

	router.Get("/health", s.handleHealth)

	router.Route("/v1", func(r chi.Router) {
		r.Post("/configs", s.handleInitializeConfig)
		r.Get("/configs/{configId}", s.handleGetConfig)
		r.Post("/configs/{configId}/close", s.handleClosePeriod)
		r.Get("/configs/{configId}/periods", s.handleListPeriods)
		r.Get("/configs/{configId}/shares", s.handleGetShares)
		r.Post("/configs/{configId}/contributions", s.handleRecordContribution)
		r.Post("/configs/{configId}/distributions", s.handleDistributeTokens)
		r.Post("/configs/{configId}/pool/fund", s.handleFundPool)
		r.Get("/configs/{configId}/reserve", s.handleGetReserveStatus)
		r.Post("/configs/{configId}/reserve/deposit", s.handleDepositToReserve)
		r.Post("/configs/{configId}/reserve/transfer", s.handleTransferFromReserve)
		r.Patch("/configs/{configId}/reserve", s.handleUpdateReserveConfig)
		r.Post("/configs/{configId}/contributors/{contributorId}/reset", s.handleResetMonthly)

		r.Post("/contributors", s.handleCreateContributor)
		r.Get("/contributors/{contributorId}", s.handleGetContributor)
		r.Get("/contributors/{contributorId}/contributions", s.handleListContributions)
		r.Get("/contributors", s.handleListContributors)
	})

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

// Start serves HTTP in the background and shuts down gracefully when a value
// is received on quit.
func (s *RpcServer) Start(ctx context.Context, quit chan bool) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HttpPort),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		s.logger.Sugar().Infow("Starting http server", zap.Int("port", s.config.HttpPort))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("Http server failed", zap.Error(err))
		}
	}()

	go func() {
		<-quit
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Sugar().Errorw("Failed to shutdown http server", zap.Error(err))
		}
	}()
	return nil
}

func (s *RpcServer) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		labels := []metricsTypes.MetricsLabel{
			{Name: "method", Value: r.Method},
			{Name: "path", Value: r.URL.Path},
			{Name: "status_code", Value: strconv.Itoa(ww.Status())},
		}
		_ = s.metricsSink.Incr(metricsTypes.Metric_Incr_HttpRequest, labels, 1)
		_ = s.metricsSink.Timing(metricsTypes.Metric_Timing_HttpDuration, time.Since(start), labels)
	})
}
