package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/bookorders/internal/health"
	"github.com/vladislavdragonenkov/bookorders/internal/metrics"
	httptransport "github.com/vladislavdragonenkov/bookorders/internal/transport/http"
)

const defaultShutdownTimeout = 5 * time.Second

// Run поднимает HTTP API заказов, сервер метрик и gRPC health и блокируется до
// отмены ctx или падения одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	apiListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http api: %w", err)
	}
	apiHandler := httptransport.NewRouter(deps.service, logger.WithField("component", "http-api"), metrics.NewHTTPMetrics())
	apiSrv := &http.Server{Handler: apiHandler, ReadHeaderTimeout: 5 * time.Second}

	metricsListener, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		_ = apiListener.Close()
		return fmt.Errorf("listen metrics: %w", err)
	}
	metricsSrv := &http.Server{Handler: newMetricsMux(deps.health), ReadHeaderTimeout: 5 * time.Second}

	var (
		grpcServer   *grpc.Server
		grpcHealth   *health.Server
		grpcListener net.Listener
	)
	if cfg.GRPCAddr != "" {
		grpcListener, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			_ = apiListener.Close()
			_ = metricsListener.Close()
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcServer, grpcHealth = newGRPCServer(logger)
	}

	// Диспетчер событий живёт дольше серверов: он дообрабатывает очередь после их остановки.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		if deps.events.dispatcher != nil {
			deps.events.dispatcher.Run(dispatchCtx)
		}
	}()

	errCh := make(chan error, 3)
	go func() {
		logger.Infof("HTTP API слушает %s", apiListener.Addr())
		errCh <- serveHTTP(apiSrv, apiListener)
	}()
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", metricsListener.Addr())
		logger.Infof("health checks: %s/healthz, /livez, /readyz", metricsListener.Addr())
		errCh <- serveHTTP(metricsSrv, metricsListener)
	}()
	if grpcServer != nil {
		go func() {
			logger.Infof("gRPC health сервер слушает %s", grpcListener.Addr())
			errCh <- grpcServer.Serve(grpcListener)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		runErr = ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			runErr = err
		}
	}

	if grpcHealth != nil {
		grpcHealth.Shutdown()
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	shutdownHTTP(apiSrv, shutdownTimeout, logger)
	shutdownHTTP(metricsSrv, shutdownTimeout, logger)
	stopGRPC(grpcServer, shutdownTimeout, logger)

	stopDispatch()
	<-dispatchDone

	return runErr
}

// newMetricsMux отдаёт служебные эндпоинты: метрики и health probes.
func newMetricsMux(healthHandler *healthcheck.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

// newGRPCServer создаёт gRPC-сервер со стандартным grpc.health.v1 и reflection.
func newGRPCServer(logger *log.Entry) (*grpc.Server, *health.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	grpcMetrics.InitializeMetrics(grpcServer)
	reflection.Register(grpcServer)

	return grpcServer, healthServer
}

func serveHTTP(srv *http.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

// stopGRPC ждёт GracefulStop не дольше timeout, затем останавливает принудительно.
func stopGRPC(srv *grpc.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	stoppedCh := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(timeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		srv.Stop()
	}
}
