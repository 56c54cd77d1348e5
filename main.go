package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ra-leaderboard-service/api"
	_ "ra-leaderboard-service/docs"
	"ra-leaderboard-service/logger"
	"ra-leaderboard-service/service"
	"ra-leaderboard-service/service/config"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title RA月度排行榜服务 API
// @version 1.0
// @description 汇总访谈数据生成RA月度排行榜，支持人工评分、刷新与CSV导出
// @BasePath /swagger/ra-leaderboard-service
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Init(ctx, cfg); err != nil {
		slog.Error("服务初始化失败", "error", err)
		os.Exit(1)
	}
	defer service.Shutdown()

	deps := api.Dependencies{
		Leaderboard:  service.GlobalLeaderboardService,
		Sessions:     service.GlobalSessionManager,
		Rubric:       service.GlobalRubric,
		Health:       service.GlobalHealthChecker,
		Metrics:      service.GlobalMetrics,
		Hub:          service.GlobalEventHub,
		LoginLimiter: service.GlobalLoginLimiter,
		TrustProxy:   cfg.Server.TrustProxy,
	}

	mux := chi.NewRouter()

	// 如果有BASE_CONTEXT，则在该路径下挂载所有路由
	if cfg.Server.BaseContext != "" {
		mux.Route(cfg.Server.BaseContext, func(r chi.Router) {
			api.InitRoute(r, deps)
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger*", httpSwagger.WrapHandler)
		})
	} else {
		api.InitRoute(mux, deps)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger*", httpSwagger.WrapHandler)
	}

	s := daprd.NewServiceWithMux(":"+strconv.Itoa(cfg.Server.Port), mux)

	go func() {
		<-ctx.Done()
		slog.Info("收到退出信号，正在停止服务")
		if err := s.GracefulStop(); err != nil {
			slog.Warn("停止HTTP服务失败", "error", err)
		}
	}()

	slog.Info("服务启动", "port", cfg.Server.Port, "base_context", cfg.Server.BaseContext)
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		slog.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
}
