/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理，管理接口通过会话Token鉴权
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers, api/middleware
 */

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"ra-leaderboard-service/api/controllers"
	authmw "ra-leaderboard-service/api/middleware"
	"ra-leaderboard-service/service/event"
	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/monitoring"
	"ra-leaderboard-service/service/rate_limiter"
	"ra-leaderboard-service/service/scoring"
	"ra-leaderboard-service/service/session"
)

// Dependencies 路由依赖的服务
type Dependencies struct {
	Leaderboard  *leaderboard.Service
	Sessions     *session.Manager
	Rubric       *scoring.Rubric
	Health       *monitoring.HealthChecker
	Metrics      *monitoring.MetricsCollector
	Hub          *event.Hub
	LoginLimiter rate_limiter.Limiter
	// TrustProxy 为 true 时由 middleware.RealIP 从代理头改写 RemoteAddr
	TrustProxy bool
}

// InitRoute 初始化所有API路由
func InitRoute(r chi.Router, deps Dependencies) {
	// 基础中间件
	if deps.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController(deps.Health)
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// SSE事件订阅
	eventController := controllers.NewEventController(deps.Hub)
	r.Get("/events", eventController.HandleSSE)

	// CSV导出不使用JSON内容类型
	leaderboardController := controllers.NewLeaderboardController(deps.Leaderboard, deps.Rubric)
	r.Get("/export.csv", leaderboardController.ExportCSV)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// 排行榜
		r.Get("/period", leaderboardController.GetPeriod)
		r.Get("/periods", leaderboardController.GetCachedPeriods)
		r.Get("/rubric", leaderboardController.GetRubric)
		r.Get("/leaderboard", leaderboardController.GetLeaderboard)

		// 管理
		r.Route("/admin", func(r chi.Router) {
			adminController := controllers.NewAdminController(deps.Leaderboard, deps.Sessions, deps.Metrics)

			r.Group(func(r chi.Router) {
				if deps.LoginLimiter != nil {
					r.Use(authmw.LoginRateLimit(deps.LoginLimiter))
				}
				r.Post("/login", adminController.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(authmw.NewAdminAuthMiddleware(deps.Sessions).Middleware)
				r.Post("/logout", adminController.Logout)
				r.Post("/refresh", adminController.Refresh)
				r.Get("/scores", adminController.GetScores)
				r.Put("/scores", adminController.SetScores)
				r.Delete("/scores", adminController.ResetScores)
				r.Post("/scores/batch", adminController.SetScoresBatch)
				r.Delete("/cache", adminController.ClearCache)
			})
		})
	})
}
