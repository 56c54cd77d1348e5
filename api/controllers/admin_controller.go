/*
 * @module api/controllers/admin_controller
 * @description 管理员接口：登录、注销、刷新周期数据、人工评分维护、删除周期缓存
 * @architecture MVC架构 - 控制器层
 * @stateFlow 登录 -> 会话Token -> 受保护接口（刷新/评分/重置/删缓存）
 * @rules
 *   - 除登录外均需有效会话（由 AdminAuthMiddleware 校验）
 *   - 批量评分全部通过校验才写入
 * @dependencies github.com/go-chi/render, service/leaderboard, service/session
 * @refs api/middleware/admin_auth.go, api/routes.go
 */

package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"ra-leaderboard-service/api/middleware"
	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/monitoring"
	"ra-leaderboard-service/service/session"
)

// AdminController 管理员控制器
type AdminController struct {
	service  *leaderboard.Service
	sessions *session.Manager
	metrics  *monitoring.MetricsCollector
}

// NewAdminController 创建管理员控制器
func NewAdminController(service *leaderboard.Service, sessions *session.Manager, metrics *monitoring.MetricsCollector) *AdminController {
	return &AdminController{service: service, sessions: sessions, metrics: metrics}
}

// LoginResponse 登录结果
type LoginResponse struct {
	Token     string    `json:"token" example:"0b6c3f5e-..."`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login 管理员登录
// @Summary 管理员登录
// @Description 使用共享密码登录，返回会话Token
// @Tags 管理
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录请求"
// @Success 200 {object} APIResponse{data=LoginResponse}
// @Failure 401 {object} APIResponse
// @Failure 429 {object} APIResponse
// @Router /admin/login [post]
func (c *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if err := validateRequest(req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数错误", err))
		return
	}

	sess, err := c.sessions.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			c.metrics.RecordLogin("failure")
			render.Render(w, r, UnauthorizedResponse("密码错误", nil))
			return
		}
		c.metrics.RecordLogin("error")
		render.Render(w, r, InternalErrorResponse("登录失败", err))
		return
	}

	c.metrics.RecordLogin("success")
	render.Render(w, r, SuccessResponse("登录成功", LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt}))
}

// Logout 注销
// @Summary 管理员注销
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse
// @Router /admin/logout [post]
func (c *AdminController) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.GetTokenFromContext(r.Context())
	if err := c.sessions.Logout(r.Context(), token); err != nil {
		render.Render(w, r, InternalErrorResponse("注销失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("注销成功", nil))
}

// Refresh 刷新周期数据
// @Summary 刷新周期数据
// @Description 从访谈数据库重新计算指标并替换缓存；未配置数据源时返回503
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PeriodRequest false "周期，缺省为当前月份"
// @Success 200 {object} APIResponse{data=leaderboard.RefreshResult}
// @Failure 409 {object} APIResponse
// @Failure 502 {object} APIResponse
// @Failure 503 {object} APIResponse
// @Router /admin/refresh [post]
func (c *AdminController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Render(w, r, BadRequestResponse("请求参数格式错误", err))
			return
		}
	}
	req = req.withDefaults(c.service.Current())
	if err := validateRequest(req); err != nil {
		render.Render(w, r, BadRequestResponse("周期参数错误", err))
		return
	}

	result, err := c.service.Refresh(r.Context(), req.Month, req.Year)
	if err != nil {
		render.Render(w, r, ServiceErrorResponse("刷新失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("刷新成功", result))
}

// GetScores 周期人工评分
// @Summary 周期人工评分
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param month query int false "月份 1-12"
// @Param year query int false "年份"
// @Success 200 {object} APIResponse{data=map[string]models.ManualScores}
// @Router /admin/scores [get]
func (c *AdminController) GetScores(w http.ResponseWriter, r *http.Request) {
	req, err := parsePeriod(r, c.service.Current())
	if err != nil {
		render.Render(w, r, BadRequestResponse("周期参数错误", err))
		return
	}

	scores, err := c.service.ManualScores(r.Context(), req.Month, req.Year)
	if err != nil {
		render.Render(w, r, ServiceErrorResponse("获取人工评分失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取人工评分成功", scores))
}

// SetScores 录入单个RA人工评分
// @Summary 录入人工评分
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScoresRequest true "评分"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /admin/scores [put]
func (c *AdminController) SetScores(w http.ResponseWriter, r *http.Request) {
	var req ScoresRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	req.PeriodRequest = req.PeriodRequest.withDefaults(c.service.Current())
	if err := validateRequest(req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数错误", err))
		return
	}

	if err := c.service.SetManualScores(r.Context(), req.Month, req.Year, req.RAName, req.Scores()); err != nil {
		render.Render(w, r, ServiceErrorResponse("保存人工评分失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("保存人工评分成功", nil))
}

// SetScoresBatch 批量录入人工评分
// @Summary 批量录入人工评分
// @Description 任一评分不合法时全部不写入
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BatchScoresRequest true "批量评分"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /admin/scores/batch [post]
func (c *AdminController) SetScoresBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchScoresRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	req.PeriodRequest = req.PeriodRequest.withDefaults(c.service.Current())
	if err := validateRequest(req); err != nil {
		render.Render(w, r, BadRequestResponse("请求参数错误", err))
		return
	}

	if err := c.service.SetManualScoresBatch(r.Context(), req.Month, req.Year, req.Scores); err != nil {
		render.Render(w, r, ServiceErrorResponse("批量保存人工评分失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("批量保存人工评分成功", map[string]interface{}{
		"count": len(req.Scores),
	}))
}

// ResetScores 重置周期人工评分
// @Summary 重置周期人工评分
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param month query int false "月份 1-12"
// @Param year query int false "年份"
// @Success 200 {object} APIResponse
// @Router /admin/scores [delete]
func (c *AdminController) ResetScores(w http.ResponseWriter, r *http.Request) {
	req, err := parsePeriod(r, c.service.Current())
	if err != nil {
		render.Render(w, r, BadRequestResponse("周期参数错误", err))
		return
	}

	if err := c.service.ResetPeriod(r.Context(), req.Month, req.Year); err != nil {
		render.Render(w, r, ServiceErrorResponse("重置人工评分失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("重置人工评分成功", nil))
}

// ClearCache 删除周期指标缓存
// @Summary 删除周期缓存
// @Description 删除后该周期排行榜返回404，直到重新刷新；人工评分不受影响
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param month query int false "月份 1-12"
// @Param year query int false "年份"
// @Success 200 {object} APIResponse
// @Router /admin/cache [delete]
func (c *AdminController) ClearCache(w http.ResponseWriter, r *http.Request) {
	req, err := parsePeriod(r, c.service.Current())
	if err != nil {
		render.Render(w, r, BadRequestResponse("周期参数错误", err))
		return
	}

	if err := c.service.ClearCache(r.Context(), req.Month, req.Year); err != nil {
		render.Render(w, r, ServiceErrorResponse("删除周期缓存失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("删除周期缓存成功", nil))
}
