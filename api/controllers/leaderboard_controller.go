/*
 * @module api/controllers/leaderboard_controller
 * @description 排行榜公共接口：周期、评分细则、排行榜与CSV导出
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 解析周期参数 -> 排行榜服务 -> 统一响应
 * @rules 未指定 month/year 时使用当前周期；缓存缺失返回404
 * @dependencies github.com/go-chi/render, service/leaderboard, service/scoring
 * @refs api/routes.go
 */

package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/scoring"
)

// LeaderboardController 排行榜控制器
type LeaderboardController struct {
	service *leaderboard.Service
	rubric  *scoring.Rubric
}

// NewLeaderboardController 创建排行榜控制器
func NewLeaderboardController(service *leaderboard.Service, rubric *scoring.Rubric) *LeaderboardController {
	return &LeaderboardController{service: service, rubric: rubric}
}

// GetPeriod 解析统计周期
// @Summary 解析统计周期
// @Description 返回 month/year 对应的起止日期，当前月份截止到今天
// @Tags 排行榜
// @Produce json
// @Param month query int false "月份 1-12"
// @Param year query int false "年份"
// @Success 200 {object} APIResponse{data=leaderboard.PeriodInfo}
// @Failure 400 {object} APIResponse
// @Router /period [get]
func (c *LeaderboardController) GetPeriod(w http.ResponseWriter, r *http.Request) {
	req, err := parsePeriod(r, c.service.Current())
	if err != nil {
		render.Render(w, r, BadRequestResponse("周期参数错误", err))
		return
	}

	window := c.service.Resolve(req.Month, req.Year)
	render.Render(w, r, SuccessResponse("获取周期成功", leaderboard.NewPeriodInfo(window)))
}

// GetCachedPeriods 已缓存的周期
// @Summary 已缓存的周期
// @Description 返回已有排行榜缓存的周期键，最新的在前
// @Tags 排行榜
// @Produce json
// @Success 200 {object} APIResponse{data=[]string}
// @Router /periods [get]
func (c *LeaderboardController) GetCachedPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := c.service.CachedPeriods()
	if err != nil {
		render.Render(w, r, InternalErrorResponse("获取缓存周期失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取缓存周期成功", periods))
}

// GetRubric 评分细则
// @Summary 评分细则
// @Description 六项评分的说明与各等级描述
// @Tags 排行榜
// @Produce json
// @Success 200 {object} APIResponse{data=scoring.Rubric}
// @Router /rubric [get]
func (c *LeaderboardController) GetRubric(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, SuccessResponse("获取评分细则成功", c.rubric))
}

// GetLeaderboard 排行榜
// @Summary 排行榜
// @Description 组合自动评分与人工评分后的排名表，包含冠军与领奖台
// @Tags 排行榜
// @Produce json
// @Param month query int false "月份 1-12"
// @Param year query int false "年份"
// @Success 200 {object} APIResponse{data=leaderboard.Leaderboard}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	req, err := parsePeriod(r, c.service.Current())
	if err != nil {
		render.Render(w, r, BadRequestResponse("周期参数错误", err))
		return
	}

	lb, err := c.service.Leaderboard(r.Context(), req.Month, req.Year)
	if err != nil {
		render.Render(w, r, ServiceErrorResponse("获取排行榜失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取排行榜成功", lb))
}

// ExportCSV 导出CSV
// @Summary 导出排行榜CSV
// @Description 每个RA一行，按名次排序
// @Tags 排行榜
// @Produce text/csv
// @Param month query int false "月份 1-12"
// @Param year query int false "年份"
// @Success 200 {string} string "CSV文件"
// @Failure 404 {object} APIResponse
// @Router /export.csv [get]
func (c *LeaderboardController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	req, err := parsePeriod(r, c.service.Current())
	if err != nil {
		render.Render(w, r, BadRequestResponse("周期参数错误", err))
		return
	}

	// 先写入缓冲区，出错时仍可返回JSON错误
	var buf bytes.Buffer
	if err := c.service.ExportCSV(r.Context(), req.Month, req.Year, &buf); err != nil {
		render.Render(w, r, ServiceErrorResponse("导出排行榜失败", err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", leaderboard.ExportFilename(req.Month, req.Year)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
