package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/period"
)

var validate = validator.New()

// PeriodRequest 统计周期参数
type PeriodRequest struct {
	Month int `json:"month" validate:"min=1,max=12" example:"1"`
	Year  int `json:"year" validate:"min=2000,max=2100" example:"2025"`
}

// ScoresRequest 单个RA人工评分
type ScoresRequest struct {
	PeriodRequest
	RAName   string `json:"ra_name" validate:"required" example:"amina"`
	Journal  int    `json:"journal" validate:"min=0,max=5" example:"4"`
	Feedback int    `json:"feedback" validate:"min=0,max=5" example:"3"`
	Team     int    `json:"team" validate:"min=0,max=5" example:"5"`
}

// Scores 评分三元组
func (r ScoresRequest) Scores() models.ManualScores {
	return models.ManualScores{Journal: r.Journal, Feedback: r.Feedback, Team: r.Team}
}

// BatchScoresRequest 批量人工评分
type BatchScoresRequest struct {
	PeriodRequest
	Scores map[string]models.ManualScores `json:"scores" validate:"required,min=1,dive,keys,required,endkeys"`
}

// LoginRequest 管理员登录
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// validateRequest 结构体校验，返回可读的错误
func validateRequest(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(errs))
			for _, fe := range errs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("参数校验失败: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// parsePeriod 解析 month/year 查询参数，缺省时使用当前周期
func parsePeriod(r *http.Request, current period.Window) (PeriodRequest, error) {
	req := PeriodRequest{Month: current.Month, Year: current.Year}
	q := r.URL.Query()

	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("month 必须为整数")
		}
		req.Month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("year 必须为整数")
		}
		req.Year = y
	}
	return req, validateRequest(req)
}

// withDefaults 请求体未给出周期时使用当前周期
func (p PeriodRequest) withDefaults(current period.Window) PeriodRequest {
	if p.Month == 0 && p.Year == 0 {
		return PeriodRequest{Month: current.Month, Year: current.Year}
	}
	return p
}
