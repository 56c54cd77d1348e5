package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"ra-leaderboard-service/service/distributed_lock"
	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/session"
)

// APIResponse 统一API响应结构，status 为0表示成功，否则为HTTP状态码
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`

	HTTPStatusCode int `json:"-"`
}

// Render 实现 render.Renderer，写入HTTP状态码
func (resp *APIResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if resp.HTTPStatusCode != 0 {
		render.Status(r, resp.HTTPStatusCode)
	}
	return nil
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data, HTTPStatusCode: http.StatusOK}
}

// ErrorResponse 错误响应
func ErrorResponse(code int, msg string, err error) *APIResponse {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &APIResponse{Status: code, Msg: msg, HTTPStatusCode: code}
}

// BadRequestResponse 400
func BadRequestResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusBadRequest, msg, err)
}

// UnauthorizedResponse 401
func UnauthorizedResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusUnauthorized, msg, err)
}

// NotFoundResponse 404
func NotFoundResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusNotFound, msg, err)
}

// InternalErrorResponse 500
func InternalErrorResponse(msg string, err error) *APIResponse {
	return ErrorResponse(http.StatusInternalServerError, msg, err)
}

// ServiceErrorResponse 按错误类别选择状态码
func ServiceErrorResponse(msg string, err error) *APIResponse {
	return ErrorResponse(StatusCodeFor(err), msg, err)
}

// StatusCodeFor 业务错误 -> HTTP状态码
func StatusCodeFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, distributed_lock.ErrLockBusy):
		return http.StatusConflict
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrFetch), errors.Is(err, models.ErrSchemaMismatch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
