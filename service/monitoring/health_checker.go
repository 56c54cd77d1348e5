/*
 * @module service/monitoring/health_checker
 * @description 依赖健康检查，汇总数据源、评分存储、Redis等依赖的可用性
 * @architecture 分层架构 - 监控层
 * @stateFlow 注册检查项 -> 并发执行(带超时) -> 汇总状态
 * @rules 必需依赖失败为 critical，可选依赖失败为 warning
 * @dependencies context, sync
 * @refs api/controllers/health_controller.go
 */

package monitoring

import (
	"context"
	"sort"
	"sync"
	"time"
)

// 健康状态
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// CheckFunc 依赖检查函数
type CheckFunc func(ctx context.Context) error

type dependencyCheck struct {
	name     string
	required bool
	check    CheckFunc
}

// DependencyHealth 依赖健康状态
type DependencyHealth struct {
	Name         string        `json:"name"`
	Required     bool          `json:"required"`
	Available    bool          `json:"available"`
	ResponseTime time.Duration `json:"response_time"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// HealthStatus 整体健康状态
type HealthStatus struct {
	Overall      string             `json:"overall"`
	Timestamp    time.Time          `json:"timestamp"`
	Dependencies []DependencyHealth `json:"dependencies"`
}

// HealthChecker 健康检查器
type HealthChecker struct {
	mu      sync.RWMutex
	checks  []dependencyCheck
	timeout time.Duration
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthChecker{timeout: timeout}
}

// Register 注册依赖检查
func (h *HealthChecker) Register(name string, required bool, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, dependencyCheck{name: name, required: required, check: check})
}

// Check 执行全部检查
func (h *HealthChecker) Check(ctx context.Context) *HealthStatus {
	h.mu.RLock()
	checks := append([]dependencyCheck(nil), h.checks...)
	h.mu.RUnlock()

	results := make([]DependencyHealth, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c dependencyCheck) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			start := time.Now()
			err := c.check(checkCtx)
			results[i] = DependencyHealth{
				Name:         c.name,
				Required:     c.required,
				Available:    err == nil,
				ResponseTime: time.Since(start),
			}
			if err != nil {
				results[i].ErrorMessage = err.Error()
			}
		}(i, c)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	status := &HealthStatus{Overall: StatusHealthy, Timestamp: time.Now(), Dependencies: results}
	for _, r := range results {
		if r.Available {
			continue
		}
		if r.Required {
			status.Overall = StatusCritical
			break
		}
		status.Overall = StatusWarning
	}
	return status
}
