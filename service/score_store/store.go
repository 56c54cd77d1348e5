/*
 * @module service/score_store/store
 * @description 人工评分存储契约，按周期与RA名存取 {journal, feedback, team} 三元组
 * @architecture 仓储模式 - 文件与数据库两种实现
 * @stateFlow Get/Period 读取 -> Set 读-合并-写 -> Reset 删除整个周期
 * @rules
 *   - 未记录的 (周期, RA) 返回全0三元组
 *   - 新增RA时不能丢失已有RA的评分
 *   - RA名统一按小写存储
 * @dependencies service/models
 * @refs file_store.go, gorm_store.go
 */

package score_store

import (
	"context"
	"fmt"
	"strings"

	"ra-leaderboard-service/service/models"
)

// Store 人工评分存储
type Store interface {
	// Get 获取评分，不存在返回全0
	Get(ctx context.Context, period, raName string) (models.ManualScores, error)
	// Period 获取周期内全部评分
	Period(ctx context.Context, period string) (map[string]models.ManualScores, error)
	// Set 新增或更新评分
	Set(ctx context.Context, period, raName string, scores models.ManualScores) error
	// SetMany 一次写入多个RA的评分
	SetMany(ctx context.Context, period string, scores map[string]models.ManualScores) error
	// Reset 删除周期内全部评分
	Reset(ctx context.Context, period string) error
	// Close 释放资源
	Close() error
}

// normalizeName RA名存储格式
func normalizeName(raName string) string {
	return strings.ToLower(strings.TrimSpace(raName))
}

// validate 校验三元组
func validate(raName string, scores models.ManualScores) error {
	if normalizeName(raName) == "" {
		return fmt.Errorf("RA名称不能为空")
	}
	if !scores.Valid() {
		return fmt.Errorf("RA %s: %w", raName, models.ErrInvalidScore)
	}
	return nil
}
