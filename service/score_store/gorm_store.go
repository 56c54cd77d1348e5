/*
 * @module service/score_store/gorm_store
 * @description 基于数据库的人工评分存储（PostgreSQL，测试使用SQLite）
 * @architecture 仓储模式 - 数据库实现
 * @stateFlow 事务内 upsert / 按周期删除
 * @rules (period, ra_name) 唯一；批量写入在同一事务内完成
 * @dependencies gorm.io/gorm, gorm.io/gorm/clause, service/database
 * @refs store.go, service/models/ra_metrics.go
 */

package score_store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ra-leaderboard-service/service/database"
	"ra-leaderboard-service/service/models"
)

// GormStore 数据库存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建数据库存储并迁移表结构
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Get 获取评分
func (s *GormStore) Get(ctx context.Context, period, raName string) (models.ManualScores, error) {
	var records []models.ManualScoreRecord
	err := s.db.WithContext(ctx).
		Where("period = ? AND ra_name = ?", period, normalizeName(raName)).
		Limit(1).
		Find(&records).Error
	if err != nil {
		return models.ManualScores{}, fmt.Errorf("查询人工评分失败: %w: %w", models.ErrPersistence, err)
	}
	if len(records) == 0 {
		return models.ManualScores{}, nil
	}
	return records[0].Scores(), nil
}

// Period 获取周期内全部评分
func (s *GormStore) Period(ctx context.Context, period string) (map[string]models.ManualScores, error) {
	var records []models.ManualScoreRecord
	if err := s.db.WithContext(ctx).Where("period = ?", period).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询周期人工评分失败: %w: %w", models.ErrPersistence, err)
	}
	out := make(map[string]models.ManualScores, len(records))
	for i := range records {
		out[records[i].RAName] = records[i].Scores()
	}
	return out, nil
}

// Set 新增或更新评分
func (s *GormStore) Set(ctx context.Context, period, raName string, scores models.ManualScores) error {
	return s.SetMany(ctx, period, map[string]models.ManualScores{raName: scores})
}

// SetMany 一次写入多个RA的评分
func (s *GormStore) SetMany(ctx context.Context, period string, scores map[string]models.ManualScores) error {
	for name, sc := range scores {
		if err := validate(name, sc); err != nil {
			return err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, sc := range scores {
			record := &models.ManualScoreRecord{
				Period:   period,
				RAName:   normalizeName(name),
				Journal:  sc.Journal,
				Feedback: sc.Feedback,
				Team:     sc.Team,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "period"}, {Name: "ra_name"}},
				DoUpdates: clause.AssignmentColumns([]string{"journal", "feedback", "team", "updated_at"}),
			}).Create(record).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("保存人工评分失败: %w: %w", models.ErrPersistence, err)
	}
	return nil
}

// Reset 删除周期内全部评分
func (s *GormStore) Reset(ctx context.Context, period string) error {
	err := s.db.WithContext(ctx).Where("period = ?", period).Delete(&models.ManualScoreRecord{}).Error
	if err != nil {
		return fmt.Errorf("重置周期人工评分失败: %w: %w", models.ErrPersistence, err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
