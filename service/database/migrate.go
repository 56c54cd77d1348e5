/*
 * @module service/database/migrate
 * @description 数据库连接与迁移，负责人工评分库的打开、表结构迁移以及Redis客户端创建
 * @architecture 数据访问层 - 连接与迁移管理
 * @stateFlow 应用启动时打开存储库 -> 执行迁移 -> 提供给评分存储使用
 * @rules 确保数据库结构与模型定义保持一致；生产使用PostgreSQL，测试使用SQLite
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite, github.com/go-redis/redis/v8
 * @refs service/score_store/gorm_store.go, service/init.go
 */

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ra-leaderboard-service/service/models"
)

// OpenStore 按驱动打开评分存储库
func OpenStore(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s: %w", driver, models.ErrConfiguration)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w: %w", models.ErrPersistence, err)
	}

	if driver == "sqlite" {
		// SQLite 单写连接
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	slog.Info("评分存储库连接成功", "driver", driver)
	return db, nil
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ManualScoreRecord{}); err != nil {
		return fmt.Errorf("人工评分表迁移失败: %w: %w", models.ErrPersistence, err)
	}
	return nil
}

// RedisOptions Redis连接参数
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient 创建Redis客户端并测试连接
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	slog.Info("Redis连接成功", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}
