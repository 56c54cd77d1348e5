/*
 * @module service/init
 * @description 服务初始化模块，按配置组装数据源、评分存储、缓存、锁、会话与事件发布
 * @architecture 分层架构 - 服务层
 * @stateFlow 加载配置 -> Redis(可选) -> 评分存储 -> 数据源(可选) -> 事件发布 -> 排行榜服务 -> 后台任务
 * @rules
 *   - 未配置数据源时服务仍可启动，只是刷新被禁用
 *   - 数据源暂不可达时服务照常启动，刷新请求返回 ErrFetch
 *   - 未配置Redis时锁与会话使用进程内实现
 *   - 任一必需组件初始化失败时返回错误，不提供API服务
 * @dependencies gorm.io/gorm, github.com/go-redis/redis/v8
 * @refs service/leaderboard, service/config
 */

package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"ra-leaderboard-service/service/cache"
	"ra-leaderboard-service/service/config"
	"ra-leaderboard-service/service/database"
	"ra-leaderboard-service/service/datasource"
	"ra-leaderboard-service/service/distributed_lock"
	"ra-leaderboard-service/service/event"
	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/monitoring"
	"ra-leaderboard-service/service/rate_limiter"
	"ra-leaderboard-service/service/score_store"
	"ra-leaderboard-service/service/scoring"
	"ra-leaderboard-service/service/session"
)

var (
	GlobalConfig             *config.Config
	GlobalLeaderboardService *leaderboard.Service
	GlobalSessionManager     *session.Manager
	GlobalEventHub           *event.Hub
	GlobalMetrics            *monitoring.MetricsCollector
	GlobalHealthChecker      *monitoring.HealthChecker
	GlobalRubric             *scoring.Rubric
	GlobalLoginLimiter       rate_limiter.Limiter

	redisClient    *redis.Client
	feedQuerier    *datasource.PostgresQuerier
	scoreStore     score_store.Store
	publisher      event.Publisher
	sessionCleanup *session.CleanupService
)

// Init 按配置初始化全部服务
func Init(ctx context.Context, cfg *config.Config) error {
	GlobalConfig = cfg
	if GlobalMetrics == nil {
		GlobalMetrics = monitoring.NewMetricsCollector(nil)
	}
	GlobalHealthChecker = monitoring.NewHealthChecker(3 * time.Second)

	rubric, err := scoring.LoadRubric()
	if err != nil {
		return err
	}
	GlobalRubric = rubric

	if err := initRedis(ctx, cfg); err != nil {
		return err
	}
	if err := initScoreStore(cfg); err != nil {
		return err
	}

	fetcher, err := initFeedSource(ctx, cfg)
	if err != nil {
		return err
	}

	if err := initPublisher(cfg); err != nil {
		return err
	}

	var lock distributed_lock.DistributedLock = distributed_lock.NewLocalLock()
	if redisClient != nil {
		lock = distributed_lock.NewRedisLock(redisClient, "raotm:lock")
	}
	locker := distributed_lock.NewLockExecutor(lock, cfg.Lock.TTL, cfg.Lock.RetryInterval).
		WithWaitTimeout(cfg.Lock.WaitTimeout)

	GlobalLeaderboardService = leaderboard.NewService(leaderboard.Dependencies{
		Fetcher:   fetcher,
		Cache:     cache.NewMetricsCache(filepath.Join(cfg.DataDir, "cache")),
		Scores:    scoreStore,
		Locker:    locker,
		Publisher: publisher,
		Metrics:   GlobalMetrics,
	})

	if err := initSessions(cfg); err != nil {
		return err
	}

	slog.Info("服务初始化完成",
		"refresh_enabled", GlobalLeaderboardService.RefreshEnabled(),
		"store_driver", cfg.Store.Driver,
		"event_driver", cfg.Event.Driver,
		"redis", cfg.Redis.Enabled())
	return nil
}

// initRedis 配置了地址时连接Redis
func initRedis(ctx context.Context, cfg *config.Config) error {
	if !cfg.Redis.Enabled() {
		return nil
	}
	client, err := database.NewRedisClient(ctx, database.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	redisClient = client
	GlobalHealthChecker.Register("redis", true, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	slog.Info("Redis连接成功", "addr", cfg.Redis.Addr)
	return nil
}

// initScoreStore 初始化人工评分存储
func initScoreStore(cfg *config.Config) error {
	store, db, err := OpenScoreStore(cfg)
	if err != nil {
		return err
	}
	scoreStore = store
	if db != nil {
		GlobalHealthChecker.Register("score_store", true, func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	slog.Info("人工评分存储已初始化", "driver", cfg.Store.Driver)
	return nil
}

// OpenScoreStore 按配置打开人工评分存储，数据库驱动时同时返回 *gorm.DB
func OpenScoreStore(cfg *config.Config) (score_store.Store, *gorm.DB, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		db, err := database.OpenStore(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		store, err := score_store.NewGormStore(db)
		if err != nil {
			return nil, nil, err
		}
		return store, db, nil
	default:
		return score_store.NewFileStore(cfg.Store.File), nil, nil
	}
}

// initFeedSource 配置了DSN时连接访谈数据库，数据库暂不可达不影响启动
func initFeedSource(ctx context.Context, cfg *config.Config) (datasource.FeedFetcher, error) {
	if !cfg.RefreshEnabled() {
		slog.Warn("未配置访谈数据库，刷新已禁用，仅提供缓存数据")
		return nil, nil
	}

	fetcher, querier, err := OpenFeedSource(cfg)
	if err != nil {
		slog.Warn("访谈数据库配置无效，刷新已禁用", "error", err)
		return nil, nil
	}
	feedQuerier = querier
	// 数据库不可用时仍可展示缓存，不影响整体状态
	GlobalHealthChecker.Register("source_db", false, querier.Ping)

	if err := querier.Ping(ctx); err != nil {
		slog.Warn("访谈数据库暂不可达，刷新时将重新连接", "error", err)
	} else {
		slog.Info("访谈数据库连接成功")
	}
	return fetcher, nil
}

// OpenFeedSource 按配置创建访谈数据源，不测试连接
func OpenFeedSource(cfg *config.Config) (datasource.FeedFetcher, *datasource.PostgresQuerier, error) {
	queries, err := datasource.LoadQueries(cfg.Source.QueryDir)
	if err != nil {
		return nil, nil, err
	}

	opts := datasource.DefaultOptions()
	if cfg.Source.MaxOpenConns > 0 {
		opts.MaxOpenConns = cfg.Source.MaxOpenConns
	}
	if cfg.Source.ConnTimeout > 0 {
		opts.ConnTimeout = cfg.Source.ConnTimeout
	}
	if cfg.Source.QueryTimeout > 0 {
		opts.QueryTimeout = cfg.Source.QueryTimeout
	}

	querier, err := datasource.NewPostgresQuerier(cfg.Source.DSN, opts)
	if err != nil {
		return nil, nil, err
	}
	return datasource.NewFeedSource(querier, queries, opts.QueryTimeout), querier, nil
}

// initPublisher 初始化事件发布，SSE推送始终启用
func initPublisher(cfg *config.Config) error {
	GlobalEventHub = event.NewHub(16)

	var external event.Publisher
	switch cfg.Event.Driver {
	case config.EventDriverKafka:
		external = event.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	case config.EventDriverMQTT:
		p, err := event.NewMQTTPublisher(event.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
			QoS:      byte(cfg.MQTT.QoS),
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			return err
		}
		external = p
	}

	publisher = event.NewMultiPublisher(GlobalEventHub, external)
	return nil
}

// initSessions 初始化管理员会话
func initSessions(cfg *config.Config) error {
	auth, err := session.NewAuthenticator(cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("初始化管理员认证失败: %w", err)
	}

	var store session.Store = session.NewMemoryStore()
	if redisClient != nil {
		store = session.NewRedisStore(redisClient, "raotm:session")
	}
	GlobalSessionManager = session.NewManager(store, auth, cfg.Admin.SessionTTL)

	rule := rate_limiter.Rule{Rate: cfg.Admin.LoginRate, Burst: cfg.Admin.LoginBurst}
	if redisClient != nil {
		GlobalLoginLimiter = rate_limiter.NewRedisRateLimiter(redisClient, "raotm:ratelimit", rule)
	} else {
		GlobalLoginLimiter = rate_limiter.NewLocalRateLimiter(rule)
	}

	sessionCleanup = session.NewCleanupService(GlobalSessionManager, GlobalMetrics)
	if err := sessionCleanup.Start(cfg.Admin.SweepSchedule); err != nil {
		return err
	}
	return nil
}

// Shutdown 停止后台任务并释放连接
func Shutdown() {
	if sessionCleanup != nil {
		sessionCleanup.Stop()
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			slog.Warn("关闭事件发布失败", "error", err)
		}
	}
	if scoreStore != nil {
		if err := scoreStore.Close(); err != nil {
			slog.Warn("关闭评分存储失败", "error", err)
		}
	}
	if feedQuerier != nil {
		feedQuerier.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	slog.Info("服务已停止")
}
