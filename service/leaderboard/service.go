/*
 * @module service/leaderboard/service
 * @description 排行榜编排服务：刷新周期数据、组合人工评分、生成排行榜与导出
 * @architecture 分层架构 - 业务服务层
 * @stateFlow
 *   刷新: 解析周期 -> 获取刷新锁 -> 拉取数据源 -> 聚合 -> 自动评分 -> 写缓存 -> 发布事件
 *   读取: 读缓存 -> 读取人工评分 -> 组合排名 -> 冠军/领奖台
 * @rules
 *   - 未配置数据源时刷新返回 ErrConfiguration，缓存数据仍可读取
 *   - 新表计算完成前不触碰已有缓存
 *   - 同一周期的刷新串行执行
 * @dependencies go.opentelemetry.io/otel, github.com/google/uuid
 * @refs service/aggregation, service/scoring, service/score_store, service/cache
 */

package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ra-leaderboard-service/service/aggregation"
	"ra-leaderboard-service/service/cache"
	"ra-leaderboard-service/service/datasource"
	"ra-leaderboard-service/service/distributed_lock"
	"ra-leaderboard-service/service/event"
	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/monitoring"
	"ra-leaderboard-service/service/period"
	"ra-leaderboard-service/service/score_store"
	"ra-leaderboard-service/service/scoring"
)

// Dependencies 服务依赖，Fetcher 为空表示未配置数据源
type Dependencies struct {
	Fetcher    datasource.FeedFetcher
	Cache      *cache.MetricsCache
	Scores     score_store.Store
	Resolver   *period.Resolver
	Locker     *distributed_lock.LockExecutor
	Aggregator *aggregation.Aggregator
	Publisher  event.Publisher
	Metrics    *monitoring.MetricsCollector
}

// Service 排行榜服务
type Service struct {
	fetcher    datasource.FeedFetcher
	cache      *cache.MetricsCache
	scores     score_store.Store
	resolver   *period.Resolver
	locker     *distributed_lock.LockExecutor
	aggregator *aggregation.Aggregator
	publisher  event.Publisher
	metrics    *monitoring.MetricsCollector
	tracer     trace.Tracer
}

// RefreshResult 一次刷新的结果
type RefreshResult struct {
	RunID       string        `json:"run_id"`
	Period      PeriodInfo    `json:"period"`
	RACount     int           `json:"ra_count"`
	FeedRows    FeedRowCounts `json:"feed_rows"`
	DurationMS  int64         `json:"duration_ms"`
	RefreshedAt time.Time     `json:"refreshed_at"`
}

// FeedRowCounts 各数据源行数
type FeedRowCounts struct {
	Completion int `json:"completion"`
	Quality    int `json:"quality"`
	Activity   int `json:"activity"`
}

// NewService 创建排行榜服务
func NewService(deps Dependencies) *Service {
	s := &Service{
		fetcher:    deps.Fetcher,
		cache:      deps.Cache,
		scores:     deps.Scores,
		resolver:   deps.Resolver,
		locker:     deps.Locker,
		aggregator: deps.Aggregator,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		tracer:     otel.Tracer("ra-leaderboard"),
	}
	if s.resolver == nil {
		s.resolver = period.NewResolver(nil)
	}
	if s.aggregator == nil {
		s.aggregator = aggregation.NewAggregator(nil)
	}
	if s.locker == nil {
		s.locker = distributed_lock.NewLockExecutor(distributed_lock.NewLocalLock(), 5*time.Minute, 0)
	}
	if s.publisher == nil {
		s.publisher = event.NoopPublisher{}
	}
	return s
}

// RefreshEnabled 是否可以从数据库刷新
func (s *Service) RefreshEnabled() bool {
	return s.fetcher != nil
}

// Resolve 解析周期
func (s *Service) Resolve(month, year int) period.Window {
	return s.resolver.Resolve(month, year)
}

// Current 当前周期
func (s *Service) Current() period.Window {
	return s.resolver.Current()
}

// Refresh 从数据源重新计算周期指标并替换缓存
func (s *Service) Refresh(ctx context.Context, month, year int) (*RefreshResult, error) {
	window := s.resolver.Resolve(month, year)
	runID := uuid.New().String()

	ctx, span := s.tracer.Start(ctx, "Leaderboard.Refresh")
	defer span.End()
	span.SetAttributes(
		attribute.String("period", window.Key()),
		attribute.String("run_id", runID),
	)

	if !s.RefreshEnabled() {
		err := fmt.Errorf("未配置数据源，刷新已禁用: %w", models.ErrConfiguration)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	started := time.Now()
	var result *RefreshResult
	err := s.locker.ExecuteWithLock(ctx, "refresh:"+window.Key(), func(ctx context.Context) error {
		var err error
		result, err = s.refresh(ctx, window)
		return err
	})
	duration := time.Since(started)
	s.metrics.RecordRefresh(duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("排行榜刷新失败", "period", window.Key(), "run_id", runID, "error", err)
		return nil, err
	}

	result.RunID = runID
	result.DurationMS = duration.Milliseconds()
	span.SetAttributes(attribute.Int("ra_count", result.RACount))
	span.SetStatus(codes.Ok, "refresh completed")

	slog.Info("排行榜刷新完成",
		"period", window.Key(),
		"run_id", runID,
		"ra_count", result.RACount,
		"duration", duration)

	event.PublishQuietly(ctx, s.publisher, event.NewEvent(event.TypeLeaderboardRefreshed, window.Key(), map[string]interface{}{
		"run_id":   runID,
		"ra_count": result.RACount,
	}))
	return result, nil
}

// refresh 在锁内执行的刷新流程
func (s *Service) refresh(ctx context.Context, window period.Window) (*RefreshResult, error) {
	feeds, err := s.fetcher.FetchFeeds(ctx, window)
	if err != nil {
		return nil, err
	}

	rows, err := s.aggregator.Aggregate(feeds)
	if err != nil {
		return nil, err
	}
	rows = scoring.ApplyAutomatedScores(rows)

	if err := s.cache.Save(window.Key(), rows); err != nil {
		return nil, err
	}

	counts := FeedRowCounts{
		Completion: feeds.Completion.Len(),
		Quality:    feeds.Quality.Len(),
		Activity:   feeds.Activity.Len(),
	}
	s.metrics.RecordFeedRows(counts.Completion, counts.Quality, counts.Activity, len(rows))

	return &RefreshResult{
		Period:      NewPeriodInfo(window),
		RACount:     len(rows),
		FeedRows:    counts,
		RefreshedAt: time.Now(),
	}, nil
}

// Leaderboard 读取缓存并组合人工评分
func (s *Service) Leaderboard(ctx context.Context, month, year int) (*Leaderboard, error) {
	window := s.resolver.Resolve(month, year)

	ctx, span := s.tracer.Start(ctx, "Leaderboard.Build")
	defer span.End()
	span.SetAttributes(attribute.String("period", window.Key()))

	rows, err := s.scoredRows(ctx, window)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return NewLeaderboard(window, rows, s.RefreshEnabled()), nil
}

// scoredRows 缓存指标 + 人工评分 -> 排名后的行
func (s *Service) scoredRows(ctx context.Context, window period.Window) ([]models.ScoredRow, error) {
	metrics, err := s.cache.Load(window.Key())
	if err != nil {
		return nil, err
	}
	manual, err := s.scores.Period(ctx, window.Key())
	if err != nil {
		return nil, err
	}
	return scoring.Combine(metrics, manual), nil
}

// ManualScores 周期内全部人工评分
func (s *Service) ManualScores(ctx context.Context, month, year int) (map[string]models.ManualScores, error) {
	window := s.resolver.Resolve(month, year)
	return s.scores.Period(ctx, window.Key())
}

// SetManualScores 录入单个RA的人工评分
func (s *Service) SetManualScores(ctx context.Context, month, year int, raName string, scores models.ManualScores) error {
	window := s.resolver.Resolve(month, year)
	err := s.scores.Set(ctx, window.Key(), raName, scores)
	s.metrics.RecordScoreOperation("set", err)
	if err != nil {
		return err
	}

	slog.Info("人工评分已更新", "period", window.Key(), "ra_name", raName)
	event.PublishQuietly(ctx, s.publisher, event.NewEvent(event.TypeScoresUpdated, window.Key(), map[string]interface{}{
		"ra_names": []string{raName},
	}))
	return nil
}

// SetManualScoresBatch 批量录入人工评分，全部校验通过才写入
func (s *Service) SetManualScoresBatch(ctx context.Context, month, year int, scores map[string]models.ManualScores) error {
	window := s.resolver.Resolve(month, year)
	err := s.scores.SetMany(ctx, window.Key(), scores)
	s.metrics.RecordScoreOperation("batch", err)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	slog.Info("人工评分已批量更新", "period", window.Key(), "count", len(scores))
	event.PublishQuietly(ctx, s.publisher, event.NewEvent(event.TypeScoresUpdated, window.Key(), map[string]interface{}{
		"ra_names": names,
	}))
	return nil
}

// ResetPeriod 清空周期内的人工评分
func (s *Service) ResetPeriod(ctx context.Context, month, year int) error {
	window := s.resolver.Resolve(month, year)
	err := s.scores.Reset(ctx, window.Key())
	s.metrics.RecordScoreOperation("reset", err)
	if err != nil {
		return err
	}

	slog.Info("周期人工评分已重置", "period", window.Key())
	event.PublishQuietly(ctx, s.publisher, event.NewEvent(event.TypeScoresReset, window.Key(), nil))
	return nil
}

// ClearCache 删除周期指标缓存，之后需重新刷新才有数据
func (s *Service) ClearCache(ctx context.Context, month, year int) error {
	window := s.resolver.Resolve(month, year)
	if err := s.cache.Invalidate(window.Key()); err != nil {
		return err
	}

	slog.Info("周期指标缓存已删除", "period", window.Key())
	event.PublishQuietly(ctx, s.publisher, event.NewEvent(event.TypeLeaderboardCleared, window.Key(), nil))
	return nil
}

// CachedPeriods 已有缓存的周期
func (s *Service) CachedPeriods() ([]string, error) {
	return s.cache.Periods()
}
