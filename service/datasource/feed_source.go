/*
 * @module service/datasource/feed_source
 * @description PostgreSQL数据源，按报告周期并发拉取三个数据源并转换为表格
 * @architecture 连接池模式 - 常驻 *sql.DB，三个查询通过 errgroup 并发执行
 * @stateFlow Open -> Ping -> FetchFeeds(周期) -> 并发查询 -> 组装 Feeds -> Close
 * @rules
 *   - 任一查询失败即取消其余查询，整体返回 ErrFetch
 *   - 结果中的 []byte 统一转换为 string
 * @dependencies database/sql, github.com/lib/pq, golang.org/x/sync/errgroup
 * @refs queries.go, service/aggregation
 */

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // PostgreSQL驱动
	"golang.org/x/sync/errgroup"

	"ra-leaderboard-service/service/aggregation"
	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/period"
)

// FeedFetcher 按周期获取数据源
type FeedFetcher interface {
	FetchFeeds(ctx context.Context, window period.Window) (aggregation.Feeds, error)
}

// TableQuerier 执行查询并返回表格
type TableQuerier interface {
	QueryTable(ctx context.Context, query string, args ...interface{}) (*models.Table, error)
}

// Options 连接池参数
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
	QueryTimeout time.Duration
}

// DefaultOptions 默认连接池参数
func DefaultOptions() Options {
	return Options{
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		ConnTimeout:  10 * time.Second,
		QueryTimeout: 2 * time.Minute,
	}
}

// PostgresQuerier 基于 database/sql 的查询器
type PostgresQuerier struct {
	db          *sql.DB
	connTimeout time.Duration
}

// NewPostgresQuerier 创建连接池，不测试连接
func NewPostgresQuerier(dsn string, opts Options) (*PostgresQuerier, error) {
	if dsn == "" {
		return nil, fmt.Errorf("未配置数据源连接: %w", models.ErrConfiguration)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("创建数据库连接失败: %w: %w", models.ErrConfiguration, err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	return &PostgresQuerier{db: db, connTimeout: opts.ConnTimeout}, nil
}

// OpenPostgres 创建连接池并测试连接
func OpenPostgres(ctx context.Context, dsn string, opts Options) (*PostgresQuerier, error) {
	q, err := NewPostgresQuerier(dsn, opts)
	if err != nil {
		return nil, err
	}
	if err := q.Ping(ctx); err != nil {
		q.Close()
		return nil, err
	}
	return q, nil
}

// QueryTable 执行查询，保留列顺序
func (q *PostgresQuerier) QueryTable(ctx context.Context, query string, args ...interface{}) (*models.Table, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("执行查询失败: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("获取列信息失败: %w", err)
	}

	table := models.NewTable(columns...)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("扫描行数据失败: %w", err)
		}

		for i, val := range values {
			if b, ok := val.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.AddRow(values...)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取数据时发生错误: %w", err)
	}
	return table, nil
}

// Ping 测试连接，失败时返回 ErrFetch
func (q *PostgresQuerier) Ping(ctx context.Context) error {
	if q.connTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.connTimeout)
		defer cancel()
	}
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("数据库连接测试失败: %w: %w", models.ErrFetch, err)
	}
	return nil
}

// Close 关闭连接池
func (q *PostgresQuerier) Close() error {
	if q.db == nil {
		return nil
	}
	if err := q.db.Close(); err != nil {
		return fmt.Errorf("关闭数据库连接失败: %w", err)
	}
	return nil
}

// FeedSource 三个数据源的并发拉取
type FeedSource struct {
	querier      TableQuerier
	queries      FeedQueries
	queryTimeout time.Duration
}

// NewFeedSource 创建数据源
func NewFeedSource(querier TableQuerier, queries FeedQueries, queryTimeout time.Duration) *FeedSource {
	return &FeedSource{querier: querier, queries: queries, queryTimeout: queryTimeout}
}

// FetchFeeds 并发执行三个查询
func (s *FeedSource) FetchFeeds(ctx context.Context, window period.Window) (aggregation.Feeds, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	start, end := window.StartDate(), window.EndDate()
	started := time.Now()

	var feeds aggregation.Feeds
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(name, query string, dst **models.Table) {
		g.Go(func() error {
			table, err := s.querier.QueryTable(gctx, query, start, end)
			if err != nil {
				return fmt.Errorf("%s 查询失败: %w: %w", name, models.ErrFetch, err)
			}
			*dst = table
			return nil
		})
	}
	fetch("completion", s.queries.Completion, &feeds.Completion)
	fetch("quality", s.queries.Quality, &feeds.Quality)
	fetch("activity", s.queries.Activity, &feeds.Activity)

	if err := g.Wait(); err != nil {
		slog.Error("数据源拉取失败", "period", window.Key(), "error", err)
		return aggregation.Feeds{}, err
	}

	slog.Info("数据源拉取完成",
		"period", window.Key(),
		"start", start,
		"end", end,
		"completion_rows", feeds.Completion.Len(),
		"quality_rows", feeds.Quality.Len(),
		"activity_rows", feeds.Activity.Len(),
		"duration", time.Since(started))
	return feeds, nil
}
