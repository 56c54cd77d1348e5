package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/period"
)

// stubQuerier 按查询文本返回预置表格
type stubQuerier struct {
	mu      sync.Mutex
	tables  map[string]*models.Table
	fail    map[string]error
	args    [][]interface{}
	blockOn string
}

func (q *stubQuerier) QueryTable(ctx context.Context, query string, args ...interface{}) (*models.Table, error) {
	q.mu.Lock()
	q.args = append(q.args, args)
	q.mu.Unlock()

	if query == q.blockOn {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := q.fail[query]; err != nil {
		return nil, err
	}
	return q.tables[query], nil
}

func testQueries() FeedQueries {
	return FeedQueries{Completion: "completion", Quality: "quality", Activity: "activity"}
}

func testWindow() period.Window {
	return period.NewResolver(func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}).Resolve(1, 2025)
}

func TestFeedSource_FetchFeeds(t *testing.T) {
	completion := models.NewTable("interviewer", "household", "status").AddRow("amina", "HH1", "Complete")
	quality := models.NewTable("interviewer", "household", "interview_date", "issue_description")
	activity := models.NewTable("interviewer", "total_cashflows", "total_answers").AddRow("amina", 3, 80)

	q := &stubQuerier{tables: map[string]*models.Table{
		"completion": completion,
		"quality":    quality,
		"activity":   activity,
	}}
	source := NewFeedSource(q, testQueries(), time.Second)

	feeds, err := source.FetchFeeds(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Same(t, completion, feeds.Completion)
	assert.Same(t, quality, feeds.Quality)
	assert.Same(t, activity, feeds.Activity)

	// 每个查询都带上包含的起止日期
	require.Len(t, q.args, 3)
	for _, args := range q.args {
		assert.Equal(t, []interface{}{"2025-01-01", "2025-01-31"}, args)
	}
}

func TestFeedSource_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("connection reset")
	q := &stubQuerier{
		tables:  map[string]*models.Table{"completion": models.NewTable("interviewer")},
		fail:    map[string]error{"quality": boom},
		blockOn: "activity",
	}
	source := NewFeedSource(q, testQueries(), 0)

	feeds, err := source.FetchFeeds(context.Background(), testWindow())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, feeds.Completion)
}

func TestOpenPostgres_NoDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "", DefaultOptions())
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestNewPostgresQuerier_PingUnreachable(t *testing.T) {
	opts := DefaultOptions()
	opts.ConnTimeout = 2 * time.Second
	q, err := NewPostgresQuerier("postgres://u:p@127.0.0.1:1/db?sslmode=disable", opts)
	require.NoError(t, err)
	defer q.Close()

	assert.ErrorIs(t, q.Ping(context.Background()), models.ErrFetch)
}

func TestLoadQueries(t *testing.T) {
	t.Run("默认查询", func(t *testing.T) {
		q, err := LoadQueries("")
		require.NoError(t, err)
		assert.Equal(t, DefaultQueries(), q)
		assert.Contains(t, q.Completion, "$1")
		assert.Contains(t, q.Completion, "$2")
	})

	t.Run("部分覆盖", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, QualityQueryFile), []byte("  SELECT 1 WHERE $1 <= $2\n"), 0o644))

		q, err := LoadQueries(dir)
		require.NoError(t, err)
		assert.Equal(t, "SELECT 1 WHERE $1 <= $2", q.Quality)
		assert.Equal(t, DefaultQueries().Completion, q.Completion)
		assert.Equal(t, DefaultQueries().Activity, q.Activity)
	})

	t.Run("空文件报错", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ActivityQueryFile), []byte("\n"), 0o644))

		_, err := LoadQueries(dir)
		assert.Error(t, err)
	})
}
