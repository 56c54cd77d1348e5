/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify, time
 * @refs service/models, service/aggregation, service/event
 */

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ra-leaderboard-service/service/aggregation"
	"ra-leaderboard-service/service/event"
	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/period"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 内存库每个连接独立，限制为单连接
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.ManualScoreRecord{}); err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tdb.DB.Exec("DELETE FROM manual_scores")
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// ManualScoreOption 人工评分选项函数类型
type ManualScoreOption func(*models.ManualScoreRecord)

// WithScores 设置三项评分
func WithScores(journal, feedback, team int) ManualScoreOption {
	return func(r *models.ManualScoreRecord) {
		r.Journal, r.Feedback, r.Team = journal, feedback, team
	}
}

// CreateManualScore 创建测试人工评分记录
func (f *TestDataFactory) CreateManualScore(periodKey, raName string, opts ...ManualScoreOption) *models.ManualScoreRecord {
	record := &models.ManualScoreRecord{
		Period:    periodKey,
		RAName:    raName,
		Journal:   3,
		Feedback:  3,
		Team:      3,
		UpdatedBy: "test",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(record)
	}

	if err := f.DB.Create(record).Error; err != nil {
		panic(fmt.Sprintf("failed to create test manual score: %v", err))
	}
	return record
}

// FeedBuilder 按RA构造三类数据源记录
type FeedBuilder struct {
	completion *models.Table
	quality    *models.Table
	activity   *models.Table
	interview  int
}

// NewFeedBuilder 创建数据源构造器，列名与默认查询一致
func NewFeedBuilder() *FeedBuilder {
	return &FeedBuilder{
		completion: models.NewTable("interviewer", "household", "status", "interview_date", "gap_days"),
		quality:    models.NewTable("interviewer", "household", "interview_date", "issue_description"),
		activity:   models.NewTable("interviewer", "interview_id", "total_cashflows", "total_answers"),
	}
}

// Interviews 为RA追加total条访谈，前complete条为完成状态，回访间隔均为gapDays
func (b *FeedBuilder) Interviews(ra string, total, complete int, gapDays float64) *FeedBuilder {
	for i := 0; i < total; i++ {
		status := "Incomplete"
		if i < complete {
			status = "Complete"
		}
		b.interview++
		hh := fmt.Sprintf("%s-HH%d", ra, i+1)
		b.completion.AddRow(ra, hh, status, "2025-01-10", gapDays)
		b.activity.AddRow(ra, b.interview, 20, 100)
	}
	return b
}

// Issue 追加一条质量问题
func (b *FeedBuilder) Issue(ra, household, date, description string) *FeedBuilder {
	b.quality.AddRow(ra, household, date, description)
	return b
}

// Build 生成数据源
func (b *FeedBuilder) Build() aggregation.Feeds {
	return aggregation.Feeds{
		Completion: b.completion.Clone(),
		Quality:    b.quality.Clone(),
		Activity:   b.activity.Clone(),
	}
}

// FakeFeedFetcher 可控的数据源实现
type FakeFeedFetcher struct {
	mu      sync.Mutex
	Feeds   aggregation.Feeds
	Err     error
	Windows []period.Window
}

// FetchFeeds 返回预置数据并记录调用
func (f *FakeFeedFetcher) FetchFeeds(ctx context.Context, window period.Window) (aggregation.Feeds, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Windows = append(f.Windows, window)
	if f.Err != nil {
		return aggregation.Feeds{}, f.Err
	}
	return f.Feeds, nil
}

// Calls 调用次数
func (f *FakeFeedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Windows)
}

// SetResult 替换预置数据
func (f *FakeFeedFetcher) SetResult(feeds aggregation.Feeds, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Feeds, f.Err = feeds, err
}

// MockEventPublisher Mock事件发布器
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evt *event.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// FixedClock 固定时钟
func FixedClock(year int, month time.Month, day int) period.Clock {
	return func() time.Time {
		return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	}
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// DecodeJSON 解析响应体
func (h *HTTPTestHelper) DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
