/*
 * @module service/models/ra_metrics
 * @description RA月度指标、人工评分与综合排名模型定义
 * @architecture 分层架构 - 数据模型层
 * @stateFlow 原始记录 -> RAMetrics（自动指标+自动评分） -> ScoredRow（合并人工评分+总分+排名）
 * @rules 所有序数评分为[0,5]整数，总分为六项评分之和，范围[0,30]
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/aggregation, service/scoring, service/score_store
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MinOrdinalScore 序数评分下限（0表示未评分/未计算）
	MinOrdinalScore = 0
	// MaxOrdinalScore 序数评分上限
	MaxOrdinalScore = 5
	// MaxTotalScore 六项评分总分上限
	MaxTotalScore = 30
)

// RAMetrics 单个RA在一个统计周期内的自动指标
type RAMetrics struct {
	RAName                  string `json:"ra_name"`
	TotalInterviews         int    `json:"total_interviews"`
	TotalCFs                int    `json:"total_cfs"`
	AvgAnswers              int    `json:"avg_answers"`
	InterviewsWithIssues    int    `json:"interviews_with_issues"`
	InterviewsWithImbalance int    `json:"interviews_with_imbalance"`

	PctComplete        Metric `json:"pct_complete"`
	PctNoQualityFlags  Metric `json:"pct_no_quality_flags"`
	PctLt5PctImbalance Metric `json:"pct_lt5pct_imbalance"`
	PctWithin1416Days  Metric `json:"pct_within_14_16_days"`

	ScheduleScore   int `json:"schedule_score"`
	QualityScore    int `json:"quality_score"`
	CompletionScore int `json:"completion_score"`
}

// ManualScores 人工评分三元组
type ManualScores struct {
	Journal  int `json:"journal" validate:"min=0,max=5"`
	Feedback int `json:"feedback" validate:"min=0,max=5"`
	Team     int `json:"team" validate:"min=0,max=5"`
}

// IsComplete 三项人工评分是否均已录入
func (m ManualScores) IsComplete() bool {
	return m.Journal > 0 && m.Feedback > 0 && m.Team > 0
}

// Valid 三项评分是否都在合法范围内
func (m ManualScores) Valid() bool {
	for _, v := range []int{m.Journal, m.Feedback, m.Team} {
		if v < MinOrdinalScore || v > MaxOrdinalScore {
			return false
		}
	}
	return true
}

// ScoredRow 排行榜中的一行
type ScoredRow struct {
	RAMetrics
	JournalScore  int `json:"journal_score"`
	FeedbackScore int `json:"feedback_score"`
	TeamScore     int `json:"team_score"`
	TotalScore    int `json:"total_score"`
	Rank          int `json:"rank"`
}

// Manual 取出该行的人工评分
func (r ScoredRow) Manual() ManualScores {
	return ManualScores{Journal: r.JournalScore, Feedback: r.FeedbackScore, Team: r.TeamScore}
}

// ManualScoreRecord 人工评分数据库模型
type ManualScoreRecord struct {
	ID        string    `gorm:"type:varchar(36);primary_key" json:"id"`
	Period    string    `gorm:"not null;size:7;uniqueIndex:idx_manual_score_period_ra" json:"period"`
	RAName    string    `gorm:"not null;size:128;uniqueIndex:idx_manual_score_period_ra" json:"ra_name"`
	Journal   int       `gorm:"not null;default:0" json:"journal"`
	Feedback  int       `gorm:"not null;default:0" json:"feedback"`
	Team      int       `gorm:"not null;default:0" json:"team"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `gorm:"not null;default:'admin'" json:"updated_by"`
}

// TableName 表名
func (ManualScoreRecord) TableName() string {
	return "manual_scores"
}

// BeforeCreate 创建前钩子
func (m *ManualScoreRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.UpdatedBy == "" {
		m.UpdatedBy = "admin"
	}
	return nil
}

// Scores 转换为三元组
func (m *ManualScoreRecord) Scores() ManualScores {
	return ManualScores{Journal: m.Journal, Feedback: m.Feedback, Team: m.Team}
}
