/*
 * @module service/scoring/combiner
 * @description 评分合并，将自动评分与人工评分合并、计算总分并按并列取最小名次排名
 * @architecture 分层架构 - 服务层
 * @stateFlow 自动评分表 + 周期人工评分 -> 总分 -> 排名 -> 按名次升序输出
 * @rules
 *   - 人工评分缺失时三项均为0
 *   - 名次 = 1 + 总分严格高于自己的RA数量
 *   - 名次相同时按 ra_name 升序，保证输出稳定
 * @dependencies service/models, sort
 * @refs service/score_store, service/leaderboard/service.go
 */

package scoring

import (
	"sort"
	"strings"

	"ra-leaderboard-service/service/models"
)

// Combine 合并人工评分并排名，manual 为该周期 ra_name -> 三元组
func Combine(rows []models.RAMetrics, manual map[string]models.ManualScores) []models.ScoredRow {
	scored := make([]models.ScoredRow, len(rows))
	for i, r := range rows {
		m := manual[strings.ToLower(r.RAName)]
		row := models.ScoredRow{
			RAMetrics:     r,
			JournalScore:  m.Journal,
			FeedbackScore: m.Feedback,
			TeamScore:     m.Team,
		}
		row.TotalScore = TotalScore(row)
		scored[i] = row
	}

	Rank(scored)
	return scored
}

// TotalScore 六项序数评分之和
func TotalScore(r models.ScoredRow) int {
	return r.ScheduleScore + r.QualityScore + r.CompletionScore +
		r.JournalScore + r.FeedbackScore + r.TeamScore
}

// Rank 按总分降序排序并写入名次（并列取最小名次）
func Rank(rows []models.ScoredRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].RAName < rows[j].RAName
	})

	for i := range rows {
		if i > 0 && rows[i].TotalScore == rows[i-1].TotalScore {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
