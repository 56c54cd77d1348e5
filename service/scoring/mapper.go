/*
 * @module service/scoring/mapper
 * @description 评分映射，将百分比指标按固定分界点映射为1-5的序数评分
 * @architecture 分层架构 - 服务层（纯函数）
 * @stateFlow Metric -> 序数评分
 * @rules 三项自动指标使用同一组分界点；指标不可用时评分为0（表示未计算，而非最差）
 * @dependencies service/models
 * @refs service/aggregation/aggregator.go, service/scoring/combiner.go
 */

package scoring

import "ra-leaderboard-service/service/models"

// Breakpoint 分界点：百分比不小于 Min 时得 Score 分
type Breakpoint struct {
	Min   int
	Score int
}

// Breakpoints 分界点，从高到低排列
var Breakpoints = []Breakpoint{
	{Min: 90, Score: 5},
	{Min: 80, Score: 4},
	{Min: 70, Score: 3},
	{Min: 60, Score: 2},
}

// lowestScore 低于所有分界点时的评分
const lowestScore = 1

// ScorePercent 百分比映射为1-5
func ScorePercent(p int) int {
	for _, bp := range Breakpoints {
		if p >= bp.Min {
			return bp.Score
		}
	}
	return lowestScore
}

// ScoreMetric 指标映射为评分，不可用时为0
func ScoreMetric(m models.Metric) int {
	if !m.Available {
		return 0
	}
	return ScorePercent(m.Value)
}

// ApplyAutomatedScores 为每一行填充回访、质量和完成三项自动评分
func ApplyAutomatedScores(rows []models.RAMetrics) []models.RAMetrics {
	out := make([]models.RAMetrics, len(rows))
	for i, r := range rows {
		r.ScheduleScore = ScoreMetric(r.PctWithin1416Days)
		r.QualityScore = ScoreMetric(r.PctNoQualityFlags)
		r.CompletionScore = ScoreMetric(r.PctComplete)
		out[i] = r
	}
	return out
}
