package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ra-leaderboard-service/service/models"
)

// TestScorePercent_Breakpoints 分界点边界
func TestScorePercent_Breakpoints(t *testing.T) {
	cases := map[int]int{
		0: 1, 59: 1, 60: 2, 69: 2, 70: 3, 79: 3, 80: 4, 89: 4, 90: 5, 100: 5,
	}
	for p, want := range cases {
		assert.Equal(t, want, ScorePercent(p), "p=%d", p)
	}
}

// TestScorePercent_Monotonic 在[0,100]内单调不减且落在1-5
func TestScorePercent_Monotonic(t *testing.T) {
	prev := 0
	for p := 0; p <= 100; p++ {
		s := ScorePercent(p)
		assert.GreaterOrEqual(t, s, prev)
		assert.GreaterOrEqual(t, s, 1)
		assert.LessOrEqual(t, s, 5)
		prev = s
	}
}

// TestScoreMetric_Unavailable 不可用指标评分为0，p=0时为1
func TestScoreMetric_Unavailable(t *testing.T) {
	assert.Equal(t, 0, ScoreMetric(models.Unavailable()))
	assert.Equal(t, 1, ScoreMetric(models.Available(0)))
	assert.Equal(t, 5, ScoreMetric(models.Available(90)))
	assert.Equal(t, 3, ScoreMetric(models.Available(70)))
}

// TestApplyAutomatedScores 填充三项自动评分
func TestApplyAutomatedScores(t *testing.T) {
	rows := []models.RAMetrics{{
		RAName:            "amina",
		PctComplete:       models.Available(90),
		PctNoQualityFlags: models.Available(70),
		PctWithin1416Days: models.Unavailable(),
	}}

	out := ApplyAutomatedScores(rows)
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].CompletionScore)
	assert.Equal(t, 3, out[0].QualityScore)
	assert.Equal(t, 0, out[0].ScheduleScore)
	assert.Equal(t, 0, rows[0].CompletionScore, "输入不被修改")
}

func scoredRows(totals map[string]int) []models.RAMetrics {
	var rows []models.RAMetrics
	for name, total := range totals {
		// 用完成评分承载总分，其余为0
		rows = append(rows, models.RAMetrics{RAName: name, CompletionScore: total})
	}
	return rows
}

// TestRank_DenseMinimum 总分[30,25,25,10]对应名次[1,2,2,4]
func TestRank_DenseMinimum(t *testing.T) {
	rows := []models.ScoredRow{
		{RAMetrics: models.RAMetrics{RAName: "d"}, TotalScore: 10},
		{RAMetrics: models.RAMetrics{RAName: "c"}, TotalScore: 25},
		{RAMetrics: models.RAMetrics{RAName: "a"}, TotalScore: 30},
		{RAMetrics: models.RAMetrics{RAName: "b"}, TotalScore: 25},
	}
	Rank(rows)

	var names []string
	var ranks []int
	for _, r := range rows {
		names = append(names, r.RAName)
		ranks = append(ranks, r.Rank)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	assert.Equal(t, []int{1, 2, 2, 4}, ranks)
}

// TestRank_AllTied 全部并列时名次都为1
func TestRank_AllTied(t *testing.T) {
	rows := []models.ScoredRow{{TotalScore: 7}, {TotalScore: 7}, {TotalScore: 7}}
	Rank(rows)
	for _, r := range rows {
		assert.Equal(t, 1, r.Rank)
	}
	Rank(nil)
}

// TestCombine 合并人工评分，总分等于六项之和
func TestCombine(t *testing.T) {
	rows := []models.RAMetrics{
		{RAName: "amina", ScheduleScore: 4, QualityScore: 3, CompletionScore: 5},
		{RAName: "bola", ScheduleScore: 5, QualityScore: 5, CompletionScore: 5},
		{RAName: "chidi", ScheduleScore: 1, QualityScore: 1, CompletionScore: 1},
	}
	manual := map[string]models.ManualScores{
		"amina": {Journal: 5, Feedback: 5, Team: 5},
		"bola":  {Journal: 1, Feedback: 1, Team: 1},
	}

	out := Combine(rows, manual)
	require.Len(t, out, 3)

	assert.Equal(t, "amina", out[0].RAName)
	assert.Equal(t, 27, out[0].TotalScore)
	assert.Equal(t, 1, out[0].Rank)

	assert.Equal(t, "bola", out[1].RAName)
	assert.Equal(t, 18, out[1].TotalScore)
	assert.Equal(t, 2, out[1].Rank)

	assert.Equal(t, "chidi", out[2].RAName)
	assert.Equal(t, models.ManualScores{}, out[2].Manual())
	assert.Equal(t, 3, out[2].TotalScore)

	for _, r := range out {
		sum := r.ScheduleScore + r.QualityScore + r.CompletionScore +
			r.JournalScore + r.FeedbackScore + r.TeamScore
		assert.Equal(t, sum, r.TotalScore)
		assert.GreaterOrEqual(t, r.TotalScore, 0)
		assert.LessOrEqual(t, r.TotalScore, models.MaxTotalScore)
	}
}

// TestCombine_Deterministic 相同输入顺序不同，输出一致
func TestCombine_Deterministic(t *testing.T) {
	first := Combine(scoredRows(map[string]int{"x": 3, "y": 3, "z": 5}), nil)
	second := Combine(scoredRows(map[string]int{"z": 5, "y": 3, "x": 3}), nil)
	assert.Equal(t, first, second)
	assert.Equal(t, "z", first[0].RAName)
	assert.Equal(t, "x", first[1].RAName)
	assert.Equal(t, 2, first[2].Rank)
}

// TestLoadRubric 内置评分细则
func TestLoadRubric(t *testing.T) {
	r, err := LoadRubric()
	require.NoError(t, err)
	assert.Equal(t, models.MaxTotalScore, r.MaxScore)
	assert.Len(t, r.Categories, 6)

	c, ok := r.Category("journal")
	require.True(t, ok)
	assert.False(t, c.Automated)
	assert.Len(t, c.Scores, 5)

	assert.Equal(t, "Not scored", r.Describe("journal", 0))
	assert.Equal(t, "Not scored", r.Describe("missing", 3))
	assert.Equal(t, "90%+ complete", r.Describe("completion", 5))
}
