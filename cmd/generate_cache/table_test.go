package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ra-leaderboard-service/service/leaderboard"
	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/period"
	"ra-leaderboard-service/service/scoring"
	"ra-leaderboard-service/testutil"
)

func TestTableRenderer_Render(t *testing.T) {
	window := period.NewResolver(testutil.FixedClock(2025, time.March, 3)).Resolve(1, 2025)
	rows := []models.ScoredRow{
		{
			RAMetrics: models.RAMetrics{
				RAName:            "amina",
				TotalInterviews:   10,
				PctComplete:       models.Available(90),
				PctNoQualityFlags: models.Available(100),
				PctWithin1416Days: models.Unavailable(),
				CompletionScore:   5,
				QualityScore:      5,
				ScheduleScore:     5,
			},
			TotalScore: 15,
			Rank:       1,
		},
	}
	rubric, err := scoring.LoadRubric()
	require.NoError(t, err)
	out := newTableRenderer(false, rubric).Render(leaderboard.NewLeaderboard(window, rows, false))

	assert.Contains(t, out, "January 2025 (2025-01-01 ~ 2025-01-31)")
	assert.Contains(t, out, "Current Leader: Amina (15/30) - Final results pending")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	assert.Contains(t, last, "Amina")
	assert.Contains(t, last, "90%")
	// 不可用的指标显示为0%
	assert.Contains(t, last, "0%")
	assert.NotContains(t, last, " - ")

	assert.Contains(t, out, "Interview Completion")
	assert.Contains(t, out, "90%+ complete")
	assert.Contains(t, out, "Journal Quality")
	assert.Contains(t, out, "Not scored")
}

func TestTableRenderer_WithoutRubric(t *testing.T) {
	window := period.NewResolver(testutil.FixedClock(2025, time.March, 3)).Resolve(1, 2025)
	rows := []models.ScoredRow{{RAMetrics: models.RAMetrics{RAName: "amina"}, TotalScore: 5, Rank: 1}}
	out := newTableRenderer(false, nil).Render(leaderboard.NewLeaderboard(window, rows, false))
	assert.NotContains(t, out, "Not scored")
	assert.Contains(t, out, "Amina")
}

func TestValidatePeriodFlags(t *testing.T) {
	assert.NoError(t, validatePeriodFlags(0, 0))
	assert.NoError(t, validatePeriodFlags(12, 2025))
	assert.Error(t, validatePeriodFlags(13, 2025))
	assert.Error(t, validatePeriodFlags(-1, 0))
	assert.Error(t, validatePeriodFlags(1, 1999))
	assert.Error(t, validatePeriodFlags(0, 99999))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
