package leaderboard

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"ra-leaderboard-service/service/models"
)

// ExportColumns 导出表的列顺序
var ExportColumns = []string{
	"rank", "ra_name", "total_score",
	"schedule_score", "quality_score", "completion_score",
	"journal_score", "feedback_score", "team_score",
	"total_interviews", "total_cfs", "avg_answers",
	"interviews_with_issues", "interviews_with_imbalance",
	"pct_complete", "pct_no_quality_flags", "pct_lt5pct_imbalance", "pct_within_14_16_days",
}

// ExportCSV 将周期排行榜按名次导出为CSV
func (s *Service) ExportCSV(ctx context.Context, month, year int, w io.Writer) error {
	window := s.resolver.Resolve(month, year)
	rows, err := s.scoredRows(ctx, window)
	if err != nil {
		return err
	}

	if err := WriteCSV(w, rows); err != nil {
		return fmt.Errorf("导出排行榜失败: %w", err)
	}
	s.metrics.RecordExport()
	return nil
}

// ExportFilename 导出文件名
func ExportFilename(month, year int) string {
	return fmt.Sprintf("ra_leaderboard_%04d_%02d.csv", year, month)
}

// WriteCSV 写出排名后的行，不可用的指标输出0
func WriteCSV(w io.Writer, rows []models.ScoredRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Rank), r.RAName, strconv.Itoa(r.TotalScore),
			strconv.Itoa(r.ScheduleScore), strconv.Itoa(r.QualityScore), strconv.Itoa(r.CompletionScore),
			strconv.Itoa(r.JournalScore), strconv.Itoa(r.FeedbackScore), strconv.Itoa(r.TeamScore),
			strconv.Itoa(r.TotalInterviews), strconv.Itoa(r.TotalCFs), strconv.Itoa(r.AvgAnswers),
			strconv.Itoa(r.InterviewsWithIssues), strconv.Itoa(r.InterviewsWithImbalance),
			strconv.Itoa(r.PctComplete.Int()), strconv.Itoa(r.PctNoQualityFlags.Int()),
			strconv.Itoa(r.PctLt5PctImbalance.Int()), strconv.Itoa(r.PctWithin1416Days.Int()),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
