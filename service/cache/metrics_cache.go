/*
 * @module service/cache/metrics_cache
 * @description 按周期缓存聚合后的RA指标表（CSV），刷新成功后整体替换
 * @architecture 文件缓存 - 每个周期一个文件，文件内带 period 列
 * @stateFlow Save(周期, 行) -> 原子写入 / Load(周期) -> 命中或 ErrNoData / Invalidate(周期)
 * @rules
 *   - 只有新表计算成功后才调用 Save，失败的刷新不会破坏旧缓存
 *   - period 列与请求周期不一致视为未命中
 *   - 百分比列始终为整数，可用性单独存于 *_available 列
 *   - 没有 *_available 列的旧文件中，空单元格视为不可用
 * @dependencies encoding/csv, github.com/spf13/cast
 * @refs service/models/ra_metrics.go, service/utils/file_utils.go
 */

package cache

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/utils"
)

// Columns 缓存文件列顺序
var Columns = []string{
	"period",
	"ra_name",
	"total_interviews",
	"total_cfs",
	"avg_answers",
	"interviews_with_issues",
	"interviews_with_imbalance",
	"pct_complete",
	"pct_no_quality_flags",
	"pct_lt5pct_imbalance",
	"pct_within_14_16_days",
	"schedule_score",
	"quality_score",
	"completion_score",
	"pct_complete_available",
	"pct_no_quality_flags_available",
	"pct_lt5pct_imbalance_available",
	"pct_within_14_16_days_available",
}

// MetricsCache 周期指标缓存
type MetricsCache struct {
	dir string
	mu  sync.RWMutex
}

// NewMetricsCache 创建缓存
func NewMetricsCache(dir string) *MetricsCache {
	return &MetricsCache{dir: dir}
}

// Path 周期缓存文件路径
func (c *MetricsCache) Path(periodKey string) string {
	return filepath.Join(c.dir, fmt.Sprintf("leaderboard_%s.csv", periodKey))
}

// Save 原子写入周期缓存
func (c *MetricsCache) Save(periodKey string, rows []models.RAMetrics) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("写入缓存表头失败: %w: %w", models.ErrPersistence, err)
	}
	for _, row := range rows {
		if err := w.Write(encodeRow(periodKey, row)); err != nil {
			return fmt.Errorf("写入缓存行失败: %w: %w", models.ErrPersistence, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("写入缓存失败: %w: %w", models.ErrPersistence, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := utils.WriteFileAtomic(c.Path(periodKey), buf.Bytes()); err != nil {
		return fmt.Errorf("保存缓存文件失败: %w: %w", models.ErrPersistence, err)
	}
	slog.Info("指标缓存已更新", "period", periodKey, "rows", len(rows))
	return nil
}

// Load 读取周期缓存，未命中返回 ErrNoData
func (c *MetricsCache) Load(periodKey string) ([]models.RAMetrics, error) {
	c.mu.RLock()
	raw, err := os.ReadFile(c.Path(periodKey))
	c.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("周期 %s: %w", periodKey, models.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("读取缓存文件失败: %w: %w", models.ErrPersistence, err)
	}

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析缓存文件失败: %w: %w", models.ErrPersistence, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("周期 %s: %w", periodKey, models.ErrNoData)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index["ra_name"]; !ok {
		return nil, fmt.Errorf("缓存文件缺少 ra_name 列: %w", models.ErrPersistence)
	}

	rows := make([]models.RAMetrics, 0, len(records)-1)
	for _, record := range records[1:] {
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if p := cell("period"); p != "" && p != periodKey {
			slog.Warn("缓存周期不匹配", "want", periodKey, "got", p)
			return nil, fmt.Errorf("周期 %s: %w", periodKey, models.ErrNoData)
		}
		rows = append(rows, decodeRow(cell))
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RAName < rows[j].RAName })
	return rows, nil
}

// Invalidate 删除周期缓存
func (c *MetricsCache) Invalidate(periodKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.Remove(c.Path(periodKey))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("删除缓存文件失败: %w: %w", models.ErrPersistence, err)
	}
	return nil
}

// Periods 已缓存的周期，按时间倒序
func (c *MetricsCache) Periods() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "leaderboard_*.csv"))
	if err != nil {
		return nil, err
	}
	periods := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "leaderboard_"), ".csv")
		periods = append(periods, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	return periods, nil
}

func encodeRow(periodKey string, r models.RAMetrics) []string {
	return []string{
		periodKey,
		r.RAName,
		strconv.Itoa(r.TotalInterviews),
		strconv.Itoa(r.TotalCFs),
		strconv.Itoa(r.AvgAnswers),
		strconv.Itoa(r.InterviewsWithIssues),
		strconv.Itoa(r.InterviewsWithImbalance),
		strconv.Itoa(r.PctComplete.Int()),
		strconv.Itoa(r.PctNoQualityFlags.Int()),
		strconv.Itoa(r.PctLt5PctImbalance.Int()),
		strconv.Itoa(r.PctWithin1416Days.Int()),
		strconv.Itoa(r.ScheduleScore),
		strconv.Itoa(r.QualityScore),
		strconv.Itoa(r.CompletionScore),
		strconv.FormatBool(r.PctComplete.Available),
		strconv.FormatBool(r.PctNoQualityFlags.Available),
		strconv.FormatBool(r.PctLt5PctImbalance.Available),
		strconv.FormatBool(r.PctWithin1416Days.Available),
	}
}

func decodeRow(cell func(string) string) models.RAMetrics {
	return models.RAMetrics{
		RAName:                  strings.ToLower(cell("ra_name")),
		TotalInterviews:         cast.ToInt(cell("total_interviews")),
		TotalCFs:                cast.ToInt(cell("total_cfs")),
		AvgAnswers:              cast.ToInt(cell("avg_answers")),
		InterviewsWithIssues:    cast.ToInt(cell("interviews_with_issues")),
		InterviewsWithImbalance: cast.ToInt(cell("interviews_with_imbalance")),
		PctComplete:             decodeMetric(cell, "pct_complete"),
		PctNoQualityFlags:       decodeMetric(cell, "pct_no_quality_flags"),
		PctLt5PctImbalance:      decodeMetric(cell, "pct_lt5pct_imbalance"),
		PctWithin1416Days:       decodeMetric(cell, "pct_within_14_16_days"),
		ScheduleScore:           cast.ToInt(cell("schedule_score")),
		QualityScore:            cast.ToInt(cell("quality_score")),
		CompletionScore:         cast.ToInt(cell("completion_score")),
	}
}

// decodeMetric 按 *_available 列还原可用性
func decodeMetric(cell func(string) string, col string) models.Metric {
	value := cell(col)
	available := value != ""
	if flag := cell(col + "_available"); flag != "" {
		available = cast.ToBool(flag)
	}
	if !available {
		return models.Unavailable()
	}
	v, err := cast.ToFloat64E(value)
	if err != nil {
		return models.Unavailable()
	}
	return models.Available(int(v + 0.5))
}
