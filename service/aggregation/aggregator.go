/*
 * @module service/aggregation/aggregator
 * @description 数据源聚合器，将完成记录、质量问题记录和访谈活动记录汇总为每个RA一行的指标表
 * @architecture 分层架构 - 服务层（纯计算，无IO）
 * @stateFlow 列名规范化 -> 排除非RA身份 -> 完成情况分组 -> 质量问题去重计数 -> 活动统计合并 -> 回访间隔统计
 * @rules
 *   - 最终结果中的RA只来自完成记录，质量与活动记录只贡献计数
 *   - 百分比分母为0时结果为0，不产生NaN
 *   - 质量数据为空或缺少列时，质量相关百分比按100处理（无证据即视为干净）
 *   - 无法定位完成记录中的RA列时聚合失败
 * @dependencies service/feed, service/models, log/slog
 * @refs service/scoring/mapper.go, service/leaderboard/service.go
 */

package aggregation

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"ra-leaderboard-service/service/feed"
	"ra-leaderboard-service/service/models"
)

const (
	// StatusComplete 完成状态取值
	StatusComplete = "Complete"
	// ImbalanceKeyword 问题描述中表示收支不平衡的关键字
	ImbalanceKeyword = "imbalance"
	// OnTimeMinGapDays 按时回访的最小间隔天数
	OnTimeMinGapDays = 14
	// OnTimeMaxGapDays 按时回访的最大间隔天数
	OnTimeMaxGapDays = 16
	// cleanDefaultPct 缺少质量数据时的默认百分比
	cleanDefaultPct = 100
)

// DefaultExclusions 固定排除的非RA身份（主管、系统账号等）
var DefaultExclusions = []string{"unknown", "admin", "supervisor", "hfd_office", "test"}

// Feeds 一次刷新的全部输入数据
type Feeds struct {
	Completion *models.Table
	Quality    *models.Table
	Activity   *models.Table
}

// Aggregator 数据源聚合器
type Aggregator struct {
	exclusions map[string]struct{}
}

// NewAggregator 创建聚合器，exclusions 为空时使用 DefaultExclusions
func NewAggregator(exclusions []string) *Aggregator {
	if len(exclusions) == 0 {
		exclusions = DefaultExclusions
	}
	set := make(map[string]struct{}, len(exclusions))
	for _, e := range exclusions {
		set[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Aggregator{exclusions: set}
}

// IsExcluded 判断身份是否在排除列表中（忽略大小写）
func (a *Aggregator) IsExcluded(name string) bool {
	_, ok := a.exclusions[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// raAccumulator 单个RA的中间统计
type raAccumulator struct {
	total      int
	complete   int
	gapDefined int
	gapOnTime  int

	issueKeys     map[string]struct{}
	imbalanceKeys map[string]struct{}

	cashflows   float64
	answerSum   float64
	answerCount int
}

// Aggregate 聚合三个数据源，返回按 ra_name 排序的指标表
func (a *Aggregator) Aggregate(feeds Feeds) ([]models.RAMetrics, error) {
	completion := feed.NormalizeColumns(feeds.Completion)

	accs, hasStatus, hasGap, err := a.aggregateCompletion(completion)
	if err != nil {
		return nil, err
	}

	qualityAvailable := a.aggregateQuality(feed.NormalizeColumns(feeds.Quality), accs)
	a.aggregateActivity(feed.NormalizeColumns(feeds.Activity), accs)

	names := make([]string, 0, len(accs))
	for name := range accs {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]models.RAMetrics, 0, len(names))
	for _, name := range names {
		acc := accs[name]
		row := models.RAMetrics{
			RAName:                  name,
			TotalInterviews:         acc.total,
			TotalCFs:                int(math.RoundToEven(acc.cashflows)),
			InterviewsWithIssues:    len(acc.issueKeys),
			InterviewsWithImbalance: len(acc.imbalanceKeys),
		}
		if acc.answerCount > 0 {
			row.AvgAnswers = int(math.RoundToEven(acc.answerSum / float64(acc.answerCount)))
		}

		if hasStatus {
			row.PctComplete = models.Available(Percent(acc.complete, acc.total))
		} else {
			row.PctComplete = models.Unavailable()
		}

		if qualityAvailable {
			row.PctNoQualityFlags = models.Available(cleanPercent(acc.total, len(acc.issueKeys)))
			row.PctLt5PctImbalance = models.Available(cleanPercent(acc.total, len(acc.imbalanceKeys)))
		} else {
			row.PctNoQualityFlags = models.Available(defaultCleanPercent(acc.total))
			row.PctLt5PctImbalance = models.Available(defaultCleanPercent(acc.total))
		}

		if hasGap {
			row.PctWithin1416Days = models.Available(Percent(acc.gapOnTime, acc.gapDefined))
		} else {
			row.PctWithin1416Days = models.Unavailable()
		}

		result = append(result, row)
	}

	return result, nil
}

// aggregateCompletion 按RA分组完成记录
func (a *Aggregator) aggregateCompletion(t *models.Table) (map[string]*raAccumulator, bool, bool, error) {
	locator := feed.NewColumnLocator(t.Columns)

	raCol, err := locator.Locate(feed.RoleRA)
	if err != nil {
		return nil, false, false, fmt.Errorf("完成记录无法定位RA列: %w: %w", models.ErrSchemaMismatch, err)
	}
	raIdx := t.Index(raCol)

	statusIdx := -1
	if col, err := locator.Locate(feed.RoleStatus); err == nil {
		statusIdx = t.Index(col)
	} else {
		slog.Warn("完成记录缺少状态列，完成率不可用", "columns", t.Columns)
	}

	gapIdx := -1
	if col, err := locator.Locate(feed.RoleGapDays); err == nil {
		gapIdx = t.Index(col)
	}

	accs := make(map[string]*raAccumulator)
	for i := range t.Rows {
		name := a.identity(t.Value(i, raIdx))
		if name == "" {
			continue
		}
		acc, ok := accs[name]
		if !ok {
			acc = newAccumulator()
			accs[name] = acc
		}
		acc.total++

		if statusIdx >= 0 && strings.EqualFold(feed.Text(t.Value(i, statusIdx)), StatusComplete) {
			acc.complete++
		}
		if gapIdx >= 0 {
			if gap, ok := feed.Number(t.Value(i, gapIdx)); ok {
				acc.gapDefined++
				if gap >= OnTimeMinGapDays && gap <= OnTimeMaxGapDays {
					acc.gapOnTime++
				}
			}
		}
	}

	return accs, statusIdx >= 0, gapIdx >= 0, nil
}

// aggregateQuality 统计每个RA有问题的访谈数，返回质量数据是否可用
func (a *Aggregator) aggregateQuality(t *models.Table, accs map[string]*raAccumulator) bool {
	if t.IsEmpty() {
		slog.Info("质量问题数据为空，质量百分比按默认值处理", "default", cleanDefaultPct)
		return false
	}

	locator := feed.NewColumnLocator(t.Columns)
	raCol, raErr := locator.Locate(feed.RoleRA)
	hhCol, hhErr := locator.Locate(feed.RoleHousehold)
	if raErr != nil || hhErr != nil {
		slog.Warn("质量问题数据缺少RA或住户列，质量百分比按默认值处理",
			"columns", t.Columns, "default", cleanDefaultPct)
		return false
	}
	raIdx, hhIdx := t.Index(raCol), t.Index(hhCol)

	dateIdx := -1
	if col, err := locator.Locate(feed.RoleInterviewDate); err == nil {
		dateIdx = t.Index(col)
	} else {
		// 退化为按住户去重，统计的是有问题的住户数而非访谈数
		slog.Warn("质量问题数据缺少访谈日期列，按住户去重", "columns", t.Columns)
	}

	issueIdx := -1
	if col, err := locator.Locate(feed.RoleIssue); err == nil {
		issueIdx = t.Index(col)
	}

	for i := range t.Rows {
		name := a.identity(t.Value(i, raIdx))
		acc, ok := accs[name]
		if !ok {
			continue
		}

		key := feed.Text(t.Value(i, hhIdx))
		if dateIdx >= 0 {
			key += "|" + feed.Text(t.Value(i, dateIdx))
		}
		acc.issueKeys[key] = struct{}{}

		if issueIdx >= 0 && strings.Contains(strings.ToLower(feed.Text(t.Value(i, issueIdx))), ImbalanceKeyword) {
			acc.imbalanceKeys[key] = struct{}{}
		}
	}
	return true
}

// aggregateActivity 合并现金流数与回答数统计
func (a *Aggregator) aggregateActivity(t *models.Table, accs map[string]*raAccumulator) {
	if t.IsEmpty() {
		return
	}

	locator := feed.NewColumnLocator(t.Columns)
	raCol, err := locator.Locate(feed.RoleRA)
	if err != nil {
		slog.Warn("活动数据缺少RA列，现金流与回答数按0处理", "columns", t.Columns)
		return
	}
	raIdx := t.Index(raCol)

	cfIdx, ansIdx := -1, -1
	if col, err := locator.Locate(feed.RoleCashflows); err == nil {
		cfIdx = t.Index(col)
	}
	if col, err := locator.Locate(feed.RoleAnswers); err == nil {
		ansIdx = t.Index(col)
	}

	for i := range t.Rows {
		acc, ok := accs[a.identity(t.Value(i, raIdx))]
		if !ok {
			continue
		}
		if cfIdx >= 0 {
			if v, ok := feed.Number(t.Value(i, cfIdx)); ok {
				acc.cashflows += v
			}
		}
		if ansIdx >= 0 {
			// 缺失的回答数按0计入平均值
			v, _ := feed.Number(t.Value(i, ansIdx))
			acc.answerSum += v
			acc.answerCount++
		}
	}
}

// identity 规范化RA身份，排除列表中的身份返回空串
func (a *Aggregator) identity(v interface{}) string {
	name := strings.ToLower(feed.Text(v))
	if name == "" {
		name = "unknown"
	}
	if a.IsExcluded(name) {
		return ""
	}
	return name
}

func newAccumulator() *raAccumulator {
	return &raAccumulator{
		issueKeys:     make(map[string]struct{}),
		imbalanceKeys: make(map[string]struct{}),
	}
}

// Percent 计算整数百分比（四舍六入五成双），分母为0时返回0
func Percent(numerator, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(numerator*100) / float64(denominator)))
}

// cleanPercent 无问题访谈占比，问题数不超过该RA自己的访谈总数
func cleanPercent(total, flagged int) int {
	if flagged > total {
		flagged = total
	}
	return Percent(total-flagged, total)
}

func defaultCleanPercent(total int) int {
	if total <= 0 {
		return 0
	}
	return cleanDefaultPct
}
