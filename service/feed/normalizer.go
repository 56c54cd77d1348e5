/*
 * @module service/feed/normalizer
 * @description 列名规范化，将查询结果中任意格式的列标签统一为小写下划线标识符
 * @architecture 工具层 - 纯函数转换
 * @stateFlow 原始列名 -> 规范列名
 * @rules 转换确定且幂等：% -> pct, < -> lt, > -> gt, 空格/连字符 -> _, 去掉撇号，合并重复下划线，去掉首尾下划线
 * @dependencies strings, regexp
 * @refs service/feed/schema.go, service/aggregation/aggregator.go
 */

package feed

import (
	"regexp"
	"strings"

	"ra-leaderboard-service/service/models"
)

var (
	labelReplacer = strings.NewReplacer(
		"'", "",
		"’", "",
		"%", "pct",
		"<", "lt",
		">", "gt",
		"-", "_",
		" ", "_",
		"\t", "_",
	)
	repeatedUnderscore = regexp.MustCompile(`_+`)
)

// NormalizeLabel 规范化单个列名
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = labelReplacer.Replace(s)
	s = repeatedUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NormalizeColumns 返回规范化后的新表，原表不变
// 规范化后出现重名列时保留全部列，按名称查找时命中第一个
func NormalizeColumns(table *models.Table) *models.Table {
	if table == nil {
		return models.NewTable()
	}
	out := table.Clone()
	for i, c := range out.Columns {
		out.Columns[i] = NormalizeLabel(c)
	}
	return out
}
