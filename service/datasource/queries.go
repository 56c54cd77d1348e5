/*
 * @module service/datasource/queries
 * @description 三个数据源查询（完成记录、质量问题、访谈活动）的默认SQL及文件覆盖
 * @architecture 配置驱动 - 内置默认SQL，可由查询目录中的同名文件替换
 * @stateFlow DefaultQueries -> LoadQueries(目录) -> 覆盖存在的文件
 * @rules 所有查询均为参数化查询，$1 为开始日期，$2 为结束日期（均包含）
 * @dependencies os, path/filepath
 * @refs feed_source.go
 */

package datasource

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// 查询文件名
const (
	CompletionQueryFile = "completion.sql"
	QualityQueryFile    = "quality.sql"
	ActivityQueryFile   = "activity.sql"
)

const defaultCompletionQuery = `
SELECT
    COALESCE(cu.username, 'Unknown') AS interviewer,
    h.name AS household,
    CASE WHEN i.status = 1 THEN 'Complete' ELSE 'Incomplete' END AS status,
    DATE(i.interview_start_date) AS interview_date,
    DATE(i.interview_start_date) - (
        SELECT MAX(DATE(i2.interview_start_date))
        FROM interviews i2
        WHERE i2.household_id = i.household_id
          AND i2.interview_start_date < i.interview_start_date
          AND i2.status = 1
    ) AS gap_days
FROM interviews i
JOIN households h ON h.id = i.household_id
LEFT JOIN core_users cu ON cu.id = i.interviewer_id
WHERE h.status = 1
  AND h.out = 0
  AND DATE(i.interview_start_date) BETWEEN $1 AND $2
  AND h.name NOT ILIKE '%test%'
ORDER BY interviewer, household`

const defaultQualityQuery = `
SELECT
    COALESCE(cu.username, 'Unknown') AS interviewer,
    h.name AS household,
    DATE(i.interview_start_date) AS interview_date,
    qi.description AS issue_description
FROM quality_issues qi
JOIN interviews i ON i.id = qi.interview_id
JOIN households h ON h.id = i.household_id
LEFT JOIN core_users cu ON cu.id = i.interviewer_id
WHERE i.status = 1
  AND DATE(i.interview_start_date) BETWEEN $1 AND $2
  AND h.name NOT ILIKE '%test%'`

const defaultActivityQuery = `
SELECT
    COALESCE(cu.username, 'Unknown') AS interviewer,
    i.id AS interview_id,
    (SELECT COUNT(*) FROM cashflows cf WHERE cf.interview_id = i.id AND cf.status = 1) AS total_cashflows,
    (SELECT COUNT(*) FROM answers a WHERE a.interview_id = i.id) AS total_answers
FROM interviews i
JOIN households h ON h.id = i.household_id
LEFT JOIN core_users cu ON cu.id = i.interviewer_id
WHERE i.status = 1
  AND DATE(i.interview_start_date) BETWEEN $1 AND $2
  AND h.name NOT ILIKE '%test%'`

// FeedQueries 三个数据源查询
type FeedQueries struct {
	Completion string
	Quality    string
	Activity   string
}

// DefaultQueries 内置默认查询
func DefaultQueries() FeedQueries {
	return FeedQueries{
		Completion: strings.TrimSpace(defaultCompletionQuery),
		Quality:    strings.TrimSpace(defaultQualityQuery),
		Activity:   strings.TrimSpace(defaultActivityQuery),
	}
}

// LoadQueries 从目录加载查询，缺失的文件使用默认查询；dir为空时直接返回默认查询
func LoadQueries(dir string) (FeedQueries, error) {
	queries := DefaultQueries()
	if dir == "" {
		return queries, nil
	}

	targets := map[string]*string{
		CompletionQueryFile: &queries.Completion,
		QualityQueryFile:    &queries.Quality,
		ActivityQueryFile:   &queries.Activity,
	}
	for name, target := range targets {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return FeedQueries{}, fmt.Errorf("读取查询文件 %s 失败: %w", name, err)
		}
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return FeedQueries{}, fmt.Errorf("查询文件 %s 为空", name)
		}
		*target = text
		slog.Info("使用查询文件覆盖默认查询", "file", name)
	}
	return queries, nil
}
