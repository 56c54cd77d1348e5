/*
 * @module service/feed/schema
 * @description 结果集模式适配器，按角色定位列名，每个角色有固定的匹配优先级
 * @architecture 适配器模式 - 隔离查询输出形态与聚合逻辑
 * @stateFlow 规范列名列表 -> Locate(role) -> 列名 | ErrColumnNotFound
 * @rules 同一优先级内按列顺序取第一个；所有匹配均基于已规范化的列名
 * @dependencies strings, errors
 * @refs service/aggregation/aggregator.go
 */

package feed

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnNotFound 未找到匹配角色的列
var ErrColumnNotFound = errors.New("未找到匹配的列")

// Role 列角色
type Role string

const (
	RoleRA            Role = "ra"
	RoleHousehold     Role = "household"
	RoleStatus        Role = "status"
	RoleInterviewDate Role = "interview_date"
	RoleIssue         Role = "issue"
	RoleGapDays       Role = "gap_days"
	RoleCashflows     Role = "cashflows"
	RoleAnswers       Role = "answers"
)

// SchemaAdapter 按角色定位列名
type SchemaAdapter interface {
	Locate(role Role) (string, error)
}

type matcher func(column string) bool

func contains(sub string) matcher {
	return func(column string) bool { return strings.Contains(column, sub) }
}

func equals(name string) matcher {
	return func(column string) bool { return column == name }
}

func hasToken(token string) matcher {
	return func(column string) bool {
		for _, part := range strings.Split(column, "_") {
			if part == token {
				return true
			}
		}
		return false
	}
}

// rolePrecedence 各角色的匹配优先级，靠前的优先
var rolePrecedence = map[Role][]matcher{
	RoleRA:            {contains("interviewer"), hasToken("ra"), contains("ra")},
	RoleHousehold:     {contains("household"), hasToken("hh")},
	RoleStatus:        {equals("status"), contains("status")},
	RoleInterviewDate: {contains("interview_date"), contains("date")},
	RoleIssue:         {contains("issue"), contains("description"), contains("flag")},
	RoleGapDays:       {contains("gap")},
	RoleCashflows:     {contains("cashflow"), hasToken("cfs"), hasToken("cf")},
	RoleAnswers:       {contains("answer")},
}

// ColumnLocator 基于列名列表的模式适配器
type ColumnLocator struct {
	columns []string
}

// NewColumnLocator 创建列定位器，columns 应为规范化后的列名
func NewColumnLocator(columns []string) *ColumnLocator {
	return &ColumnLocator{columns: columns}
}

// Locate 定位角色对应的列
func (l *ColumnLocator) Locate(role Role) (string, error) {
	tiers, ok := rolePrecedence[role]
	if !ok {
		return "", fmt.Errorf("未知的列角色 %q: %w", role, ErrColumnNotFound)
	}
	for _, match := range tiers {
		for _, c := range l.columns {
			if match(c) {
				return c, nil
			}
		}
	}
	return "", fmt.Errorf("角色 %q: %w", role, ErrColumnNotFound)
}

// Has 角色对应的列是否存在
func (l *ColumnLocator) Has(role Role) bool {
	_, err := l.Locate(role)
	return err == nil
}
