/*
 * @module service/period/resolver
 * @description 统计周期解析，根据月份和年份计算报表时间窗口
 * @architecture 工具层 - 无状态计算（时钟可注入）
 * @stateFlow (month, year) -> Window{Start, End}
 * @rules 当前月份的结束日期为今天（含），其余月份为当月最后一天
 * @dependencies time
 * @refs service/leaderboard/service.go
 */

package period

import (
	"fmt"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// Clock 时钟函数
type Clock func() time.Time

// Window 报表时间窗口，Start 与 End 均为日历日期且包含在内
type Window struct {
	Month int       `json:"month"`
	Year  int       `json:"year"`
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// Resolver 周期解析器
type Resolver struct {
	now Clock
}

// NewResolver 创建周期解析器，clock 为空时使用 time.Now
func NewResolver(clock Clock) *Resolver {
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{now: clock}
}

// Resolve 计算 month/year 对应的时间窗口
func (r *Resolver) Resolve(month, year int) Window {
	today := r.now()
	loc := today.Location()
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)

	var end time.Time
	if int(today.Month()) == month && today.Year() == year {
		end = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	} else {
		// 下月第一天减一天
		end = start.AddDate(0, 1, -1)
	}

	return Window{Month: month, Year: year, Start: start, End: end}
}

// Current 当前月份的时间窗口
func (r *Resolver) Current() Window {
	today := r.now()
	return r.Resolve(int(today.Month()), today.Year())
}

// Key 周期键，格式 YYYY_MM
func (w Window) Key() string {
	return Key(w.Month, w.Year)
}

// Label 展示名称，如 "January 2025"
func (w Window) Label() string {
	return fmt.Sprintf("%s %d", time.Month(w.Month).String(), w.Year)
}

// StartDate 开始日期字符串
func (w Window) StartDate() string {
	return w.Start.Format(DateLayout)
}

// EndDate 结束日期字符串
func (w Window) EndDate() string {
	return w.End.Format(DateLayout)
}

// InProgress 窗口是否为进行中的当前月份
func (w Window) InProgress() bool {
	return w.End.Before(w.Start.AddDate(0, 1, -1))
}

// Key 由月份与年份生成周期键
func Key(month, year int) string {
	return fmt.Sprintf("%04d_%02d", year, month)
}
