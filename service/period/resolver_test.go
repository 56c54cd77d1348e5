package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(y int, m time.Month, d int) Clock {
	return func() time.Time {
		return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
	}
}

// TestResolve_PastMonth 历史月份使用月末作为结束日期
func TestResolve_PastMonth(t *testing.T) {
	r := NewResolver(fixedClock(2025, time.March, 10))

	w := r.Resolve(2, 2025)
	assert.Equal(t, "2025-02-01", w.StartDate())
	assert.Equal(t, "2025-02-28", w.EndDate())
	assert.False(t, w.InProgress())

	w = r.Resolve(2, 2024)
	assert.Equal(t, "2024-02-29", w.EndDate(), "闰年二月")
}

// TestResolve_December 十二月跨年
func TestResolve_December(t *testing.T) {
	r := NewResolver(fixedClock(2025, time.March, 10))

	w := r.Resolve(12, 2024)
	assert.Equal(t, "2024-12-01", w.StartDate())
	assert.Equal(t, "2024-12-31", w.EndDate())
}

// TestResolve_CurrentMonthEndsToday 当前月份结束日期为今天
func TestResolve_CurrentMonthEndsToday(t *testing.T) {
	r := NewResolver(fixedClock(2025, time.March, 10))

	w := r.Resolve(3, 2025)
	assert.Equal(t, "2025-03-01", w.StartDate())
	assert.Equal(t, "2025-03-10", w.EndDate())
	assert.True(t, w.InProgress())

	assert.Equal(t, w, r.Current())
}

// TestResolve_CurrentMonthLastDay 当前月份最后一天不算进行中
func TestResolve_CurrentMonthLastDay(t *testing.T) {
	r := NewResolver(fixedClock(2025, time.April, 30))

	w := r.Resolve(4, 2025)
	assert.Equal(t, "2025-04-30", w.EndDate())
	assert.False(t, w.InProgress())
}

// TestResolve_SameMonthOtherYear 相同月份不同年份使用月末
func TestResolve_SameMonthOtherYear(t *testing.T) {
	r := NewResolver(fixedClock(2025, time.March, 10))

	w := r.Resolve(3, 2024)
	assert.Equal(t, "2024-03-31", w.EndDate())
}

// TestWindowKeyAndLabel 周期键与展示名称
func TestWindowKeyAndLabel(t *testing.T) {
	r := NewResolver(fixedClock(2025, time.March, 10))

	w := r.Resolve(1, 2025)
	assert.Equal(t, "2025_01", w.Key())
	assert.Equal(t, "January 2025", w.Label())
	assert.Equal(t, "2024_11", Key(11, 2024))
}
