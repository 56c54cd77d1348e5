package feed

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Text 单元格转字符串，NULL 为空串
func Text(v interface{}) string {
	if v == nil {
		return ""
	}
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(cast.ToString(v))
}

// Number 单元格转数值，NULL 或无法解析时 ok=false
func Number(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}
