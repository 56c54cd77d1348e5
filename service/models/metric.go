/*
 * @module service/models/metric
 * @description 指标可用性标记值，区分"未计算"与"表现为0"
 * @architecture 分层架构 - 数据模型层
 * @rules
 *   - 评分与聚合逻辑必须基于Available标记判断，不能依赖数值哨兵
 *   - 对外输出（JSON、导出）一律为整数，不可用时为0
 * @refs service/scoring/mapper.go, service/aggregation/aggregator.go
 */

package models

import "encoding/json"

// Metric 百分比指标，Available=false 表示源数据缺失
type Metric struct {
	Value     int  `json:"value"`
	Available bool `json:"available"`
}

// Available 构造可用指标
func Available(p int) Metric {
	return Metric{Value: p, Available: true}
}

// Unavailable 构造不可用指标
func Unavailable() Metric {
	return Metric{}
}

// Int 数值视图，不可用时为0
func (m Metric) Int() int {
	if !m.Available {
		return 0
	}
	return m.Value
}

// MarshalJSON 输出整数，不可用时为0
func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Int())
}

// UnmarshalJSON null 解析为不可用
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Unavailable()
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Available(v)
	return nil
}
