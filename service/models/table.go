/*
 * @module service/models/table
 * @description 通用表格结构，承载数据源查询返回的结果集（有序列名 + 按位置存储的行）
 * @architecture 分层架构 - 数据模型层
 * @stateFlow 查询结果 -> Table -> 列名规范化 -> 聚合
 * @rules 列与行按位置对应，行长度不足时视为NULL
 * @dependencies 无
 * @refs service/feed/normalizer.go, service/datasource/feed_source.go
 */

package models

// Table 表格结果集
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// NewTable 创建表格
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AddRow 追加一行
func (t *Table) AddRow(values ...interface{}) *Table {
	t.Rows = append(t.Rows, values)
	return t
}

// IsEmpty 是否没有任何数据行
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// Len 行数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index 返回列所在位置，不存在返回-1
func (t *Table) Index(column string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// HasColumn 判断列是否存在
func (t *Table) HasColumn(column string) bool {
	return t.Index(column) >= 0
}

// Value 取第row行、第col列的值
func (t *Table) Value(row, col int) interface{} {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 {
		return nil
	}
	r := t.Rows[row]
	if col >= len(r) {
		return nil
	}
	return r[col]
}

// Clone 复制表格（行数据浅拷贝）
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]interface{}, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]interface{}(nil), r...)
	}
	return out
}
