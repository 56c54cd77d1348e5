package models

import "errors"

// 错误分类，调用方通过 errors.Is 判断
var (
	// ErrConfiguration 配置错误：数据源不可用、刷新被禁用等
	ErrConfiguration = errors.New("配置错误")
	// ErrFetch 数据源查询失败
	ErrFetch = errors.New("数据获取失败")
	// ErrSchemaMismatch 结果集缺少必需的列
	ErrSchemaMismatch = errors.New("结果集结构不匹配")
	// ErrPersistence 持久化失败
	ErrPersistence = errors.New("持久化失败")
	// ErrInvalidScore 评分超出[0,5]
	ErrInvalidScore = errors.New("评分必须在0到5之间")
	// ErrNoData 缓存中没有该周期的数据
	ErrNoData = errors.New("暂无数据")
)
