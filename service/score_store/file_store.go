/*
 * @module service/score_store/file_store
 * @description 基于JSON文件的人工评分存储，整文件读取、合并、原子替换
 * @architecture 仓储模式 - 文件实现
 * @stateFlow 读取整个文件 -> 内存合并 -> 写临时文件 -> rename 替换
 * @rules 写入失败时原文件保持不变；进程内写操作串行化
 * @dependencies encoding/json, os
 * @refs store.go
 */

package score_store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"ra-leaderboard-service/service/models"
	"ra-leaderboard-service/service/utils"
)

// scoreFile 文件内容：周期 -> RA -> 三元组
type scoreFile map[string]map[string]models.ManualScores

// FileStore JSON文件存储
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore 创建文件存储
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path 文件路径
func (s *FileStore) Path() string {
	return s.path
}

// Get 获取评分
func (s *FileStore) Get(ctx context.Context, period, raName string) (models.ManualScores, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return models.ManualScores{}, err
	}
	return data[period][normalizeName(raName)], nil
}

// Period 获取周期内全部评分
func (s *FileStore) Period(ctx context.Context, period string) (map[string]models.ManualScores, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.ManualScores, len(data[period]))
	for name, scores := range data[period] {
		out[name] = scores
	}
	return out, nil
}

// Set 新增或更新评分
func (s *FileStore) Set(ctx context.Context, period, raName string, scores models.ManualScores) error {
	return s.SetMany(ctx, period, map[string]models.ManualScores{raName: scores})
}

// SetMany 一次写入多个RA的评分
func (s *FileStore) SetMany(ctx context.Context, period string, scores map[string]models.ManualScores) error {
	for name, sc := range scores {
		if err := validate(name, sc); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if data[period] == nil {
		data[period] = make(map[string]models.ManualScores)
	}
	for name, sc := range scores {
		data[period][normalizeName(name)] = sc
	}
	return s.save(data)
}

// Reset 删除周期内全部评分
func (s *FileStore) Reset(ctx context.Context, period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[period]; !ok {
		return nil
	}
	delete(data, period)
	return s.save(data)
}

// Close 文件存储无需释放资源
func (s *FileStore) Close() error {
	return nil
}

// load 读取整个文件，文件不存在时返回空数据
func (s *FileStore) load() (scoreFile, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(scoreFile), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取人工评分文件失败: %w: %w", models.ErrPersistence, err)
	}

	data := make(scoreFile)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析人工评分文件失败: %w: %w", models.ErrPersistence, err)
	}
	return data, nil
}

// save 写临时文件后原子替换
func (s *FileStore) save(data scoreFile) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化人工评分失败: %w: %w", models.ErrPersistence, err)
	}
	if err := utils.WriteFileAtomic(s.path, raw); err != nil {
		return fmt.Errorf("保存人工评分失败: %w: %w", models.ErrPersistence, err)
	}
	slog.Debug("人工评分已保存", "path", s.path, "periods", len(data))
	return nil
}
