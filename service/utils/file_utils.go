/*
 * @module service/utils/file_utils
 * @description 文件工具，提供原子写入
 * @architecture 工具函数
 * @stateFlow 同目录写临时文件 -> fsync -> rename 覆盖目标
 * @rules 失败时目标文件保持原样，临时文件总会被清理
 * @dependencies os, path/filepath
 * @refs service/score_store, service/cache
 */

package utils

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic 原子写入文件
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
