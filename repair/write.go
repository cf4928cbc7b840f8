package repair

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/weaming/rawrepair-go/rawfile"
)

// writeSplice 原子写出拼接结果
// 先写同目录下的临时文件，fsync 后 rename，读者不会看到半个文件
func writeSplice(path string, s *rawfile.Splice) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := s.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: path, Err: err}
	}

	return nil
}

// removeStaleTemp 删除上次运行被中断时留下的 .<name>.*.tmp
// 删除失败只记日志，不影响本次修复
func removeStaleTemp(dir string, log *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("stale temp scan failed", "dir", dir, "err", err)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !isTempName(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			log.Warn("stale temp not removed", "path", path, "err", err)
			continue
		}
		log.Info("removed stale temp file", "path", path)
	}
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

// sameFile 判断输出路径是否指向某个输入文件
func sameFile(dst string, inputs ...string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return false, fmt.Errorf("stat %s: %w", in, err)
		}
		if os.SameFile(dstInfo, info) {
			return true, nil
		}
	}
	return false, nil
}
