//go:build !linux && !darwin

package rawfile

import (
	"fmt"
	"io"
	"os"
)

// Load 在非 unix 平台上把整个文件读入内存
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("failed to open file: %s is a directory", path)
	}

	data := make([]byte, stat.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &Buffer{path: path, data: data}, nil
}
