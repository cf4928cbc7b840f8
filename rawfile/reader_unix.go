//go:build linux || darwin

package rawfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Load 以只读方式映射整个文件
// 映射建立后立即关闭文件描述符
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

	size := stat.Size()
	if size == 0 {
		// 长度为 0 的文件无法映射
		return &Buffer{path: path, data: []byte{}}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("file too large to map: %d bytes", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	return &Buffer{
		path: path,
		data: data,
		release: func() error {
			return unix.Munmap(data)
		},
	}, nil
}
