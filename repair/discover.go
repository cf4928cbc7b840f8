package repair

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover 列出 dir 中名称匹配 *.<ext>.* 的文件（勒索软件在原扩展名后追加自己的后缀）
// 匹配不区分大小写，跳过目录和隐藏文件，按文件名排序
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &IOError{Op: "read dir", Path: dir, Err: err}
	}

	pattern := "*." + strings.ToUpper(ext) + ".*"
	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ok, err := filepath.Match(pattern, strings.ToUpper(name))
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, filepath.Join(dir, name))
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// RepairedName 去掉勒索软件追加的最后一个后缀
// IMG_0001.CR2.locked -> IMG_0001.CR2
func RepairedName(encryptedPath string) string {
	base := filepath.Base(encryptedPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConvertedName 转换输出名：再去掉原始扩展名并加上 ext
// IMG_0001.CR2.locked, .TIFF -> IMG_0001.TIFF
func ConvertedName(encryptedPath, ext string) string {
	repaired := RepairedName(encryptedPath)
	return strings.TrimSuffix(repaired, filepath.Ext(repaired)) + ext
}
