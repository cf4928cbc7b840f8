package rawfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Classify 根据参考文件扩展名（不区分大小写）确定修复策略
// 不检查文件内容
func Classify(referencePath string) (Family, error) {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(referencePath), "."))

	switch ext {
	case ExtCR2:
		return Family{Format: FormatCR2, Ext: ext}, nil
	case ExtARW, ExtNEF:
		return Family{Format: FormatTail, Ext: ext}, nil
	default:
		return Family{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(referencePath))
	}
}
