package repair

import (
	"fmt"
	"strings"

	"github.com/weaming/rawrepair-go/rawfile"
)

// FileResult 单个文件的修复结果
type FileResult struct {
	Source    string
	Repaired  string
	Converted string

	Size       int64
	Padding    int64
	Divergence int64
	Suspicious bool
}

// Report 批处理报告
type Report struct {
	Reference    string
	Format       rawfile.Format
	Camera       rawfile.CameraInfo
	RepairedDir  string
	ConvertedDir string
	DryRun       bool
	Files        []FileResult
}

// Suspicious 返回偏移差异常的文件数
func (r *Report) Suspicious() int {
	n := 0
	for _, f := range r.Files {
		if f.Suspicious {
			n++
		}
	}
	return n
}

// Summary 结束时给用户的摘要
func (r *Report) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		fmt.Fprintf(&sb, "演练模式：%d 个文件可修复，未写入任何文件。", len(r.Files))
		return sb.String()
	}

	fmt.Fprintf(&sb, "已修复 %d 个文件，保存在 '%s' 目录。", len(r.Files), r.RepairedDir)
	if r.ConvertedDir != "" {
		fmt.Fprintf(&sb, "\n转换结果保存在 '%s' 目录。", r.ConvertedDir)
	}
	if n := r.Suspicious(); n > 0 {
		fmt.Fprintf(&sb, "\n%d 个文件的标记偏移与参考文件差异过大，修复结果可能不可用。", n)
	}
	return sb.String()
}
