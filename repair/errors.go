package repair

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/weaming/rawrepair-go/rawfile"
)

// Kind 错误类别
// UnsupportedFormat、MarkerNotFound、IoError、ConversionError 是对外的四类错误
// HeaderTooShort 是额外的一类：CR2 参考文件的标记落在 0x65 之前，无法清零 0x62..0x65
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupportedFormat
	KindMarkerNotFound
	// KindHeaderTooShort 参考文件本身不可用，换一个参考文件重试
	KindHeaderTooShort
	KindIO
	KindConversion
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindMarkerNotFound:
		return "MarkerNotFound"
	case KindHeaderTooShort:
		return "HeaderTooShort"
	case KindIO:
		return "IoError"
	case KindConversion:
		return "ConversionError"
	default:
		return "Unknown"
	}
}

// KindOf 对任意错误分类
func KindOf(err error) Kind {
	var convErr *ConversionError
	var pathErr *fs.PathError
	var ioErr *IOError

	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, rawfile.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, rawfile.ErrMarkerNotFound):
		return KindMarkerNotFound
	case errors.Is(err, rawfile.ErrHeaderTooShort):
		return KindHeaderTooShort
	case errors.As(err, &convErr):
		return KindConversion
	case errors.As(err, &ioErr), errors.As(err, &pathErr):
		return KindIO
	default:
		return KindUnknown
	}
}

// IOError 读写/创建失败
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ConversionError 转换协作者返回的错误
type ConversionError struct {
	RawPath string
	OutPath string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s -> %s: %v", e.RawPath, e.OutPath, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// FileError 批处理的终止错误，带出错文件名
// 已写出的文件保留，不回滚
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %v", e.Kind(), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Kind(), e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Kind 返回底层错误的类别
func (e *FileError) Kind() Kind {
	return KindOf(e.Err)
}
