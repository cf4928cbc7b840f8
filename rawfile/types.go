package rawfile

import (
	"bytes"
	"io"
)

// Format 修复策略
type Format int

const (
	FormatUnknown Format = iota
	// FormatCR2 单标记拼接 + 固定偏移字段清零
	FormatCR2
	// FormatTail ARW/NEF：尾部锚点对齐 + 补零
	FormatTail
)

func (f Format) String() string {
	switch f {
	case FormatCR2:
		return "CR2"
	case FormatTail:
		return "ARW_OR_NEF"
	default:
		return "UNKNOWN"
	}
}

// Family 分类结果：修复策略 + 参考文件的规范扩展名
// 扩展名用于匹配被加密文件 (*.<Ext>.*)
type Family struct {
	Format Format
	Ext    string
}

// Marker 用于定位结构边界的固定字节序列
type Marker struct {
	Name  string
	Bytes []byte
}

func (m Marker) String() string {
	return m.Name
}

// Bounds 尾部拼接使用的两个偏移量
// 两者来自同一个查找原语，但含义不同，不能混用
type Bounds struct {
	// TrustedPrefixEnd 参考文件中可信前缀的上界（M_TAIL 最后一次出现的位置）
	TrustedPrefixEnd int64
	// RecoverableTailStart 损坏文件中可恢复尾部的下界
	RecoverableTailStart int64
	// CorruptEnd 损坏文件长度
	CorruptEnd int64
}

// Padding 需要插入的零字节数
func (b Bounds) Padding() int64 {
	if b.RecoverableTailStart < b.TrustedPrefixEnd {
		return b.TrustedPrefixEnd - b.RecoverableTailStart
	}
	return 0
}

// Splice 拼接结果: 头部 || 零填充 || 数据体
type Splice struct {
	Format  Format
	Header  []byte
	Padding int64
	Body    []byte

	// Divergence 参考标记偏移与损坏文件标记偏移之差的绝对值
	Divergence int64
}

// Len 输出总长度 = 头部 + 填充 + 数据体
func (s *Splice) Len() int64 {
	return int64(len(s.Header)) + s.Padding + int64(len(s.Body))
}

// Suspicious 偏移差超过可信头部长度时，说明两个文件的布局可能不一致
func (s *Splice) Suspicious() bool {
	return s.Divergence > int64(len(s.Header))
}

var zeroBlock = make([]byte, 64*1024)

// WriteTo 按顺序写出头部、零填充和数据体
func (s *Splice) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := w.Write(s.Header)
	total += int64(n)
	if err != nil {
		return total, err
	}

	remaining := s.Padding
	for remaining > 0 {
		chunk := int64(len(zeroBlock))
		if remaining < chunk {
			chunk = remaining
		}
		n, err = w.Write(zeroBlock[:chunk])
		total += int64(n)
		if err != nil {
			return total, err
		}
		remaining -= chunk
	}

	n, err = w.Write(s.Body)
	total += int64(n)
	return total, err
}

// Bytes 返回完整输出（用于测试和小文件）
func (s *Splice) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(int(s.Len()))
	s.WriteTo(&buf)
	return buf.Bytes()
}
