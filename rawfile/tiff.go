package rawfile

import (
	"encoding/binary"
	"fmt"
	"strings"

	tiff "github.com/garyhouston/tiff66"
)

// IFD 一个图像文件目录，Depth 为 SubIFD 嵌套层数
type IFD struct {
	Depth int
	node  *tiff.IFDNode
}

// Container 解析出的 TIFF 容器（CR2/ARW/NEF 都基于 TIFF）
// IFDs 按 IFD0、IFD0 的 SubIFDs、IFD1 ... 的顺序展开
type Container struct {
	Order binary.ByteOrder
	IFDs  []*IFD
	buf   []byte
}

// ParseContainer 解析 TIFF 头部和 IFD 树（含 SubIFDs）
func ParseContainer(buf []byte) (*Container, error) {
	if len(buf) < tiffHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotTIFF, len(buf))
	}
	valid, order, ifdPos := tiff.GetHeader(buf)
	if !valid {
		return nil, fmt.Errorf("%w: %d bytes, no TIFF header", ErrNotTIFF, len(buf))
	}

	// 被截断或拼接过的文件可能出现指针环，tiff66 会无限递归
	if err := checkIFDLinks(buf, order, int64(ifdPos)); err != nil {
		return nil, err
	}

	root, err := tiff.GetIFDTree(buf, order, ifdPos, tiff.TIFFSpace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTIFF, err)
	}

	c := &Container{Order: order, buf: buf}
	c.flatten(root, 0)
	return c, nil
}

func (c *Container) flatten(node *tiff.IFDNode, depth int) {
	for n := node; n != nil && len(c.IFDs) < maxIFDs; n = n.Next {
		c.IFDs = append(c.IFDs, &IFD{Depth: depth, node: n})
		if depth >= maxIFDDepth {
			continue
		}
		for _, sub := range n.SubIFDs {
			if uint16(sub.Tag) == TagSubIFDs {
				c.flatten(sub.Node, depth+1)
			}
		}
	}
}

// checkIFDLinks 沿 next 和 SubIFDs 指针走一遍，拒绝环、越界和超出上限的结构
func checkIFDLinks(buf []byte, order binary.ByteOrder, start int64) error {
	visited := make(map[int64]bool)
	var walk func(offset int64, depth int) error
	walk = func(offset int64, depth int) error {
		for offset != 0 {
			if visited[offset] {
				return fmt.Errorf("%w: IFD loop at 0x%x", ErrNotTIFF, offset)
			}
			if len(visited) >= maxIFDs || depth > maxIFDDepth {
				return fmt.Errorf("%w: too many IFDs", ErrNotTIFF)
			}
			visited[offset] = true

			if offset < tiffHeaderSize || offset+2 > int64(len(buf)) {
				return fmt.Errorf("%w: IFD at 0x%x beyond end of file", ErrNotTIFF, offset)
			}
			n := int64(order.Uint16(buf[offset:]))
			end := offset + 2 + n*ifdEntrySize
			if n > maxIFDEntries || end+4 > int64(len(buf)) {
				return fmt.Errorf("%w: IFD at 0x%x truncated", ErrNotTIFF, offset)
			}

			for p := offset + 2; p < end; p += ifdEntrySize {
				if order.Uint16(buf[p:]) != TagSubIFDs {
					continue
				}
				count := int64(order.Uint32(buf[p+4:]))
				pos := p + 8
				if count > 1 {
					pos = int64(order.Uint32(buf[p+8:]))
				}
				for i := int64(0); i < count && i < maxIFDs; i++ {
					if pos+i*4+4 > int64(len(buf)) {
						return fmt.Errorf("%w: SubIFDs beyond end of file", ErrNotTIFF)
					}
					if err := walk(int64(order.Uint32(buf[pos+i*4:])), depth+1); err != nil {
						return err
					}
				}
			}
			offset = int64(order.Uint32(buf[end:]))
		}
		return nil
	}
	return walk(start, 0)
}

// Find 查找标签
func (ifd *IFD) Find(tag uint16) (tiff.Field, bool) {
	for _, f := range ifd.node.Fields {
		if uint16(f.Tag) == tag {
			return f, true
		}
	}
	return tiff.Field{}, false
}

// Tags 按文件中的顺序返回所有标签
func (ifd *IFD) Tags() []uint16 {
	tags := make([]uint16, len(ifd.node.Fields))
	for i, f := range ifd.node.Fields {
		tags[i] = uint16(f.Tag)
	}
	return tags
}

// Uint 读取 SHORT/LONG/IFD/BYTE 字段的第 i 个值
func (c *Container) Uint(f tiff.Field, i uint32) (uint32, bool) {
	if i >= f.Count {
		return 0, false
	}
	size := typeSize(uint16(f.Type))
	pos := int64(i) * size
	if pos+size > int64(len(f.Data)) {
		return 0, false
	}

	switch uint16(f.Type) {
	case typeShort:
		return uint32(c.Order.Uint16(f.Data[pos:])), true
	case typeLong, typeIFD:
		return c.Order.Uint32(f.Data[pos:]), true
	case typeByte, typeUndefined:
		return uint32(f.Data[pos]), true
	default:
		return 0, false
	}
}

// UintTag 读取 IFD 中某个标签的第一个值
func (c *Container) UintTag(ifd *IFD, tag uint16) (uint32, bool) {
	f, ok := ifd.Find(tag)
	if !ok {
		return 0, false
	}
	return c.Uint(f, 0)
}

// ASCII 读取 ASCII 字段，去掉结尾的 NUL 和空格
func (c *Container) ASCII(f tiff.Field) (string, bool) {
	if uint16(f.Type) != typeASCII {
		return "", false
	}
	s := string(f.Data)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s), true
}

// typeSize 返回每个数据类型的字节大小
func typeSize(typ uint16) int64 {
	switch typ {
	case typeByte, typeASCII, typeUndefined:
		return 1
	case typeShort:
		return 2
	case typeRational:
		return 8
	default:
		return 4
	}
}
