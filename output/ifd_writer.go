package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// IFDWriter 自动管理 IFD 标签和外部数据偏移的写入器
//  1. 条目按 tag 升序写出
//  2. 不超过 4 字节的值内联，其余放进紧跟 IFD 的 pointer area
//  3. 指针类标签可以先占位，布局确定后再回填
type IFDWriter struct {
	w        io.Writer
	order    binary.ByteOrder
	entries  []*TagEntry
	startPos int64
}

// TagEntry IFD 标签条目，数据统一用 uint32 存储（RATIONAL = 2 个 uint32）
type TagEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []uint32
}

// NewIFDWriter 创建 IFD 写入器，startPos 是 IFD 在文件中的偏移
func NewIFDWriter(w io.Writer, startPos int64) *IFDWriter {
	return &IFDWriter{
		w:        w,
		order:    binary.LittleEndian,
		startPos: startPos,
	}
}

// byteSizeForType 返回每个数据类型的字节大小
func byteSizeForType(typ uint16) int {
	switch typ {
	case TypeByte, TypeASCII, TypeUndefined:
		return 1
	case TypeShort:
		return 2
	case TypeRational:
		return 8
	default:
		return 4
	}
}

func (e *TagEntry) dataLen() int {
	return int(e.count) * byteSizeForType(e.typ)
}

// putData 将 uint32 数组写入字节缓冲区
func (e *TagEntry) putData(p []byte, order binary.ByteOrder) {
	for _, d := range e.data {
		switch e.typ {
		case TypeByte, TypeASCII, TypeUndefined:
			p[0] = byte(d)
			p = p[1:]
		case TypeShort:
			order.PutUint16(p, uint16(d))
			p = p[2:]
		default:
			order.PutUint32(p, d)
			p = p[4:]
		}
	}
}

// AddShort 添加 SHORT 类型标签
func (w *IFDWriter) AddShort(tag uint16, value uint16) {
	w.AddShortArray(tag, []uint16{value})
}

// AddShortArray 添加 SHORT 数组
func (w *IFDWriter) AddShortArray(tag uint16, values []uint16) {
	data := make([]uint32, len(values))
	for i, v := range values {
		data[i] = uint32(v)
	}
	w.entries = append(w.entries, &TagEntry{tag: tag, typ: TypeShort, count: uint32(len(values)), data: data})
}

// AddLong 添加 LONG 类型标签
func (w *IFDWriter) AddLong(tag uint16, value uint32) {
	w.entries = append(w.entries, &TagEntry{tag: tag, typ: TypeLong, count: 1, data: []uint32{value}})
}

// AddASCII 添加以 NUL 结尾的 ASCII 字符串
func (w *IFDWriter) AddASCII(tag uint16, str string) {
	data := make([]uint32, len(str)+1)
	for i := 0; i < len(str); i++ {
		data[i] = uint32(str[i])
	}
	w.entries = append(w.entries, &TagEntry{tag: tag, typ: TypeASCII, count: uint32(len(data)), data: data})
}

// AddRational 添加 RATIONAL（分子/分母）
func (w *IFDWriter) AddRational(tag uint16, numerator, denominator uint32) {
	w.entries = append(w.entries, &TagEntry{tag: tag, typ: TypeRational, count: 1, data: []uint32{numerator, denominator}})
}

// ReservePointer 预留一个 LONG 指针位置，返回 entry 索引
func (w *IFDWriter) ReservePointer(tag uint16) int {
	w.entries = append(w.entries, &TagEntry{tag: tag, typ: TypeLong, count: 1, data: []uint32{0}})
	return len(w.entries) - 1
}

// UpdatePointer 回填预留的指针值
func (w *IFDWriter) UpdatePointer(index int, offset uint32) error {
	if index < 0 || index >= len(w.entries) {
		return fmt.Errorf("ifd: pointer index %d out of range", index)
	}
	w.entries[index].data[0] = offset
	return nil
}

// EndPosition IFD 和 pointer area 写完后的文件位置，即后续数据的偏移
func (w *IFDWriter) EndPosition() int64 {
	pos := w.startPos + int64(2+len(w.entries)*ifdEntryLen+4)
	for _, e := range w.entries {
		if n := e.dataLen(); n > 4 {
			pos += int64(n)
		}
	}
	return pos
}

const ifdEntryLen = 12

// Write 写入 IFD（next 偏移为 0）和 pointer area，返回写入后的文件位置
func (w *IFDWriter) Write() (int64, error) {
	// 先按 tag 排序，回填索引必须在此之前使用
	sort.SliceStable(w.entries, func(i, j int) bool {
		return w.entries[i].tag < w.entries[j].tag
	})

	numEntries := len(w.entries)
	pareaOffset := w.startPos + int64(2+numEntries*ifdEntryLen+4)

	var parea []byte
	ifd := make([]byte, 2+numEntries*ifdEntryLen+4)
	w.order.PutUint16(ifd[0:2], uint16(numEntries))

	for i, entry := range w.entries {
		buf := ifd[2+i*ifdEntryLen : 2+(i+1)*ifdEntryLen]
		w.order.PutUint16(buf[0:2], entry.tag)
		w.order.PutUint16(buf[2:4], entry.typ)
		w.order.PutUint32(buf[4:8], entry.count)

		datalen := entry.dataLen()
		if datalen <= 4 {
			entry.putData(buf[8:12], w.order)
			continue
		}

		w.order.PutUint32(buf[8:12], uint32(pareaOffset+int64(len(parea))))
		start := len(parea)
		parea = append(parea, make([]byte, datalen)...)
		entry.putData(parea[start:], w.order)
	}
	// next IFD = 0

	if _, err := w.w.Write(ifd); err != nil {
		return 0, err
	}
	if _, err := w.w.Write(parea); err != nil {
		return 0, err
	}

	return pareaOffset + int64(len(parea)), nil
}
