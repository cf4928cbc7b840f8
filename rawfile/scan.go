package rawfile

import "bytes"

// FindLast 返回 marker 在 buf 中最后一次出现的偏移
// 标记可能在缩略图/预览流中提前出现，结构上有意义的是最后一次
func FindLast(buf []byte, m Marker) (int64, bool) {
	if len(m.Bytes) == 0 {
		return 0, false
	}
	pos := bytes.LastIndex(buf, m.Bytes)
	if pos < 0 {
		return 0, false
	}
	return int64(pos), true
}
