package rawfile

// Preview 嵌入在原始文件中的 JPEG 流
type Preview struct {
	IFD    int
	Offset int64
	Length int64
}

// Data 返回预览流字节
func (p Preview) Data(buf []byte) []byte {
	return buf[p.Offset : p.Offset+p.Length]
}

// FindPreviews 收集所有以 SOI 开头的嵌入 JPEG 流
//   - JPEGInterchangeFormat / JPEGInterchangeFormatLength（ARW、NEF）
//   - Compression=6 的单条带（CR2 IFD0、NEF 预览）
//
// CR2 的无损传感器数据也是 JPEG 流，是否可解码由调用方判断
func (c *Container) FindPreviews() []Preview {
	var previews []Preview
	seen := make(map[int64]bool)

	add := func(idx int, offset, length uint32) {
		off, n := int64(offset), int64(length)
		if n < 4 || off < 0 || off+n > int64(len(c.buf)) || seen[off] {
			return
		}
		if c.buf[off] != 0xFF || c.buf[off+1] != 0xD8 {
			return
		}
		seen[off] = true
		previews = append(previews, Preview{IFD: idx, Offset: off, Length: n})
	}

	for idx, ifd := range c.IFDs {
		if off, ok := c.UintTag(ifd, TagJPEGInterchange); ok {
			if n, ok := c.UintTag(ifd, TagJPEGInterchangeLn); ok {
				add(idx, off, n)
			}
		}

		compression, _ := c.UintTag(ifd, TagCompression)
		if compression != compressionOldJPEG {
			continue
		}
		offsets, ok1 := ifd.Find(TagStripOffsets)
		counts, ok2 := ifd.Find(TagStripByteCounts)
		if !ok1 || !ok2 || offsets.Count != 1 || counts.Count != 1 {
			continue
		}
		off, ok1 := c.Uint(offsets, 0)
		n, ok2 := c.Uint(counts, 0)
		if ok1 && ok2 {
			add(idx, off, n)
		}
	}

	return previews
}
