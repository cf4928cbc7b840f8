package rawfile

// Buffer 整个文件内容的只读视图
// 在 linux/darwin 上是 PROT_READ 映射，其他平台读入内存
type Buffer struct {
	path    string
	data    []byte
	release func() error
}

// Path 返回来源路径
func (b *Buffer) Path() string {
	return b.path
}

// Bytes 返回文件内容，调用方不得修改
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len 返回文件长度
func (b *Buffer) Len() int64 {
	return int64(len(b.data))
}

// Close 释放映射，之后 Bytes 返回的切片不可再用
func (b *Buffer) Close() error {
	b.data = nil
	if b.release == nil {
		return nil
	}
	release := b.release
	b.release = nil
	return release()
}
