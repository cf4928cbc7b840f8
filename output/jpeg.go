package output

import (
	"image"
	"image/jpeg"
	"os"
)

// JPEGOptions JPEG 输出选项
type JPEGOptions struct {
	Quality int // 1-100, 默认 95
}

// 写入 JPEG 文件
func WriteJPEG(img image.Image, filename string, opts JPEGOptions) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	// 设置质量
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 95
	}

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: quality}); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
