package output

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
)

// Config 转换输出配置
type Config struct {
	Quality int // 仅 JPEG
}

// Export 按输出扩展名分派编码器
func Export(img image.Image, filename string, config Config) error {
	if img == nil {
		return fmt.Errorf("图像为空")
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".tiff", ".tif":
		return WriteTIFF(img, filename)
	case ".jpg", ".jpeg":
		return WriteJPEG(img, filename, JPEGOptions{Quality: config.Quality})
	default:
		return fmt.Errorf("不支持的输出格式: %s", ext)
	}
}

// toRGB8 转成交错排列的 8-bit RGB
func toRGB8(img image.Image) ([]byte, int, int) {
	if img == nil {
		return nil, 0, 0
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	out := make([]byte, width*height*3)

	// JPEG 解码结果通常是 YCbCr，直接转换避免逐像素接口调用
	if ycc, ok := img.(*image.YCbCr); ok {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				yi := ycc.YOffset(x, y)
				ci := ycc.COffset(x, y)
				r, g, bl := color.YCbCrToRGB(ycc.Y[yi], ycc.Cb[ci], ycc.Cr[ci])
				out[i], out[i+1], out[i+2] = r, g, bl
				i += 3
			}
		}
		return out, width, height
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out[i], out[i+1], out[i+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			i += 3
		}
	}
	return out, width, height
}
