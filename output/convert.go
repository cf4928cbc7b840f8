package output

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"

	"github.com/weaming/rawrepair-go/rawfile"
)

// ErrNoPreview 恢复出的数据体中没有可解码的嵌入 JPEG
var ErrNoPreview = errors.New("output: no decodable embedded preview in recovered body")

// PreviewConverter 把修复后的原始文件转换成栅格图像
// 只解码完全位于数据体中的嵌入 JPEG 预览，不做去马赛克
// 头部区域来自参考文件，其中的预览是另一张照片，一律不用
type PreviewConverter struct {
	Config Config
}

// NewPreviewConverter 创建转换器
func NewPreviewConverter(config Config) *PreviewConverter {
	return &PreviewConverter{Config: config}
}

// Convert 实现 repair.Converter
// rawPath 的扩展名决定按哪种标记定位数据体
func (c *PreviewConverter) Convert(rawPath, outPath string) error {
	family, err := rawfile.Classify(rawPath)
	if err != nil {
		return err
	}

	buf, err := rawfile.Load(rawPath)
	if err != nil {
		return err
	}
	defer buf.Close()

	body, err := rawfile.BodyOffset(family.Format, buf.Bytes())
	if err != nil {
		return err
	}

	img, err := DecodePreview(buf.Bytes(), body)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(rawPath), err)
	}

	return Export(img, outPath, c.Config)
}

// DecodePreview 解码起点不早于 bodyStart 的嵌入 JPEG 中像素数最多的一个
// 标准库无法解码的流（如 CR2 的无损传感器数据）被跳过
func DecodePreview(raw []byte, bodyStart int64) (image.Image, error) {
	container, err := rawfile.ParseContainer(raw)
	if err != nil {
		return nil, err
	}

	var best []byte
	bestArea := 0
	for _, p := range container.FindPreviews() {
		if p.Offset < bodyStart {
			continue
		}
		data := p.Data(raw)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			continue
		}
		if area := cfg.Width * cfg.Height; area > bestArea {
			best, bestArea = data, area
		}
	}
	if best == nil {
		return nil, ErrNoPreview
	}

	img, err := jpeg.Decode(bytes.NewReader(best))
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview: %w", err)
	}
	return img, nil
}
