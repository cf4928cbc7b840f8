package output

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/weaming/rawrepair-go/rawfile"
)

// TIFF 标签
const (
	TagImageWidth           = 256
	TagImageLength          = 257
	TagBitsPerSample        = 258
	TagCompression          = 259
	TagPhotometricInterpret = 262
	TagStripOffsets         = 273
	TagSamplesPerPixel      = 277
	TagRowsPerStrip         = 278
	TagStripByteCounts      = 279
	TagXResolution          = 282
	TagYResolution          = 283
	TagPlanarConfiguration  = 284
	TagResolutionUnit       = 296
	TagSoftware             = 305
)

// TIFF 数据类型
const (
	TypeByte      = 1
	TypeASCII     = 2
	TypeShort     = 3
	TypeLong      = 4
	TypeRational  = 5
	TypeUndefined = 7
)

// TIFF 文件头长度，IFD 紧随其后
const tiffHeaderLen = 8

// WriteTIFF 写入 8-bit RGB、未压缩、单条带的基线 TIFF
func WriteTIFF(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := encodeTIFF(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// encodeTIFF 布局: 文件头 | IFD | pointer area | 像素数据
func encodeTIFF(out io.Writer, img image.Image) error {
	pixels, width, height := toRGB8(img)
	if width == 0 || height == 0 {
		return fmt.Errorf("图像为空")
	}

	w := bufio.NewWriter(out)

	// 字节序 II，版本号 42，IFD 偏移 8
	header := []byte{0x49, 0x49, 42, 0, tiffHeaderLen, 0, 0, 0}
	if _, err := w.Write(header); err != nil {
		return err
	}

	ifd := NewIFDWriter(w, tiffHeaderLen)
	ifd.AddLong(TagImageWidth, uint32(width))
	ifd.AddLong(TagImageLength, uint32(height))
	ifd.AddShortArray(TagBitsPerSample, []uint16{8, 8, 8})
	ifd.AddShort(TagCompression, 1)          // 无压缩
	ifd.AddShort(TagPhotometricInterpret, 2) // RGB
	stripOffsets := ifd.ReservePointer(TagStripOffsets)
	ifd.AddShort(TagSamplesPerPixel, 3)
	ifd.AddLong(TagRowsPerStrip, uint32(height))
	ifd.AddLong(TagStripByteCounts, uint32(len(pixels)))
	ifd.AddRational(TagXResolution, 72, 1)
	ifd.AddRational(TagYResolution, 72, 1)
	ifd.AddShort(TagPlanarConfiguration, 1) // chunky
	ifd.AddShort(TagResolutionUnit, 2)      // inches
	ifd.AddASCII(TagSoftware, "rawrepair-go "+rawfile.Version)

	if err := ifd.UpdatePointer(stripOffsets, uint32(ifd.EndPosition())); err != nil {
		return err
	}
	if _, err := ifd.Write(); err != nil {
		return err
	}

	if _, err := w.Write(pixels); err != nil {
		return err
	}
	return w.Flush()
}
