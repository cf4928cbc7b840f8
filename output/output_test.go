package output

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaming/rawrepair-go/rawfile"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var (
	red  = color.RGBA{200, 40, 40, 255}
	blue = color.RGBA{40, 40, 200, 255}
)

func encodeJPEG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h, c), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// previewSlot 预览在文件中占用的固定长度，不同颜色的 JPEG 长度不同，补齐后布局一致
const previewSlot = 2048

func slot(t *testing.T, data []byte) []byte {
	t.Helper()
	require.LessOrEqual(t, len(data), previewSlot)
	return append(append([]byte(nil), data...), bytes.Repeat([]byte{0x5A}, previewSlot-len(data))...)
}

// sampleRaw 构造一个带两个嵌入预览的 TIFF 容器:
// JPEGInterchangeFormat 指向小预览，Compression=6 的条带指向大预览
// 之后是一段 CR2 风格的传感器数据
func sampleRaw(t *testing.T, small, large []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0x49, 0x49, 42, 0, tiffHeaderLen, 0, 0, 0})

	ifd := NewIFDWriter(&buf, tiffHeaderLen)
	ifd.AddASCII(rawfile.TagMake, "Canon")
	ifd.AddASCII(rawfile.TagModel, "Canon EOS 5D Mark III")
	ifd.AddShort(TagCompression, 6)
	strip := ifd.ReservePointer(TagStripOffsets)
	ifd.AddLong(TagStripByteCounts, uint32(len(large)))
	jif := ifd.ReservePointer(rawfile.TagJPEGInterchange)
	ifd.AddLong(rawfile.TagJPEGInterchangeLn, uint32(len(small)))

	end := uint32(ifd.EndPosition())
	require.NoError(t, ifd.UpdatePointer(jif, end))
	require.NoError(t, ifd.UpdatePointer(strip, end+uint32(len(small))))

	pos, err := ifd.Write()
	require.NoError(t, err)
	require.Equal(t, int64(end), pos)

	buf.Write(small)
	buf.Write(large)
	buf.Write(rawfile.MarkerCR2.Bytes)
	buf.Write(bytes.Repeat([]byte{0x5A}, 64))
	return buf.Bytes()
}

// markedRaw 构造一个数据体中也带预览的原始文件:
//
//	文件头 | IFD0 | header 预览 (Compression=6 条带) | 标记 | body 预览 (JPEGInterchangeFormat) | 传感器数据
//
// 两个预览都占 previewSlot 字节，所以同一机型的两份文件布局相同
func markedRaw(t *testing.T, marker rawfile.Marker, header, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0x49, 0x49, 42, 0, tiffHeaderLen, 0, 0, 0})

	ifd := NewIFDWriter(&buf, tiffHeaderLen)
	ifd.AddASCII(rawfile.TagMake, "NIKON CORPORATION")
	ifd.AddASCII(rawfile.TagModel, "NIKON D750")
	ifd.AddShort(TagCompression, 6)
	strip := ifd.ReservePointer(TagStripOffsets)
	ifd.AddLong(TagStripByteCounts, previewSlot)
	jif := ifd.ReservePointer(rawfile.TagJPEGInterchange)
	ifd.AddLong(rawfile.TagJPEGInterchangeLn, previewSlot)

	end := uint32(ifd.EndPosition())
	require.NoError(t, ifd.UpdatePointer(strip, end))
	require.NoError(t, ifd.UpdatePointer(jif, end+previewSlot+uint32(len(marker.Bytes))))
	_, err := ifd.Write()
	require.NoError(t, err)

	buf.Write(slot(t, header))
	buf.Write(marker.Bytes)
	buf.Write(slot(t, body))
	buf.Write(bytes.Repeat([]byte{0x5A}, 256))
	return buf.Bytes()
}

func TestIFDWriterLayout(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x49, 0x49, 42, 0, tiffHeaderLen, 0, 0, 0})

	ifd := NewIFDWriter(&buf, tiffHeaderLen)
	ifd.AddLong(TagImageLength, 7)
	ifd.AddASCII(TagSoftware, "abc")
	ifd.AddShort(TagImageWidth, 9)
	ifd.AddRational(TagXResolution, 300, 1)

	// 4 个条目 + 一个 8 字节 RATIONAL 在 pointer area
	assert.Equal(t, int64(tiffHeaderLen+2+4*12+4+8), ifd.EndPosition())
	pos, err := ifd.Write()
	require.NoError(t, err)
	assert.Equal(t, ifd.EndPosition(), pos)
	assert.Equal(t, int(pos), buf.Len())

	c, err := rawfile.ParseContainer(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, c.IFDs, 1)

	assert.Equal(t, []uint16{TagImageWidth, TagImageLength, TagXResolution, TagSoftware}, c.IFDs[0].Tags())

	v, ok := c.UintTag(c.IFDs[0], TagImageWidth)
	require.True(t, ok)
	assert.Equal(t, uint32(9), v)

	e, _ := c.IFDs[0].Find(TagSoftware)
	s, ok := c.ASCII(e)
	require.True(t, ok)
	assert.Equal(t, "abc", s)
}

func TestIFDWriterUpdatePointerRange(t *testing.T) {
	ifd := NewIFDWriter(&bytes.Buffer{}, tiffHeaderLen)
	idx := ifd.ReservePointer(TagStripOffsets)
	assert.NoError(t, ifd.UpdatePointer(idx, 100))
	assert.Error(t, ifd.UpdatePointer(idx+1, 100))
	assert.Error(t, ifd.UpdatePointer(-1, 100))
}

func TestEncodeTIFF(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	var buf bytes.Buffer
	require.NoError(t, encodeTIFF(&buf, img))
	data := buf.Bytes()

	c, err := rawfile.ParseContainer(data)
	require.NoError(t, err)
	require.Len(t, c.IFDs, 1)
	ifd := c.IFDs[0]

	width, _ := c.UintTag(ifd, TagImageWidth)
	height, _ := c.UintTag(ifd, TagImageLength)
	assert.Equal(t, uint32(3), width)
	assert.Equal(t, uint32(2), height)

	spp, _ := c.UintTag(ifd, TagSamplesPerPixel)
	assert.Equal(t, uint32(3), spp)

	e, ok := ifd.Find(TagBitsPerSample)
	require.True(t, ok)
	assert.Equal(t, uint32(3), e.Count)

	offset, _ := c.UintTag(ifd, TagStripOffsets)
	count, _ := c.UintTag(ifd, TagStripByteCounts)
	require.Equal(t, uint32(18), count)
	require.Equal(t, len(data), int(offset+count))

	want := make([]byte, 0, 18)
	for i := 0; i < len(img.Pix); i += 4 {
		want = append(want, img.Pix[i], img.Pix[i+1], img.Pix[i+2])
	}
	assert.Equal(t, want, data[offset:])

	sw, _ := ifd.Find(TagSoftware)
	s, _ := c.ASCII(sw)
	assert.Equal(t, "rawrepair-go "+rawfile.Version, s)
}

func TestEncodeTIFFEmpty(t *testing.T) {
	err := encodeTIFF(&bytes.Buffer{}, image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
}

func TestDecodePreviewPicksLargest(t *testing.T) {
	raw := sampleRaw(t, encodeJPEG(t, 16, 8, red), encodeJPEG(t, 64, 32, red))

	img, err := DecodePreview(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	info, err := rawfile.ExtractCameraInfo(raw)
	require.NoError(t, err)
	assert.Equal(t, "Canon EOS 5D Mark III", info.Model)
	assert.Equal(t, 2, info.Previews)
}

func TestDecodePreviewSkipsUndecodable(t *testing.T) {
	// 以 SOI 开头但无法解码的流，如 CR2 的无损 JPEG
	bogus := append([]byte{0xFF, 0xD8, 0xFF, 0xC3}, bytes.Repeat([]byte{0x11}, 4096)...)
	raw := sampleRaw(t, encodeJPEG(t, 16, 8, red), bogus)

	img, err := DecodePreview(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
}

func TestDecodePreviewNone(t *testing.T) {
	bogus := []byte{0xFF, 0xD8, 0x00, 0x00, 0x00}
	_, err := DecodePreview(sampleRaw(t, bogus, bogus), 0)
	assert.ErrorIs(t, err, ErrNoPreview)

	_, err = DecodePreview(bytes.Repeat([]byte{0xEE}, 128), 0)
	assert.ErrorIs(t, err, rawfile.ErrNotTIFF)
}

func TestDecodePreviewSkipsHeaderRegion(t *testing.T) {
	raw := markedRaw(t, rawfile.MarkerTail, encodeJPEG(t, 64, 32, red), encodeJPEG(t, 16, 8, blue))
	body, err := rawfile.BodyOffset(rawfile.FormatTail, raw)
	require.NoError(t, err)

	img, err := DecodePreview(raw, body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())

	img, err = DecodePreview(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), img.Bounds())

	_, err = DecodePreview(raw, int64(len(raw)))
	assert.ErrorIs(t, err, ErrNoPreview)
}

func TestPreviewConverter(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "IMG_0001.CR2")
	raw := markedRaw(t, rawfile.MarkerCR2, encodeJPEG(t, 64, 32, red), encodeJPEG(t, 40, 24, red))
	require.NoError(t, os.WriteFile(rawPath, raw, 0o644))

	conv := NewPreviewConverter(Config{Quality: 80})

	tiffPath := filepath.Join(dir, "IMG_0001.TIFF")
	require.NoError(t, conv.Convert(rawPath, tiffPath))
	data, err := os.ReadFile(tiffPath)
	require.NoError(t, err)
	c, err := rawfile.ParseContainer(data)
	require.NoError(t, err)
	width, _ := c.UintTag(c.IFDs[0], TagImageWidth)
	assert.Equal(t, uint32(40), width)

	jpgPath := filepath.Join(dir, "IMG_0001.JPG")
	require.NoError(t, conv.Convert(rawPath, jpgPath))
	f, err := os.Open(jpgPath)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 24, cfg.Height)

	assert.Error(t, conv.Convert(rawPath, filepath.Join(dir, "IMG_0001.PNG")))
	assert.Error(t, conv.Convert(filepath.Join(dir, "missing.CR2"), tiffPath))
}

// tiffPixel 读取 encodeTIFF 输出中 (0,0) 的 RGB
func tiffPixel(t *testing.T, path string) (width uint32, rgb []byte) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	c, err := rawfile.ParseContainer(data)
	require.NoError(t, err)
	width, _ = c.UintTag(c.IFDs[0], TagImageWidth)
	offset, ok := c.UintTag(c.IFDs[0], TagStripOffsets)
	require.True(t, ok)
	return width, data[offset : offset+3]
}

func TestConvertSplicedTail(t *testing.T) {
	// 参考文件和损坏文件是同一机型拍的两张不同照片
	ref := markedRaw(t, rawfile.MarkerTail, encodeJPEG(t, 64, 32, red), encodeJPEG(t, 16, 8, red))
	corrupt := markedRaw(t, rawfile.MarkerTail, encodeJPEG(t, 64, 32, blue), encodeJPEG(t, 16, 8, blue))
	s, err := rawfile.SpliceTail(ref, corrupt)
	require.NoError(t, err)

	dir := t.TempDir()
	rawPath := filepath.Join(dir, "DSC_0001.NEF")
	require.NoError(t, os.WriteFile(rawPath, s.Bytes(), 0o644))

	tiffPath := filepath.Join(dir, "DSC_0001.TIFF")
	require.NoError(t, NewPreviewConverter(Config{}).Convert(rawPath, tiffPath))

	// 头部里更大的预览是参考文件的照片，不能被选中
	width, rgb := tiffPixel(t, tiffPath)
	assert.Equal(t, uint32(16), width)
	assert.Greater(t, int(rgb[2]), int(rgb[0])+100, "got %v", rgb)
}

func TestConvertSplicedCR2HeaderOnlyPreviews(t *testing.T) {
	ref := sampleRaw(t, encodeJPEG(t, 16, 8, red), encodeJPEG(t, 64, 32, red))
	corrupt := sampleRaw(t, encodeJPEG(t, 16, 8, blue), encodeJPEG(t, 64, 32, blue))
	s, err := rawfile.SpliceCR2(ref, corrupt)
	require.NoError(t, err)

	dir := t.TempDir()
	rawPath := filepath.Join(dir, "IMG_0001.CR2")
	require.NoError(t, os.WriteFile(rawPath, s.Bytes(), 0o644))

	// 所有预览都在参考文件的头部区域，没有可用的预览
	tiffPath := filepath.Join(dir, "IMG_0001.TIFF")
	err = NewPreviewConverter(Config{}).Convert(rawPath, tiffPath)
	require.ErrorIs(t, err, ErrNoPreview)
	assert.Contains(t, err.Error(), "IMG_0001.CR2")
	assert.NoFileExists(t, tiffPath)
}

func TestToRGB8YCbCr(t *testing.T) {
	img, err := jpeg.Decode(bytes.NewReader(encodeJPEG(t, 8, 8, red)))
	require.NoError(t, err)
	ycc, isYCbCr := img.(*image.YCbCr)
	require.True(t, isYCbCr)

	pixels, w, h := toRGB8(img)
	require.Equal(t, 8, w)
	require.Equal(t, 8, h)
	require.Len(t, pixels, 8*8*3)

	c := ycc.YCbCrAt(3, 3)
	r, g, b := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
	i := (3*8 + 3) * 3
	assert.Equal(t, []byte{r, g, b}, pixels[i:i+3])
}
