package rawfile

// 版本号
const Version = "0.1.0"

// 结构标记
var (
	// MarkerCR2 分隔 CR2 元数据块和传感器数据块 (SOI + DHT)
	MarkerCR2 = Marker{Name: "M_CR2", Bytes: []byte{0xFF, 0xD8, 0xFF, 0xC4}}

	// MarkerTail EOI 后跟两个填充字节，ARW/NEF 原始数据流中的锚点
	MarkerTail = Marker{Name: "M_TAIL", Bytes: []byte{0xFF, 0xD9, 0x00, 0x00}}
)

// CR2 头部中需要清零的字段 [0x62, 0x65)
// 该值与参考文件自身的数据体绑定，换上别的数据体后必须清零
const (
	CR2NeutralizeOffset = 0x62
	CR2NeutralizeLength = 3
)

// 支持的扩展名（大写）
const (
	ExtCR2 = "CR2"
	ExtARW = "ARW"
	ExtNEF = "NEF"
)

// TIFF 头部
const (
	tiffHeaderSize = 8
	ifdEntrySize   = 12
)

// TIFF 标签
const (
	TagCompression       uint16 = 0x0103
	TagMake              uint16 = 0x010F
	TagModel             uint16 = 0x0110
	TagStripOffsets      uint16 = 0x0111
	TagStripByteCounts   uint16 = 0x0117
	TagSubIFDs           uint16 = 0x014A
	TagJPEGInterchange   uint16 = 0x0201
	TagJPEGInterchangeLn uint16 = 0x0202
)

// TIFF 数据类型
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeUndefined = 7
	typeIFD       = 13
)

// 旧式 JPEG 压缩（CR2 IFD0/NEF 预览条带使用）
const compressionOldJPEG = 6

// IFD 遍历上限，防止损坏文件造成环或过深递归
const (
	maxIFDs       = 64
	maxIFDEntries = 4096
	maxIFDDepth   = 4
)
