package rawfile

import "encoding/binary"

// CameraInfo 从 IFD0 读到的相机信息
type CameraInfo struct {
	Make      string // 制造商
	Model     string // 相机型号
	ByteOrder string // "II" 或 "MM"
	IFDs      int    // 解析到的 IFD 数量
	Previews  int    // 嵌入 JPEG 流数量
}

// Name 返回 "Make Model"，缺失时返回 "unknown"
func (c CameraInfo) Name() string {
	switch {
	case c.Make == "" && c.Model == "":
		return "unknown"
	case c.Make == "":
		return c.Model
	case c.Model == "":
		return c.Make
	default:
		return c.Make + " " + c.Model
	}
}

// ExtractCameraInfo 从 TIFF 容器中提取相机信息
// 头部被加密的文件会返回 ErrNotTIFF
func ExtractCameraInfo(buf []byte) (CameraInfo, error) {
	c, err := ParseContainer(buf)
	if err != nil {
		return CameraInfo{}, err
	}

	info := CameraInfo{
		ByteOrder: "II",
		IFDs:      len(c.IFDs),
		Previews:  len(c.FindPreviews()),
	}
	if c.Order == binary.BigEndian {
		info.ByteOrder = "MM"
	}

	if len(c.IFDs) > 0 {
		ifd0 := c.IFDs[0]
		if e, ok := ifd0.Find(TagMake); ok {
			info.Make, _ = c.ASCII(e)
		}
		if e, ok := ifd0.Find(TagModel); ok {
			info.Model, _ = c.ASCII(e)
		}
	}

	return info, nil
}
