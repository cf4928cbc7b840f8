package rawfile

import "fmt"

// 缓冲区角色，用于错误信息
const (
	roleReference = "reference"
	roleCorrupt   = "corrupt"
	roleRepaired  = "repaired"
)

func findRequired(buf []byte, m Marker, role string) (int64, error) {
	pos, ok := FindLast(buf, m)
	if !ok {
		return 0, fmt.Errorf("%w: %s in %s buffer", ErrMarkerNotFound, m, role)
	}
	return pos, nil
}

// SpliceCR2 用参考文件的头部和损坏文件的传感器数据体拼出 CR2
//
//	header = reference[:refPos]，并将 header[0x62:0x65] 清零
//	body   = corrupt[corruptPos:]
//
// 假设两个文件来自同一机型/固件，头部布局完全一致
func SpliceCR2(reference, corrupt []byte) (*Splice, error) {
	refPos, err := findRequired(reference, MarkerCR2, roleReference)
	if err != nil {
		return nil, err
	}
	if refPos < CR2NeutralizeOffset+CR2NeutralizeLength {
		return nil, fmt.Errorf("%w: %d bytes before %s, need at least %d",
			ErrHeaderTooShort, refPos, MarkerCR2, CR2NeutralizeOffset+CR2NeutralizeLength)
	}

	corruptPos, err := findRequired(corrupt, MarkerCR2, roleCorrupt)
	if err != nil {
		return nil, err
	}

	// 输入可能是只读映射，必须复制后再修改
	header := make([]byte, refPos)
	copy(header, reference[:refPos])
	for i := 0; i < CR2NeutralizeLength; i++ {
		header[CR2NeutralizeOffset+i] = 0
	}

	return &Splice{
		Format:     FormatCR2,
		Header:     header,
		Body:       corrupt[corruptPos:],
		Divergence: absDiff(refPos, corruptPos),
	}, nil
}

// FindBounds 计算尾部拼接的两个偏移量
// 同一个 FindLast 在参考文件中给出可信前缀的上界，在损坏文件中给出可恢复尾部的下界
// 这是经验规则而非格式规范，算术保持原样
func FindBounds(reference, corrupt []byte) (Bounds, error) {
	trustedPrefixEnd, err := findRequired(reference, MarkerTail, roleReference)
	if err != nil {
		return Bounds{}, err
	}

	recoverableTailStart, err := findRequired(corrupt, MarkerTail, roleCorrupt)
	if err != nil {
		return Bounds{}, err
	}

	return Bounds{
		TrustedPrefixEnd:     trustedPrefixEnd,
		RecoverableTailStart: recoverableTailStart,
		CorruptEnd:           int64(len(corrupt)),
	}, nil
}

// SpliceTail 拼接 ARW/NEF
//
//	reference[:TrustedPrefixEnd] || zero * Padding() || corrupt[RecoverableTailStart:CorruptEnd]
//
// 损坏文件的尾部起点早于参考锚点时补零，使尾部数据落在合并文件中相同的逻辑位置
func SpliceTail(reference, corrupt []byte) (*Splice, error) {
	b, err := FindBounds(reference, corrupt)
	if err != nil {
		return nil, err
	}

	return &Splice{
		Format:     FormatTail,
		Header:     reference[:b.TrustedPrefixEnd],
		Padding:    b.Padding(),
		Body:       corrupt[b.RecoverableTailStart:b.CorruptEnd],
		Divergence: absDiff(b.TrustedPrefixEnd, b.RecoverableTailStart),
	}, nil
}

// SpliceFor 按格式分派
func SpliceFor(format Format, reference, corrupt []byte) (*Splice, error) {
	switch format {
	case FormatCR2:
		return SpliceCR2(reference, corrupt)
	case FormatTail:
		return SpliceTail(reference, corrupt)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// BodyOffset 返回拼接结果中数据体的起点
// 数据体以标记开头，而头部在标记之前结束，所以最后一次出现的标记就是 len(Header)+Padding
// 在此之前的字节全部来自参考文件
func BodyOffset(format Format, repaired []byte) (int64, error) {
	switch format {
	case FormatCR2:
		return findRequired(repaired, MarkerCR2, roleRepaired)
	case FormatTail:
		return findRequired(repaired, MarkerTail, roleRepaired)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
