package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weaming/rawrepair-go/rawfile"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>...",
	Short: "显示文件的格式、结构标记位置和相机信息",
	Long: `检查一个或多个文件，输出修复时会用到的信息：

- 按扩展名判断的格式 (CR2 或 ARW/NEF)
- 文件大小
- M_CR2 (FF D8 FF C4) 和 M_TAIL (FF D9 00 00) 最后一次出现的偏移
- IFD0 中的相机制造商和型号，以及嵌入预览的数量

被加密的文件头部无法解析时，相机信息显示为 unknown，标记偏移仍然可用。
扩展名为 *.CR2.locked 之类时按去掉最后一个后缀后的扩展名判断。`,
	Example: `  rawrepair probe good/IMG_0001.CR2
  rawrepair probe encrypted/*.NEF.* --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

type markerJSON struct {
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
	Found  bool   `json:"found"`
}

type probeJSON struct {
	Path      string       `json:"path"`
	Format    string       `json:"format"`
	Size      int64        `json:"size"`
	Markers   []markerJSON `json:"markers"`
	Make      string       `json:"make,omitempty"`
	Model     string       `json:"model,omitempty"`
	ByteOrder string       `json:"byte_order,omitempty"`
	IFDs      int          `json:"ifds"`
	Previews  int          `json:"previews"`
	Error     string       `json:"error,omitempty"`
}

func runProbe(cmd *cobra.Command, args []string) error {
	results := make([]probeJSON, 0, len(args))
	failed := 0

	for _, path := range args {
		p, err := probeFile(path)
		if err != nil {
			p.Error = err.Error()
			failed++
		}
		results = append(results, p)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for i, p := range results {
			if i > 0 {
				printInfo("\n")
			}
			printProbe(p)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d 个文件无法读取", failed)
	}
	return nil
}

// probeFile 读取单个文件；只有文件不可读时返回错误
func probeFile(path string) (probeJSON, error) {
	p := probeJSON{Path: path, Format: probeFormat(path)}

	buf, err := rawfile.Load(path)
	if err != nil {
		return p, err
	}
	defer buf.Close()

	data := buf.Bytes()
	p.Size = int64(len(data))
	for _, m := range []rawfile.Marker{rawfile.MarkerCR2, rawfile.MarkerTail} {
		off, ok := rawfile.FindLast(data, m)
		p.Markers = append(p.Markers, markerJSON{Name: m.Name, Offset: off, Found: ok})
	}

	if info, err := rawfile.ExtractCameraInfo(data); err == nil {
		p.Make = info.Make
		p.Model = info.Model
		p.ByteOrder = info.ByteOrder
		p.IFDs = info.IFDs
		p.Previews = info.Previews
	}
	return p, nil
}

// probeFormat 依次尝试完整扩展名和去掉最后一个后缀后的扩展名
func probeFormat(path string) string {
	if family, err := rawfile.Classify(path); err == nil {
		return family.Format.String()
	}
	stripped := path[:len(path)-len(filepath.Ext(path))]
	if family, err := rawfile.Classify(stripped); err == nil {
		return family.Format.String()
	}
	return rawfile.FormatUnknown.String()
}

func printProbe(p probeJSON) {
	printInfo("文件:     %s\n", p.Path)
	if p.Error != "" {
		fmt.Fprintf(os.Stderr, "  读取失败: %s\n", p.Error)
		return
	}
	printInfo("格式:     %s\n", p.Format)
	printInfo("大小:     %d 字节\n", p.Size)
	for _, m := range p.Markers {
		if m.Found {
			printInfo("%-9s 0x%X (%d)\n", m.Name+":", m.Offset, m.Offset)
		} else {
			printInfo("%-9s 未找到\n", m.Name+":")
		}
	}

	camera := rawfile.CameraInfo{Make: p.Make, Model: p.Model}
	printInfo("相机:     %s\n", camera.Name())
	if p.ByteOrder != "" {
		printInfo("字节序:   %s, %d 个 IFD, %d 个嵌入预览\n", p.ByteOrder, p.IFDs, p.Previews)
	} else {
		printInfo("头部:     无法解析为 TIFF\n")
	}
}
