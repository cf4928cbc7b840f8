package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weaming/rawrepair-go/output"
	"github.com/weaming/rawrepair-go/repair"
)

var (
	repairReference     string
	repairInput         string
	repairOutput        string
	repairConvert       bool
	repairConvertDir    string
	repairConvertFormat string
	repairQuality       int
	repairDryRun        bool
	repairTUI           bool
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "用参考文件修复目录中被加密的 RAW 文件",
	Long: `修复输入目录中所有名称匹配 *.<EXT>.* 的文件，<EXT> 是参考文件的扩展名
(例如 IMG_0001.CR2.locked)。

1. 根据参考文件扩展名选择修复策略 (CR2 或 ARW/NEF)
2. 创建输出目录 (默认 <输入目录>/Repaired)，清理上次中断留下的 .*.tmp
3. 按文件名顺序逐个拼接，输出文件去掉勒索软件追加的后缀
4. 可选：把修复后的文件转换为 TIFF，保存在同级的 Converted 目录
   只使用恢复出的数据体中的嵌入预览，头部里的预览属于参考文件的照片

遇到第一个错误即停止，已写出的文件保留。
两个输入去掉后缀后同名 (如 IMG_0001.CR2.enc 和 IMG_0001.CR2.locked) 时报 IoError。`,
	Example: `  # 修复 CR2
  rawrepair repair -r good/IMG_0001.CR2 -i encrypted/

  # 修复 NEF 并转换为 TIFF
  rawrepair repair -r good/DSC_0001.NEF -i encrypted/ --convert

  # 只检查能否修复，不写文件
  rawrepair repair -r good/DSC0001.ARW -i encrypted/ --dry-run

  # 交互式进度界面
  rawrepair repair -r good/IMG_0001.CR2 -i encrypted/ --tui`,
	Args: cobra.NoArgs,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringVarP(&repairReference, "reference", "r", "", "完好的参考文件 (必需)")
	repairCmd.Flags().StringVarP(&repairInput, "input", "i", "", "被加密文件所在目录 (必需)")
	repairCmd.Flags().StringVarP(&repairOutput, "output", "o", "", "修复输出目录 (默认 <输入目录>/Repaired)")
	repairCmd.Flags().BoolVarP(&repairConvert, "convert", "c", false, "把修复后的文件转换为栅格图像 (仅使用数据体中的嵌入预览)")
	repairCmd.Flags().StringVar(&repairConvertDir, "convert-dir", "", "转换输出目录 (默认与输出目录同级的 Converted)")
	repairCmd.Flags().StringVar(&repairConvertFormat, "convert-format", "tiff", "转换格式: tiff, jpeg")
	repairCmd.Flags().IntVar(&repairQuality, "quality", 95, "JPEG 质量 (1-100)")
	repairCmd.Flags().BoolVarP(&repairDryRun, "dry-run", "n", false, "只计算拼接，不写任何文件")
	repairCmd.Flags().BoolVar(&repairTUI, "tui", false, "使用交互式进度界面")
	_ = repairCmd.MarkFlagRequired("reference")
	_ = repairCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
	tui := repairTUI && isTerminal(os.Stdout) && !jsonOut
	logger, closeLog, err := newSlogger(tui)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := repair.Options{
		Reference:  repairReference,
		InputDir:   repairInput,
		OutputDir:  repairOutput,
		ConvertDir: repairConvertDir,
		DryRun:     repairDryRun,
		Logger:     logger,
	}
	if repairConvert {
		ext, err := convertExt(repairConvertFormat)
		if err != nil {
			return err
		}
		opts.ConvertExt = ext
		opts.Converter = output.NewPreviewConverter(output.Config{Quality: repairQuality})
	}

	var report *repair.Report
	switch {
	case tui:
		report, err = runTUI(opts)
	case jsonOut:
		report, err = repair.Run(opts, nil)
	default:
		report, err = repair.Run(opts, newConsoleObserver(os.Stdout, colorEnabled(), quiet))
	}

	if jsonOut {
		if encErr := printJSON(newReportJSON(report, err)); encErr != nil {
			return encErr
		}
	}
	return err
}

func convertExt(format string) (string, error) {
	switch strings.ToLower(format) {
	case "tiff", "tif":
		return repair.DefaultConvertExt, nil
	case "jpeg", "jpg":
		return ".JPG", nil
	default:
		return "", fmt.Errorf("不支持的转换格式: %s", format)
	}
}

type fileJSON struct {
	Source     string `json:"source"`
	Repaired   string `json:"repaired"`
	Converted  string `json:"converted,omitempty"`
	Size       int64  `json:"size"`
	Padding    int64  `json:"padding"`
	Divergence int64  `json:"divergence"`
	Suspicious bool   `json:"suspicious,omitempty"`
}

type reportJSON struct {
	Reference    string     `json:"reference,omitempty"`
	Format       string     `json:"format,omitempty"`
	Camera       string     `json:"camera,omitempty"`
	RepairedDir  string     `json:"repaired_dir,omitempty"`
	ConvertedDir string     `json:"converted_dir,omitempty"`
	DryRun       bool       `json:"dry_run"`
	Files        []fileJSON `json:"files"`
	Summary      string     `json:"summary,omitempty"`
	Error        string     `json:"error,omitempty"`
	ErrorKind    string     `json:"error_kind,omitempty"`
}

func newReportJSON(r *repair.Report, err error) reportJSON {
	out := reportJSON{Files: []fileJSON{}}
	if r != nil {
		out.Reference = r.Reference
		out.Format = r.Format.String()
		out.Camera = r.Camera.Name()
		out.RepairedDir = r.RepairedDir
		out.ConvertedDir = r.ConvertedDir
		out.DryRun = r.DryRun
		for _, f := range r.Files {
			out.Files = append(out.Files, fileJSON{
				Source:     f.Source,
				Repaired:   f.Repaired,
				Converted:  f.Converted,
				Size:       f.Size,
				Padding:    f.Padding,
				Divergence: f.Divergence,
				Suspicious: f.Suspicious,
			})
		}
		if err == nil {
			out.Summary = r.Summary()
		}
	}
	if err != nil {
		out.Error = err.Error()
		out.ErrorKind = repair.KindOf(err).String()
	}
	return out
}
