package repair

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/weaming/rawrepair-go/rawfile"
)

// 默认输出目录名
const (
	RepairedDirName   = "Repaired"
	ConvertedDirName  = "Converted"
	DefaultConvertExt = ".TIFF"
)

// Converter 把修复后的原始文件解码并保存为栅格图像
type Converter interface {
	Convert(rawPath, outPath string) error
}

// Options 批处理配置
type Options struct {
	Reference string
	InputDir  string

	// OutputDir 默认 <InputDir>/Repaired
	OutputDir string
	// ConvertDir 默认与 OutputDir 同级的 Converted，仅在 Converter 非空时使用
	ConvertDir string
	// Converter 为 nil 时不转换
	Converter Converter
	// ConvertExt 转换输出扩展名，默认 .TIFF
	ConvertExt string

	// DryRun 只计算拼接，不创建目录也不写文件
	DryRun bool

	Logger *slog.Logger
}

func (o *Options) normalize() {
	if o.OutputDir == "" {
		o.OutputDir = filepath.Join(o.InputDir, RepairedDirName)
	}
	if o.Converter != nil && o.ConvertDir == "" {
		o.ConvertDir = filepath.Join(filepath.Dir(o.OutputDir), ConvertedDirName)
	}
	if o.Converter == nil {
		o.ConvertDir = ""
	}
	if o.ConvertExt == "" {
		o.ConvertExt = DefaultConvertExt
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Run 顺序修复 InputDir 中所有匹配的文件
// 快速失败：第一个错误终止整个批处理，已写出的文件保留
func Run(opts Options, obs Observer) (*Report, error) {
	if obs == nil {
		obs = NopObserver{}
	}

	report, err := run(opts, obs)
	if err != nil {
		obs.OnFailed(err)
		return report, err
	}
	obs.OnFinished(report)
	return report, nil
}

func run(opts Options, obs Observer) (*Report, error) {
	opts.normalize()
	log := opts.Logger

	family, err := rawfile.Classify(opts.Reference)
	if err != nil {
		return nil, &FileError{File: filepath.Base(opts.Reference), Err: err}
	}

	if err := checkInputs(opts); err != nil {
		return nil, err
	}

	report := &Report{
		Reference:    opts.Reference,
		Format:       family.Format,
		RepairedDir:  opts.OutputDir,
		ConvertedDir: opts.ConvertDir,
		DryRun:       opts.DryRun,
	}
	report.Camera = probeReference(opts.Reference, log)

	log.Info("batch started",
		"reference", opts.Reference,
		"format", family.Format.String(),
		"camera", report.Camera.Name(),
		"input", opts.InputDir,
		"output", opts.OutputDir,
		"convert", opts.ConvertDir != "",
		"dry_run", opts.DryRun)

	if !opts.DryRun {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return report, &FileError{Err: &IOError{Op: "mkdir", Path: opts.OutputDir, Err: err}}
		}
		if opts.ConvertDir != "" {
			if err := os.MkdirAll(opts.ConvertDir, 0o755); err != nil {
				return report, &FileError{Err: &IOError{Op: "mkdir", Path: opts.ConvertDir, Err: err}}
			}
		}
		removeStaleTemp(opts.OutputDir, log)
	}

	files, err := Discover(opts.InputDir, family.Ext)
	if err != nil {
		return report, &FileError{Err: err}
	}
	log.Debug("discovered files", "count", len(files), "pattern", "*."+family.Ext+".*")

	// 输出路径 -> 源文件，同名不同后缀的输入会映射到同一个输出
	written := make(map[string]string, len(files))

	total := len(files)
	for i, path := range files {
		out := filepath.Join(opts.OutputDir, RepairedName(path))
		if prev, ok := written[out]; ok {
			err := &IOError{Op: "write", Path: out, Err: fmt.Errorf("already written from %s", filepath.Base(prev))}
			log.Error("output collision", "file", path, "previous", prev, "output", out)
			return report, &FileError{File: filepath.Base(path), Err: err}
		}

		result, err := repairOne(opts, family, path)
		if err != nil {
			log.Error("repair failed", "file", path, "kind", KindOf(err).String(), "err", err)
			return report, &FileError{File: filepath.Base(path), Err: err}
		}

		if result.Suspicious {
			log.Warn("marker offsets diverge beyond header length",
				"file", path,
				"divergence", result.Divergence,
				"size", result.Size)
			obs.OnLog(fmt.Sprintf("⚠ %s: 标记偏移与参考文件相差 %d 字节，修复结果可能不可用",
				filepath.Base(path), result.Divergence))
		}

		if opts.ConvertDir != "" && !opts.DryRun {
			out := filepath.Join(opts.ConvertDir, ConvertedName(path, opts.ConvertExt))
			if err := opts.Converter.Convert(result.Repaired, out); err != nil {
				cerr := &ConversionError{RawPath: result.Repaired, OutPath: out, Err: err}
				log.Error("conversion failed", "file", path, "err", err)
				return report, &FileError{File: filepath.Base(path), Err: cerr}
			}
			result.Converted = out
		}

		report.Files = append(report.Files, result)
		written[out] = path

		obs.OnProgress((i + 1) * 100 / total)
		obs.OnLog(fileStatus(result, opts.DryRun))
		log.Debug("file repaired",
			"file", path,
			"output", result.Repaired,
			"size", result.Size,
			"padding", result.Padding)
	}

	return report, nil
}

// repairOne 加载参考文件和损坏文件，拼接并写出
// 两个缓冲区在返回前释放，不跨文件持有
func repairOne(opts Options, family rawfile.Family, path string) (FileResult, error) {
	out := filepath.Join(opts.OutputDir, RepairedName(path))
	result := FileResult{Source: path, Repaired: out}

	clash, err := sameFile(out, opts.Reference, path)
	if err != nil {
		return result, &IOError{Op: "stat", Path: out, Err: err}
	}
	if clash {
		return result, &IOError{Op: "write", Path: out, Err: fmt.Errorf("refusing to overwrite an input file")}
	}

	ref, err := rawfile.Load(opts.Reference)
	if err != nil {
		return result, &IOError{Op: "load", Path: opts.Reference, Err: err}
	}
	defer ref.Close()

	corrupt, err := rawfile.Load(path)
	if err != nil {
		return result, &IOError{Op: "load", Path: path, Err: err}
	}
	defer corrupt.Close()

	splice, err := rawfile.SpliceFor(family.Format, ref.Bytes(), corrupt.Bytes())
	if err != nil {
		return result, err
	}

	result.Size = splice.Len()
	result.Padding = splice.Padding
	result.Divergence = splice.Divergence
	result.Suspicious = splice.Suspicious()

	if opts.DryRun {
		return result, nil
	}
	if err := writeSplice(out, splice); err != nil {
		return result, err
	}
	return result, nil
}

func checkInputs(opts Options) error {
	info, err := os.Stat(opts.Reference)
	if err != nil {
		return &FileError{File: filepath.Base(opts.Reference), Err: &IOError{Op: "stat", Path: opts.Reference, Err: err}}
	}
	if info.IsDir() {
		return &FileError{File: filepath.Base(opts.Reference), Err: &IOError{Op: "stat", Path: opts.Reference, Err: fmt.Errorf("is a directory")}}
	}

	info, err = os.Stat(opts.InputDir)
	if err != nil {
		return &FileError{Err: &IOError{Op: "stat", Path: opts.InputDir, Err: err}}
	}
	if !info.IsDir() {
		return &FileError{Err: &IOError{Op: "stat", Path: opts.InputDir, Err: fmt.Errorf("not a directory")}}
	}
	return nil
}

// probeReference 读取参考文件的相机信息，失败不影响修复
func probeReference(path string, log *slog.Logger) rawfile.CameraInfo {
	buf, err := rawfile.Load(path)
	if err != nil {
		log.Debug("reference probe skipped", "err", err)
		return rawfile.CameraInfo{}
	}
	defer buf.Close()

	info, err := rawfile.ExtractCameraInfo(buf.Bytes())
	if err != nil {
		log.Debug("reference probe skipped", "err", err)
	}
	return info
}

func fileStatus(r FileResult, dryRun bool) string {
	name := filepath.Base(r.Source)
	if dryRun {
		return fmt.Sprintf("%s → %s (%d 字节, 填充 %d, 未写入)", name, filepath.Base(r.Repaired), r.Size, r.Padding)
	}
	if r.Converted != "" {
		return fmt.Sprintf("%s → %s, %s", name, filepath.Base(r.Repaired), filepath.Base(r.Converted))
	}
	return fmt.Sprintf("%s → %s (%d 字节)", name, filepath.Base(r.Repaired), r.Size)
}
