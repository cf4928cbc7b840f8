package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weaming/rawrepair-go/rawfile"
)

var (
	// 全局参数
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool
	debug   bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "rawrepair",
	Short: "修复头部被勒索软件加密的相机 RAW 文件",
	Long: `rawrepair 用同一机型的完好参考文件修复被加密的 CR2/ARW/NEF 文件。

勒索软件通常只加密文件开头，传感器数据保持完整。rawrepair 在参考文件和
损坏文件中查找格式相关的结构标记，把参考文件的可信头部与损坏文件的数据体
拼接成新文件，必要时补零对齐。`,
	Version:       rawfile.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "只输出错误")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "以 JSON 格式输出结果")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "禁用彩色输出")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", os.Getenv("RAWREPAIR_DEBUG") != "", "输出调试日志 (也可设置 RAWREPAIR_DEBUG)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "把 JSON 日志写入该文件")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// newSlogger 构建诊断日志：默认 stderr 文本，--log-file 时写 JSON 文件
// tui 模式下不写 stderr，避免破坏界面
func newSlogger(tui bool) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("无法打开日志文件 %s: %w", logFile, err)
		}
		return slog.New(slog.NewJSONHandler(f, opts)), func() { f.Close() }, nil
	}

	var w io.Writer = os.Stderr
	if tui || quiet {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, opts)), func() {}, nil
}

// colorEnabled stdout 是终端且未禁用颜色
func colorEnabled() bool {
	return !noColor && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// printInfo 非 quiet 模式下输出信息
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON 输出 JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
