package main

import (
	"io"

	"github.com/weaming/rawrepair-go/rawfile"
	"github.com/weaming/rawrepair-go/repair"
)

// consoleObserver 用步骤日志在终端输出进度
type consoleObserver struct {
	logger  *rawfile.Logger
	percent int
	quiet   bool
}

func newConsoleObserver(w io.Writer, color, quiet bool) *consoleObserver {
	return &consoleObserver{logger: rawfile.NewLoggerTo(w, color), quiet: quiet}
}

func (o *consoleObserver) OnProgress(percent int) {
	o.percent = percent
}

func (o *consoleObserver) OnLog(message string) {
	if o.quiet {
		return
	}
	o.logger.Info("%3d%% %s", o.percent, message)
}

func (o *consoleObserver) OnFinished(report *repair.Report) {
	if o.quiet {
		return
	}
	o.logger.Step("完成", report.Camera.Name())
	o.logger.Done(report.Summary())
	o.logger.Total()
}

func (o *consoleObserver) OnFailed(err error) {
	// 错误由 execute 输出到 stderr
	if o.quiet {
		return
	}
	o.logger.Warn("批处理已终止，已写出的文件保留")
}
