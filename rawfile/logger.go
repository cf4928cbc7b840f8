package rawfile

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Logger 简洁的进度日志系统
type Logger struct {
	out        io.Writer
	stepStart  time.Time
	totalStart time.Time

	stepStyle lipgloss.Style
	doneStyle lipgloss.Style
	warnStyle lipgloss.Style
}

// NewLogger 创建写到 stdout 的日志记录器
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, false)
}

// NewLoggerTo 创建写到 w 的日志记录器，color 控制是否输出 ANSI 样式
func NewLoggerTo(w io.Writer, color bool) *Logger {
	l := &Logger{
		out:        w,
		totalStart: time.Now(),
		stepStyle:  lipgloss.NewStyle(),
		doneStyle:  lipgloss.NewStyle(),
		warnStyle:  lipgloss.NewStyle(),
	}
	if color {
		l.stepStyle = l.stepStyle.Bold(true).Foreground(lipgloss.Color("12"))
		l.doneStyle = l.doneStyle.Foreground(lipgloss.Color("10"))
		l.warnStyle = l.warnStyle.Foreground(lipgloss.Color("11"))
	}
	return l
}

// Step 开始一个处理步骤
// 格式: [步骤名] 参数 ...
func (l *Logger) Step(name string, params ...interface{}) {
	l.stepStart = time.Now()
	tag := l.stepStyle.Render("[" + name + "]")
	if len(params) > 0 {
		fmt.Fprintf(l.out, "%s %v ... ", tag, params[0])
	} else {
		fmt.Fprintf(l.out, "%s ", tag)
	}
}

// Done 完成当前步骤
// 格式: → 结果 (耗时)
func (l *Logger) Done(result string) {
	elapsed := time.Since(l.stepStart)
	if elapsed > 100*time.Millisecond {
		fmt.Fprintf(l.out, "→ %s (%.2fs)\n", l.doneStyle.Render(result), elapsed.Seconds())
	} else {
		fmt.Fprintf(l.out, "→ %s\n", l.doneStyle.Render(result))
	}
}

// Total 输出总耗时
func (l *Logger) Total() {
	total := time.Since(l.totalStart)
	fmt.Fprintf(l.out, "\n%s 总耗时: %.2fs\n", l.doneStyle.Render("✓"), total.Seconds())
}

// Info 输出信息（不计时）
func (l *Logger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "  • "+format+"\n", args...)
}

// Warn 输出警告
func (l *Logger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "  %s "+format+"\n", append([]interface{}{l.warnStyle.Render("⚠")}, args...)...)
}
