package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/weaming/rawrepair-go/repair"
)

// 界面中保留的日志行数
const tuiLogLines = 12

type (
	progressMsg int
	logMsg      string
	finishedMsg struct{ report *repair.Report }
	failedMsg   struct{ err error }
)

// programObserver 把批处理通知转发给 tea.Program
type programObserver struct {
	program *tea.Program
}

func (o programObserver) OnProgress(percent int) {
	o.program.Send(progressMsg(percent))
}

func (o programObserver) OnLog(message string) {
	o.program.Send(logMsg(message))
}

func (o programObserver) OnFinished(r *repair.Report) {
	o.program.Send(finishedMsg{report: r})
}

func (o programObserver) OnFailed(err error) {
	o.program.Send(failedMsg{err: err})
}

type tuiKeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
}

var tuiKeys = tuiKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "enter"),
		key.WithHelp("q", "退出"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "强制退出 (残留的临时文件下次运行时清理)"),
	),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tuiModel struct {
	title   string
	width   int
	percent int
	logs    []string
	report  *repair.Report
	err     error
	done    bool
}

func newTUIModel(opts repair.Options) tuiModel {
	return tuiModel{
		title: fmt.Sprintf("rawrepair  参考: %s  目录: %s", opts.Reference, opts.InputDir),
		width: 80,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if key.Matches(msg, tuiKeys.ForceQuit) {
			return m, tea.Quit
		}
		// 批处理不可取消，结束后才允许退出
		if m.done && key.Matches(msg, tuiKeys.Quit) {
			return m, tea.Quit
		}
	case progressMsg:
		m.percent = int(msg)
	case logMsg:
		m.logs = append(m.logs, string(msg))
		if len(m.logs) > tuiLogLines {
			m.logs = m.logs[len(m.logs)-tuiLogLines:]
		}
	case finishedMsg:
		m.report = msg.report
		m.done = true
	case failedMsg:
		m.err = msg.err
		m.done = true
	}
	return m, nil
}

func (m tuiModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(renderBar(m.percent, m.width-8))
	sb.WriteString(fmt.Sprintf(" %3d%%\n\n", m.percent))

	for _, line := range m.logs {
		sb.WriteString("  " + line + "\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString("\n" + errStyle.Render("✗ "+m.err.Error()) + "\n")
		sb.WriteString(errStyle.Render("  批处理已终止，已写出的文件保留") + "\n")
	case m.report != nil:
		sb.WriteString("\n" + okStyle.Render("✓ "+m.report.Summary()) + "\n")
	}

	if m.done {
		sb.WriteString("\n" + helpStyle.Render(tuiKeys.Quit.Help().Key+" "+tuiKeys.Quit.Help().Desc) + "\n")
	} else {
		sb.WriteString("\n" + helpStyle.Render(tuiKeys.ForceQuit.Help().Key+" "+tuiKeys.ForceQuit.Help().Desc) + "\n")
	}
	return sb.String()
}

func renderBar(percent, width int) string {
	if width < 10 {
		width = 10
	}
	if width > 60 {
		width = 60
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := width * percent / 100
	return barStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", width-filled))
}

// runTUI 在后台运行批处理，前台显示进度界面
func runTUI(opts repair.Options) (*repair.Report, error) {
	program := tea.NewProgram(newTUIModel(opts))
	job := repair.Start(opts, programObserver{program: program})

	if _, err := program.Run(); err != nil {
		return nil, err
	}

	select {
	case <-job.Done():
		return job.Wait()
	default:
		return nil, errors.New("界面已退出，批处理在后台被中断，已写出的文件保留")
	}
}
