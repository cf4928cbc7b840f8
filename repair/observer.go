package repair

// Observer 驱动界面接收的单向、有序通知
// 所有回调都在执行批处理的 goroutine 中按顺序调用
type Observer interface {
	// OnProgress 百分比，单调不减
	OnProgress(percent int)
	// OnLog 每个文件一行可读状态
	OnLog(message string)
	// OnFinished 成功结束
	OnFinished(report *Report)
	// OnFailed 第一个致命错误，批处理随即终止
	OnFailed(err error)
}

// NopObserver 丢弃所有通知
type NopObserver struct{}

func (NopObserver) OnProgress(int) {}
func (NopObserver) OnLog(string) {}
func (NopObserver) OnFinished(*Report) {}
func (NopObserver) OnFailed(error) {}

// Event 通道模式下的通知
type Event struct {
	Progress int
	Log      string
	Report   *Report
	Err      error
	// Terminal 为 true 时是最后一个事件
	Terminal bool
}

// ChanObserver 把通知转成 Event 发到通道，用于在其他执行上下文中消费
// 终止事件发送后关闭通道
type ChanObserver struct {
	C chan Event
}

// NewChanObserver 创建带缓冲的通道观察者
func NewChanObserver(buffer int) *ChanObserver {
	return &ChanObserver{C: make(chan Event, buffer)}
}

func (o *ChanObserver) OnProgress(percent int) {
	o.C <- Event{Progress: percent}
}

func (o *ChanObserver) OnLog(message string) {
	o.C <- Event{Progress: -1, Log: message}
}

func (o *ChanObserver) OnFinished(report *Report) {
	o.C <- Event{Progress: -1, Report: report, Terminal: true}
	close(o.C)
}

func (o *ChanObserver) OnFailed(err error) {
	o.C <- Event{Progress: -1, Err: err, Terminal: true}
	close(o.C)
}
