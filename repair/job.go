package repair

// Job 在独立 goroutine 中运行的批处理
// 不支持取消：一旦开始，运行到结束或第一个错误
type Job struct {
	done   chan struct{}
	report *Report
	err    error
}

// Start 在后台启动批处理并立即返回，驱动界面保持响应
func Start(opts Options, obs Observer) *Job {
	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		j.report, j.err = Run(opts, obs)
	}()
	return j
}

// Done 批处理结束时关闭
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait 阻塞直到批处理结束
func (j *Job) Wait() (*Report, error) {
	<-j.done
	return j.report, j.err
}
