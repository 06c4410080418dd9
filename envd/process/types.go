// Package process 定义 envd 进程服务的协议消息与 ConnectRPC 客户端。
//
// 进程事件流是一个封闭的带标签联合：Start、Data、End、Keepalive。
// 一条逻辑进程流中 Start 至多出现一次且先于任何 Data；
// End 至多出现一次并终结整条流。
package process

// Signal 进程信号。协议只使用一个小的封闭数值集合。
type Signal int32

// 信号常量（与 POSIX 信号编号一致）。
const (
	SignalSIGKILL Signal = 9
	SignalSIGTERM Signal = 15
)

// ProcessConfig 进程启动配置。
type ProcessConfig struct {
	Cmd  string            `json:"cmd"`
	Args []string          `json:"args,omitempty"`
	Envs map[string]string `json:"envs,omitempty"`
	Cwd  *string           `json:"cwd,omitempty"`
}

// PTYSize PTY 终端大小。
type PTYSize struct {
	Cols uint32 `json:"cols"`
	Rows uint32 `json:"rows"`
}

// PTY PTY 配置。
type PTY struct {
	Size *PTYSize `json:"size,omitempty"`
}

// ProcessSelector 进程选择器：pid 或 tag，两者必须且只能设置一个。
type ProcessSelector struct {
	Pid *uint32 `json:"pid,omitempty"`
	Tag *string `json:"tag,omitempty"`
}

// SelectPid 构造按 PID 选择进程的选择器。
func SelectPid(pid uint32) *ProcessSelector {
	return &ProcessSelector{Pid: &pid}
}

// SelectTag 构造按标签选择进程的选择器。
func SelectTag(tag string) *ProcessSelector {
	return &ProcessSelector{Tag: &tag}
}

// ProcessEvent 进程事件，带标签联合：恰好一个变体字段非 nil。
type ProcessEvent struct {
	Start     *StartEvent     `json:"start,omitempty"`
	Data      *DataEvent      `json:"data,omitempty"`
	End       *EndEvent       `json:"end,omitempty"`
	Keepalive *KeepaliveEvent `json:"keepalive,omitempty"`
}

// StartEvent 进程已启动，携带分配的 PID。
type StartEvent struct {
	Pid uint32 `json:"pid"`
}

// DataEvent 进程输出数据。stdout、stderr、pty 中至多一个非空。
type DataEvent struct {
	Stdout []byte `json:"stdout,omitempty"`
	Stderr []byte `json:"stderr,omitempty"`
	Pty    []byte `json:"pty,omitempty"`
}

// EndEvent 进程已结束。
type EndEvent struct {
	ExitCode int32   `json:"exit_code"`
	Exited   bool    `json:"exited"`
	Status   string  `json:"status,omitempty"`
	Error    *string `json:"error,omitempty"`
}

// KeepaliveEvent 保活事件，消费方忽略。仅用于规避空闲连接超时。
type KeepaliveEvent struct{}

// ProcessInfo 运行中进程的信息。
type ProcessInfo struct {
	Pid    uint32         `json:"pid"`
	Tag    *string        `json:"tag,omitempty"`
	Config *ProcessConfig `json:"config,omitempty"`
}

// ProcessInput 进程输入：stdin 或 pty，两者至多设置一个。
type ProcessInput struct {
	Stdin []byte `json:"stdin,omitempty"`
	Pty   []byte `json:"pty,omitempty"`
}

// StartRequest 启动进程请求。
type StartRequest struct {
	Process *ProcessConfig `json:"process"`
	Pty     *PTY           `json:"pty,omitempty"`
	Stdin   *bool          `json:"stdin,omitempty"`
	Tag     *string        `json:"tag,omitempty"`
}

// StartResponse 启动进程流式响应，每条携带一个事件。
type StartResponse struct {
	Event *ProcessEvent `json:"event,omitempty"`
}

// GetEvent 返回响应携带的事件。
func (r *StartResponse) GetEvent() *ProcessEvent {
	if r == nil {
		return nil
	}
	return r.Event
}

// ConnectRequest 连接到已有进程的请求。
type ConnectRequest struct {
	Process *ProcessSelector `json:"process"`
}

// ConnectResponse 连接进程流式响应，每条携带一个事件。
type ConnectResponse struct {
	Event *ProcessEvent `json:"event,omitempty"`
}

// GetEvent 返回响应携带的事件。
func (r *ConnectResponse) GetEvent() *ProcessEvent {
	if r == nil {
		return nil
	}
	return r.Event
}

// ListRequest 列出进程请求。
type ListRequest struct{}

// ListResponse 列出进程响应。
type ListResponse struct {
	Processes []*ProcessInfo `json:"processes,omitempty"`
}

// SendInputRequest 发送进程输入请求。
type SendInputRequest struct {
	Process *ProcessSelector `json:"process"`
	Input   *ProcessInput    `json:"input"`
}

// SendInputResponse 发送进程输入响应。
type SendInputResponse struct{}

// SendSignalRequest 发送信号请求。
type SendSignalRequest struct {
	Process *ProcessSelector `json:"process"`
	Signal  Signal           `json:"signal"`
}

// SendSignalResponse 发送信号响应。
type SendSignalResponse struct{}

// UpdateRequest 更新进程（如调整 PTY 大小）请求。
type UpdateRequest struct {
	Process *ProcessSelector `json:"process"`
	Pty     *PTY             `json:"pty,omitempty"`
}

// UpdateResponse 更新进程响应。
type UpdateResponse struct{}
