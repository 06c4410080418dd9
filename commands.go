package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/qiniu/sandbox-go/envd/process"
)

// CommandResult 命令执行结果。
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Error    string
}

// CommandHandle 后台命令句柄。
//
// 句柄在事件流之上维护进程状态：PID 在 Start 事件后可读，
// Stdout/Stderr/PtyOutput 返回当前累积输出的快照，
// Wait 阻塞直到进程结束或流异常终止。
type CommandHandle struct {
	commands *Commands
	logger   *slog.Logger
	user     string
	cancel   context.CancelFunc
	done     chan struct{}
	pidCh    chan struct{}

	mu         sync.Mutex
	pid        uint32
	pidSet     bool
	stdout     []byte
	stderr     []byte
	ptyData    []byte
	result     *CommandResult
	iterErr    error
	terminated bool

	onStdout  func(data []byte)
	onStderr  func(data []byte)
	onPtyData func(data []byte)
}

// PID 返回进程 PID。
// 在收到 Start 事件之前返回 ErrPIDNotAvailable，不会阻塞。
func (h *CommandHandle) PID() (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.pidSet {
		return 0, ErrPIDNotAvailable
	}
	return h.pid, nil
}

// WaitPID 等待进程 PID 被分配。
// 当进程流收到 Start 事件后返回 PID；若 ctx 取消则返回错误。
func (h *CommandHandle) WaitPID(ctx context.Context) (uint32, error) {
	select {
	case <-h.pidCh:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.pid, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Stdout 返回到目前为止累积的 stdout 快照。
func (h *CommandHandle) Stdout() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.stdout...)
}

// Stderr 返回到目前为止累积的 stderr 快照。
func (h *CommandHandle) Stderr() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.stderr...)
}

// PtyOutput 返回到目前为止累积的 PTY 输出快照。
func (h *CommandHandle) PtyOutput() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.ptyData...)
}

// Wait 等待命令完成并返回结果。
// 若事件流异常终止（网络错误等），返回该错误；
// 若流正常关闭但始终未收到结束事件，返回 ErrNoResult。
func (h *CommandHandle) Wait() (*CommandResult, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.iterErr != nil {
		return nil, h.iterErr
	}
	return nil, ErrNoResult
}

// Kill 终止命令。
// 进程已不存在时返回 (false, nil)；终止成功返回 (true, nil)。
// 进程尚未启动（PID 未知）时返回 ErrPIDNotAvailable。
// 请求以启动命令时指定的用户身份发送。
func (h *CommandHandle) Kill(ctx context.Context) (bool, error) {
	pid, err := h.PID()
	if err != nil {
		return false, err
	}
	return h.commands.killAs(ctx, pid, h.envdUser())
}

// SendStdin 向进程发送标准输入。
// 进程尚未启动时返回 ErrPIDNotAvailable，不会阻塞等待。
// 请求以启动命令时指定的用户身份发送。
func (h *CommandHandle) SendStdin(ctx context.Context, data []byte) error {
	pid, err := h.PID()
	if err != nil {
		return err
	}
	return h.commands.sendStdinAs(ctx, pid, h.envdUser(), data)
}

// envdUser 返回句柄侧信道请求使用的认证用户。
func (h *CommandHandle) envdUser() string {
	if h.user != "" {
		return h.user
	}
	return DefaultUser
}

// ProcessInfo 进程信息。
type ProcessInfo struct {
	PID  uint32
	Tag  *string
	Cmd  string
	Args []string
	Envs map[string]string
	Cwd  *string
}

// CommandOption 命令选项。
type CommandOption func(*commandOpts)

type commandOpts struct {
	envs      map[string]string
	cwd       string
	user      string
	tag       string
	onStdout  func(data []byte)
	onStderr  func(data []byte)
	onPtyData func(data []byte)
	timeout   time.Duration
}

// WithEnvs 设置命令的环境变量。
func WithEnvs(envs map[string]string) CommandOption {
	return func(o *commandOpts) { o.envs = envs }
}

// WithCwd 设置命令的工作目录。
func WithCwd(cwd string) CommandOption {
	return func(o *commandOpts) { o.cwd = cwd }
}

// WithCommandUser 设置执行命令的用户。
func WithCommandUser(user string) CommandOption {
	return func(o *commandOpts) { o.user = user }
}

// WithTag 设置进程标签，用于后续通过标签连接进程。
func WithTag(tag string) CommandOption {
	return func(o *commandOpts) { o.tag = tag }
}

// WithOnStdout 设置 stdout 数据回调。仅用于标准命令的 stdout 输出。
// PTY 会话应使用 WithOnPtyData 接收输出。
func WithOnStdout(fn func(data []byte)) CommandOption {
	return func(o *commandOpts) { o.onStdout = fn }
}

// WithOnStderr 设置 stderr 数据回调。
func WithOnStderr(fn func(data []byte)) CommandOption {
	return func(o *commandOpts) { o.onStderr = fn }
}

// WithOnPtyData 设置 PTY 数据回调。用于接收 PTY 会话的输出数据。
// 若未设置，Pty.Create 会回退使用 WithOnStdout 回调以保持兼容。
func WithOnPtyData(fn func(data []byte)) CommandOption {
	return func(o *commandOpts) { o.onPtyData = fn }
}

// WithTimeout 设置命令超时时间。
func WithTimeout(timeout time.Duration) CommandOption {
	return func(o *commandOpts) { o.timeout = timeout }
}

func applyCommandOpts(opts []CommandOption) *commandOpts {
	o := &commandOpts{user: DefaultUser}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// Commands 提供沙箱命令执行能力。
type Commands struct {
	sandbox *Sandbox
	rpc     process.ProcessClient
}

// newCommands 创建 Commands 实例。
func newCommands(s *Sandbox, rpc process.ProcessClient) *Commands {
	return &Commands{sandbox: s, rpc: rpc}
}

func (c *Commands) logger() *slog.Logger {
	return c.sandbox.client.logger
}

// Run 在沙箱中执行命令并等待完成。返回执行结果。
// 注意: stdout 和 stderr 在内存中累积，长时间运行或大量输出的命令
// 应使用 Start() + WithOnStdout/WithOnStderr 流式回调处理输出。
func (c *Commands) Run(ctx context.Context, cmd string, opts ...CommandOption) (*CommandResult, error) {
	handle, err := c.Start(ctx, cmd, opts...)
	if err != nil {
		return nil, err
	}
	return handle.Wait()
}

// Start 在沙箱中后台启动命令。返回 CommandHandle 可用于等待完成。
// cmd 以 /bin/bash -l -c <cmd> 形式执行，支持 shell 语法（管道、重定向等），
// 会加载登录 shell 环境（/etc/profile 及用户 profile）。
func (c *Commands) Start(ctx context.Context, cmd string, opts ...CommandOption) (*CommandHandle, error) {
	o := applyCommandOpts(opts)

	cmdCtx := ctx
	var cmdCancel context.CancelFunc
	if o.timeout > 0 {
		cmdCtx, cmdCancel = context.WithTimeout(ctx, o.timeout)
	} else {
		cmdCtx, cmdCancel = context.WithCancel(ctx)
	}

	startReq := &process.StartRequest{
		Process: &process.ProcessConfig{
			Cmd:  "/bin/bash",
			Args: []string{"-l", "-c", cmd},
			Envs: o.envs,
		},
	}
	if o.cwd != "" {
		startReq.Process.Cwd = &o.cwd
	}
	if o.tag != "" {
		startReq.Tag = &o.tag
	}
	// 默认不启用 stdin
	stdinEnabled := false
	startReq.Stdin = &stdinEnabled

	req := connect.NewRequest(startReq)
	setEnvdAuth(req, o.user)

	stream, err := c.rpc.Start(cmdCtx, req)
	if err != nil {
		cmdCancel()
		return nil, fmt.Errorf("start command: %w", err)
	}

	handle := &CommandHandle{
		commands:  c,
		logger:    c.logger(),
		user:      o.user,
		cancel:    cmdCancel,
		done:      make(chan struct{}),
		pidCh:     make(chan struct{}),
		onStdout:  o.onStdout,
		onStderr:  o.onStderr,
		onPtyData: o.onPtyData,
	}

	go processEventStream(stream, handle)

	return handle, nil
}

// eventMessage 是 StartResponse 和 ConnectResponse 的公共接口。
type eventMessage interface {
	GetEvent() *process.ProcessEvent
}

// streamReceiver 抽象 ConnectRPC 服务端流的读取操作。
type streamReceiver[T eventMessage] interface {
	Receive() bool
	Msg() T
	Err() error
}

// processEventStream 处理进程事件流（Start 和 Connect 共用）。
//
// 事件顺序约定: Start 至多一次且先于 Data，End 终结流。
// End 之后到达的 Data 会被忽略，Keepalive 始终忽略。
func processEventStream[T eventMessage](stream streamReceiver[T], handle *CommandHandle) {
	defer close(handle.done)

	for stream.Receive() {
		event := stream.Msg().GetEvent()
		if event == nil {
			continue
		}
		switch {
		case event.Start != nil:
			handle.mu.Lock()
			if !handle.pidSet {
				handle.pid = event.Start.Pid
				handle.pidSet = true
				close(handle.pidCh)
			}
			handle.mu.Unlock()

		case event.Data != nil:
			handle.mu.Lock()
			if handle.terminated {
				handle.mu.Unlock()
				continue
			}
			var stdoutFn, stderrFn, ptyFn func([]byte)
			if data := event.Data.Stdout; len(data) > 0 {
				handle.stdout = append(handle.stdout, data...)
				stdoutFn = handle.onStdout
			}
			if data := event.Data.Stderr; len(data) > 0 {
				handle.stderr = append(handle.stderr, data...)
				stderrFn = handle.onStderr
			}
			if data := event.Data.Pty; len(data) > 0 {
				handle.ptyData = append(handle.ptyData, data...)
				ptyFn = handle.onPtyData
			}
			handle.mu.Unlock()

			if stdoutFn != nil {
				invokeCallback(handle.logger, "stdout", stdoutFn, event.Data.Stdout)
			}
			if stderrFn != nil {
				invokeCallback(handle.logger, "stderr", stderrFn, event.Data.Stderr)
			}
			if ptyFn != nil {
				invokeCallback(handle.logger, "pty", ptyFn, event.Data.Pty)
			}

		case event.End != nil:
			handle.mu.Lock()
			if handle.terminated {
				handle.mu.Unlock()
				continue
			}
			handle.terminated = true
			handle.result = &CommandResult{
				ExitCode: int(event.End.ExitCode),
				Stdout:   string(handle.stdout),
				Stderr:   string(handle.stderr),
			}
			if event.End.Error != nil {
				handle.result.Error = *event.End.Error
			}
			handle.mu.Unlock()

		case event.Keepalive != nil:
			// 保活事件，忽略
		}
	}

	// 流结束: 若未收到 EndEvent，记录流错误供 Wait 返回
	handle.mu.Lock()
	if handle.result == nil {
		handle.iterErr = stream.Err()
	}
	handle.mu.Unlock()
}

// invokeCallback 调用用户回调并兜住 panic，避免回调异常拖垮事件流。
func invokeCallback(logger *slog.Logger, kind string, fn func([]byte), data []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sandbox: output callback panicked",
				slog.String("callback", kind),
				slog.Any("panic", r),
			)
		}
	}()
	fn(data)
}

// Connect 按 PID 连接到正在运行的进程。
func (c *Commands) Connect(ctx context.Context, pid uint32, opts ...CommandOption) (*CommandHandle, error) {
	return c.connectSelector(ctx, process.SelectPid(pid), opts...)
}

// ConnectByTag 按标签连接到正在运行的进程。
// 标签通过 Start 的 WithTag 选项指定。
func (c *Commands) ConnectByTag(ctx context.Context, tag string, opts ...CommandOption) (*CommandHandle, error) {
	return c.connectSelector(ctx, process.SelectTag(tag), opts...)
}

func (c *Commands) connectSelector(ctx context.Context, selector *process.ProcessSelector, opts ...CommandOption) (*CommandHandle, error) {
	o := applyCommandOpts(opts)

	connectCtx, connectCancel := context.WithCancel(ctx)

	req := connect.NewRequest(&process.ConnectRequest{Process: selector})
	setEnvdAuth(req, o.user)

	stream, err := c.rpc.Connect(connectCtx, req)
	if err != nil {
		connectCancel()
		return nil, fmt.Errorf("connect to process: %w", err)
	}

	handle := &CommandHandle{
		commands:  c,
		logger:    c.logger(),
		user:      o.user,
		cancel:    connectCancel,
		done:      make(chan struct{}),
		pidCh:     make(chan struct{}),
		onStdout:  o.onStdout,
		onStderr:  o.onStderr,
		onPtyData: o.onPtyData,
	}
	if selector.Pid != nil {
		handle.pid = *selector.Pid
		handle.pidSet = true
		close(handle.pidCh)
	}

	go processEventStream(stream, handle)

	return handle, nil
}

// List 列出所有运行中的进程。
func (c *Commands) List(ctx context.Context) ([]ProcessInfo, error) {
	req := connect.NewRequest(&process.ListRequest{})
	setEnvdAuth(req, DefaultUser)

	resp, err := c.rpc.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var infos []ProcessInfo
	for _, p := range resp.Msg.Processes {
		info := ProcessInfo{
			PID: p.Pid,
			Tag: p.Tag,
		}
		if p.Config != nil {
			info.Cmd = p.Config.Cmd
			info.Args = p.Config.Args
			info.Envs = p.Config.Envs
			info.Cwd = p.Config.Cwd
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SendStdin 向进程发送标准输入。
func (c *Commands) SendStdin(ctx context.Context, pid uint32, data []byte) error {
	return c.sendStdinAs(ctx, pid, DefaultUser, data)
}

func (c *Commands) sendStdinAs(ctx context.Context, pid uint32, user string, data []byte) error {
	req := connect.NewRequest(&process.SendInputRequest{
		Process: process.SelectPid(pid),
		Input:   &process.ProcessInput{Stdin: data},
	})
	setEnvdAuth(req, user)

	_, err := c.rpc.SendInput(ctx, req)
	if err != nil {
		return fmt.Errorf("send stdin: %w", err)
	}
	return nil
}

// Kill 终止指定进程。
// 进程不存在（已退出）时返回 (false, nil)，终止成功返回 (true, nil)。
func (c *Commands) Kill(ctx context.Context, pid uint32) (bool, error) {
	return c.killAs(ctx, pid, DefaultUser)
}

func (c *Commands) killAs(ctx context.Context, pid uint32, user string) (bool, error) {
	req := connect.NewRequest(&process.SendSignalRequest{
		Process: process.SelectPid(pid),
		Signal:  process.SignalSIGKILL,
	})
	setEnvdAuth(req, user)

	_, err := c.rpc.SendSignal(ctx, req)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("kill process: %w", err)
	}
	return true, nil
}
