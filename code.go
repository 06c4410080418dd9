package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// codeInterpreterPort 是沙箱内代码解释器服务的端口。
const codeInterpreterPort = 49999

// DefaultLanguage 是代码执行的默认语言。
const DefaultLanguage = "python"

// RunCodeOption 代码执行选项。
type RunCodeOption func(*runCodeOpts)

type runCodeOpts struct {
	language string
	envs     map[string]string
	timeout  time.Duration
	handlers ExecutionHandlers
}

// WithLanguage 设置执行语言（默认 python）。
func WithLanguage(language string) RunCodeOption {
	return func(o *runCodeOpts) { o.language = language }
}

// WithCodeEnvs 设置执行时的环境变量。
func WithCodeEnvs(envs map[string]string) RunCodeOption {
	return func(o *runCodeOpts) { o.envs = envs }
}

// WithCodeTimeout 设置执行超时时间。
func WithCodeTimeout(timeout time.Duration) RunCodeOption {
	return func(o *runCodeOpts) { o.timeout = timeout }
}

// WithExecutionHandlers 设置执行事件回调。
func WithExecutionHandlers(handlers ExecutionHandlers) RunCodeOption {
	return func(o *runCodeOpts) { o.handlers = handlers }
}

// CodeRunner 向沙箱内的代码解释器提交代码并消费其事件流。
type CodeRunner struct {
	sandbox *Sandbox
}

// newCodeRunner 创建 CodeRunner 实例。
func newCodeRunner(s *Sandbox) *CodeRunner {
	return &CodeRunner{sandbox: s}
}

// executeRequest 代码执行请求体。
type executeRequest struct {
	Code     string            `json:"code"`
	Language string            `json:"language,omitempty"`
	Envs     map[string]string `json:"envs,omitempty"`
}

// interpreterURL 返回代码解释器服务的基础 URL。
func (r *CodeRunner) interpreterURL() string {
	return fmt.Sprintf("https://%s", r.sandbox.GetHost(codeInterpreterPort))
}

// Run 执行一段代码并等待完成，返回扁平化的执行结果。
//
// 解释器以 NDJSON 流式返回事件（stdout | stderr | result | error），
// 逐条事件喂给聚合器；回调通过 WithExecutionHandlers 注册。
// 连接建立前的失败以 error 返回；连接建立后流中断会被转换为
// 执行级错误并体现在结果中。
func (r *CodeRunner) Run(ctx context.Context, code string, opts ...RunCodeOption) (*ExecutionResult, error) {
	execution, err := r.run(ctx, code, opts...)
	if err != nil {
		return nil, err
	}
	return ExecutionToResult(execution), nil
}

// RunDetailed 执行一段代码并返回完整的聚合状态（全部结果与日志）。
func (r *CodeRunner) RunDetailed(ctx context.Context, code string, opts ...RunCodeOption) (*Execution, error) {
	return r.run(ctx, code, opts...)
}

func (r *CodeRunner) run(ctx context.Context, code string, opts ...RunCodeOption) (*Execution, error) {
	o := &runCodeOpts{language: DefaultLanguage}
	for _, fn := range opts {
		fn(o)
	}
	if o.handlers.Logger == nil {
		o.handlers.Logger = r.sandbox.client.logger
	}

	runCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	body, err := json.Marshal(executeRequest{
		Code:     code,
		Language: o.language,
		Envs:     o.envs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(runCtx, http.MethodPost, r.interpreterURL()+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range envdAuthHeader(DefaultUser) {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	httpClient := r.sandbox.client.config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, newAPIError(resp.StatusCode, data)
	}

	execution := &Execution{}
	consumeExecutionStream(execution, resp.Body, &o.handlers)
	return execution, nil
}

// consumeExecutionStream 逐行读取 NDJSON 事件流并喂给聚合器。
//
// 无法解析的行转换为合成的 ParseError 事件；流中断（连接断开）
// 转换为执行级 StreamError — 两者都走错误事件路径，不中断消费。
func consumeExecutionStream(execution *Execution, body io.Reader, handlers *ExecutionHandlers) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event ExecutionEvent
		if err := json.Unmarshal(line, &event); err != nil {
			ParseOutput(execution, &ExecutionEvent{
				Type:  eventError,
				Name:  "ParseError",
				Value: fmt.Sprintf("malformed execution event: %v", err),
			}, handlers)
			continue
		}
		ParseOutput(execution, &event, handlers)
	}

	if err := scanner.Err(); err != nil && execution.Error == nil {
		ParseOutput(execution, &ExecutionEvent{
			Type:  eventError,
			Name:  "StreamError",
			Value: fmt.Sprintf("execution stream interrupted: %v", err),
		}, handlers)
	}
}
