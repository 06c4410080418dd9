package sandbox

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ExecutionError 代码执行期间发生的错误（解释器异常）。
// 作为执行结果的一部分返回，而非 Go error：调用方据此分支处理即可。
type ExecutionError struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Traceback string `json:"traceback,omitempty"`
}

// Error 实现 error 接口。
func (e *ExecutionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Value)
	}
	return e.Value
}

// OutputMessage 一条 stdout/stderr 输出。
type OutputMessage struct {
	// Content 输出内容。
	Content string
	// Timestamp 输出时间（Unix 毫秒，0 表示未知）。
	Timestamp int64
	// Type "stdout" 或 "stderr"。
	Type string
	// Error stderr 输出为 true。
	Error bool
}

// Result 一次代码执行产生的一条展示结果（可能有多条）。
// 各字段按 MIME 类型命名，未产生的字段为零值。
type Result struct {
	Text       string         `json:"text,omitempty"`
	HTML       string         `json:"html,omitempty"`
	Markdown   string         `json:"markdown,omitempty"`
	SVG        string         `json:"svg,omitempty"`
	PNG        string         `json:"png,omitempty"`
	JPEG       string         `json:"jpeg,omitempty"`
	PDF        string         `json:"pdf,omitempty"`
	Latex      string         `json:"latex,omitempty"`
	JSON       string         `json:"json,omitempty"`
	JavaScript string         `json:"javascript,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`

	// IsMainResult 标记该结果为本次执行的"返回值"（类似 REPL 最后表达式的值）。
	IsMainResult bool `json:"is_main_result,omitempty"`
	// ExecutionCount 解释器执行计数。
	ExecutionCount *int32 `json:"execution_count,omitempty"`

	// RawChart 图表的原始负载，Chart() 按需解码。
	RawChart map[string]any `json:"chart,omitempty"`

	chartOnce sync.Once
	chart     Chart
}

// Chart 返回解码后的图表。首次调用时解码并缓存；
// 负载缺失或类型未知时返回 nil。
func (r *Result) Chart() Chart {
	r.chartOnce.Do(func() {
		r.chart = DecodeChart(r.RawChart)
	})
	return r.chart
}

// hasMedia 判断结果是否携带图像/标记内容（png、svg、html、jpeg）。
func (r *Result) hasMedia() bool {
	return r.PNG != "" || r.SVG != "" || r.HTML != "" || r.JPEG != ""
}

// ExecutionLogs 执行期间的标准输出与标准错误，按到达顺序累积。
type ExecutionLogs struct {
	Stdout []string
	Stderr []string
}

// Execution 一次代码执行的聚合状态。
// 随事件到达单调增长，流进行中也可随时读取。
type Execution struct {
	Results        []*Result
	Logs           ExecutionLogs
	Error          *ExecutionError
	ExecutionCount *int32
}

// Text 返回主结果的文本内容（第一个 IsMainResult 的结果）。
// 尚无主结果时返回空字符串。
func (e *Execution) Text() string {
	for _, r := range e.Results {
		if r.IsMainResult {
			return r.Text
		}
	}
	return ""
}

// ExecutionResult 执行结束后的扁平化快照。
type ExecutionResult struct {
	// Text 主结果文本；主结果无文本时回退为 stdout 拼接。
	Text string
	PNG  string
	SVG  string
	HTML string

	Stdout []string
	Stderr []string

	// ExitCode 有执行错误时为 1，否则为 0（该协议不传输进程退出码）。
	ExitCode int
	// Success 无错误且存在主结果或带文本的结果时为 true。
	Success bool

	Error *ExecutionError

	// Result 主结果选择算法选中的结果（可能为 nil）。
	Result *Result
	// Results 全部结果。
	Results []*Result
}

// ExecutionHandlers 执行事件回调。所有回调都是可选的；
// 回调 panic 会被捕获并记录日志，不会中断聚合。
type ExecutionHandlers struct {
	OnStdout func(msg OutputMessage)
	OnStderr func(msg OutputMessage)
	OnResult func(result *Result)
	OnError  func(err *ExecutionError)

	// Logger 记录回调 panic 等内部事件（可选，默认 slog.Default()）。
	Logger *slog.Logger
}

func (h *ExecutionHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// 执行事件类型。
const (
	eventStdout = "stdout"
	eventStderr = "stderr"
	eventResult = "result"
	eventError  = "error"
)

// ExecutionEvent 代码解释器事件流中的一条事件（NDJSON 一行）。
// type 为判别字段: stdout | stderr | result | error。
type ExecutionEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// stdout / stderr
	Content string `json:"content,omitempty"`

	// error
	Name      string `json:"name,omitempty"`
	Value     string `json:"value,omitempty"`
	Traceback string `json:"traceback,omitempty"`

	// result
	Text           string         `json:"text,omitempty"`
	HTML           string         `json:"html,omitempty"`
	Markdown       string         `json:"markdown,omitempty"`
	SVG            string         `json:"svg,omitempty"`
	PNG            string         `json:"png,omitempty"`
	JPEG           string         `json:"jpeg,omitempty"`
	PDF            string         `json:"pdf,omitempty"`
	Latex          string         `json:"latex,omitempty"`
	JSON           string         `json:"json,omitempty"`
	JavaScript     string         `json:"javascript,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
	Chart          map[string]any `json:"chart,omitempty"`
	IsMainResult   bool           `json:"is_main_result,omitempty"`
	ExecutionCount *int32         `json:"execution_count,omitempty"`
}

// ParseOutput 消费一条执行事件并就地更新 execution。
//
// 事件流中 Result 可出现多次，Error 至多一次。
// 未知事件类型会被转换为合成的 ParseError 并走 OnError 路径，
// 聚合本身永不因单条事件失败而中断。
func ParseOutput(execution *Execution, event *ExecutionEvent, handlers *ExecutionHandlers) {
	if handlers == nil {
		handlers = &ExecutionHandlers{}
	}

	switch event.Type {
	case eventStdout:
		execution.Logs.Stdout = append(execution.Logs.Stdout, event.Content)
		if handlers.OnStdout != nil {
			invokeHandler(handlers.logger(), "stdout", func() {
				handlers.OnStdout(OutputMessage{
					Content:   event.Content,
					Timestamp: event.Timestamp,
					Type:      eventStdout,
				})
			})
		}

	case eventStderr:
		execution.Logs.Stderr = append(execution.Logs.Stderr, event.Content)
		if handlers.OnStderr != nil {
			invokeHandler(handlers.logger(), "stderr", func() {
				handlers.OnStderr(OutputMessage{
					Content:   event.Content,
					Timestamp: event.Timestamp,
					Type:      eventStderr,
					Error:     true,
				})
			})
		}

	case eventResult:
		result := &Result{
			Text:           event.Text,
			HTML:           event.HTML,
			Markdown:       event.Markdown,
			SVG:            event.SVG,
			PNG:            event.PNG,
			JPEG:           event.JPEG,
			PDF:            event.PDF,
			Latex:          event.Latex,
			JSON:           event.JSON,
			JavaScript:     event.JavaScript,
			Data:           event.Data,
			Extra:          event.Extra,
			RawChart:       event.Chart,
			IsMainResult:   event.IsMainResult,
			ExecutionCount: event.ExecutionCount,
		}
		execution.Results = append(execution.Results, result)
		if result.IsMainResult && result.ExecutionCount != nil {
			execution.ExecutionCount = result.ExecutionCount
		}
		if handlers.OnResult != nil {
			invokeHandler(handlers.logger(), "result", func() {
				handlers.OnResult(result)
			})
		}

	case eventError:
		execution.Error = &ExecutionError{
			Name:      event.Name,
			Value:     event.Value,
			Traceback: event.Traceback,
		}
		if handlers.OnError != nil {
			invokeHandler(handlers.logger(), "error", func() {
				handlers.OnError(execution.Error)
			})
		}

	default:
		// 未知事件类型: 降级为解析错误，不中断消费
		parseErr := &ExecutionEvent{
			Type:  eventError,
			Name:  "ParseError",
			Value: fmt.Sprintf("unknown execution event type %q", event.Type),
		}
		ParseOutput(execution, parseErr, handlers)
	}
}

// invokeHandler 调用回调并兜住 panic。
func invokeHandler(logger *slog.Logger, kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("sandbox: execution handler panicked",
				slog.String("handler", kind),
				slog.Any("panic", r),
			)
		}
	}()
	fn()
}

// ExecutionToResult 在流结束后将 Execution 扁平化为 ExecutionResult。
//
// 主结果选择:
//  1. 优先取 IsMainResult 的结果。
//  2. 若没有主结果，或主结果既无文本也无图像/标记内容，
//     回退到第一个携带 png/svg/html/jpeg 的结果
//     （兼容不打 is_main_result 标记就输出展示数据的后端）。
//     仅有 text/markdown/json 的结果不触发该回退。
//  3. Text 在选中结果无文本时回退为 stdout 拼接。
func ExecutionToResult(execution *Execution) *ExecutionResult {
	var main *Result
	for _, r := range execution.Results {
		if r.IsMainResult {
			main = r
			break
		}
	}

	selected := main
	if selected == nil || (selected.Text == "" && !selected.hasMedia()) {
		for _, r := range execution.Results {
			if r.hasMedia() {
				selected = r
				break
			}
		}
	}

	out := &ExecutionResult{
		Stdout:  append([]string(nil), execution.Logs.Stdout...),
		Stderr:  append([]string(nil), execution.Logs.Stderr...),
		Error:   execution.Error,
		Result:  selected,
		Results: execution.Results,
	}

	if selected != nil {
		out.Text = selected.Text
		out.PNG = selected.PNG
		out.SVG = selected.SVG
		out.HTML = selected.HTML
	}
	if out.Text == "" {
		out.Text = strings.Join(execution.Logs.Stdout, "")
	}

	if execution.Error != nil {
		out.ExitCode = 1
	}

	hasValue := false
	for _, r := range execution.Results {
		if r.IsMainResult || r.Text != "" {
			hasValue = true
			break
		}
	}
	out.Success = execution.Error == nil && hasValue

	return out
}
