package sandbox

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"
)

// maxPollJitter 是单次轮询间隔上附加的随机抖动上限。
const maxPollJitter = 500 * time.Millisecond

// PollOption 配置轮询行为的选项。
type PollOption func(*pollOpts)

type pollOpts struct {
	interval    time.Duration
	maxInterval time.Duration
	backoff     float64 // 退避倍数，默认 1.0（无退避）
	timeout     time.Duration
	onPoll      func(attempt int)
}

func defaultPollOpts(defaultInterval time.Duration) *pollOpts {
	return &pollOpts{
		interval:    defaultInterval,
		maxInterval: 0,
		backoff:     1.0,
	}
}

// WithPollInterval 设置轮询间隔。
func WithPollInterval(d time.Duration) PollOption {
	return func(o *pollOpts) { o.interval = d }
}

// WithBackoff 设置指数退避倍数和最大间隔。
// multiplier 为每次轮询后间隔的乘数（如 1.5 表示每次增加 50%），
// maxInterval 为间隔上限（0 表示不限制）。
func WithBackoff(multiplier float64, maxInterval time.Duration) PollOption {
	return func(o *pollOpts) {
		o.backoff = multiplier
		o.maxInterval = maxInterval
	}
}

// WithPollTimeout 设置轮询的总超时时间（0 表示不限制）。
// 超时后轮询以 *PollTimeoutError 结束，其中携带最后一次观测到的状态。
func WithPollTimeout(d time.Duration) PollOption {
	return func(o *pollOpts) { o.timeout = d }
}

// WithOnPoll 设置每次轮询时的回调函数。
// attempt 从 1 开始递增。
func WithOnPoll(fn func(attempt int)) PollOption {
	return func(o *pollOpts) { o.onPoll = fn }
}

// StatusSnapshot 是一次状态查询的观测结果。
type StatusSnapshot struct {
	// ID 是被轮询实体的标识。
	ID string
	// Status 是主状态。
	Status string
	// Substatus 是可选的细分状态。
	Substatus string
	// Reason 是进入当前状态的原因说明（如果有）。
	Reason string
	// UpdatedAt 是该状态的更新时间。
	UpdatedAt time.Time
}

// StatusPredicate 判断一个状态快照是否为轮询目标。
type StatusPredicate func(*StatusSnapshot) bool

// StatusIn 返回一个谓词：状态（忽略大小写）命中任一给定值即为目标。
func StatusIn(statuses ...string) StatusPredicate {
	normalized := make([]string, len(statuses))
	for i, s := range statuses {
		normalized[i] = strings.ToLower(s)
	}
	return func(snap *StatusSnapshot) bool {
		if snap == nil {
			return false
		}
		got := strings.ToLower(snap.Status)
		for _, want := range normalized {
			if got == want {
				return true
			}
		}
		return false
	}
}

// PollUntil 反复调用 fetch 直到 target 命中、ctx 取消或超时。
//
// 第一次查询立即执行，不等待间隔。超时返回 *PollTimeoutError
// （携带最后观测到的状态）；ctx 取消则原样返回 ctx.Err()。
func PollUntil(ctx context.Context, fetch func(ctx context.Context) (*StatusSnapshot, error), target StatusPredicate, options ...PollOption) (*StatusSnapshot, error) {
	opts := defaultPollOpts(time.Second)
	for _, fn := range options {
		fn(opts)
	}

	pollCtx := ctx
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var last *StatusSnapshot
	snap, err := pollLoop(pollCtx, opts, func() (bool, *StatusSnapshot, error) {
		snap, err := fetch(pollCtx)
		if err != nil {
			return false, nil, err
		}
		last = snap
		return target(snap), snap, nil
	})
	if err != nil {
		// 区分调用方取消与轮询超时
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// 超时后补一次查询，让错误携带尽量新的状态
			if final, ferr := fetch(ctx); ferr == nil && final != nil {
				last = final
			}
			return nil, &PollTimeoutError{LastStatus: last}
		}
		return nil, err
	}
	return snap, nil
}

// pollLoop 是 PollUntil、WaitForReady 和 WaitForBuild 共享的轮询循环。
// pollFn 在每次轮询时被调用，返回 (done, result, error)。
func pollLoop[T any](ctx context.Context, opts *pollOpts, pollFn func() (bool, T, error)) (T, error) {
	if opts.interval <= 0 {
		opts.interval = time.Second
	}

	interval := opts.interval
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	attempt := 0
	for {
		// 已取消/超时则不再发起查询
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}

		attempt++
		if opts.onPoll != nil {
			opts.onPoll(attempt)
		}

		done, result, err := pollFn()
		if err != nil {
			return result, err
		}
		if done {
			return result, nil
		}

		// 计算下次间隔（退避）
		if opts.backoff > 1.0 {
			interval = time.Duration(float64(interval) * opts.backoff)
			if opts.maxInterval > 0 && interval > opts.maxInterval {
				interval = opts.maxInterval
			}
		}

		if timer == nil {
			timer = time.NewTimer(interval + pollJitter(interval))
		} else {
			timer.Reset(interval + pollJitter(interval))
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// pollJitter 返回 [0, min(maxPollJitter, interval/10)) 内的随机抖动，
// 避免多个客户端同步轮询。
func pollJitter(interval time.Duration) time.Duration {
	limit := interval / 10
	if limit > maxPollJitter {
		limit = maxPollJitter
	}
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}
