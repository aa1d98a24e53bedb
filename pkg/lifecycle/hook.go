package lifecycle

import (
	"context"
	"errors"
	"sync"
)

// HookFunc 钩子函数
type HookFunc func(ctx context.Context) error

// WorkerHookFunc 协程钩子函数，err 为协程的退出错误
type WorkerHookFunc func(name string, err error)

// Hooks 钩子集合；可在运行期间注册，调用时使用快照
type Hooks struct {
	mu            sync.RWMutex
	onStartup     []HookFunc
	onWorkerStart []WorkerHookFunc
	onWorkerExit  []WorkerHookFunc
	onShutdown    []HookFunc
	onTimeout     []HookFunc
}

func newHooks() *Hooks {
	return &Hooks{}
}

func (h *Hooks) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn()
}

func snapshot[T any](h *Hooks, list *[]T) []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]T(nil), *list...)
}

// callStartup 按注册顺序调用，遇到错误即停止
func (h *Hooks) callStartup(ctx context.Context) error {
	for _, fn := range snapshot(h, &h.onStartup) {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hooks) callWorkerStart(name string, err error) {
	for _, fn := range snapshot(h, &h.onWorkerStart) {
		fn(name, err)
	}
}

func (h *Hooks) callWorkerExit(name string, err error) {
	for _, fn := range snapshot(h, &h.onWorkerExit) {
		fn(name, err)
	}
}

// callShutdown 按注册的逆序全部调用，返回合并后的错误
func (h *Hooks) callShutdown(ctx context.Context) error {
	return callAllReversed(ctx, snapshot(h, &h.onShutdown))
}

func (h *Hooks) callTimeout(ctx context.Context) error {
	return callAllReversed(ctx, snapshot(h, &h.onTimeout))
}

func callAllReversed(ctx context.Context, fns []HookFunc) error {
	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
