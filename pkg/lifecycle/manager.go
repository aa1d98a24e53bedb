package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/junbin-yang/go-breakout/pkg/logger"
)

// Manager 生命周期管理器
type Manager struct {
	mu              sync.RWMutex
	workers         map[string]*Worker
	workerContexts  map[string]context.CancelFunc
	workerOrder     []string
	hooks           *Hooks
	signals         []os.Signal
	shutdownTimeout time.Duration
	rootCtx         context.Context
	cancel          context.CancelFunc
	running         bool
	wg              sync.WaitGroup
	errChan         chan error
	log             logger.Logger

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewManager 创建生命周期管理器
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		workers:         make(map[string]*Worker),
		workerContexts:  make(map[string]context.CancelFunc),
		workerOrder:     make([]string, 0),
		hooks:           newHooks(),
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: 30 * time.Second,
		rootCtx:         context.Background(),
		errChan:         make(chan error, 1),
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Default()
	}

	return m
}

// AddWorker 添加协程（运行时动态添加）
func (m *Manager) AddWorker(name string, runFunc RunFunc, opts ...WorkerOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.workers[name]; exists {
		return ErrWorkerExists
	}

	worker := NewWorker(name, runFunc, opts...)
	m.workers[name] = worker
	m.workerOrder = append(m.workerOrder, name)

	// 如果管理器已运行，立即启动该协程
	if m.running {
		m.launch(m.rootCtx, worker)
	}

	return nil
}

// Workers 返回当前协程名称（按添加顺序）
func (m *Manager) Workers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.workerOrder))
	copy(names, m.workerOrder)
	return names
}

// StopWorker 停止指定协程
func (m *Manager) StopWorker(name string) error {
	m.mu.Lock()
	worker, exists := m.workers[name]
	cancel, hasCancel := m.workerContexts[name]
	m.mu.Unlock()

	if !exists {
		return ErrWorkerNotFound
	}

	if hasCancel {
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer shutdownCancel()
	return worker.Stop(shutdownCtx)
}

// OnStartup 注册启动钩子
func (m *Manager) OnStartup(fn HookFunc) {
	m.hooks.add(func() { m.hooks.onStartup = append(m.hooks.onStartup, fn) })
}

// OnWorkerStart 注册协程启动钩子
func (m *Manager) OnWorkerStart(fn WorkerHookFunc) {
	m.hooks.add(func() { m.hooks.onWorkerStart = append(m.hooks.onWorkerStart, fn) })
}

// OnWorkerExit 注册协程退出钩子
func (m *Manager) OnWorkerExit(fn WorkerHookFunc) {
	m.hooks.add(func() { m.hooks.onWorkerExit = append(m.hooks.onWorkerExit, fn) })
}

// OnShutdown 注册退出钩子
func (m *Manager) OnShutdown(fn HookFunc) {
	m.hooks.add(func() { m.hooks.onShutdown = append(m.hooks.onShutdown, fn) })
}

// OnTimeout 注册超时钩子
func (m *Manager) OnTimeout(fn HookFunc) {
	m.hooks.add(func() { m.hooks.onTimeout = append(m.hooks.onTimeout, fn) })
}

// Run 启动管理器并阻塞，直到收到信号、协程出错或调用 Stop/Shutdown
// 协程出错时先完成优雅退出，再返回该错误
func (m *Manager) Run() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(m.rootCtx)
	m.rootCtx = ctx
	m.cancel = cancel
	m.running = true
	m.mu.Unlock()

	if err := m.hooks.callStartup(ctx); err != nil {
		cancel()
		m.log.Error("startup hook failed", logger.Err(err))
		return err
	}

	m.startWorkers(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, m.signals...)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		m.log.Info("received signal, shutting down", logger.String("signal", sig.String()))
	case err := <-m.errChan:
		m.log.Error("worker failed, shutting down", logger.Err(err))
		if serr := m.Shutdown(); serr != nil {
			m.log.Warn("shutdown after worker failure", logger.Err(serr))
		}
		return err
	case <-ctx.Done():
	}

	return m.Shutdown()
}

// Stop 请求退出，不等待；Run 随后执行优雅退出流程
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	m.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Shutdown 手动触发退出并等待完成，重复调用返回同一结果
func (m *Manager) Shutdown() error {
	m.shutdownOnce.Do(func() {
		m.shutdownErr = m.shutdown()
	})
	return m.shutdownErr
}

// startWorkers 启动所有协程
func (m *Manager) startWorkers(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range m.workerOrder {
		m.launch(ctx, m.workers[name])
	}
}

// launch 启动单个协程，调用方需持有 m.mu
func (m *Manager) launch(ctx context.Context, w *Worker) {
	workerCtx, workerCancel := context.WithCancel(ctx)
	m.workerContexts[w.Name()] = workerCancel
	m.wg.Add(1)

	go func() {
		defer func() {
			workerCancel()
			m.remove(w.Name())
			m.wg.Done()
		}()

		m.log.Debug("worker started", logger.String("worker", w.Name()))
		m.hooks.callWorkerStart(w.Name(), nil)
		err := m.runWorker(workerCtx, w)
		m.hooks.callWorkerExit(w.Name(), err)

		if err != nil && !errors.Is(err, context.Canceled) {
			select {
			case m.errChan <- err:
			default:
			}
			return
		}
		m.log.Debug("worker exited", logger.String("worker", w.Name()))
	}()
}

// runWorker 运行协程并把 panic 转换为 ErrWorkerPanic
func (m *Manager) runWorker(ctx context.Context, w *Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("worker panicked",
				logger.String("worker", w.Name()),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: %s: %v", ErrWorkerPanic, w.Name(), r)
		}
	}()
	return w.Run(ctx)
}

func (m *Manager) remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.workerContexts, name)
	delete(m.workers, name)
	for i, n := range m.workerOrder {
		if n == name {
			m.workerOrder = append(m.workerOrder[:i], m.workerOrder[i+1:]...)
			break
		}
	}
}

// shutdown 执行退出流程
func (m *Manager) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()

	// 先按添加的逆序收集仍在运行的协程，再取消所有 context
	m.mu.Lock()
	pending := make([]*Worker, 0, len(m.workerOrder))
	for i := len(m.workerOrder) - 1; i >= 0; i-- {
		pending = append(pending, m.workers[m.workerOrder[i]])
	}
	if m.cancel != nil {
		m.cancel()
	}
	for _, cancelFunc := range m.workerContexts {
		cancelFunc()
	}
	m.mu.Unlock()

	for _, w := range pending {
		if err := w.Stop(shutdownCtx); err != nil {
			m.log.Warn("worker stop failed", logger.String("worker", w.Name()), logger.Err(err))
		}
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		_ = m.hooks.callTimeout(shutdownCtx)
		m.log.Error("shutdown timeout", logger.Duration("timeout", m.shutdownTimeout))
		return ErrShutdownTimeout
	}

	return m.hooks.callShutdown(shutdownCtx)
}
