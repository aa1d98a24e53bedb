package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/junbin-yang/go-breakout/pkg/logger"
)

func newTestManager(opts ...Option) *Manager {
	return NewManager(append([]Option{WithLogger(logger.NewNop())}, opts...)...)
}

func TestManager_AddWorker(t *testing.T) {
	m := newTestManager()

	err := m.AddWorker("test", func(ctx context.Context) error {
		return nil
	})

	if err != nil {
		t.Fatalf("添加协程失败: %v", err)
	}

	err = m.AddWorker("test", func(ctx context.Context) error {
		return nil
	})

	if err != ErrWorkerExists {
		t.Errorf("期望 ErrWorkerExists, got %v", err)
	}
}

func TestManager_StopWorker(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(1 * time.Second))

	stopped := false
	_ = m.AddWorker("test", func(ctx context.Context) error {
		<-ctx.Done()
		stopped = true
		return nil
	})

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.StopWorker("test")
	}()

	go func() {
		time.Sleep(500 * time.Millisecond)
		_ = m.Shutdown()
	}()

	_ = m.Run()

	if !stopped {
		t.Error("协程未被停止")
	}

	err := m.StopWorker("nonexistent")
	if err != ErrWorkerNotFound {
		t.Errorf("期望 ErrWorkerNotFound, got %v", err)
	}
}

func TestManager_Hooks(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(1 * time.Second))

	startupCalled := false
	workerStartCalled := false
	workerExitCalled := false
	shutdownCalled := false

	m.OnStartup(func(ctx context.Context) error {
		startupCalled = true
		return nil
	})

	m.OnWorkerStart(func(name string, err error) {
		workerStartCalled = true
	})

	m.OnWorkerExit(func(name string, err error) {
		workerExitCalled = true
	})

	m.OnShutdown(func(ctx context.Context) error {
		shutdownCalled = true
		return nil
	})

	_ = m.AddWorker("test", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.Shutdown()
	}()

	_ = m.Run()

	if !startupCalled {
		t.Error("OnStartup 未被调用")
	}
	if !workerStartCalled {
		t.Error("OnWorkerStart 未被调用")
	}
	if !workerExitCalled {
		t.Error("OnWorkerExit 未被调用")
	}
	if !shutdownCalled {
		t.Error("OnShutdown 未被调用")
	}
}

func TestManager_WorkerError(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(1 * time.Second))

	expectedErr := errors.New("worker error")

	_ = m.AddWorker("test", func(ctx context.Context) error {
		return expectedErr
	})

	var stopped atomic.Bool
	_ = m.AddWorker("sibling",
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		WithStopFunc(func(ctx context.Context) error {
			stopped.Store(true)
			return nil
		}),
	)

	shutdownCalled := false
	m.OnShutdown(func(ctx context.Context) error {
		shutdownCalled = true
		return nil
	})

	err := m.Run()
	if err != expectedErr {
		t.Errorf("期望错误 %v, got %v", expectedErr, err)
	}
	if !stopped.Load() {
		t.Error("协程出错后其他协程应被停止")
	}
	if !shutdownCalled {
		t.Error("协程出错后应执行退出钩子")
	}
}

func TestManager_ContextCancellation(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(1 * time.Second))

	cancelled := false

	_ = m.AddWorker("test", func(ctx context.Context) error {
		<-ctx.Done()
		cancelled = true
		return nil
	})

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.Shutdown()
	}()

	_ = m.Run()

	if !cancelled {
		t.Error("协程未收到取消信号")
	}
}

func TestWorker_StopFunc(t *testing.T) {
	stopCalled := false

	worker := NewWorker("test",
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		WithStopFunc(func(ctx context.Context) error {
			stopCalled = true
			return nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)

	_ = worker.Stop(context.Background())

	if !stopCalled {
		t.Error("StopFunc 未被调用")
	}
}

func TestManager_DynamicWorker(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(2 * time.Second))

	_ = m.AddWorker("long-running", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.AddWorker("temp-task", func(ctx context.Context) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		})
	}()

	go func() {
		time.Sleep(500 * time.Millisecond)
		_ = m.Shutdown()
	}()

	_ = m.Run()
}

func TestManager_IndependentContext(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(2 * time.Second))

	worker1Done := false
	worker2Done := false

	_ = m.AddWorker("worker1", func(ctx context.Context) error {
		<-ctx.Done()
		worker1Done = true
		return nil
	})

	_ = m.AddWorker("worker2", func(ctx context.Context) error {
		<-ctx.Done()
		worker2Done = true
		return nil
	})

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = m.StopWorker("worker1")
	}()

	go func() {
		time.Sleep(300 * time.Millisecond)
		_ = m.Shutdown()
	}()

	_ = m.Run()

	if !worker1Done {
		t.Error("worker1 未被停止")
	}
	if !worker2Done {
		t.Error("worker2 未被停止")
	}
}

func TestManager_Stop(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(1 * time.Second))

	shutdownCalls := 0
	m.OnShutdown(func(ctx context.Context) error {
		shutdownCalls++
		return nil
	})

	// 协程主动结束时请求退出
	_ = m.AddWorker("input", func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		m.Stop()
		return nil
	})
	_ = m.AddWorker("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- m.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run 返回错误: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop 后 Run 未返回")
	}

	if err := m.Shutdown(); err != nil {
		t.Errorf("重复 Shutdown 返回错误: %v", err)
	}
	if shutdownCalls != 1 {
		t.Errorf("退出钩子应只执行一次, got %d", shutdownCalls)
	}
	if len(m.Workers()) != 0 {
		t.Errorf("退出后不应有协程: %v", m.Workers())
	}
}

func TestManager_AlreadyRunning(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(1 * time.Second))
	_ = m.AddWorker("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- m.Run() }()
	time.Sleep(50 * time.Millisecond)

	if err := m.Run(); err != ErrAlreadyRunning {
		t.Errorf("期望 ErrAlreadyRunning, got %v", err)
	}
	_ = m.Shutdown()
	<-done
}

func TestManager_StartupError(t *testing.T) {
	m := newTestManager()
	boom := errors.New("screen init failed")
	m.OnStartup(func(ctx context.Context) error { return boom })

	started := false
	_ = m.AddWorker("loop", func(ctx context.Context) error {
		started = true
		return nil
	})

	if err := m.Run(); err != boom {
		t.Errorf("期望启动钩子错误, got %v", err)
	}
	if started {
		t.Error("启动钩子失败后不应启动协程")
	}
}

func TestManager_ShutdownTimeout(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(50 * time.Millisecond))

	timeoutCalled := false
	m.OnTimeout(func(ctx context.Context) error {
		timeoutCalled = true
		return nil
	})

	release := make(chan struct{})
	defer close(release)
	_ = m.AddWorker("stuck", func(ctx context.Context) error {
		<-release
		return nil
	})

	go func() {
		time.Sleep(50 * time.Millisecond)
		m.Stop()
	}()

	if err := m.Run(); err != ErrShutdownTimeout {
		t.Errorf("期望 ErrShutdownTimeout, got %v", err)
	}
	if !timeoutCalled {
		t.Error("OnTimeout 未被调用")
	}
}

func TestManager_WorkerPanic(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(time.Second))

	var cleaned atomic.Bool
	_ = m.AddWorker("screen", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}, WithStopFunc(func(ctx context.Context) error {
		cleaned.Store(true)
		return nil
	}))
	_ = m.AddWorker("game-loop", func(ctx context.Context) error {
		panic("index out of range")
	})

	err := m.Run()
	if !errors.Is(err, ErrWorkerPanic) {
		t.Fatalf("期望 ErrWorkerPanic, got %v", err)
	}
	if !cleaned.Load() {
		t.Error("panic 后其余协程仍应被优雅停止")
	}
}

func TestManager_ShutdownHooksReversed(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(time.Second))

	var order []string
	errA := errors.New("a failed")
	m.OnShutdown(func(ctx context.Context) error {
		order = append(order, "a")
		return errA
	})
	m.OnShutdown(func(ctx context.Context) error {
		order = append(order, "b")
		return nil
	})

	go func() {
		time.Sleep(50 * time.Millisecond)
		m.Stop()
	}()

	err := m.Run()
	if !errors.Is(err, errA) {
		t.Errorf("应返回退出钩子的错误, got %v", err)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Errorf("退出钩子应按注册逆序执行且全部执行: %v", order)
	}
}
