package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery_TicksUntilCancel(t *testing.T) {
	var ticks atomic.Int32
	run := Every(5*time.Millisecond, func(ctx context.Context) error {
		ticks.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Errorf("取消后应返回 nil, got %v", err)
	}
	if ticks.Load() == 0 {
		t.Error("至少应执行一次")
	}
}

func TestEvery_StopsOnError(t *testing.T) {
	boom := errors.New("tick failed")
	var ticks atomic.Int32
	run := Every(time.Millisecond, func(ctx context.Context) error {
		if ticks.Add(1) == 3 {
			return boom
		}
		return nil
	})

	if err := run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("期望返回 tick 错误, got %v", err)
	}
	if ticks.Load() != 3 {
		t.Errorf("出错后应立即停止, ticks=%d", ticks.Load())
	}
}

// 固定步长循环与其停止函数的退出顺序
func TestManager_TickLoopShutdown(t *testing.T) {
	m := newTestManager(WithShutdownTimeout(2 * time.Second))

	var ticks atomic.Int32
	var order []string

	_ = m.AddWorker("game-loop",
		Every(5*time.Millisecond, func(ctx context.Context) error {
			ticks.Add(1)
			return nil
		}),
		WithStopFunc(func(ctx context.Context) error {
			order = append(order, "game-loop")
			return nil
		}),
	)
	_ = m.AddWorker("input",
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		WithStopFunc(func(ctx context.Context) error {
			order = append(order, "input")
			return nil
		}),
	)

	shutdownCalled := false
	m.OnShutdown(func(ctx context.Context) error {
		shutdownCalled = true
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- m.Run() }()

	time.Sleep(60 * time.Millisecond)
	start := time.Now()
	if err := m.Shutdown(); err != nil {
		t.Errorf("Shutdown 返回错误: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Shutdown 耗时过长: %v", elapsed)
	}
	<-done

	if ticks.Load() == 0 {
		t.Error("循环未执行")
	}
	if len(order) != 2 || order[0] != "input" || order[1] != "game-loop" {
		t.Errorf("停止函数应按添加的逆序调用: %v", order)
	}
	if !shutdownCalled {
		t.Error("OnShutdown 未被调用")
	}
}
