package lifecycle

import "errors"

var (
	ErrWorkerExists    = errors.New("worker already exists")
	ErrWorkerNotFound  = errors.New("worker not found")
	ErrShutdownTimeout = errors.New("shutdown timeout")
	ErrAlreadyRunning  = errors.New("manager already running")

	// ErrWorkerPanic 协程 panic 被恢复后以该错误退出，触发整体退出
	ErrWorkerPanic = errors.New("worker panicked")
)
