package statemachine

import "fmt"

// 以下错误均为配置错误，表示调用方的编程缺陷，应在启动前处理

var (
	// ErrDuplicateState 当状态 ID 已注册时返回
	ErrDuplicateState = fmt.Errorf("duplicate state")

	// ErrNilState 当注册的状态为 nil 时返回
	ErrNilState = fmt.Errorf("nil state")

	// ErrStateNotFound 当状态不存在时返回
	ErrStateNotFound = fmt.Errorf("state not found")

	// ErrDuplicateTransition 当转换规则已存在时返回
	ErrDuplicateTransition = fmt.Errorf("duplicate transition")

	// ErrNoStartState 当初始化前未设置起始状态时返回
	ErrNoStartState = fmt.Errorf("start state not set")

	// ErrMachineRunning 当状态机已初始化后继续配置或重复初始化时返回
	ErrMachineRunning = fmt.Errorf("machine already running")

	// ErrDuplicateRunner 当分组内名称已存在时返回
	ErrDuplicateRunner = fmt.Errorf("duplicate runner")

	// ErrRunnerNotFound 当分组内名称不存在时返回
	ErrRunnerNotFound = fmt.Errorf("runner not found")
)
