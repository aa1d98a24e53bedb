package statemachine

import "fmt"

// Transition 定义状态转换规则
type Transition[S, E comparable] struct {
	From  S    // 源状态，Any 为 true 时无意义
	To    S    // 目标状态
	Event E    // 触发事件
	Any   bool // 任意状态转换
}

// transitionKey 唯一标识一个精确转换
type transitionKey[S, E comparable] struct {
	from  S
	event E
}

// TransitionTable 转换表
//
// 精确转换按 (from, event) 索引，任意状态转换按 event 索引。
// 查找时精确转换优先。冻结后不可再注册
type TransitionTable[S, E comparable] struct {
	exact  map[transitionKey[S, E]]S
	any    map[E]S
	order  []Transition[S, E]
	frozen bool
}

// NewTransitionTable 创建空转换表
func NewTransitionTable[S, E comparable]() *TransitionTable[S, E] {
	return &TransitionTable[S, E]{
		exact: make(map[transitionKey[S, E]]S),
		any:   make(map[E]S),
	}
}

// AddTransition 添加精确转换
func (t *TransitionTable[S, E]) AddTransition(from S, event E, to S) error {
	if t.frozen {
		return fmt.Errorf("%w: add transition %v --%v--> %v", ErrMachineRunning, from, event, to)
	}

	key := transitionKey[S, E]{from: from, event: event}
	if _, exists := t.exact[key]; exists {
		return fmt.Errorf("%w: %v --%v-->", ErrDuplicateTransition, from, event)
	}

	t.exact[key] = to
	t.order = append(t.order, Transition[S, E]{From: from, To: to, Event: event})
	return nil
}

// AddAnyTransition 添加任意状态转换
func (t *TransitionTable[S, E]) AddAnyTransition(event E, to S) error {
	if t.frozen {
		return fmt.Errorf("%w: add any transition --%v--> %v", ErrMachineRunning, event, to)
	}

	if _, exists := t.any[event]; exists {
		return fmt.Errorf("%w: * --%v-->", ErrDuplicateTransition, event)
	}

	t.any[event] = to
	t.order = append(t.order, Transition[S, E]{To: to, Event: event, Any: true})
	return nil
}

// Resolve 查找 (current, event) 的目标状态
func (t *TransitionTable[S, E]) Resolve(current S, event E) (S, bool) {
	if to, ok := t.exact[transitionKey[S, E]{from: current, event: event}]; ok {
		return to, true
	}
	to, ok := t.any[event]
	return to, ok
}

// Transitions 按注册顺序返回所有转换
func (t *TransitionTable[S, E]) Transitions() []Transition[S, E] {
	return append([]Transition[S, E](nil), t.order...)
}

// Len 返回转换数量
func (t *TransitionTable[S, E]) Len() int {
	return len(t.order)
}

// Freeze 冻结转换表
func (t *TransitionTable[S, E]) Freeze() {
	t.frozen = true
}

// Frozen 返回是否已冻结
func (t *TransitionTable[S, E]) Frozen() bool {
	return t.frozen
}
