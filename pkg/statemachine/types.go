package statemachine

// State 状态节点，生命周期钩子由状态机驱动
//
// Enter 在状态被激活时调用一次，早于任何 Tick
// Tick 在状态保持激活期间，每次外部 Tick 调用一次
// Exit 在状态失活时调用一次，晚于最后一次 Tick，早于下一个状态的 Enter
type State interface {
	Enter()
	Tick()
	Exit()
}

// ExitTimer 需要退出时间的状态
//
// NeedsExitTime 返回 true 时，状态机在转换被请求后每帧轮询 CanExit，
// 直到其返回 true 才真正执行转换
type ExitTimer interface {
	NeedsExitTime() bool
	CanExit() bool
}

// Triggerer 可接收事件的对象
type Triggerer[E any] interface {
	Trigger(event E)
}

// Runner 可初始化并逐帧驱动的对象
type Runner interface {
	Init() error
	Tick()
}

// TransitionFunc 转换提交后的观察回调
type TransitionFunc[S, E comparable] func(from, to S, event E)

// binder 由 Base 实现，注册状态时注入状态机引用
type binder[S, E comparable, C any] interface {
	bind(m *Machine[S, E, C])
}

// Base 可嵌入的状态基类，所有钩子默认为空操作
type Base[S, E comparable, C any] struct {
	machine *Machine[S, E, C]
}

func (b *Base[S, E, C]) bind(m *Machine[S, E, C]) { b.machine = m }

// Machine 返回所属状态机，注册前为 nil
func (b *Base[S, E, C]) Machine() *Machine[S, E, C] { return b.machine }

// Context 返回所属状态机的上下文
func (b *Base[S, E, C]) Context() C {
	if b.machine == nil {
		var zero C
		return zero
	}
	return b.machine.context
}

// Trigger 向所属状态机发送事件
func (b *Base[S, E, C]) Trigger(event E) {
	if b.machine != nil {
		b.machine.Trigger(event)
	}
}

func (b *Base[S, E, C]) Enter() {}
func (b *Base[S, E, C]) Tick()  {}
func (b *Base[S, E, C]) Exit()  {}

// StateFuncs 以函数表形式定义状态，nil 字段视为空操作
type StateFuncs struct {
	OnEnter func()
	OnTick  func()
	OnExit  func()
}

func (f StateFuncs) Enter() {
	if f.OnEnter != nil {
		f.OnEnter()
	}
}

func (f StateFuncs) Tick() {
	if f.OnTick != nil {
		f.OnTick()
	}
}

func (f StateFuncs) Exit() {
	if f.OnExit != nil {
		f.OnExit()
	}
}
