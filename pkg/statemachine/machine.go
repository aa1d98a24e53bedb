package statemachine

import (
	"fmt"

	"github.com/junbin-yang/go-breakout/pkg/logger"
)

// phase 状态机自身的运行阶段
type phase uint8

const (
	phaseUnconfigured phase = iota
	phaseRunning
)

// pendingExit 等待当前状态允许退出的转换
type pendingExit[S, E comparable] struct {
	event E
	to    S
}

// Machine 通用状态机
//
// S 为状态 ID，E 为事件 ID，C 为上下文类型。上下文只是借用，
// 状态机不拥有也不释放它。所有方法必须在同一个驱动协程上调用，
// 跨协程投递事件请使用 Mailbox
type Machine[S, E comparable, C any] struct {
	context C
	name    string
	log     logger.Logger

	states map[S]State
	order  []S
	table  *TransitionTable[S, E]

	start    S
	hasStart bool
	active   S
	phase    phase
	setupErr error // 第一个配置错误，Init 时再次返回

	dispatching bool // 正在执行钩子链
	suspended   bool // 作为子状态机时所在的父状态未激活
	queue       []E  // 钩子内触发的待处理事件（FIFO）
	exit        *pendingExit[S, E]

	observers []TransitionFunc[S, E]
	history   *history[S, E]
}

// NewMachine 创建绑定到 context 的状态机
func NewMachine[S, E comparable, C any](context C, opts ...Option) *Machine[S, E, C] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Machine[S, E, C]{
		context: context,
		name:    o.name,
		log:     o.log,
		states:  make(map[S]State),
		table:   NewTransitionTable[S, E](),
	}
	if o.historyLimit > 0 {
		m.history = newHistory[S, E](o.historyLimit)
	}
	return m
}

// AddState 注册状态
func (m *Machine[S, E, C]) AddState(id S, node State) error {
	if m.phase == phaseRunning {
		return m.fail(fmt.Errorf("%w: add state %v", ErrMachineRunning, id))
	}
	if node == nil {
		return m.fail(fmt.Errorf("%w: %v", ErrNilState, id))
	}
	if _, exists := m.states[id]; exists {
		return m.fail(fmt.Errorf("%w: %v", ErrDuplicateState, id))
	}

	m.states[id] = node
	m.order = append(m.order, id)
	if b, ok := node.(binder[S, E, C]); ok {
		b.bind(m)
	}
	return nil
}

// AddTransition 添加精确转换
func (m *Machine[S, E, C]) AddTransition(from S, event E, to S) error {
	if err := m.table.AddTransition(from, event, to); err != nil {
		return m.fail(err)
	}
	return nil
}

// AddAnyTransition 添加任意状态转换
func (m *Machine[S, E, C]) AddAnyTransition(event E, to S) error {
	if err := m.table.AddAnyTransition(event, to); err != nil {
		return m.fail(err)
	}
	return nil
}

// SetStartState 设置起始状态
func (m *Machine[S, E, C]) SetStartState(id S) error {
	if m.phase == phaseRunning {
		return m.fail(fmt.Errorf("%w: set start state %v", ErrMachineRunning, id))
	}
	if _, exists := m.states[id]; !exists {
		return m.fail(fmt.Errorf("%w: start state %v", ErrStateNotFound, id))
	}
	m.start = id
	m.hasStart = true
	return nil
}

// Init 启动状态机并进入起始状态，只能调用一次
func (m *Machine[S, E, C]) Init() error {
	if m.phase == phaseRunning {
		return fmt.Errorf("%w: init called twice", ErrMachineRunning)
	}
	if m.setupErr != nil {
		return fmt.Errorf("setup failed: %w", m.setupErr)
	}
	if !m.hasStart {
		return ErrNoStartState
	}
	for _, t := range m.table.order {
		if _, ok := m.states[t.From]; !t.Any && !ok {
			return fmt.Errorf("%w: transition source %v", ErrStateNotFound, t.From)
		}
		if _, ok := m.states[t.To]; !ok {
			return fmt.Errorf("%w: transition target %v", ErrStateNotFound, t.To)
		}
	}

	m.table.Freeze()
	m.phase = phaseRunning
	m.active = m.start
	m.logger().Debug("state machine started",
		logger.String("machine", m.name),
		logger.Any("state", m.start),
	)
	if m.history != nil {
		var zero E
		m.history.add(m.start, m.start, zero, true)
	}

	m.dispatch(func() {
		m.states[m.active].Enter()
	})
	return nil
}

// Tick 驱动当前状态的 Tick 钩子，Init 之前调用为空操作
func (m *Machine[S, E, C]) Tick() {
	if m.phase != phaseRunning {
		m.logger().Debug("tick before init ignored", logger.String("machine", m.name))
		return
	}
	if m.suspended {
		return
	}
	if m.dispatching {
		m.logger().Warn("tick from inside a lifecycle hook ignored", logger.String("machine", m.name))
		return
	}

	m.dispatch(func() {
		m.states[m.active].Tick()
	})
	if m.exit != nil {
		m.dispatch(m.pollExit)
	}
}

// Trigger 请求状态转换
//
// 空闲时同步完成转换后返回；在钩子内调用时加入待处理队列，
// 当前钩子链结束后按 FIFO 顺序处理。找不到转换时静默丢弃
func (m *Machine[S, E, C]) Trigger(event E) {
	if m.phase != phaseRunning {
		m.logger().Debug("trigger before init dropped",
			logger.String("machine", m.name),
			logger.Any("event", event),
		)
		return
	}
	if m.suspended {
		return
	}

	m.queue = append(m.queue, event)
	if m.dispatching {
		return
	}
	m.dispatch(nil)
}

// OnTransition 注册转换观察回调，在目标状态 Enter 之后调用
func (m *Machine[S, E, C]) OnTransition(fn TransitionFunc[S, E]) {
	m.observers = append(m.observers, fn)
}

// ActiveState 返回当前状态，Init 之前为零值
//
// 作为子状态机被挂起时返回最后退出的状态，此时 IsCurrentState 为 false
func (m *Machine[S, E, C]) ActiveState() S {
	return m.active
}

// IsCurrentState 检查 id 是否为已进入且尚未退出的当前状态
func (m *Machine[S, E, C]) IsCurrentState(id S) bool {
	return m.phase == phaseRunning && !m.suspended && m.active == id
}

// Suspended 返回子状态机所在的父状态是否已退出
func (m *Machine[S, E, C]) Suspended() bool {
	return m.suspended
}

// Running 返回是否已初始化
func (m *Machine[S, E, C]) Running() bool {
	return m.phase == phaseRunning
}

// Can 检查当前状态下事件是否有匹配的转换
func (m *Machine[S, E, C]) Can(event E) bool {
	if m.phase != phaseRunning || m.suspended {
		return false
	}
	_, ok := m.table.Resolve(m.active, event)
	return ok
}

// ExitPending 返回等待退出的转换目标
func (m *Machine[S, E, C]) ExitPending() (S, bool) {
	if m.exit == nil {
		var zero S
		return zero, false
	}
	return m.exit.to, true
}

// Context 返回上下文
func (m *Machine[S, E, C]) Context() C {
	return m.context
}

// Name 返回状态机名称
func (m *Machine[S, E, C]) Name() string {
	return m.name
}

// States 按注册顺序返回所有状态 ID
func (m *Machine[S, E, C]) States() []S {
	return append([]S(nil), m.order...)
}

// Transitions 按注册顺序返回所有转换
func (m *Machine[S, E, C]) Transitions() []Transition[S, E] {
	return m.table.Transitions()
}

/* ------------------------------ 内部方法 ------------------------------ */

// fail 记录第一个配置错误
func (m *Machine[S, E, C]) fail(err error) error {
	if m.setupErr == nil && m.phase != phaseRunning {
		m.setupErr = err
	}
	return err
}

// dispatch 执行钩子链并排空待处理队列
//
// 钩子 panic 时清空队列并复位分发标记后继续向上传播
func (m *Machine[S, E, C]) dispatch(fn func()) {
	m.dispatching = true
	done := false
	defer func() {
		m.dispatching = false
		if !done {
			m.queue = m.queue[:0]
		}
	}()

	if fn != nil {
		fn()
	}
	// process 可能追加事件，每轮重新读取长度
	for i := 0; i < len(m.queue); i++ {
		m.process(m.queue[i])
	}
	m.queue = m.queue[:0]
	done = true
}

// process 解析并执行单个事件
func (m *Machine[S, E, C]) process(event E) {
	to, ok := m.table.Resolve(m.active, event)
	if !ok {
		m.logger().Debug("trigger dropped",
			logger.String("machine", m.name),
			logger.Any("state", m.active),
			logger.Any("event", event),
		)
		return
	}

	if gate, ok := m.states[m.active].(ExitTimer); ok && gate.NeedsExitTime() && !gate.CanExit() {
		m.exit = &pendingExit[S, E]{event: event, to: to}
		m.logger().Debug("exit pending",
			logger.String("machine", m.name),
			logger.Any("from", m.active),
			logger.Any("to", to),
		)
		return
	}

	m.commit(event, to)
}

// pollExit 轮询等待中的退出
func (m *Machine[S, E, C]) pollExit() {
	if m.exit == nil {
		return
	}
	if gate, ok := m.states[m.active].(ExitTimer); ok && gate.NeedsExitTime() && !gate.CanExit() {
		return
	}
	pending := m.exit
	m.commit(pending.event, pending.to)
}

// commit 执行转换：当前状态 Exit，切换，目标状态 Enter
func (m *Machine[S, E, C]) commit(event E, to S) {
	from := m.active
	m.exit = nil

	m.states[from].Exit()
	m.active = to
	m.states[to].Enter()

	m.logger().Debug("transition",
		logger.String("machine", m.name),
		logger.Any("from", from),
		logger.Any("to", to),
		logger.Any("event", event),
	)
	if m.history != nil {
		m.history.add(from, to, event, false)
	}
	for _, fn := range m.observers {
		fn(from, to, event)
	}
}

// suspend 退出当前状态并丢弃待处理事件，供嵌套状态机使用
func (m *Machine[S, E, C]) suspend() {
	m.dispatching = true
	defer func() {
		m.dispatching = false
		m.queue = m.queue[:0]
		m.exit = nil
		m.suspended = true
	}()
	m.states[m.active].Exit()
}

// resume 重新进入起始状态
func (m *Machine[S, E, C]) resume() {
	m.suspended = false
	m.active = m.start
	if m.history != nil {
		var zero E
		m.history.add(m.start, m.start, zero, true)
	}
	m.dispatch(func() {
		m.states[m.active].Enter()
	})
}

// logger 返回日志实现
func (m *Machine[S, E, C]) logger() logger.Logger {
	if m.log != nil {
		return m.log
	}
	return logger.Default()
}
