package statemachine

// subState 把状态机适配为父状态机的一个状态
type subState[S, E comparable, C any] struct {
	m *Machine[S, E, C]
}

// AsState 返回可注册到父状态机的状态
//
// 第一次 Enter 时初始化子状态机，之后每次 Enter 重新进入其起始状态；
// Tick 驱动子状态机；Exit 退出子状态机的当前状态并丢弃其待处理事件。
// 子状态机的配置错误在第一次 Enter 时 panic
func (m *Machine[S, E, C]) AsState() State {
	return &subState[S, E, C]{m: m}
}

func (s *subState[S, E, C]) Enter() {
	if !s.m.Running() {
		if err := s.m.Init(); err != nil {
			panic(err)
		}
		return
	}
	s.m.resume()
}

func (s *subState[S, E, C]) Tick() {
	s.m.Tick()
}

func (s *subState[S, E, C]) Exit() {
	s.m.suspend()
}
