package statemachine

import "fmt"

// Group 按注册顺序初始化和驱动的一组状态机
//
// 与状态机一样只在驱动协程上使用
type Group struct {
	runners map[string]Runner
	order   []string
}

// NewGroup 创建空分组
func NewGroup() *Group {
	return &Group{
		runners: make(map[string]Runner),
	}
}

// Add 添加成员
func (g *Group) Add(name string, r Runner) error {
	if _, exists := g.runners[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRunner, name)
	}
	g.runners[name] = r
	g.order = append(g.order, name)
	return nil
}

// Remove 移除成员
func (g *Group) Remove(name string) error {
	if _, exists := g.runners[name]; !exists {
		return fmt.Errorf("%w: %s", ErrRunnerNotFound, name)
	}
	delete(g.runners, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get 获取成员
func (g *Group) Get(name string) (Runner, bool) {
	r, exists := g.runners[name]
	return r, exists
}

// InitAll 按注册顺序初始化所有成员，遇到第一个错误即返回
func (g *Group) InitAll() error {
	for _, name := range g.order {
		if err := g.runners[name].Init(); err != nil {
			return fmt.Errorf("init %s: %w", name, err)
		}
	}
	return nil
}

// TickAll 按注册顺序驱动所有成员
func (g *Group) TickAll() {
	for _, name := range g.order {
		g.runners[name].Tick()
	}
}

// Names 按注册顺序返回成员名称
func (g *Group) Names() []string {
	return append([]string(nil), g.order...)
}

// Count 返回成员数量
func (g *Group) Count() int {
	return len(g.order)
}
