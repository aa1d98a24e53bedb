package statemachine

import "context"

// Mailbox 跨协程事件信箱
//
// 任意协程可以投递事件，驱动协程在帧内取出后交给状态机。
// 状态机本身不加锁，所有跨协程事件都应经由信箱
type Mailbox[E any] struct {
	queue chan E
}

// NewMailbox 创建容量为 size 的信箱
func NewMailbox[E any](size int) *Mailbox[E] {
	return &Mailbox[E]{
		queue: make(chan E, size),
	}
}

// Post 投递事件，信箱满时阻塞直到有空间或 ctx 结束
func (b *Mailbox[E]) Post(ctx context.Context, event E) error {
	select {
	case b.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPost 非阻塞投递，信箱满时返回 false
func (b *Mailbox[E]) TryPost(event E) bool {
	select {
	case b.queue <- event:
		return true
	default:
		return false
	}
}

// Drain 非阻塞地取出当前所有事件并依次交给 fn，返回处理数量
func (b *Mailbox[E]) Drain(fn func(E)) int {
	n := 0
	for {
		select {
		case event := <-b.queue:
			fn(event)
			n++
		default:
			return n
		}
	}
}

// Deliver 取出当前所有事件并依次触发到 target
func (b *Mailbox[E]) Deliver(target Triggerer[E]) int {
	return b.Drain(target.Trigger)
}

// Len 返回队列长度
func (b *Mailbox[E]) Len() int {
	return len(b.queue)
}
