package statemachine

import (
	"encoding/json"
	"time"
)

// Record 已提交的转换记录
type Record[S, E comparable] struct {
	From      S         `json:"from"`
	To        S         `json:"to"`
	Event     E         `json:"event"`
	Initial   bool      `json:"initial,omitempty"` // 进入起始状态，Event 无意义
	Timestamp time.Time `json:"timestamp"`
}

// history 固定容量的转换记录
type history[S, E comparable] struct {
	limit   int
	records []Record[S, E]
}

func newHistory[S, E comparable](limit int) *history[S, E] {
	return &history[S, E]{
		limit:   limit,
		records: make([]Record[S, E], 0, limit),
	}
}

func (h *history[S, E]) add(from, to S, event E, initial bool) {
	if len(h.records) == h.limit {
		copy(h.records, h.records[1:])
		h.records = h.records[:len(h.records)-1]
	}
	h.records = append(h.records, Record[S, E]{
		From:      from,
		To:        to,
		Event:     event,
		Initial:   initial,
		Timestamp: time.Now(),
	})
}

// History 返回转换记录（旧到新），未启用 WithHistory 时为 nil
func (m *Machine[S, E, C]) History() []Record[S, E] {
	if m.history == nil {
		return nil
	}
	return append([]Record[S, E]{}, m.history.records...)
}

// ClearHistory 清空转换记录
func (m *Machine[S, E, C]) ClearHistory() {
	if m.history != nil {
		m.history.records = m.history.records[:0]
	}
}

// MarshalJSON 序列化当前状态与转换记录
func (m *Machine[S, E, C]) MarshalJSON() ([]byte, error) {
	data := struct {
		Name    string         `json:"name,omitempty"`
		Running bool           `json:"running"`
		Active  S              `json:"active"`
		History []Record[S, E] `json:"history,omitempty"`
	}{
		Name:    m.name,
		Running: m.Running(),
		Active:  m.active,
		History: m.History(),
	}
	return json.Marshal(data)
}
