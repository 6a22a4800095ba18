// Package tasklist is the display-layer task list the construction scheduler
// pushes skip-quest entries to.
package tasklist

import "sync"

// TaskList receives quest texts as they are surfaced to or removed from the
// player's task UI.
type TaskList interface {
	AddTask(text string)
	RemoveTask(text string)
}

// Memory is an in-process TaskList that keeps entries in order. It backs the
// task endpoints and tests; a real client would render these.
type Memory struct {
	mu    sync.RWMutex
	tasks []string
}

// NewMemory creates an empty task list.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) AddTask(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, text)
}

// RemoveTask removes the first entry matching text, if any.
func (m *Memory) RemoveTask(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tasks {
		if t == text {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}

// Tasks returns a copy of the current entries in display order.
func (m *Memory) Tasks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.tasks))
	copy(out, m.tasks)
	return out
}
