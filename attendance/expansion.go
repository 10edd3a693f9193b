package attendance

import "sync"

// Expansion tracks which rows of the aggregate view show their intervals.
type Expansion struct {
	mu   sync.Mutex
	open map[int64]struct{}
}

func NewExpansion() *Expansion {
	return &Expansion{open: map[int64]struct{}{}}
}

// Toggle flips the row and reports whether it is now expanded.
func (e *Expansion) Toggle(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.open[userID]; ok {
		delete(e.open, userID)
		return false
	}
	e.open[userID] = struct{}{}
	return true
}

func (e *Expansion) Expanded(userID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.open[userID]
	return ok
}

func (e *Expansion) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = map[int64]struct{}{}
}
