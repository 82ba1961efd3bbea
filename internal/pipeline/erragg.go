package pipeline

import (
	"fmt"
	"sync"
)

// errAgg counts row-level errors and keeps the first few messages for the
// end-of-run summary.
type errAgg struct {
	mu    sync.Mutex
	limit int
	count int64
	first []string
}

func newErrAgg(limit int) *errAgg { return &errAgg{limit: limit} }

func (a *errAgg) add(line int, err error) {
	if err == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.first) < a.limit {
		a.first = append(a.first, fmt.Sprintf("line %d: %v", line, err))
	}
	a.count++
}

func (a *errAgg) snapshot() (int64, []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count, append([]string(nil), a.first...)
}
