package feed

import (
	"context"
	"sync"
)

// Trigger converts sentinel-visibility events into at most one page load
// each. It disarms while a load is out and re-arms when the load finishes,
// so re-renders firing the sentinel repeatedly cannot stack requests; the
// accumulator's own in-flight and exhausted checks back it up.
type Trigger struct {
	mu    sync.Mutex
	armed bool
	acc   *Accumulator
}

func NewTrigger(acc *Accumulator) *Trigger {
	return &Trigger{armed: true, acc: acc}
}

// SentinelVisible requests the next page if the trigger is armed and the
// feed is not exhausted. It reports whether a page load actually ran.
func (t *Trigger) SentinelVisible(ctx context.Context) (bool, error) {
	t.mu.Lock()
	if !t.armed || !t.acc.HasMore() {
		t.mu.Unlock()
		return false, nil
	}
	t.armed = false
	t.mu.Unlock()

	loaded, err := t.acc.LoadNext(ctx)

	t.mu.Lock()
	t.armed = true
	t.mu.Unlock()
	return loaded, err
}
