package scheduler

import "sync"

// Visibility reports whether the consumer of the polled data is currently
// looking at it. Subscribe delivers the new hidden flag on every change;
// the returned func releases the subscription.
type Visibility interface {
	Hidden() bool
	Subscribe() (<-chan bool, func())
}

// Toggle is a Visibility that is flipped explicitly, e.g. by a signal
// handler or a UI focus event.
type Toggle struct {
	mu     sync.Mutex
	hidden bool
	nextID int
	subs   map[int]chan bool
}

// NewToggle returns a Toggle in the given initial state.
func NewToggle(hidden bool) *Toggle {
	return &Toggle{hidden: hidden, subs: make(map[int]chan bool)}
}

// Hidden reports the current flag.
func (t *Toggle) Hidden() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hidden
}

// SetHidden updates the flag and notifies subscribers when it changes.
func (t *Toggle) SetHidden(hidden bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLocked(hidden)
}

// Flip inverts the flag and returns the new value.
func (t *Toggle) Flip() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setLocked(!t.hidden)
	return t.hidden
}

func (t *Toggle) setLocked(hidden bool) {
	if t.hidden == hidden {
		return
	}
	t.hidden = hidden
	for _, ch := range t.subs {
		// latest value wins; a slow subscriber only misses stale flips
		select {
		case <-ch:
		default:
		}
		ch <- hidden
	}
}

// Subscribe registers for change notifications.
func (t *Toggle) Subscribe() (<-chan bool, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	ch := make(chan bool, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

type alwaysVisible struct{}

func (alwaysVisible) Hidden() bool { return false }

func (alwaysVisible) Subscribe() (<-chan bool, func()) {
	return make(chan bool), func() {}
}

// AlwaysVisible never hides.
var AlwaysVisible Visibility = alwaysVisible{}

var _ Visibility = (*Toggle)(nil)
