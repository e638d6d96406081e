package store

import (
	"sync"

	"github.com/newagedev/animalcompare/internal/model"
)

// Notifier delivers backlog change signals, one channel per category.
// Signals are coalescing: a pending notification absorbs later ones, so a
// burst of backlog writes wakes the subscriber once. Publishing never
// blocks the writer.
type Notifier struct {
	mu   sync.Mutex
	subs map[model.Category]chan struct{}
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[model.Category]chan struct{})}
}

// Subscribe returns the signal channel for a category. The channel is
// shared: all subscribers for the same category see the same signals.
func (n *Notifier) Subscribe(cat model.Category) <-chan struct{} {
	return n.channel(cat)
}

// Publish signals a backlog change for the category.
func (n *Notifier) Publish(cat model.Category) {
	select {
	case n.channel(cat) <- struct{}{}:
	default:
		// A wakeup is already pending.
	}
}

func (n *Notifier) channel(cat model.Category) chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.subs[cat]
	if !ok {
		ch = make(chan struct{}, 1)
		n.subs[cat] = ch
	}
	return ch
}
