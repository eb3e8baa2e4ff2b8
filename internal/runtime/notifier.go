package runtime

import (
	"sync/atomic"

	"github.com/aretw0/pergola/pkg/domain"
)

// Notifier delivers domain events to at most one observer.
//
// Subscribe replaces the slot atomically: only the most recently
// registered observer receives subsequent events. Replace-not-append is
// a load-bearing contract; do not generalize this to fan-out. With no
// observer installed events are dropped, not buffered.
type Notifier struct {
	observer atomic.Pointer[domain.Observer]
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe installs fn as the sole observer, displacing any previous
// one. A nil fn clears the slot.
func (n *Notifier) Subscribe(fn domain.Observer) {
	if fn == nil {
		n.observer.Store(nil)
		return
	}
	n.observer.Store(&fn)
}

// Publish delivers ev to the current observer, if any. Events are
// delivered synchronously in production order.
func (n *Notifier) Publish(ev domain.Event) {
	if fn := n.observer.Load(); fn != nil {
		(*fn)(ev)
	}
}
