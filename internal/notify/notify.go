// Package notify broadcasts the serialized tree after committed mutations.
package notify

import (
	"sync"
	"time"

	"arbor/internal/model"

	"github.com/bep/debounce"
	"github.com/google/uuid"
)

// Change is one committed mutation as seen by subscribers.
type Change struct {
	SessionID string               `json:"session"`
	Seq       int                  `json:"seq"`
	Kind      string               `json:"kind"`
	Selected  string               `json:"selected,omitempty"`
	Tree      []model.SnapshotNode `json:"tree"`
}

// Notifier fans changes out to subscribers synchronously, in subscription
// order, on the caller's goroutine.
type Notifier struct {
	mu      sync.Mutex
	session string
	seq     int
	nextSub int
	subs    map[int]func(Change)
	order   []int
}

// New stamps every change with a fresh session id.
func New() *Notifier {
	return &Notifier{session: uuid.NewString(), subs: map[int]func(Change){}}
}

func (n *Notifier) SessionID() string { return n.session }

// Subscribe registers fn and returns a function that removes it.
func (n *Notifier) Subscribe(fn func(Change)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextSub
	n.nextSub++
	n.subs[id] = fn
	n.order = append(n.order, id)
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[id]; !ok {
			return
		}
		delete(n.subs, id)
		for i, x := range n.order {
			if x == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers a change carrying snap and returns it.
func (n *Notifier) Publish(kind, selected string, snap []model.SnapshotNode) Change {
	n.mu.Lock()
	n.seq++
	c := Change{SessionID: n.session, Seq: n.seq, Kind: kind, Selected: selected, Tree: snap}
	fns := make([]func(Change), 0, len(n.order))
	for _, id := range n.order {
		fns = append(fns, n.subs[id])
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
	return c
}

// Seq is the sequence number of the last published change.
func (n *Notifier) Seq() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq
}

// Coalesce wraps fn so bursts of changes within window collapse into one
// call carrying the newest change. fn runs on a timer goroutine. A window of
// zero delivers synchronously.
func Coalesce(window time.Duration, fn func(Change)) func(Change) {
	if window <= 0 {
		return fn
	}
	var (
		mu     sync.Mutex
		latest Change
	)
	deb := debounce.New(window)
	return func(c Change) {
		mu.Lock()
		latest = c
		mu.Unlock()
		deb(func() {
			mu.Lock()
			c := latest
			mu.Unlock()
			fn(c)
		})
	}
}
