package notify

import (
	"sync"
	"testing"
	"time"

	"arbor/internal/model"

	"github.com/google/uuid"
)

func TestPublishFansOutInOrder(t *testing.T) {
	n := New()
	if _, err := uuid.Parse(n.SessionID()); err != nil {
		t.Fatalf("session id should be a uuid: %v", err)
	}
	var got []string
	n.Subscribe(func(c Change) { got = append(got, "a") })
	unsub := n.Subscribe(func(c Change) { got = append(got, "b") })

	snap := []model.SnapshotNode{{ID: "node-1", TypeTag: "div"}}
	c := n.Publish("insert", "", snap)
	if c.Seq != 1 || c.SessionID != n.SessionID() || len(c.Tree) != 1 {
		t.Fatalf("unexpected change %+v", c)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected delivery order %v", got)
	}

	unsub()
	unsub()
	n.Publish("remove", "", nil)
	if len(got) != 3 {
		t.Fatalf("unsubscribed handler must not run, got %v", got)
	}
	if n.Seq() != 2 {
		t.Fatalf("expected seq 2, got %d", n.Seq())
	}
}

func TestCoalesceDeliversNewest(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []int
	)
	done := make(chan struct{}, 1)
	sink := Coalesce(20*time.Millisecond, func(c Change) {
		mu.Lock()
		calls = append(calls, c.Seq)
		mu.Unlock()
		done <- struct{}{}
	})
	for i := 1; i <= 5; i++ {
		sink(Change{Seq: i})
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("coalesced sink never fired")
	}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != 5 {
		t.Fatalf("expected one call with seq 5, got %v", calls)
	}
}

func TestCoalesceZeroWindowIsSynchronous(t *testing.T) {
	var got int
	sink := Coalesce(0, func(c Change) { got = c.Seq })
	sink(Change{Seq: 7})
	if got != 7 {
		t.Fatalf("expected synchronous delivery, got %d", got)
	}
}
