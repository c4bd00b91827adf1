package playback

import (
	"sync"
	"testing"
)

type fakeHandle struct {
	mu     sync.Mutex
	pauses int
}

func (f *fakeHandle) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeHandle) pauseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses
}

func TestActivatePausesPrevious(t *testing.T) {
	r := NewRegistry()
	a := &fakeHandle{}
	b := &fakeHandle{}
	r.Register("a", a)
	r.Register("b", b)

	r.Activate("a")
	if got := r.Active(); got != "a" {
		t.Fatalf("active = %q, want a", got)
	}
	if a.pauseCount() != 0 {
		t.Fatalf("a paused on its own activation")
	}

	r.Activate("b")
	if got := r.Active(); got != "b" {
		t.Fatalf("active = %q, want b", got)
	}
	if a.pauseCount() != 1 {
		t.Fatalf("a pauses = %d, want 1", a.pauseCount())
	}
	if b.pauseCount() != 0 {
		t.Fatalf("b paused unexpectedly")
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a := &fakeHandle{}
	r.Register("a", a)

	r.Activate("a")
	r.Activate("a")

	if a.pauseCount() != 0 {
		t.Fatalf("re-activating the active slot paused it")
	}
}

func TestActivateUnknownSlotIsNoOp(t *testing.T) {
	r := NewRegistry()
	a := &fakeHandle{}
	r.Register("a", a)
	r.Activate("a")

	r.Activate("ghost")

	if got := r.Active(); got != "a" {
		t.Fatalf("active = %q, want a", got)
	}
	if a.pauseCount() != 0 {
		t.Fatalf("a paused by unknown activation")
	}
}

func TestUnregisterClearsActive(t *testing.T) {
	r := NewRegistry()
	a := &fakeHandle{}
	r.Register("a", a)
	r.Activate("a")

	r.Unregister("a")

	if got := r.Active(); got != "" {
		t.Fatalf("active = %q, want empty", got)
	}

	// A re-registered slot starts inactive again.
	r.Register("a", a)
	if got := r.Active(); got != "" {
		t.Fatalf("active after re-register = %q, want empty", got)
	}
}

func TestDeactivate(t *testing.T) {
	r := NewRegistry()
	a := &fakeHandle{}
	r.Register("a", a)
	r.Activate("a")

	r.Deactivate("other")
	if got := r.Active(); got != "a" {
		t.Fatalf("deactivating another id cleared the slot")
	}

	r.Deactivate("a")
	if got := r.Active(); got != "" {
		t.Fatalf("active = %q, want empty", got)
	}
}

func TestConcurrentActivation(t *testing.T) {
	r := NewRegistry()
	handles := []*fakeHandle{{}, {}, {}}
	ids := []string{"a", "b", "c"}
	for i, id := range ids {
		r.Register(id, handles[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Activate(ids[i%len(ids)])
		}(i)
	}
	wg.Wait()

	if got := r.Active(); got == "" {
		t.Fatalf("expected one slot active after concurrent activations")
	}
}
