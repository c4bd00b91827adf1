package playback

import "sync"

// Handle is a playable media slot. Pause is invoked when another slot
// becomes active and must not block.
type Handle interface {
	Pause()
}

// Registry tracks playable slots and enforces a single active one at a
// time: activating a slot pauses whichever slot was active before it.
type Registry struct {
	mu      sync.Mutex
	handles map[string]Handle
	active  string
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

func (r *Registry) Register(id string, h Handle) {
	if id == "" || h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[id] = h
}

// Unregister removes the slot. A removed active slot leaves nothing active.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, id)
	if r.active == id {
		r.active = ""
	}
}

// Activate marks the slot active and pauses the previously active one.
// Activating an unknown or already active slot is a no-op.
func (r *Registry) Activate(id string) {
	r.mu.Lock()
	if _, ok := r.handles[id]; !ok || r.active == id {
		r.mu.Unlock()
		return
	}
	prev := r.handles[r.active]
	r.active = id
	r.mu.Unlock()

	if prev != nil {
		prev.Pause()
	}
}

// Deactivate clears the active slot if it matches id.
func (r *Registry) Deactivate(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == id {
		r.active = ""
	}
}

// Active reports the currently active slot id, empty when none.
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
