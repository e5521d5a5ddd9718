package util

// A Gate bounds concurrency. At most n goroutines may be inside the gate at
// once; the bot uses one to cap simultaneous voice-file downloads. Enter
// blocks until there is room, and every Enter must be balanced by a Leave.
// Enter and Leave need not be called from the same goroutine.
type Gate struct {
	slots chan struct{}
}

// NewGate returns a Gate admitting at most n entries at a time.
func NewGate(n int) Gate {
	return Gate{slots: make(chan struct{}, n)}
}

// Enter blocks the calling goroutine until fewer than n goroutines are
// inside the gate. It is safe to call from multiple goroutines.
func (g Gate) Enter() {
	g.slots <- struct{}{}
}

// Leave marks the calling goroutine as outside the gate.
func (g Gate) Leave() {
	<-g.slots
}
