// Package barrier provides a reusable rendezvous point for a fixed number of
// goroutines.
//
// When the last party arrives the barrier runs its trip action and releases
// everyone. A generation that is broken instead (see Break and Reset) releases
// its parties with an error matching ErrBroken.
package barrier

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBroken is matched by every error reported for a broken generation.
var ErrBroken = errors.New("barrier broken")

// BrokenError describes why a generation was broken.
type BrokenError struct {
	cause error
}

func (e *BrokenError) Error() string {
	if e.cause == nil {
		return ErrBroken.Error()
	}
	return fmt.Sprintf("%s: %v", ErrBroken, e.cause)
}

// Is reports whether target is ErrBroken.
func (e *BrokenError) Is(target error) bool { return target == ErrBroken }

// Unwrap returns the cause of the breakage, if any.
func (e *BrokenError) Unwrap() error { return e.cause }

// Generation is one cycle of a Barrier.
type Generation struct {
	done chan struct{}
	err  error // written before done is closed
}

// Done returns a channel that is closed when the generation trips or breaks.
func (g *Generation) Done() <-chan struct{} { return g.done }

// Err returns the breakage error once the generation is over. It returns nil
// while the generation is still open or if it tripped normally.
func (g *Generation) Err() error {
	select {
	case <-g.done:
		return g.err
	default:
		return nil
	}
}

// Barrier is a cyclic barrier for a fixed number of parties.
type Barrier struct {
	parties int
	action  func()

	mu      sync.Mutex
	waiting int
	gen     *Generation
}

// New creates a barrier for the given number of parties. action, if not nil,
// runs in the goroutine of the last arriving party before the others are
// released. The action must not call back into the barrier.
// New panics if parties < 1.
func New(parties int, action func()) *Barrier {
	if parties < 1 {
		panic("barrier: parties must be positive")
	}
	return &Barrier{
		parties: parties,
		action:  action,
		gen:     newGeneration(),
	}
}

func newGeneration() *Generation {
	return &Generation{done: make(chan struct{})}
}

// Parties returns the number of parties required to trip the barrier.
func (b *Barrier) Parties() int { return b.parties }

// Await blocks until all parties have arrived or the generation is broken.
// It returns the arrival index of the caller (parties-1 for the first arrival,
// 0 for the last). A non-nil error matches ErrBroken.
func (b *Barrier) Await() (int, error) {
	b.mu.Lock()
	g := b.gen
	if g.err != nil {
		b.mu.Unlock()
		return -1, g.err
	}

	b.waiting++
	index := b.parties - b.waiting
	if index > 0 {
		b.mu.Unlock()
		<-g.done
		return index, g.err
	}

	// Last arrival: run the action while holding the generation open.
	if err := b.runAction(); err != nil {
		b.breakLocked(err)
		b.mu.Unlock()
		return 0, g.err
	}
	b.waiting = 0
	close(g.done)
	b.gen = newGeneration()
	b.mu.Unlock()
	return 0, nil
}

func (b *Barrier) runAction() (err error) {
	if b.action == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("barrier action panicked: %v", r)
		}
	}()
	b.action()
	return nil
}

// Break breaks the current generation. Waiting parties are released with an
// error wrapping cause, and later arrivals fail immediately until Reset.
func (b *Barrier) Break(cause error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.breakLocked(cause)
}

func (b *Barrier) breakLocked(cause error) {
	g := b.gen
	if g.err != nil {
		return
	}
	g.err = &BrokenError{cause: cause}
	b.waiting = 0
	close(g.done)
}

// Reset starts a new generation. Parties waiting on the old one are released
// with a broken-barrier error.
func (b *Barrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.waiting > 0 {
		b.breakLocked(errors.New("reset while parties were waiting"))
	}
	b.waiting = 0
	b.gen = newGeneration()
}

// Current returns the open generation. Callers that need to observe a
// specific cycle must fetch it before the parties start arriving.
func (b *Barrier) Current() *Generation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Broken reports whether the current generation is broken.
func (b *Barrier) Broken() bool {
	return b.Err() != nil
}

// Err returns the error of the current generation, or nil if it is not broken.
func (b *Barrier) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen.err
}

// Waiting returns the number of parties currently blocked in Await.
func (b *Barrier) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waiting
}
