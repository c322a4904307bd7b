// Package notifier provides a reusable wait/wake primitive built on sync.Cond.
//
// A Notifier remembers a Notify that happened while nobody was waiting: the
// next Wait consumes it and returns immediately. Once consumed, Wait blocks
// again until the following Notify, so repeated wait/notify cycles are
// independent of each other.
//
// A single Notify releases every goroutine blocked in Wait at that moment.
// Callers are expected to re-check their own condition in a loop:
//
//	for !queueDrained() {
//	    n.Wait()
//	}
package notifier

import (
	"context"
	"sync"
)

type Notifier struct {
	mu   sync.Mutex
	cond *sync.Cond
	// signaled is set by Notify and cleared by the Wait that consumes it.
	signaled bool
	// generation changes on every Notify so that all waiters blocked at that
	// moment are released, even after the first one consumed the signal.
	generation uint64
}

func New() *Notifier {
	n := &Notifier{}
	n.cond = sync.NewCond(&n.mu)
	return n
}

// Notify wakes every waiter. If there are none, the signal is kept until the
// next Wait.
func (n *Notifier) Notify() {
	n.mu.Lock()
	n.signaled = true
	n.generation++
	n.mu.Unlock()

	n.cond.Broadcast()
}

// Wait blocks until Notify is called, or returns at once if a signal is pending.
func (n *Notifier) Wait() {
	n.mu.Lock()
	defer n.mu.Unlock()

	gen := n.generation
	for !n.signaled && n.generation == gen {
		n.cond.Wait()
	}
	n.signaled = false
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if the context ends
// before a signal arrives.
func (n *Notifier) WaitContext(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.cond.Broadcast()
	})
	defer stop()

	n.mu.Lock()
	defer n.mu.Unlock()

	gen := n.generation
	for !n.signaled && n.generation == gen {
		if err := ctx.Err(); err != nil {
			return err
		}
		n.cond.Wait()
	}
	n.signaled = false
	return nil
}
