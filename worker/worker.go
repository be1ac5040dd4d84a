// Package worker implements the single-consumer task loop used to run a
// group's spiller actor off the request path. It is a minimal stand-in for the cooperative-scheduler actors of
// the source design note in SPEC_FULL.md §5: one goroutine per actor,
// fed by a buffered channel, stopped by a sentinel task.
package worker

import "sync"

// Stop is sent to ask the worker's goroutine to return.
type Stop struct{}

// Task is anything a Worker can be asked to do.
type Task interface{}

// Handler processes tasks delivered to a Worker.
type Handler interface {
	Handle(t Task)
}

// Starter is an optional Handler extension run once before the task loop
// begins, used by actors that need to do setup on their own goroutine.
type Starter interface {
	Start()
}

// Worker runs a Handler's Handle method for every Task sent to it, on a
// single goroutine, until Stop is called.
type Worker struct {
	name     string
	sender   chan<- Task
	receiver <-chan Task
	wg       *sync.WaitGroup
}

const defaultCapacity = 128

// New creates a Worker named for logging purposes; wg is optional and, if
// non-nil, is Done() when the worker's goroutine returns.
func New(name string, wg *sync.WaitGroup) *Worker {
	ch := make(chan Task, defaultCapacity)
	return &Worker{
		sender:   ch,
		receiver: ch,
		name:     name,
		wg:       wg,
	}
}

func (w *Worker) Name() string { return w.name }

// Run starts handler's task loop on a new goroutine.
func (w *Worker) Run(handler Handler) {
	if w.wg != nil {
		w.wg.Add(1)
	}
	go func() {
		if w.wg != nil {
			defer w.wg.Done()
		}
		if s, ok := handler.(Starter); ok {
			s.Start()
		}
		for t := range w.receiver {
			if _, ok := t.(Stop); ok {
				return
			}
			handler.Handle(t)
		}
	}()
}

// Sender returns the channel used to hand tasks to this worker.
func (w *Worker) Sender() chan<- Task {
	return w.sender
}

// Stop asks the worker's goroutine to exit after draining queued tasks.
func (w *Worker) Stop() {
	w.sender <- Stop{}
}
