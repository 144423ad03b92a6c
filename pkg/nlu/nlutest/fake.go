// Package nlutest provides a scripted NLU capability for tests.
package nlutest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fashion-recommender-be/pkg/nlu"
)

// ErrNoHandler is returned for tasks nobody scripted.
var ErrNoHandler = errors.New("nlutest: no handler for task")

type Handler func(req nlu.Request) (*nlu.Result, error)

// Fake answers Classify from per-task handlers and Compose from ComposeFn.
type Fake struct {
	mu        sync.Mutex
	handlers  map[nlu.Task]Handler
	composeFn func(req nlu.Request) (string, error)
	calls     []nlu.Request
}

func New() *Fake {
	return &Fake{handlers: map[nlu.Task]Handler{}}
}

// On scripts task. Later calls replace earlier ones.
func (f *Fake) On(task nlu.Task, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[task] = h
	return f
}

// Label scripts task to always answer label with slots.
func (f *Fake) Label(task nlu.Task, label string, slots map[string]interface{}) *Fake {
	return f.On(task, func(nlu.Request) (*nlu.Result, error) {
		return &nlu.Result{Label: label, Slots: slots}, nil
	})
}

// Fail scripts task to always fail with err.
func (f *Fake) Fail(task nlu.Task, err error) *Fake {
	return f.On(task, func(nlu.Request) (*nlu.Result, error) { return nil, err })
}

func (f *Fake) OnCompose(fn func(req nlu.Request) (string, error)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.composeFn = fn
	return f
}

func (f *Fake) Classify(ctx context.Context, req nlu.Request) (*nlu.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	h, ok := f.handlers[req.Task]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, req.Task)
	}
	return h(req)
}

func (f *Fake) Compose(ctx context.Context, req nlu.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	fn := f.composeFn
	f.mu.Unlock()

	if fn == nil {
		return "composed " + string(req.Task), nil
	}
	return fn(req)
}

// Calls returns how many requests reached task.
func (f *Fake) Calls(task nlu.Task) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Task == task {
			n++
		}
	}
	return n
}

// Requests returns the requests that reached task, oldest first.
func (f *Fake) Requests(task nlu.Task) []nlu.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []nlu.Request
	for _, c := range f.calls {
		if c.Task == task {
			out = append(out, c)
		}
	}
	return out
}
