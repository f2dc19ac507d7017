package updater

import (
	"context"
	"fmt"
	"log"
	"sync"

	"stringcalc/domain/core"
	"stringcalc/internal/dom"
)

// ErrStopped is returned for work submitted after the loop has stopped.
var ErrStopped = fmt.Errorf("document loop stopped")

type job struct {
	id     core.JobID
	name   string
	fn     func(*dom.Document) error
	result chan error
}

// Loop owns a Document and runs every piece of work against it on a single
// goroutine, one job at a time, each to completion.
type Loop struct {
	doc     *dom.Document
	jobs    chan job
	stopped chan struct{}
	once    sync.Once
}

// NewLoop creates a loop for doc. Work is queued until Run is called.
func NewLoop(doc *dom.Document) *Loop {
	return &Loop{
		doc:     doc,
		jobs:    make(chan job),
		stopped: make(chan struct{}),
	}
}

// Run executes jobs until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.stopped) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-l.jobs:
			j.result <- l.exec(j)
		}
	}
}

// exec turns a panicking job into an error so one bad job cannot take the
// loop down.
func (l *Loop) exec(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Loop] job %s (%s) panicked: %v", j.name, core.ID(j.id).Short(), r)
			err = fmt.Errorf("%s: panic: %v", j.name, r)
		}
	}()
	return j.fn(l.doc)
}

// Do queues fn and waits for it to finish. ctx bounds only the wait for a
// free loop; a queued job is always waited for.
func (l *Loop) Do(ctx context.Context, name string, fn func(*dom.Document) error) error {
	j := job{id: core.NewJobID(), name: name, fn: fn, result: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	case l.jobs <- j:
	}
	// once queued the job always runs to completion, and its results are
	// written before the caller reads them
	return <-j.result
}
