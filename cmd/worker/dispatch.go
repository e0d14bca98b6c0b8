package main

import (
	"context"
	"errors"
	"sync"
)

var errDispatcherClosed = errors.New("dispatcher closed")

// dispatcher runs submission checks on at most cap(slots) goroutines. Once
// wait has been called no new check starts, so wait only returns after
// every accepted check has finished.
type dispatcher struct {
	slots chan struct{}
	run   func(submissionID string)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newDispatcher(maxInFlight int, run func(submissionID string)) *dispatcher {
	return &dispatcher{slots: make(chan struct{}, max(1, maxInFlight)), run: run}
}

// dispatch blocks the caller while every slot is busy.
func (d *dispatcher) dispatch(ctx context.Context, submissionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case d.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.slots
		return errDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer func() { <-d.slots }()
		d.run(submissionID)
	}()
	return nil
}

func (d *dispatcher) wait() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
