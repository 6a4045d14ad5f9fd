// Package irqwork defers interrupt handling off the ISR path. The handler
// installed on the pin only does a register read and a non-blocking channel
// send; a worker goroutine turns the queued interrupts into events for the
// controller. Overflow on either queue is counted, never blocked on.
package irqwork

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"touchcore-go/errcode"
	"touchcore-go/types"
)

// Event is one deferred interrupt, timestamped at dequeue.
type Event struct {
	Level bool
	TS    time.Time
}

type isrEvent struct {
	level bool // captured in ISR
}

// Worker owns one interrupt line. Enable and Disable are idempotent so the
// controller can toggle freely without double-arming the pin.
type Worker struct {
	// Written by ISR; MUST NOT block the ISR:
	isrQ chan isrEvent
	// Consumed by the controller:
	outQ chan Event

	drops uint32 // ISR drop counter

	mu      sync.Mutex
	pin     types.IRQPin
	edge    types.Edge
	enabled bool
}

func New(isrBuf, outBuf int) *Worker {
	if isrBuf <= 0 {
		isrBuf = 64
	}
	if outBuf <= 0 {
		outBuf = 64
	}
	return &Worker{
		isrQ: make(chan isrEvent, isrBuf),
		outQ: make(chan Event, outBuf),
	}
}

// Bind associates the worker with its pin and edge. The interrupt stays
// masked until Enable. Rebinding while enabled is rejected.
func (w *Worker) Bind(pin types.IRQPin, edge types.Edge) error {
	if pin == nil {
		return errcode.Msg(errcode.InvalidParams, "irqwork.bind", "nil pin")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enabled {
		return errcode.Msg(errcode.InvalidParams, "irqwork.bind", "line is enabled")
	}
	w.pin = pin
	w.edge = edge
	return nil
}

// Enable installs the ISR handler. A no-op when already enabled.
func (w *Worker) Enable() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pin == nil {
		return errcode.Msg(errcode.InvalidParams, "irqwork.enable", "no pin bound")
	}
	if w.enabled {
		return nil
	}
	pin := w.pin
	handler := func() {
		l := pin.Get()
		select {
		case w.isrQ <- isrEvent{level: l}:
		default:
			atomic.AddUint32(&w.drops, 1) // protect ISR path
		}
	}
	if err := w.pin.SetIRQ(w.edge, handler); err != nil {
		return err
	}
	w.enabled = true
	return nil
}

// Disable masks the interrupt. A no-op when already disabled.
func (w *Worker) Disable() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.enabled {
		return nil
	}
	if err := w.pin.ClearIRQ(); err != nil {
		return err
	}
	w.enabled = false
	return nil
}

func (w *Worker) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// Events is the deferred interrupt stream consumed by the controller.
func (w *Worker) Events() <-chan Event { return w.outQ }

// Run moves queued interrupts to the event stream until ctx is cancelled.
// A slow consumer drops events rather than backing up into the ISR queue.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-w.isrQ:
			select {
			case w.outQ <- Event{Level: ev.level, TS: time.Now()}:
			default:
			}
		}
	}
}

// Drops is the count of interrupts discarded on the ISR path.
func (w *Worker) Drops() uint32 { return atomic.LoadUint32(&w.drops) }
