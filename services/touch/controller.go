// Package touch is the core controller for GTx8 touchscreen devices: it
// owns the power and interrupt state machine, dispatches decoded events to
// the input reporter, and runs the ESD liveness watchdog. All hardware
// access serializes on one device lock.
package touch

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"touchcore-go/bus"
	"touchcore-go/drivers/gtx8"
	"touchcore-go/errcode"
	"touchcore-go/services/touch/internal/irqwork"
	"touchcore-go/types"
)

var coreOnce sync.Once

// CoreInit performs process-wide setup. It must run before any device is
// constructed; calling it more than once is harmless.
func CoreInit() {
	coreOnce.Do(gtx8.RegisterDefaults)
}

// State is the controller lifecycle position. Interrupt delivery and
// suspension are one value, so "suspended with the interrupt armed" cannot
// be expressed.
type State uint8

const (
	StateUninitialized State = iota
	StatePoweredOff
	StatePoweredOnIdle
	StateInterruptActive
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StatePoweredOff:
		return "powered_off"
	case StatePoweredOnIdle:
		return "powered_on_idle"
	case StateInterruptActive:
		return "interrupt_active"
	case StateSuspended:
		return "suspended"
	default:
		return "uninitialized"
	}
}

// Config assembles one Controller.
type Config struct {
	Device   *gtx8.Device
	Bus      *bus.Bus
	Reporter Reporter

	IRQPin types.IRQPin

	// Optional collaborators.
	Regulator Regulator
	Pinctrl   Pinctrl
	Power     PowerSource
}

// Controller sequences power, interrupts, suspend/resume and the ESD
// watchdog for one device.
type Controller struct {
	dev    *gtx8.Device
	b      *bus.Bus
	rep    Reporter
	reg    Regulator
	pins   Pinctrl
	power  PowerSource
	irqPin types.IRQPin
	worker *irqwork.Worker

	mu       sync.Mutex
	state    State
	irqBound bool
	esd      esdGuard
	csumErrs uint32
	ev       gtx8.TouchEvent // dispatch scratch

	// Pokes the run loop to re-evaluate the watchdog timer.
	esdKick chan struct{}

	cancel context.CancelFunc
	eg     *errgroup.Group
}

// New wires a Controller. CoreInit must have run first.
func New(cfg Config) (*Controller, error) {
	if cfg.Device == nil {
		return nil, errcode.Msg(errcode.InvalidParams, "touch.new", "nil device")
	}
	if cfg.Bus == nil {
		return nil, errcode.Msg(errcode.InvalidParams, "touch.new", "nil bus")
	}
	if cfg.Reporter == nil {
		return nil, errcode.Msg(errcode.InvalidParams, "touch.new", "nil reporter")
	}
	c := &Controller{
		dev:     cfg.Device,
		b:       cfg.Bus,
		rep:     cfg.Reporter,
		reg:     cfg.Regulator,
		pins:    cfg.Pinctrl,
		power:   cfg.Power,
		irqPin:  cfg.IRQPin,
		worker:  irqwork.New(0, 0),
		state:   StateUninitialized,
		esdKick: make(chan struct{}, 1),
	}
	return c, nil
}

// State returns the current lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PowerOn enables the AVDD supply and waits the board's power-on delay.
// A no-op when the device is already powered.
func (c *Controller) PowerOn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUninitialized && c.state != StatePoweredOff {
		return nil
	}
	board := c.dev.Board()
	if c.reg != nil {
		if board.AVDDLoad > 0 {
			if err := c.reg.SetLoad(board.AVDDLoad); err != nil {
				return errcode.Wrap(errcode.Of(err), "touch.power_on", err)
			}
		}
		if err := c.reg.Enable(); err != nil {
			return errcode.Wrap(errcode.Of(err), "touch.power_on", err)
		}
	}
	if c.pins != nil {
		if err := c.pins.ApplyState(PinStateActive); err != nil {
			return errcode.Wrap(errcode.Of(err), "touch.power_on", err)
		}
	}
	time.Sleep(time.Duration(board.PowerOnDelayUS) * time.Microsecond)
	c.state = StatePoweredOnIdle
	c.publishStateLocked()
	return nil
}

// PowerOff disables the interrupt if armed, drops the supply and waits the
// power-off delay. A no-op when already off.
func (c *Controller) PowerOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUninitialized || c.state == StatePoweredOff {
		return nil
	}
	if err := c.irqEnableLocked(false); err != nil {
		return err
	}
	if c.reg != nil {
		if err := c.reg.Disable(); err != nil {
			return errcode.Wrap(errcode.Of(err), "touch.power_off", err)
		}
	}
	time.Sleep(time.Duration(c.dev.Board().PowerOffDelayUS) * time.Microsecond)
	c.state = StatePoweredOff
	c.publishStateLocked()
	c.kickESD()
	return nil
}

// InitHW resets and initializes the chip: identity confirmation, version
// read, first ESD sentinel. The device must be powered.
func (c *Controller) InitHW() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePoweredOnIdle && c.state != StateInterruptActive {
		return errcode.Msg(errcode.InvalidParams, "touch.init_hw", "device not powered")
	}
	if err := c.dev.Ops().Init(); err != nil {
		return err
	}
	c.publishStateLocked()
	return nil
}

// IRQSetup binds the interrupt line with the board's trigger edge. The line
// stays masked until IRQEnable(true). A no-op when already bound.
func (c *Controller) IRQSetup() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.irqBound {
		return nil
	}
	if c.irqPin == nil {
		return errcode.Msg(errcode.InvalidParams, "touch.irq_setup", "no irq pin")
	}
	edge := types.ParseEdge(c.dev.Board().IRQFlags)
	if err := c.worker.Bind(c.irqPin, edge); err != nil {
		return err
	}
	c.irqBound = true
	return nil
}

// IRQEnable arms or masks the interrupt line. Idempotent in both
// directions; the interrupt controller is never toggled twice.
func (c *Controller) IRQEnable(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.irqBound {
		return errcode.Msg(errcode.InvalidParams, "touch.irq_enable", "irq not set up")
	}
	if on && c.state == StateSuspended {
		return errcode.Msg(errcode.InvalidParams, "touch.irq_enable", "device suspended")
	}
	if err := c.irqEnableLocked(on); err != nil {
		return err
	}
	c.publishStateLocked()
	return nil
}

func (c *Controller) irqEnableLocked(on bool) error {
	if on {
		if err := c.worker.Enable(); err != nil {
			return err
		}
		if c.state == StatePoweredOnIdle {
			c.state = StateInterruptActive
		}
		return nil
	}
	if err := c.worker.Disable(); err != nil {
		return err
	}
	if c.state == StateInterruptActive {
		c.state = StatePoweredOnIdle
	}
	return nil
}

// Suspend stops event delivery and puts the chip to sleep: interrupt off,
// watchdog descheduled, sleep command, suspend pin state. A no-op when
// already suspended.
func (c *Controller) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateSuspended:
		return nil
	case StatePoweredOnIdle, StateInterruptActive:
	default:
		return errcode.Msg(errcode.InvalidParams, "touch.suspend", "device not powered")
	}
	if err := c.irqEnableLocked(false); err != nil {
		return err
	}
	// The watchdog checks the state under this same lock, so setting it
	// here already guarantees no liveness write reaches a sleeping chip.
	c.state = StateSuspended
	if err := c.dev.Ops().Suspend(); err != nil {
		c.state = StatePoweredOnIdle
		return err
	}
	if c.pins != nil {
		if err := c.pins.ApplyState(PinStateSuspend); err != nil {
			return errcode.Wrap(errcode.Of(err), "touch.suspend", err)
		}
	}
	c.publishStateLocked()
	c.kickESD()
	return nil
}

// Resume is the exact reverse of Suspend: active pin state, hardware reset
// out of sleep, watchdog re-armed, interrupt back on. A no-op unless
// suspended.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSuspended {
		return nil
	}
	if c.pins != nil {
		if err := c.pins.ApplyState(PinStateActive); err != nil {
			return errcode.Wrap(errcode.Of(err), "touch.resume", err)
		}
	}
	if err := c.dev.Ops().Resume(); err != nil {
		return err
	}
	c.state = StatePoweredOnIdle
	if err := c.irqEnableLocked(true); err != nil {
		return err
	}
	c.publishStateLocked()
	c.kickESD()
	return nil
}

// Start runs the full bind sequence and spawns the run loop and interrupt
// worker. Close cancels and awaits both.
func (c *Controller) Start(ctx context.Context) error {
	if c.eg != nil {
		return errcode.Msg(errcode.InvalidParams, "touch.start", "already started")
	}
	if err := c.PowerOn(); err != nil {
		return err
	}
	if err := c.InitHW(); err != nil {
		_ = c.PowerOff()
		return err
	}
	if err := c.IRQSetup(); err != nil {
		_ = c.PowerOff()
		return err
	}
	if err := c.IRQEnable(true); err != nil {
		_ = c.PowerOff()
		return err
	}
	c.EsdInit()

	gctx, cancel := context.WithCancel(ctx)
	eg, gctx := errgroup.WithContext(gctx)
	c.cancel = cancel
	c.eg = eg
	eg.Go(func() error { return c.worker.Run(gctx) })
	eg.Go(func() error { return c.run(gctx) })

	c.b.Notify(TopicNotify, "bound")
	return nil
}

// Close tears the controller down: the run loop and interrupt worker are
// cancelled and awaited first, so an in-flight decode runs to completion,
// then the interrupt is masked and power dropped.
func (c *Controller) Close() error {
	if c.cancel != nil {
		c.cancel()
		if err := c.eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		c.cancel = nil
	}
	return c.PowerOff()
}

func (c *Controller) kickESD() {
	select {
	case c.esdKick <- struct{}{}:
	default:
	}
}

func (c *Controller) publishStateLocked() {
	esd := "off"
	switch {
	case c.esd.degraded:
		esd = "degraded"
	case c.esd.enabled:
		esd = "on"
	}
	c.b.SetState(TopicState, Snapshot{
		Device:         c.dev.Name(),
		State:          c.state.String(),
		ESD:            esd,
		PID:            c.dev.Version().PID,
		ChecksumErrors: c.csumErrs,
		ISRDrops:       c.worker.Drops(),
	})
}

// run is the controller's single event loop: deferred interrupts, the
// watchdog timer, and the control topics all funnel through here.
func (c *Controller) run(ctx context.Context) error {
	esdSub := c.b.Subscribe(TopicESDControl)
	defer esdSub.Unsubscribe()

	var powerCh <-chan PowerEvent
	if c.power != nil {
		powerCh = c.power.Events()
	}

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	armed := false
	rearm := func() {
		if c.esdRunnable() {
			if !armed {
				resetTimer(timer, c.esdPeriod())
				armed = true
			}
		} else if armed {
			stopTimer(timer)
			armed = false
		}
	}
	rearm()

	for {
		select {
		case <-ctx.Done():
			stopTimer(timer)
			return nil
		case <-c.worker.Events():
			c.dispatch()
		case <-timer.C:
			// Single-shot: the next period is armed only after the cycle
			// completes, so cycles never overlap.
			armed = false
			c.esdCycle()
			rearm()
		case <-c.esdKick:
			rearm()
		case msg, ok := <-esdSub.Channel():
			if !ok {
				return nil
			}
			switch msg.Event {
			case "on":
				c.setESD(true)
			case "off":
				c.setESD(false)
			}
			rearm()
		case ev := <-powerCh:
			switch ev {
			case PowerSuspend:
				_ = c.Suspend()
			case PowerResume:
				_ = c.Resume()
			}
			rearm()
		}
	}
}
