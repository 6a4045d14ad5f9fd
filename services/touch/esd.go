package touch

import (
	"time"
)

// esdRecoverRetries bounds the reset/re-init attempts after a failed
// liveness check. Exhausting it degrades the watchdog; the driver itself
// keeps running.
const esdRecoverRetries = 3

type esdGuard struct {
	enabled  bool
	degraded bool
}

// EsdInit seeds the watchdog from the board description and clears any
// degraded latch. Safe to call repeatedly.
func (c *Controller) EsdInit() {
	c.mu.Lock()
	c.esd.enabled = c.dev.Board().ESDDefaultOn
	c.esd.degraded = false
	c.publishStateLocked()
	c.mu.Unlock()
	c.kickESD()
}

// setESD is the runtime toggle behind the control topic. Re-enabling also
// clears the degraded latch so the watchdog gets a fresh retry budget.
func (c *Controller) setESD(on bool) {
	c.mu.Lock()
	c.esd.enabled = on
	if on {
		c.esd.degraded = false
	}
	c.publishStateLocked()
	c.mu.Unlock()
	c.kickESD()
}

func (c *Controller) esdRunnable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.esd.enabled || c.esd.degraded {
		return false
	}
	return c.state == StatePoweredOnIdle || c.state == StateInterruptActive
}

func (c *Controller) esdPeriod() time.Duration {
	return time.Duration(c.dev.Board().ESDPeriodMS) * time.Millisecond
}

// esdCycle runs one liveness check. On a stalled or unreachable chip it
// notifies esd_off, attempts a bounded reset/re-init recovery, and either
// notifies esd_on or latches the watchdog degraded. The state is
// re-checked under the device lock so a suspend that won the lock first
// always suppresses the cycle.
func (c *Controller) esdCycle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.esd.enabled || c.esd.degraded {
		return
	}
	if c.state != StatePoweredOnIdle && c.state != StateInterruptActive {
		return
	}

	if err := c.dev.Ops().CheckHW(); err == nil {
		return
	}

	c.b.Notify(TopicNotify, "esd_off")
	for i := 0; i < esdRecoverRetries; i++ {
		if err := c.dev.Ops().Init(); err == nil {
			c.b.Notify(TopicNotify, "esd_on")
			return
		}
	}
	c.esd.degraded = true
	c.publishStateLocked()
}
