package touch

import (
	"errors"

	"touchcore-go/errcode"
)

// dispatch services one deferred interrupt: decode under the device lock,
// hand the event to the reporter. Checksum failures are counted and
// surfaced on the state topic, never retried; the hardware layer has
// already acknowledged the interrupt for them.
func (c *Controller) dispatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInterruptActive {
		// A stale interrupt raced a suspend or disable; drop it.
		return
	}
	if err := c.dev.Ops().DecodeEvent(&c.ev); err != nil {
		if errors.Is(err, errcode.Checksum) {
			c.csumErrs++
			c.publishStateLocked()
		}
		return
	}
	if c.ev.Type == 0 {
		return
	}
	c.rep.Report(&c.ev)
}
