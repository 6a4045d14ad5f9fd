package touch

import (
	"touchcore-go/bus"
)

// Bus topics.
var (
	// TopicState carries the retained controller snapshot.
	TopicState = bus.Topic{"touch", "state"}
	// TopicNotify carries one-shot events: "esd_on", "esd_off", "bound".
	TopicNotify = bus.Topic{"touch", "notify"}
	// TopicESDControl accepts "on"/"off" to toggle the watchdog at runtime.
	TopicESDControl = bus.Topic{"touch", "esd"}
	// TopicDisplayPower carries "suspend"/"resume" from the display stack.
	TopicDisplayPower = bus.Topic{"display", "power"}
)

// Snapshot is the retained payload on TopicState.
type Snapshot struct {
	Device         string `json:"device"`
	State          string `json:"state"`
	ESD            string `json:"esd"` // on, off, degraded
	PID            string `json:"pid,omitempty"`
	ChecksumErrors uint32 `json:"checksum_errors"`
	ISRDrops       uint32 `json:"isr_drops"`
}

// BusPowerSource adapts TopicDisplayPower events to the PowerSource
// interface.
type BusPowerSource struct {
	sub  *bus.Subscription
	out  chan PowerEvent
	stop chan struct{}
}

func NewBusPowerSource(b *bus.Bus) *BusPowerSource {
	p := &BusPowerSource{
		sub:  b.Subscribe(TopicDisplayPower),
		out:  make(chan PowerEvent, 4),
		stop: make(chan struct{}),
	}
	go p.pump()
	return p
}

func (p *BusPowerSource) pump() {
	for {
		select {
		case <-p.stop:
			return
		case msg, ok := <-p.sub.Channel():
			if !ok {
				return
			}
			var ev PowerEvent
			switch msg.Event {
			case "suspend":
				ev = PowerSuspend
			case "resume":
				ev = PowerResume
			default:
				continue
			}
			select {
			case p.out <- ev:
			default:
				// The run loop coalesces anyway; losing an intermediate
				// transition is harmless.
			}
		}
	}
}

func (p *BusPowerSource) Events() <-chan PowerEvent { return p.out }

func (p *BusPowerSource) Close() {
	close(p.stop)
	p.sub.Unsubscribe()
}
