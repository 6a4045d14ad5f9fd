package touch

import (
	"touchcore-go/drivers/gtx8"
)

// Regulator is the AVDD supply control. Platforms with an always-on supply
// pass nil; the controller then skips regulator sequencing.
type Regulator interface {
	Enable() error
	Disable() error
	SetLoad(microamps uint32) error
}

// Pin-control state names handed to Pinctrl.
const (
	PinStateActive  = "active"
	PinStateSuspend = "suspend"
)

// Pinctrl moves the controller's pin group between named states. Optional.
type Pinctrl interface {
	ApplyState(name string) error
}

// Reporter receives decoded events. The event pointer is only valid for the
// duration of the call; implementations must copy what they keep.
type Reporter interface {
	Report(ev *gtx8.TouchEvent)
}

// PowerEvent is a display power transition.
type PowerEvent uint8

const (
	PowerSuspend PowerEvent = iota
	PowerResume
)

// PowerSource feeds display power transitions into the controller run loop.
type PowerSource interface {
	Events() <-chan PowerEvent
}
