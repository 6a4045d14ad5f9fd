package types

// Edge selects which pin transitions fire an interrupt.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// ParseEdge maps board irq_flags strings to an Edge. Touch interrupt lines
// idle high and assert low, so an empty string means falling.
func ParseEdge(s string) Edge {
	switch s {
	case "rising":
		return EdgeRising
	case "both":
		return EdgeBoth
	default:
		return EdgeFalling
	}
}

// IRQPin is an interrupt-capable input line as the platform exposes it.
// The handler passed to SetIRQ runs in ISR context and must not block.
type IRQPin interface {
	Get() bool
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}
