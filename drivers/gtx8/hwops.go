package gtx8

// HardwareOps is the per-variant hardware capability set. Exactly one
// implementation is bound per Device, selected once at construction; upper
// layers never address variant registers directly.
//
// All bus-touching operations distinguish transport failure (errcode.Bus,
// already retried at the transport layer) from protocol failure
// (errcode.Checksum, errcode.Protocol, errcode.Timeout): callers may retry
// the former at their own cadence, never the latter.
type HardwareOps interface {
	// Init brings the chip to an operational state: reset, identity
	// confirmation, version readout, ESD seeding. Failure is fatal to bind.
	Init() error

	// DevConfirm is the probe-time identity check.
	DevConfirm() error

	// Reset performs a hardware reset via the reset line.
	Reset() error

	// Raw byte-addressed register access.
	Read(addr uint16, buf []byte) error
	Write(addr uint16, data []byte) error

	// Transactional variants using the bus's structured-transfer mode.
	ReadTrans(addr uint16, buf []byte) error
	WriteTrans(addr uint16, data []byte) error

	// SendCmd writes a Command's significant payload bytes to the variant
	// command register and waits (bounded) for the firmware to accept it.
	SendCmd(cmd *Command) error

	// ReadVersion reads and validates the version block.
	ReadVersion(v *VersionInfo) error

	// DecodeEvent pulls the pending interrupt status, validates the frame
	// checksum, and fills ev. The interrupt is acknowledged even when the
	// frame is discarded, so one bad frame never stalls the next.
	DecodeEvent(ev *TouchEvent) error

	// CheckHW is the watchdog liveness probe.
	CheckHW() error

	// Suspend puts the chip into low-power mode; Resume restores it.
	Suspend() error
	Resume() error
}
