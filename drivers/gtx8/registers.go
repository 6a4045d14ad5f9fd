// Package gtx8 implements the hardware layer for the GTx8 family of
// capacitive touch controllers. Two chip variants are supported, normandy
// and yellowstone, with different register layouts and frame checksums.
// Both are driven through the same HardwareOps interface over either an
// I2C or an SPI bus (tinygo.org/x/drivers bus interfaces).
package gtx8

// Device-wide limits.
const (
	// AddressDefault is the 7-bit I2C address of the controller.
	AddressDefault = 0x5D

	MaxTouch       = 10 // fingers per frame
	MaxTouchKeys   = 4
	MaxPenKeys     = 2
	PIDMaxLen      = 8
	VIDMaxLen      = 8
	CfgMaxSize     = 4096
	PenMaxPressure = 4096

	// esdTickData is the sentinel the watchdog writes to the ESD register.
	// Live firmware clears it between ticks; reading it back unchanged
	// means the chip has stalled.
	esdTickData = 0xAA

	// busRetryTimes is the fixed transport retry budget.
	busRetryTimes = 3
)

// RegisterMap gives the register addresses and block lengths for one chip
// variant. An address of 0 means the variant does not implement that
// feature; callers must treat it as "capability absent", never as a
// literal address.
type RegisterMap struct {
	VersionBase uint16
	VersionLen  uint8

	PID    uint16
	PIDLen uint8

	VID    uint16
	VIDLen uint8

	SensorID     uint16
	SensorIDMask uint8

	CfgAddr   uint16
	ESD       uint16
	Command   uint16
	Coor      uint16
	FWRequest uint16 // 0 on normandy
	Proximity uint16 // 0 on normandy
}

// HasFWRequest reports whether the variant exposes a firmware-request
// register.
func (r *RegisterMap) HasFWRequest() bool { return r.FWRequest != 0 }

// HasProximity reports whether the variant exposes a proximity register.
func (r *RegisterMap) HasProximity() bool { return r.Proximity != 0 }

var normandyRegs = RegisterMap{
	VersionBase:  0x452C,
	VersionLen:   72,
	PID:          0x4535,
	PIDLen:       4,
	VID:          0x453D,
	VIDLen:       4,
	SensorID:     0x4541,
	SensorIDMask: 0x0F,
	CfgAddr:      0x6F78,
	ESD:          0x30F3,
	Command:      0x6F68,
	Coor:         0x4100,
	FWRequest:    0,
	Proximity:    0,
}

var yellowstoneRegs = RegisterMap{
	VersionBase:  0x4014,
	VersionLen:   135,
	PID:          0x4022,
	PIDLen:       4,
	VID:          0x402A,
	VIDLen:       4,
	SensorID:     0x402F,
	SensorIDMask: 0x0F,
	CfgAddr:      0x96F8,
	ESD:          0x4166,
	Command:      0x4160,
	Coor:         0x4180,
	FWRequest:    0x4180,
	Proximity:    0x4182,
}
