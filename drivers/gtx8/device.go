package gtx8

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"

	"touchcore-go/errcode"
	"touchcore-go/types"
)

// BusKind is the transport the controller is wired to.
type BusKind uint8

const (
	BusI2C BusKind = iota
	BusSPI
)

func (b BusKind) String() string {
	if b == BusSPI {
		return "spi"
	}
	return "i2c"
}

// ICType selects the chip variant.
type ICType uint8

const (
	ICNormandy ICType = iota
	ICYellowstone
)

func (t ICType) String() string {
	if t == ICYellowstone {
		return "yellowstone"
	}
	return "normandy"
}

// VersionInfo is the cached firmware identity.
type VersionInfo struct {
	Valid    bool
	PID      string // product id, printable ASCII, <= 8 bytes
	VID      []byte // firmware version code, <= 8 bytes
	CID      byte   // customer id
	SensorID byte
}

// OutputPin is the reset line collaborator.
type OutputPin interface {
	Set(level bool)
}

// Config assembles one Device. Exactly one of I2C or SPI must be set.
type Config struct {
	Name  string
	IC    ICType
	Board types.BoardConfig

	I2C     drivers.I2C
	I2CAddr uint16 // 0 means AddressDefault
	SPI     drivers.SPI

	ResetPin OutputPin
}

// Device aggregates the board description, the variant register map, the
// bound HardwareOps and the cached version info. It is the single source
// of truth for "which chip, which bus, which registers". A Device is
// created once at bind time and outlives all events and watchdog cycles.
type Device struct {
	name    string
	busKind BusKind
	ic      ICType
	reg     *RegisterMap
	board   types.BoardConfig
	version VersionInfo

	io       regIO
	resetPin OutputPin
	hwOps    HardwareOps
}

// New selects the register map and HardwareOps implementation for cfg.IC
// and binds the transport. RegisterDefaults (or touch.CoreInit) must have
// run first.
func New(cfg Config) (*Device, error) {
	var reg *RegisterMap
	switch cfg.IC {
	case ICNormandy:
		reg = &normandyRegs
	case ICYellowstone:
		reg = &yellowstoneRegs
	default:
		return nil, errcode.Msg(errcode.InvalidParams, "gtx8.new", "unknown ic type")
	}

	d := &Device{
		name:     cfg.Name,
		ic:       cfg.IC,
		reg:      reg,
		board:    cfg.Board,
		resetPin: cfg.ResetPin,
	}
	if d.name == "" {
		d.name = "gtx8-" + cfg.IC.String()
	}

	switch {
	case cfg.I2C != nil && cfg.SPI != nil:
		return nil, errcode.Msg(errcode.InvalidParams, "gtx8.new", "both i2c and spi supplied")
	case cfg.I2C != nil:
		d.busKind = BusI2C
		d.io = newI2CIO(cfg.I2C, cfg.I2CAddr)
	case cfg.SPI != nil:
		d.busKind = BusSPI
		d.io = newSPIIO(cfg.SPI)
	default:
		return nil, errcode.Msg(errcode.InvalidParams, "gtx8.new", "no bus supplied")
	}

	factory, ok := findOps(cfg.IC)
	if !ok {
		return nil, errcode.Msg(errcode.ProbeFailed, "gtx8.new",
			"no hardware ops registered; call RegisterDefaults first")
	}
	d.hwOps = factory(d)
	return d, nil
}

func (d *Device) Name() string              { return d.name }
func (d *Device) Bus() BusKind              { return d.busKind }
func (d *Device) IC() ICType                { return d.ic }
func (d *Device) Reg() *RegisterMap         { return d.reg }
func (d *Device) Board() *types.BoardConfig { return &d.board }
func (d *Device) Version() VersionInfo      { return d.version }
func (d *Device) Ops() HardwareOps          { return d.hwOps }

// ---- variant registry ----

// OpsFactory builds the HardwareOps implementation for a Device.
type OpsFactory func(*Device) HardwareOps

var (
	muOps        sync.RWMutex
	opsFactories = map[ICType]OpsFactory{}
	defaultsOnce sync.Once
)

// RegisterOps installs a HardwareOps factory for an IC type. It panics on
// duplicate registration to catch mistakes at start-up.
func RegisterOps(ic ICType, f OpsFactory) {
	muOps.Lock()
	defer muOps.Unlock()
	if f == nil {
		panic("gtx8: nil ops factory")
	}
	if _, exists := opsFactories[ic]; exists {
		panic(fmt.Sprintf("gtx8: ops already registered for %s", ic))
	}
	opsFactories[ic] = f
}

func findOps(ic ICType) (OpsFactory, bool) {
	muOps.RLock()
	defer muOps.RUnlock()
	f, ok := opsFactories[ic]
	return f, ok
}

// RegisterDefaults installs the built-in variant implementations. It is
// safe to call more than once; only the first call registers.
func RegisterDefaults() {
	defaultsOnce.Do(func() {
		RegisterOps(ICNormandy, newNormandyOps)
		RegisterOps(ICYellowstone, newYellowstoneOps)
	})
}
