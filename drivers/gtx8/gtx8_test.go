package gtx8

import (
	"encoding/binary"
	"sync"

	"tinygo.org/x/drivers"

	"touchcore-go/types"
)

// Compile-time checks.
var (
	_ drivers.I2C = (*fakeChip)(nil)
	_ drivers.SPI = (*fakeSPIChip)(nil)
)

// fakeChip emulates a GTx8 register file behind an I2C bus: 16-bit
// big-endian register addressing, write = addr + payload, read = payload
// at the last addressed register (plain) or at the address written in the
// same transaction (repeated start). Commands written to the command
// register are consumed immediately, like live firmware.
type fakeChip struct {
	mu       sync.Mutex
	mem      [0xB000]byte
	lastAddr uint16

	cmdReg   uint16 // commands written here are recorded and cleared
	cmdLog   [][]byte
	writeLog []fakeWrite

	failN int   // fail the next N transactions
	err   error // error to return while failing
}

type fakeWrite struct {
	addr uint16
	data []byte
}

func (f *fakeChip) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failN > 0 {
		f.failN--
		return f.err
	}

	if len(w) >= 2 {
		reg := uint16(w[0])<<8 | uint16(w[1])
		f.lastAddr = reg
		if len(w) > 2 {
			data := append([]byte(nil), w[2:]...)
			f.writeLog = append(f.writeLog, fakeWrite{addr: reg, data: data})
			if f.cmdReg != 0 && reg == f.cmdReg {
				f.cmdLog = append(f.cmdLog, data)
				// Firmware consumes the command at once.
				f.mem[reg] = 0
			} else {
				copy(f.mem[reg:], data)
			}
		}
	}
	if len(r) > 0 {
		copy(r, f.mem[f.lastAddr:])
	}
	return nil
}

func (f *fakeChip) set(addr uint16, data ...byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.mem[addr:], data)
}

func (f *fakeChip) get(addr uint16) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mem[addr]
}

func (f *fakeChip) failNext(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failN = n
	f.err = err
}

func (f *fakeChip) writesTo(addr uint16) []fakeWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeWrite
	for _, w := range f.writeLog {
		if w.addr == addr {
			out = append(out, w)
		}
	}
	return out
}

// fakeSPIChip mirrors fakeChip behind the SPI framing.
type fakeSPIChip struct {
	mu  sync.Mutex
	mem [0xB000]byte

	failN int
	err   error
}

func (f *fakeSPIChip) Tx(w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failN > 0 {
		f.failN--
		return f.err
	}
	if len(w) < spiHeaderLen {
		return nil
	}
	reg := uint16(w[1])<<8 | uint16(w[2])
	switch w[0] {
	case spiWritePrefix:
		copy(f.mem[reg:], w[spiHeaderLen:])
	case spiReadPrefix:
		if len(r) > spiHeaderLen {
			copy(r[spiHeaderLen:], f.mem[reg:])
		}
	}
	return nil
}

func (f *fakeSPIChip) Transfer(b byte) (byte, error) { return 0, nil }

// fakePin records reset line toggles.
type fakePin struct {
	mu     sync.Mutex
	level  bool
	toggle int
}

func (p *fakePin) Set(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.level != level {
		p.toggle++
	}
	p.level = level
}

// ---- frame and version block builders ----

func sealNormandy(frame []byte) {
	frame[len(frame)-1] = 0
	frame[len(frame)-1] = -ChecksumU8(frame)
}

func sealYellowstone(frame []byte) {
	var sum uint16
	for _, b := range frame[:len(frame)-2] {
		sum += uint16(b)
	}
	binary.BigEndian.PutUint16(frame[len(frame)-2:], sum)
}

type framePoint struct {
	status     PointStatus
	x, y, w, p uint16
}

func buildFrame(status byte, keyBits byte, points []framePoint, pen []byte, tail int) []byte {
	n := frameHeaderLen + len(points)*pointLen + len(pen) + tail
	frame := make([]byte, n)
	frame[0] = status
	frame[1] = byte(len(points))
	frame[2] = keyBits
	for i, pt := range points {
		off := frameHeaderLen + i*pointLen
		frame[off] = byte(pt.status)
		binary.LittleEndian.PutUint16(frame[off+1:], pt.x)
		binary.LittleEndian.PutUint16(frame[off+3:], pt.y)
		binary.LittleEndian.PutUint16(frame[off+5:], pt.w)
		binary.LittleEndian.PutUint16(frame[off+7:], pt.p)
	}
	copy(frame[frameHeaderLen+len(points)*pointLen:], pen)
	return frame
}

// seedVersion writes a valid version block for the variant into the fake
// chip memory and returns the PID used.
func seedVersionNormandy(f *fakeChip) string {
	reg := &normandyRegs
	blk := make([]byte, reg.VersionLen)
	copy(blk[reg.PID-reg.VersionBase:], "GT96")
	copy(blk[reg.VID-reg.VersionBase:], []byte{1, 2, 3, 4})
	blk[reg.SensorID-reg.VersionBase] = 0xA5 // masked to 0x05
	blk[reg.SensorID-reg.VersionBase+1] = 0x42
	sealNormandy(blk)
	f.set(reg.VersionBase, blk...)
	return "GT96"
}

func seedVersionYellowstone(f *fakeChip) string {
	reg := &yellowstoneRegs
	blk := make([]byte, reg.VersionLen)
	copy(blk[reg.PID-reg.VersionBase:], "GT98")
	copy(blk[reg.VID-reg.VersionBase:], []byte{9, 8, 7, 6})
	blk[reg.SensorID-reg.VersionBase] = 0x13 // masked to 0x03
	blk[reg.SensorID-reg.VersionBase+1] = 0x07
	sealYellowstone(blk)
	f.set(reg.VersionBase, blk...)
	return "GT98"
}

func testBoard() types.BoardConfig {
	b := types.BoardConfig{
		AVDDName:  "vdd_ana",
		ResetPin:  12,
		IRQPin:    13,
		PanelMaxX: 1080,
		PanelMaxY: 2340,
		KeyMap:    []int{158, 172},
	}
	if err := b.Validate(); err != nil {
		panic(err)
	}
	return b
}

func newTestDevice(ic ICType, f *fakeChip) *Device {
	RegisterDefaults()
	f.mu.Lock()
	switch ic {
	case ICNormandy:
		f.cmdReg = normandyRegs.Command
	case ICYellowstone:
		f.cmdReg = yellowstoneRegs.Command
	}
	f.mu.Unlock()
	d, err := New(Config{
		IC:       ic,
		Board:    testBoard(),
		I2C:      f,
		ResetPin: &fakePin{level: true},
	})
	if err != nil {
		panic(err)
	}
	return d
}
