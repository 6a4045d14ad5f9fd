package gtx8

import (
	"time"

	"tinygo.org/x/drivers"

	"touchcore-go/errcode"
)

// regIO is the byte-addressed register transport under HardwareOps.
// Plain ops use separate bus transactions; the Trans variants use the
// bus's structured-transfer mode (repeated-start on I2C) so that the
// address phase and the data phase cannot be split by another master.
//
// Every op distinguishes transport failure (the transfer did not
// complete; retried up to busRetryTimes, then errcode.Bus) from protocol
// failure (transfer completed, data invalid; surfaced by callers, never
// retried here).
type regIO interface {
	RegRead(addr uint16, buf []byte) error
	RegWrite(addr uint16, data []byte) error
	RegReadTrans(addr uint16, buf []byte) error
	RegWriteTrans(addr uint16, data []byte) error
}

// busRetryDelay separates transport retries; transient bus noise usually
// clears within a couple of milliseconds.
const busRetryDelay = 2 * time.Millisecond

func retryTx(op string, tx func() error) error {
	var err error
	for i := 0; i < busRetryTimes; i++ {
		if err = tx(); err == nil {
			return nil
		}
		time.Sleep(busRetryDelay)
	}
	return errcode.Wrap(errcode.Bus, op, err)
}

// ---- I2C ----

type i2cIO struct {
	bus  drivers.I2C
	addr uint16

	// Scratch for the register-address prefix and small writes.
	w [2 + CfgMaxSize]byte
}

func newI2CIO(bus drivers.I2C, addr uint16) *i2cIO {
	if addr == 0 {
		addr = AddressDefault
	}
	return &i2cIO{bus: bus, addr: addr}
}

func (t *i2cIO) RegRead(addr uint16, buf []byte) error {
	t.w[0] = byte(addr >> 8)
	t.w[1] = byte(addr)
	// Two transactions: address write, then read.
	if err := retryTx("i2c.read.addr", func() error {
		return t.bus.Tx(t.addr, t.w[:2], nil)
	}); err != nil {
		return err
	}
	return retryTx("i2c.read.data", func() error {
		return t.bus.Tx(t.addr, nil, buf)
	})
}

func (t *i2cIO) RegReadTrans(addr uint16, buf []byte) error {
	t.w[0] = byte(addr >> 8)
	t.w[1] = byte(addr)
	// Single transaction with repeated start.
	return retryTx("i2c.read_trans", func() error {
		return t.bus.Tx(t.addr, t.w[:2], buf)
	})
}

func (t *i2cIO) RegWrite(addr uint16, data []byte) error {
	if len(data) > CfgMaxSize {
		return errcode.Msg(errcode.InvalidParams, "i2c.write", "payload exceeds config block size")
	}
	t.w[0] = byte(addr >> 8)
	t.w[1] = byte(addr)
	n := copy(t.w[2:], data)
	return retryTx("i2c.write", func() error {
		return t.bus.Tx(t.addr, t.w[:2+n], nil)
	})
}

// An I2C write is already a single transaction; the transactional variant
// is the same operation.
func (t *i2cIO) RegWriteTrans(addr uint16, data []byte) error {
	return t.RegWrite(addr, data)
}

// ---- SPI ----

// SPI framing: one prefix byte selects the direction, followed by the
// 16-bit big-endian register address, then the data phase. Reads are
// full-duplex; the device starts driving data after the 3 header bytes.
const (
	spiWritePrefix = 0xF0
	spiReadPrefix  = 0xF1
	spiHeaderLen   = 3
)

type spiIO struct {
	bus drivers.SPI

	w [spiHeaderLen + CfgMaxSize]byte
	r [spiHeaderLen + CfgMaxSize]byte
}

func newSPIIO(bus drivers.SPI) *spiIO {
	return &spiIO{bus: bus}
}

func (t *spiIO) RegRead(addr uint16, buf []byte) error {
	if len(buf) > CfgMaxSize {
		return errcode.Msg(errcode.InvalidParams, "spi.read", "read exceeds config block size")
	}
	n := spiHeaderLen + len(buf)
	t.w[0] = spiReadPrefix
	t.w[1] = byte(addr >> 8)
	t.w[2] = byte(addr)
	for i := spiHeaderLen; i < n; i++ {
		t.w[i] = 0
	}
	if err := retryTx("spi.read", func() error {
		return t.bus.Tx(t.w[:n], t.r[:n])
	}); err != nil {
		return err
	}
	copy(buf, t.r[spiHeaderLen:n])
	return nil
}

func (t *spiIO) RegWrite(addr uint16, data []byte) error {
	if len(data) > CfgMaxSize {
		return errcode.Msg(errcode.InvalidParams, "spi.write", "payload exceeds config block size")
	}
	t.w[0] = spiWritePrefix
	t.w[1] = byte(addr >> 8)
	t.w[2] = byte(addr)
	n := spiHeaderLen + copy(t.w[spiHeaderLen:], data)
	return retryTx("spi.write", func() error {
		return t.bus.Tx(t.w[:n], nil)
	})
}

// SPI transfers are inherently single transactions; the transactional
// variants alias the plain ones.
func (t *spiIO) RegReadTrans(addr uint16, buf []byte) error   { return t.RegRead(addr, buf) }
func (t *spiIO) RegWriteTrans(addr uint16, data []byte) error { return t.RegWrite(addr, data) }
