// cmd/touchsim/main.go
//
// Host demo: drives the touch core against a simulated normandy chip.
// A synthetic finger sweeps the panel, one frame is corrupted to show the
// checksum path, and halfway through the display "suspends" via the bus.
package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"touchcore-go/bus"
	"touchcore-go/drivers/gtx8"
	"touchcore-go/services/touch"
	"touchcore-go/types"
)

const (
	frameInterval = 200 * time.Millisecond
	frameCount    = 20
	corruptAt     = 7
	suspendAt     = 10
	resumeAt      = 14
)

// ---------- Simulated chip ----------

// simChip is a normandy register file behind the I2C interface: 16-bit
// big-endian addressing, instant command consumption, ESD sentinel
// consumed between ticks.
type simChip struct {
	mu       sync.Mutex
	mem      [0xB000]byte
	lastAddr uint16
	cmdReg   uint16
	esdReg   uint16
}

func (s *simChip) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(w) >= 2 {
		reg := uint16(w[0])<<8 | uint16(w[1])
		s.lastAddr = reg
		if len(w) > 2 {
			switch reg {
			case s.cmdReg:
				s.mem[reg] = 0 // firmware consumes the command
			case s.esdReg:
				s.mem[reg] = 0 // firmware consumes the sentinel
			default:
				copy(s.mem[reg:], w[2:])
			}
		}
	}
	if len(r) > 0 {
		copy(r, s.mem[s.lastAddr:])
	}
	return nil
}

func (s *simChip) store(addr uint16, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.mem[addr:], data)
}

func sealU8(blk []byte) {
	blk[len(blk)-1] = 0
	blk[len(blk)-1] = -gtx8.ChecksumU8(blk)
}

func (s *simChip) seedVersion(reg *gtx8.RegisterMap) {
	blk := make([]byte, reg.VersionLen)
	copy(blk[reg.PID-reg.VersionBase:], "GT96")
	copy(blk[reg.VID-reg.VersionBase:], []byte{1, 0, 2, 4})
	blk[reg.SensorID-reg.VersionBase] = 0x01
	sealU8(blk)
	s.store(reg.VersionBase, blk)
}

// pushFrame latches a single-finger frame at the coordinate register.
func (s *simChip) pushFrame(reg *gtx8.RegisterMap, x, y uint16, corrupt bool) {
	frame := make([]byte, 3+9+1)
	frame[0] = 0x80
	frame[1] = 1
	frame[3] = 2 // touch
	frame[4], frame[5] = byte(x), byte(x>>8)
	frame[6], frame[7] = byte(y), byte(y>>8)
	sealU8(frame)
	if corrupt {
		frame[4] ^= 0xFF
	}
	s.store(reg.Coor, frame)
}

// ---------- Simulated board collaborators ----------

type simPin struct {
	mu      sync.Mutex
	handler func()
}

func (p *simPin) Set(level bool) {} // reset line, nothing to do in sim

func (p *simPin) Get() bool { return false }

func (p *simPin) SetIRQ(edge types.Edge, handler func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = handler
	return nil
}

func (p *simPin) ClearIRQ() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = nil
	return nil
}

func (p *simPin) fire() {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h()
	}
}

type simRegulator struct{}

func (simRegulator) Enable() error           { println("regulator: avdd on"); return nil }
func (simRegulator) Disable() error          { println("regulator: avdd off"); return nil }
func (simRegulator) SetLoad(ua uint32) error { return nil }

type consoleReporter struct{}

func (consoleReporter) Report(ev *gtx8.TouchEvent) {
	if ev.Type&gtx8.EventTouch == 0 {
		return
	}
	p := ev.Points[0]
	fmt.Printf("touch: %d finger(s), first at (%d,%d)\n", ev.TouchCount, p.X, p.Y)
}

func main() {
	touch.CoreInit()

	chip := &simChip{}
	b := bus.New(16)

	board := types.BoardConfig{
		AVDDName:        "vdd_ana",
		ResetPin:        12,
		IRQPin:          13,
		PanelMaxX:       1080,
		PanelMaxY:       2340,
		PowerOnDelayUS:  1_000,
		PowerOffDelayUS: 1_000,
		ESDDefaultOn:    true,
		ESDPeriodMS:     500,
	}
	if err := board.Validate(); err != nil {
		panic(err)
	}

	irqPin := &simPin{}
	dev, err := gtx8.New(gtx8.Config{
		Name:     "sim0",
		IC:       gtx8.ICNormandy,
		Board:    board,
		I2C:      chip,
		ResetPin: &simPin{},
	})
	if err != nil {
		panic(err)
	}
	chip.mu.Lock()
	chip.cmdReg = dev.Reg().Command
	chip.esdReg = dev.Reg().ESD
	chip.mu.Unlock()
	chip.seedVersion(dev.Reg())

	ctrl, err := touch.New(touch.Config{
		Device:    dev,
		Bus:       b,
		Reporter:  consoleReporter{},
		IRQPin:    irqPin,
		Regulator: simRegulator{},
		Power:     touch.NewBusPowerSource(b),
	})
	if err != nil {
		panic(err)
	}

	// Log notifications and state changes.
	go func() {
		notify := b.Subscribe(touch.TopicNotify)
		state := b.Subscribe(touch.TopicState)
		for {
			select {
			case msg := <-notify.Channel():
				fmt.Println("notify:", msg.Event)
			case msg := <-state.Channel():
				if s, ok := msg.Payload.(touch.Snapshot); ok {
					fmt.Printf("state: %s esd=%s csum_errs=%d\n", s.State, s.ESD, s.ChecksumErrors)
				}
			}
		}
	}()

	ctx := context.Background()
	if err := ctrl.Start(ctx); err != nil {
		panic(err)
	}
	fmt.Printf("bound: %s pid=%s\n", dev.Name(), dev.Version().PID)

	for i := 0; i < frameCount; i++ {
		time.Sleep(frameInterval)
		switch i {
		case suspendAt:
			fmt.Println("display: suspend")
			b.Publish(&bus.Message{Topic: touch.TopicDisplayPower, Event: "suspend"})
			continue
		case resumeAt:
			fmt.Println("display: resume")
			b.Publish(&bus.Message{Topic: touch.TopicDisplayPower, Event: "resume"})
			continue
		}
		x := uint16(100 + i*40)
		y := uint16(200 + i*90)
		chip.pushFrame(dev.Reg(), x, y, i == corruptAt)
		irqPin.fire()
	}

	if err := ctrl.Close(); err != nil {
		fmt.Println("close:", err)
	}
	fmt.Println("done")
}
