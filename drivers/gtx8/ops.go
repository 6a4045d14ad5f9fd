package gtx8

import (
	"time"

	"touchcore-go/errcode"
)

// Reset line timing.
const (
	resetHold   = 2 * time.Millisecond
	resetSettle = 100 * time.Millisecond
)

// Command-acknowledge polling.
const (
	cmdAckTimeout = 50 * time.Millisecond
	cmdAckPoll    = 5 * time.Millisecond
)

// ops holds the operations shared by both variants. Variant types embed it
// and add the layout-specific pieces (frame checksum, pen, version block).
type ops struct {
	d *Device

	// Scratch buffers reused across calls; DecodeEvent and ReadVersion are
	// serialized by the controller's device lock.
	frame [frameHeaderLen + MaxTouch*pointLen + penLen + 2]byte
	ver   [256]byte
}

func (o *ops) Read(addr uint16, buf []byte) error        { return o.d.io.RegRead(addr, buf) }
func (o *ops) Write(addr uint16, data []byte) error      { return o.d.io.RegWrite(addr, data) }
func (o *ops) ReadTrans(addr uint16, buf []byte) error   { return o.d.io.RegReadTrans(addr, buf) }
func (o *ops) WriteTrans(addr uint16, data []byte) error { return o.d.io.RegWriteTrans(addr, data) }

// Reset toggles the reset line and waits for the firmware to boot.
func (o *ops) Reset() error {
	if o.d.resetPin == nil {
		return errcode.Msg(errcode.Unsupported, "gtx8.reset", "no reset pin bound")
	}
	o.d.resetPin.Set(false)
	time.Sleep(resetHold)
	o.d.resetPin.Set(true)
	time.Sleep(resetSettle)
	return nil
}

// SendCmd transmits exactly cmd.Length payload bytes to the variant's
// command register, then polls until the firmware consumes the command
// (first command byte cleared) or the acknowledge deadline passes.
func (o *ops) SendCmd(cmd *Command) error {
	if !cmd.Valid() {
		return errcode.Msg(errcode.InvalidParams, "gtx8.send_cmd", "uninitialized or oversized command")
	}
	reg := uint16(cmd.CmdReg)
	if err := o.d.io.RegWriteTrans(reg, cmd.Cmds[:cmd.Length]); err != nil {
		return err
	}
	if cmd.Length == 0 {
		return nil
	}

	deadline := time.Now().Add(cmdAckTimeout)
	var ack [1]byte
	for {
		if err := o.d.io.RegReadTrans(reg, ack[:]); err != nil {
			return err
		}
		if ack[0] != cmd.Cmds[0] {
			return nil
		}
		if time.Now().After(deadline) {
			return errcode.Msg(errcode.Timeout, "gtx8.send_cmd", "command not acknowledged")
		}
		time.Sleep(cmdAckPoll)
	}
}

// CheckHW is the ESD liveness probe: live firmware clears the sentinel
// between ticks, so reading it back unchanged means the chip stalled.
// On success the sentinel is rewritten for the next period.
func (o *ops) CheckHW() error {
	esd := o.d.reg.ESD
	var v [1]byte
	if err := o.d.io.RegReadTrans(esd, v[:]); err != nil {
		return err
	}
	if v[0] == esdTickData {
		return errcode.Msg(errcode.Timeout, "gtx8.check_hw", "esd tick not consumed")
	}
	return o.d.io.RegWriteTrans(esd, []byte{esdTickData})
}

// seedESD writes the first sentinel after init/reset.
func (o *ops) seedESD() error {
	return o.d.io.RegWriteTrans(o.d.reg.ESD, []byte{esdTickData})
}

// Suspend sends the sleep command.
func (o *ops) Suspend() error {
	cmd := NewCommand(o.d.reg.Command, CmdSleep)
	return o.SendCmd(&cmd)
}

// resume recovers from low-power mode: the only reliable exit from sleep
// is a hardware reset, after which the ESD sentinel must be reseeded.
func (o *ops) resume() error {
	if err := o.Reset(); err != nil {
		return err
	}
	return o.seedESD()
}

// readVersionBlock reads the variant version block, validates it with the
// supplied checksum verdict, and extracts the identity fields at the
// offsets derived from the register map.
func (o *ops) readVersionBlock(valid func([]byte) bool, v *VersionInfo) error {
	reg := o.d.reg
	blk := o.ver[:reg.VersionLen]
	if err := o.d.io.RegReadTrans(reg.VersionBase, blk); err != nil {
		return err
	}
	if !valid(blk) {
		return errcode.Msg(errcode.Checksum, "gtx8.read_version", "version block checksum mismatch")
	}

	pidOff := int(reg.PID - reg.VersionBase)
	vidOff := int(reg.VID - reg.VersionBase)
	sensorOff := int(reg.SensorID - reg.VersionBase)

	v.PID = trimPID(blk[pidOff : pidOff+int(reg.PIDLen)])
	v.VID = append(v.VID[:0], blk[vidOff:vidOff+int(reg.VIDLen)]...)
	v.SensorID = blk[sensorOff] & reg.SensorIDMask
	v.CID = blk[sensorOff+1]
	v.Valid = v.PID != ""
	return nil
}

func trimPID(raw []byte) string {
	end := 0
	for end < len(raw) && raw[end] >= 0x20 && raw[end] < 0x7F {
		end++
	}
	return string(raw[:end])
}

// decodeEvent is the shared frame decoder. tail is the checksum width,
// valid the variant verdict, pen whether a pen record may follow the
// points. The status register is cleared even for discarded frames.
func (o *ops) decodeEvent(tail int, valid func([]byte) bool, pen bool, ev *TouchEvent) error {
	coor := o.d.reg.Coor
	head := o.frame[:frameHeaderLen]
	if err := o.d.io.RegReadTrans(coor, head); err != nil {
		return err
	}
	if head[0]&(stTouch|stRequest|stGesture|stVendor|stPen) == 0 {
		// Spurious interrupt: nothing pending.
		ev.Reset()
		return nil
	}

	typ, count, err := parseStatus(head)
	if err != nil {
		// Malformed count: discard, but still acknowledge the interrupt.
		_ = o.ackEvent()
		return err
	}
	if !pen {
		// Bit 3 is reserved on variants without pen support.
		typ &^= EventPen
	}

	n := frameHeaderLen + count*pointLen
	if pen && typ&EventPen != 0 {
		n += penLen
	}
	n += tail
	frame := o.frame[:n]
	if err := o.d.io.RegReadTrans(coor, frame); err != nil {
		return err
	}

	if !valid(frame) {
		_ = o.ackEvent()
		return errcode.Msg(errcode.Checksum, "gtx8.decode", "frame checksum mismatch")
	}

	ev.Reset()
	ev.Type = typ
	board := &o.d.board
	if typ&EventTouch != 0 {
		parseTouch(frame, count, board.KeyMap, board.SwapAxis, ev)
	}
	if pen && typ&EventPen != 0 {
		parsePen(frame, frameHeaderLen+count*pointLen, board.SwapAxis, ev)
	}
	if typ&EventRequest != 0 && o.d.reg.HasFWRequest() {
		var rc [1]byte
		if err := o.d.io.RegReadTrans(o.d.reg.FWRequest, rc[:]); err == nil {
			ev.RequestCode = rc[0]
		}
	}

	return o.ackEvent()
}

// ackEvent clears the status byte so the chip can latch the next frame.
func (o *ops) ackEvent() error {
	return o.d.io.RegWriteTrans(o.d.reg.Coor, []byte{0})
}

// confirm validates chip identity via the version block.
func (o *ops) confirm(valid func([]byte) bool) error {
	var v VersionInfo
	if err := o.readVersionBlock(valid, &v); err != nil {
		return errcode.Wrap(errcode.ProbeFailed, "gtx8.dev_confirm", err)
	}
	if !v.Valid {
		return errcode.Msg(errcode.ProbeFailed, "gtx8.dev_confirm", "empty or unprintable product id")
	}
	return nil
}
