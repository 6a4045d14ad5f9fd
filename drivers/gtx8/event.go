package gtx8

import (
	"encoding/binary"

	"touchcore-go/errcode"
)

// EventType is the decoded event class bitmask.
type EventType uint8

const (
	EventTouch EventType = 1 << iota
	EventPen
	EventRequest
	// Gesture and vendor-extension events are defined on the wire but not
	// modeled beyond their presence flag; whether anything consumes them
	// is outside the core.
	EventGesture
	EventVendor
)

// Wire bits of the status byte at the coordinate register.
const (
	stTouch   = 0x80
	stRequest = 0x40
	stGesture = 0x20
	stVendor  = 0x10
	stPen     = 0x08 // yellowstone only
)

// PointStatus of one contact or key.
type PointStatus uint8

const (
	PointNone PointStatus = iota
	PointRelease
	PointTouch
)

// ToolType of the pen contact.
type ToolType uint8

const (
	ToolNone ToolType = iota
	ToolPen
	ToolRubber
)

// TouchPoint is one decoded finger contact.
type TouchPoint struct {
	Status PointStatus
	X, Y   uint16
	W      uint16 // width major/minor
	P      uint16 // pressure
}

// PenPoint is the decoded pen contact.
type PenPoint struct {
	Status PointStatus
	Tool   ToolType
	X, Y   uint16
	P      uint16
	TiltX  int8
	TiltY  int8
}

// Key is one decoded panel or pen key.
type Key struct {
	Status PointStatus
	Code   int
}

// TouchEvent is the structured result of one interrupt frame. Controllers
// reuse a single TouchEvent across dispatches; Reset clears it between
// frames.
type TouchEvent struct {
	Type EventType

	TouchCount int
	Points     [MaxTouch]TouchPoint
	KeyCount   int
	Keys       [MaxTouchKeys]Key

	Pen         PenPoint
	PenKeyCount int
	PenKeys     [MaxPenKeys]Key

	// RequestCode is populated on EventRequest when the variant exposes a
	// firmware-request register.
	RequestCode uint8
}

// Reset clears the event for reuse.
func (e *TouchEvent) Reset() { *e = TouchEvent{} }

// Frame geometry shared by both variants:
//
//	offset 0: status byte (stTouch | stRequest | stGesture | stVendor | stPen)
//	offset 1: touch count (0..10; only meaningful when stTouch is set)
//	offset 2: touch-key bitmap (low 4 bits)
//	offset 3: touch points, 9 bytes each:
//	          status(1), x(LE16), y(LE16), w(LE16), p(LE16)
//	then on yellowstone, when stPen is set, an 11-byte pen record:
//	          status(1), tool(1), x(LE16), y(LE16), p(LE16),
//	          tiltX(int8), tiltY(int8), pen-key bitmap(1, low 2 bits)
//	then the variant checksum tail (1 byte normandy, 2 bytes yellowstone).
const (
	frameHeaderLen = 3
	pointLen       = 9
	penLen         = 11
)

// parseStatus splits the status byte into event flags and declared count.
// A declared count above MaxTouch is rejected before any point parsing.
func parseStatus(head []byte) (EventType, int, error) {
	var typ EventType
	status := head[0]
	if status&stTouch != 0 {
		typ |= EventTouch
	}
	if status&stRequest != 0 {
		typ |= EventRequest
	}
	if status&stGesture != 0 {
		typ |= EventGesture
	}
	if status&stVendor != 0 {
		typ |= EventVendor
	}
	if status&stPen != 0 {
		typ |= EventPen
	}

	count := 0
	if typ&EventTouch != 0 {
		count = int(head[1])
		if count > MaxTouch {
			return 0, 0, errcode.Msg(errcode.Protocol, "gtx8.decode", "touch count out of range")
		}
	}
	return typ, count, nil
}

// parseTouch fills the touch portion of ev from a checksum-verified frame.
// keyMap supplies key codes for the key bitmap; missing entries are
// reported with their bit index.
func parseTouch(frame []byte, count int, keyMap []int, swapAxis bool, ev *TouchEvent) {
	ev.TouchCount = count

	keyBits := frame[2] & 0x0F
	ev.KeyCount = 0
	for i := 0; i < MaxTouchKeys; i++ {
		if keyBits&(1<<i) == 0 {
			continue
		}
		code := i
		if i < len(keyMap) {
			code = keyMap[i]
		}
		ev.Keys[ev.KeyCount] = Key{Status: PointTouch, Code: code}
		ev.KeyCount++
	}

	for i := 0; i < count; i++ {
		p := frame[frameHeaderLen+i*pointLen:]
		pt := TouchPoint{
			Status: PointStatus(p[0]),
			X:      binary.LittleEndian.Uint16(p[1:]),
			Y:      binary.LittleEndian.Uint16(p[3:]),
			W:      binary.LittleEndian.Uint16(p[5:]),
			P:      binary.LittleEndian.Uint16(p[7:]),
		}
		if swapAxis {
			pt.X, pt.Y = pt.Y, pt.X
		}
		ev.Points[i] = pt
	}
}

// parsePen fills the pen portion from the record starting at off.
func parsePen(frame []byte, off int, swapAxis bool, ev *TouchEvent) {
	p := frame[off:]
	pen := PenPoint{
		Status: PointStatus(p[0]),
		Tool:   ToolType(p[1]),
		X:      binary.LittleEndian.Uint16(p[2:]),
		Y:      binary.LittleEndian.Uint16(p[4:]),
		P:      binary.LittleEndian.Uint16(p[6:]),
		TiltX:  int8(p[8]),
		TiltY:  int8(p[9]),
	}
	if swapAxis {
		pen.X, pen.Y = pen.Y, pen.X
	}
	ev.Pen = pen

	keyBits := p[10] & 0x03
	ev.PenKeyCount = 0
	for i := 0; i < MaxPenKeys; i++ {
		if keyBits&(1<<i) == 0 {
			continue
		}
		ev.PenKeys[ev.PenKeyCount] = Key{Status: PointTouch, Code: i}
		ev.PenKeyCount++
	}
}
