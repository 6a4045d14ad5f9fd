package gtx8

import "encoding/binary"

// Command codes understood by both variants (written to the variant's
// command register).
const (
	CmdSleep = 0x05
)

// CommandSize is the packed size of a Command record.
const CommandSize = 20

// MaxCmdLen is the largest command payload.
const MaxCmdLen = 8

// Command is a fixed-layout instruction record:
//
//	offset 0:  initialized (uint32 LE, 1 once built)
//	offset 4:  command register address (uint32 LE)
//	offset 8:  payload length (uint32 LE, <= 8)
//	offset 12: payload (8 bytes, only the first Length are significant)
//
// SendCmd transmits exactly Length payload bytes; bytes beyond Length are
// never put on the wire.
type Command struct {
	Initialized uint32
	CmdReg      uint32
	Length      uint32
	Cmds        [MaxCmdLen]byte
}

// NewCommand builds an initialized Command targeting reg with the given
// payload. A payload longer than MaxCmdLen makes the command invalid and
// SendCmd will reject it.
func NewCommand(reg uint16, payload ...byte) Command {
	c := Command{
		Initialized: 1,
		CmdReg:      uint32(reg),
		Length:      uint32(len(payload)),
	}
	copy(c.Cmds[:], payload)
	return c
}

// Valid reports whether the command may be transmitted.
func (c *Command) Valid() bool {
	return c.Initialized != 0 && c.Length <= MaxCmdLen
}

// Pack serializes the record into its 20-byte wire layout.
func (c *Command) Pack() [CommandSize]byte {
	var out [CommandSize]byte
	binary.LittleEndian.PutUint32(out[0:], c.Initialized)
	binary.LittleEndian.PutUint32(out[4:], c.CmdReg)
	binary.LittleEndian.PutUint32(out[8:], c.Length)
	copy(out[12:], c.Cmds[:])
	return out
}

// UnpackCommand parses a 20-byte record back into a Command.
func UnpackCommand(data []byte) (Command, bool) {
	if len(data) < CommandSize {
		return Command{}, false
	}
	var c Command
	c.Initialized = binary.LittleEndian.Uint32(data[0:])
	c.CmdReg = binary.LittleEndian.Uint32(data[4:])
	c.Length = binary.LittleEndian.Uint32(data[8:])
	copy(c.Cmds[:], data[12:20])
	if !c.Valid() {
		return Command{}, false
	}
	return c, true
}
