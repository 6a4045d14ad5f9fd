package gtx8

import (
	"bytes"
	"errors"
	"testing"

	"touchcore-go/errcode"
)

func TestNewRequiresExactlyOneBus(t *testing.T) {
	RegisterDefaults()
	board := testBoard()

	if _, err := New(Config{IC: ICNormandy, Board: board, ResetPin: &fakePin{}}); err == nil {
		t.Error("New accepted a config with no bus")
	}
	if _, err := New(Config{
		IC: ICNormandy, Board: board,
		I2C: &fakeChip{}, SPI: &fakeSPIChip{},
		ResetPin: &fakePin{},
	}); err == nil {
		t.Error("New accepted a config with both buses")
	}
	if _, err := New(Config{IC: ICType(9), Board: board, I2C: &fakeChip{}}); err == nil {
		t.Error("New accepted an unknown ic type")
	}
}

func TestNewSelectsVariantRegisterMap(t *testing.T) {
	n := newTestDevice(ICNormandy, &fakeChip{})
	if n.Reg().Coor != 0x4100 {
		t.Errorf("normandy coor = %#x", n.Reg().Coor)
	}
	if n.Reg().HasFWRequest() || n.Reg().HasProximity() {
		t.Error("normandy advertises yellowstone capabilities")
	}
	if n.Name() != "gtx8-normandy" {
		t.Errorf("default name = %q", n.Name())
	}

	y := newTestDevice(ICYellowstone, &fakeChip{})
	if y.Reg().Coor != 0x4180 {
		t.Errorf("yellowstone coor = %#x", y.Reg().Coor)
	}
	if !y.Reg().HasFWRequest() || !y.Reg().HasProximity() {
		t.Error("yellowstone capabilities missing")
	}
}

func TestReadVersionNormandy(t *testing.T) {
	f := &fakeChip{}
	pid := seedVersionNormandy(f)
	d := newTestDevice(ICNormandy, f)

	var v VersionInfo
	if err := d.Ops().ReadVersion(&v); err != nil {
		t.Fatalf("ReadVersion: %v", err)
	}
	if !v.Valid || v.PID != pid {
		t.Errorf("pid = %q (valid=%v), want %q", v.PID, v.Valid, pid)
	}
	if !bytes.Equal(v.VID, []byte{1, 2, 3, 4}) {
		t.Errorf("vid = % x", v.VID)
	}
	if v.SensorID != 0x05 {
		t.Errorf("sensor id = %#x, want 0x05 (raw masked)", v.SensorID)
	}
	if v.CID != 0x42 {
		t.Errorf("cid = %#x", v.CID)
	}
}

func TestReadVersionYellowstone(t *testing.T) {
	f := &fakeChip{}
	pid := seedVersionYellowstone(f)
	d := newTestDevice(ICYellowstone, f)

	var v VersionInfo
	if err := d.Ops().ReadVersion(&v); err != nil {
		t.Fatalf("ReadVersion: %v", err)
	}
	if v.PID != pid || v.SensorID != 0x03 || v.CID != 0x07 {
		t.Errorf("version = %+v", v)
	}
}

func TestReadVersionChecksumMismatch(t *testing.T) {
	f := &fakeChip{}
	seedVersionNormandy(f)
	d := newTestDevice(ICNormandy, f)

	// Corrupt one byte inside the block.
	f.set(d.Reg().PID, 'X')

	var v VersionInfo
	err := d.Ops().ReadVersion(&v)
	if !errors.Is(err, errcode.Checksum) {
		t.Fatalf("error = %v, want errcode.Checksum", err)
	}
}

func TestDevConfirmRejectsEmptyChip(t *testing.T) {
	// An all-zero register file folds to a zero checksum, so identity
	// confirmation must additionally require a printable product id.
	f := &fakeChip{}
	d := newTestDevice(ICNormandy, f)

	err := d.Ops().DevConfirm()
	if !errors.Is(err, errcode.ProbeFailed) {
		t.Fatalf("error = %v, want errcode.ProbeFailed", err)
	}
}

func TestInitSequence(t *testing.T) {
	f := &fakeChip{}
	seedVersionNormandy(f)
	pin := &fakePin{level: true}
	RegisterDefaults()
	d, err := New(Config{IC: ICNormandy, Board: testBoard(), I2C: f, ResetPin: pin})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := d.Ops().Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := d.Version(); !got.Valid || got.PID != "GT96" {
		t.Errorf("version not cached: %+v", got)
	}
	pin.mu.Lock()
	toggles := pin.toggle
	pin.mu.Unlock()
	if toggles < 2 {
		t.Errorf("reset line toggled %d times, want a full low/high cycle", toggles)
	}
	if f.get(d.Reg().ESD) != esdTickData {
		t.Error("esd sentinel not seeded after init")
	}
}

func TestInitFailsWithoutResetPin(t *testing.T) {
	f := &fakeChip{}
	seedVersionNormandy(f)
	RegisterDefaults()
	d, err := New(Config{IC: ICNormandy, Board: testBoard(), I2C: f})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Ops().Init(); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("error = %v, want errcode.Unsupported", err)
	}
}

func TestCheckHW(t *testing.T) {
	f := &fakeChip{}
	d := newTestDevice(ICNormandy, f)
	esd := d.Reg().ESD

	// Firmware consumed the sentinel: healthy, sentinel rewritten.
	f.set(esd, 0x00)
	if err := d.Ops().CheckHW(); err != nil {
		t.Fatalf("CheckHW on healthy chip: %v", err)
	}
	if f.get(esd) != esdTickData {
		t.Error("sentinel not rewritten after healthy check")
	}

	// Sentinel still present: the firmware stalled.
	if err := d.Ops().CheckHW(); !errors.Is(err, errcode.Timeout) {
		t.Fatalf("error = %v, want errcode.Timeout", err)
	}
}

func TestSuspendSendsSleepCommand(t *testing.T) {
	f := &fakeChip{}
	d := newTestDevice(ICNormandy, f)

	if err := d.Ops().Suspend(); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cmdLog) != 1 || !bytes.Equal(f.cmdLog[0], []byte{CmdSleep}) {
		t.Fatalf("command log = %v, want one sleep command", f.cmdLog)
	}
}

func TestResumeResetsAndReseedsESD(t *testing.T) {
	f := &fakeChip{}
	pin := &fakePin{level: true}
	RegisterDefaults()
	d, err := New(Config{IC: ICNormandy, Board: testBoard(), I2C: f, ResetPin: pin})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	f.set(d.Reg().ESD, 0x00)
	if err := d.Ops().Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	pin.mu.Lock()
	toggles := pin.toggle
	pin.mu.Unlock()
	if toggles < 2 {
		t.Errorf("resume did not pulse the reset line (%d toggles)", toggles)
	}
	if f.get(d.Reg().ESD) != esdTickData {
		t.Error("esd sentinel not reseeded after resume")
	}
}

func TestRegisterOpsDuplicatePanics(t *testing.T) {
	RegisterDefaults()
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration did not panic")
		}
	}()
	RegisterOps(ICNormandy, newNormandyOps)
}
