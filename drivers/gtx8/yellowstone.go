package gtx8

// yellowstoneOps drives the yellowstone variant: pen-capable layout with
// firmware-request and proximity registers, frames sealed with a trailing
// big-endian 16-bit sum of the preceding bytes.
type yellowstoneOps struct {
	ops
}

func newYellowstoneOps(d *Device) HardwareOps {
	return &yellowstoneOps{ops{d: d}}
}

func yellowstoneValid(buf []byte) bool {
	return ChecksumU8YS(buf) == 0
}

func (o *yellowstoneOps) Init() error {
	if err := o.Reset(); err != nil {
		return err
	}
	if err := o.DevConfirm(); err != nil {
		return err
	}
	if err := o.ReadVersion(&o.d.version); err != nil {
		return err
	}
	return o.seedESD()
}

func (o *yellowstoneOps) DevConfirm() error {
	return o.confirm(yellowstoneValid)
}

func (o *yellowstoneOps) ReadVersion(v *VersionInfo) error {
	return o.readVersionBlock(yellowstoneValid, v)
}

func (o *yellowstoneOps) DecodeEvent(ev *TouchEvent) error {
	return o.decodeEvent(2, yellowstoneValid, true, ev)
}

func (o *yellowstoneOps) Resume() error {
	return o.resume()
}
