package gtx8

// normandyOps drives the normandy variant: I2C-era register layout, no pen
// or firmware-request support, frames sealed with a single byte that makes
// the 8-bit sum of the whole frame zero.
type normandyOps struct {
	ops
}

func newNormandyOps(d *Device) HardwareOps {
	return &normandyOps{ops{d: d}}
}

// normandyValid is the frame/block verdict: the trailing byte is chosen so
// the additive fold over the whole buffer is zero.
func normandyValid(buf []byte) bool {
	return ChecksumU8(buf) == 0
}

func (o *normandyOps) Init() error {
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

func (o *normandyOps) DevConfirm() error {
	return o.confirm(normandyValid)
}

func (o *normandyOps) ReadVersion(v *VersionInfo) error {
	return o.readVersionBlock(normandyValid, v)
}

func (o *normandyOps) DecodeEvent(ev *TouchEvent) error {
	return o.decodeEvent(1, normandyValid, false, ev)
}

func (o *normandyOps) Resume() error {
	return o.resume()
}
