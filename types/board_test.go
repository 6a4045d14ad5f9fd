package types

import "testing"

func validBoardJSON() []byte {
	return []byte(`{
		"avdd_name": "vdd_ana",
		"avdd_load_ua": 20000,
		"reset_pin": 12,
		"irq_pin": 13,
		"irq_flags": "falling",
		"panel_max_x": 1080,
		"panel_max_y": 2340,
		"key_map": [158, 172],
		"esd_default_on": true
	}`)
}

func TestParseBoardConfigDefaults(t *testing.T) {
	b, err := ParseBoardConfig(validBoardJSON())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.PowerOnDelayUS != DefaultPowerOnDelayUS {
		t.Errorf("PowerOnDelayUS = %d, want default %d", b.PowerOnDelayUS, DefaultPowerOnDelayUS)
	}
	if b.ESDPeriodMS != DefaultESDPeriodMS {
		t.Errorf("ESDPeriodMS = %d, want default %d", b.ESDPeriodMS, DefaultESDPeriodMS)
	}
	if b.PanelMaxP != DefaultPanelMaxP {
		t.Errorf("PanelMaxP = %d, want default %d", b.PanelMaxP, DefaultPanelMaxP)
	}
	if !b.ESDDefaultOn {
		t.Error("ESDDefaultOn lost in decode")
	}
}

func TestParseEdge(t *testing.T) {
	cases := map[string]Edge{
		"rising":  EdgeRising,
		"both":    EdgeBoth,
		"falling": EdgeFalling,
		"":        EdgeFalling,
	}
	for in, want := range cases {
		if got := ParseEdge(in); got != want {
			t.Errorf("ParseEdge(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*BoardConfig)
	}{
		{"no regulator", func(b *BoardConfig) { b.AVDDName = "" }},
		{"no panel", func(b *BoardConfig) { b.PanelMaxX = 0 }},
		{"too many keys", func(b *BoardConfig) { b.KeyMap = []int{1, 2, 3, 4, 5} }},
		{"no pins", func(b *BoardConfig) { b.IRQPin = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseBoardConfig(validBoardJSON())
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tc.mut(&b)
			if err := b.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}
