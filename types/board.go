// Package types holds the host-facing configuration shapes for the touch
// core. BoardConfig is supplied by the hosting platform (typically decoded
// from a board description file) and is immutable once validated.
package types

import (
	"encoding/json"
	"errors"
)

// MaxTouchKeys is the largest key map a panel may declare.
const MaxTouchKeys = 4

// BoardConfig describes the board-level wiring and panel geometry of one
// touch controller.
type BoardConfig struct {
	// AVDD analog supply.
	AVDDName string `json:"avdd_name"`
	AVDDLoad uint32 `json:"avdd_load_ua,omitempty"` // regulator load in µA

	// Pin numbers in the platform's numbering scheme.
	ResetPin int `json:"reset_pin"`
	IRQPin   int `json:"irq_pin"`
	VDDPin   int `json:"vdd_pin,omitempty"`

	// IRQ trigger flags, e.g. "falling", "rising".
	IRQFlags string `json:"irq_flags,omitempty"`

	PowerOnDelayUS  uint32 `json:"power_on_delay_us,omitempty"`
	PowerOffDelayUS uint32 `json:"power_off_delay_us,omitempty"`

	// Panel geometry.
	SwapAxis  bool   `json:"swap_axis,omitempty"`
	PanelMaxX uint32 `json:"panel_max_x"`
	PanelMaxY uint32 `json:"panel_max_y"`
	PanelMaxW uint32 `json:"panel_max_w,omitempty"` // width major/minor
	PanelMaxP uint32 `json:"panel_max_p,omitempty"` // pressure

	// Touch key map (panel keys below the active area), at most 4.
	KeyMap []int `json:"key_map,omitempty"`

	// Firmware image and configuration binary names. Loading them is the
	// flasher's job; the core only carries the names.
	FWName     string `json:"fw_name,omitempty"`
	CfgBinName string `json:"cfg_bin_name,omitempty"`

	// ESD watchdog.
	ESDDefaultOn bool   `json:"esd_default_on,omitempty"`
	ESDPeriodMS  uint32 `json:"esd_period_ms,omitempty"`
}

// Defaults used when the board description leaves fields unset.
const (
	DefaultPowerOnDelayUS  = 10_000
	DefaultPowerOffDelayUS = 5_000
	DefaultESDPeriodMS     = 2_000
	DefaultPanelMaxP       = 4096
)

var (
	errNoRegulator = errors.New("board: avdd_name must be set")
	errNoPanel     = errors.New("board: panel_max_x and panel_max_y must be > 0")
	errKeyMap      = errors.New("board: key_map exceeds 4 keys")
	errPins        = errors.New("board: reset_pin and irq_pin must be set")
)

// Validate checks required fields and fills defaults in place.
func (b *BoardConfig) Validate() error {
	if b.AVDDName == "" {
		return errNoRegulator
	}
	if b.PanelMaxX == 0 || b.PanelMaxY == 0 {
		return errNoPanel
	}
	if len(b.KeyMap) > MaxTouchKeys {
		return errKeyMap
	}
	if b.ResetPin <= 0 || b.IRQPin <= 0 {
		return errPins
	}
	if b.PowerOnDelayUS == 0 {
		b.PowerOnDelayUS = DefaultPowerOnDelayUS
	}
	if b.PowerOffDelayUS == 0 {
		b.PowerOffDelayUS = DefaultPowerOffDelayUS
	}
	if b.ESDPeriodMS == 0 {
		b.ESDPeriodMS = DefaultESDPeriodMS
	}
	if b.PanelMaxP == 0 {
		b.PanelMaxP = DefaultPanelMaxP
	}
	return nil
}

// ParseBoardConfig decodes a JSON board description and validates it.
func ParseBoardConfig(data []byte) (BoardConfig, error) {
	var b BoardConfig
	if err := json.Unmarshal(data, &b); err != nil {
		return BoardConfig{}, err
	}
	if err := b.Validate(); err != nil {
		return BoardConfig{}, err
	}
	return b, nil
}
