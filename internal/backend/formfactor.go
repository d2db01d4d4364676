package backend

import "strings"

// FormFactorID is the normalized device category.
type FormFactorID string

// Form factor constants. Hardware identification strings are free-form
// vendor input, so anything unrecognized maps to FormFactorUnrecognised.
const (
	FormFactorKeyboard     FormFactorID = "keyboard"
	FormFactorKeypad       FormFactorID = "keypad"
	FormFactorMouse        FormFactorID = "mouse"
	FormFactorMousemat     FormFactorID = "mousemat"
	FormFactorHeadset      FormFactorID = "headset"
	FormFactorGPU          FormFactorID = "gpu"
	FormFactorLaptop       FormFactorID = "laptop"
	FormFactorSpeaker      FormFactorID = "speaker"
	FormFactorStand        FormFactorID = "stand"
	FormFactorDisplay      FormFactorID = "display"
	FormFactorFan          FormFactorID = "fan"
	FormFactorAccessory    FormFactorID = "accessory"
	FormFactorRAM          FormFactorID = "ram"
	FormFactorUnrecognised FormFactorID = "unrecognised"
)

// FormFactor describes a normalized device category for presentation.
type FormFactor struct {
	ID    FormFactorID
	Icon  string
	Label string
}

var formFactors = map[FormFactorID]FormFactor{
	FormFactorKeyboard:     {FormFactorKeyboard, "devices/keyboard.svg", "Keyboard"},
	FormFactorKeypad:       {FormFactorKeypad, "devices/keypad.svg", "Keypad"},
	FormFactorMouse:        {FormFactorMouse, "devices/mouse.svg", "Mouse"},
	FormFactorMousemat:     {FormFactorMousemat, "devices/mousemat.svg", "Mousemat"},
	FormFactorHeadset:      {FormFactorHeadset, "devices/headset.svg", "Headset"},
	FormFactorGPU:          {FormFactorGPU, "devices/gpu.svg", "External Graphics Enclosure"},
	FormFactorLaptop:       {FormFactorLaptop, "devices/laptop.svg", "Laptop"},
	FormFactorSpeaker:      {FormFactorSpeaker, "devices/speaker.svg", "Speaker"},
	FormFactorStand:        {FormFactorStand, "devices/stand.svg", "Stand"},
	FormFactorDisplay:      {FormFactorDisplay, "devices/display.svg", "Display"},
	FormFactorFan:          {FormFactorFan, "devices/fan.svg", "Fan"},
	FormFactorAccessory:    {FormFactorAccessory, "devices/accessory.svg", "USB Accessory"},
	FormFactorRAM:          {FormFactorRAM, "devices/ram.svg", "Memory Module"},
	FormFactorUnrecognised: {FormFactorUnrecognised, "devices/unrecognised.svg", "Unrecognised"},
}

// GetFormFactor normalizes a free-form category string into a known
// FormFactor. It is total: any input, including the empty string, yields
// a valid FormFactor, falling back to "unrecognised".
func GetFormFactor(id string) FormFactor {
	ff, ok := formFactors[FormFactorID(strings.ToLower(strings.TrimSpace(id)))]
	if !ok {
		return formFactors[FormFactorUnrecognised]
	}
	return ff
}

// AllFormFactors returns every known form factor, unrecognised last.
func AllFormFactors() []FormFactor {
	ids := []FormFactorID{
		FormFactorKeyboard, FormFactorKeypad, FormFactorMouse,
		FormFactorMousemat, FormFactorHeadset, FormFactorGPU,
		FormFactorLaptop, FormFactorSpeaker, FormFactorStand,
		FormFactorDisplay, FormFactorFan, FormFactorAccessory,
		FormFactorRAM, FormFactorUnrecognised,
	}
	all := make([]FormFactor, 0, len(ids))
	for _, id := range ids {
		all = append(all, formFactors[id])
	}
	return all
}
