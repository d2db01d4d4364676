package openrazer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/polychromatic/polychromatic-core/internal/backend"
)

// effectDef describes one hardware effect in the fixed priority order.
// The order matters twice: it fixes the option ordering presented to the
// user, and several effects share a persisted effect-name namespace
// disambiguated by parameter suffix ("breathSingle" vs "breathDual").
type effectDef struct {
	uid     string
	label   string
	icon    string
	base    string
	colours int

	// capSuffixes gate the effect: present when the zone has any of
	// them. Nil means gate on the uid itself.
	capSuffixes []string

	// params builds the parameter list for this handle and zone, nil
	// for parameterless effects.
	params func(h DeviceHandle, zone string) []*backend.Parameter

	// request builds the daemon effect name and payload for the chosen
	// parameter. Nil means the base name with an empty payload.
	request func(param string, colours [][3]uint8) (string, EffectRequest)

	// paramFromState recovers the selected parameter from a persisted
	// record, "" when indeterminate.
	paramFromState func(st ZoneState) string

	// coloursFor returns the colour count for a parameter, falling back
	// to the def's colour count when nil.
	coloursFor func(param string) int
}

var effectDefs = []effectDef{
	{
		uid: "none", label: "None", icon: "options/none.svg", base: "none",
	},
	{
		uid: "spectrum", label: "Spectrum", icon: "options/spectrum.svg", base: "spectrum",
	},
	{
		uid: "wave", label: "Wave", icon: "options/wave.svg", base: "wave",
		params: func(DeviceHandle, string) []*backend.Parameter {
			return []*backend.Parameter{
				{Data: "1", Label: "Right", Icon: "params/right.svg", Default: true},
				{Data: "2", Label: "Left", Icon: "params/left.svg"},
			}
		},
		request: func(param string, _ [][3]uint8) (string, EffectRequest) {
			dir, _ := strconv.Atoi(param)
			return "wave", EffectRequest{Direction: dir}
		},
		paramFromState: func(st ZoneState) string {
			return strconv.Itoa(st.WaveDirection)
		},
	},
	{
		uid: "ripple", label: "Ripple", icon: "options/ripple.svg", base: "ripple",
		capSuffixes: []string{"ripple", "ripple_random"},
		params: func(h DeviceHandle, zone string) []*backend.Parameter {
			var params []*backend.Parameter
			if h.Has(zoneCapability(zone, "ripple")) {
				params = append(params, &backend.Parameter{
					Data: "single", Label: "Single Colour", Icon: "params/single.svg",
					Default: true, ColoursRequired: 1,
				})
			}
			if h.Has(zoneCapability(zone, "ripple_random")) {
				params = append(params, &backend.Parameter{
					Data: "random", Label: "Random", Icon: "params/random.svg",
				})
			}
			return params
		},
		request: func(param string, colours [][3]uint8) (string, EffectRequest) {
			if param == "random" {
				return "rippleRandomColour", EffectRequest{}
			}
			return "ripple", EffectRequest{Colours: colours}
		},
		paramFromState: func(st ZoneState) string {
			if st.Effect == "rippleRandomColour" {
				return "random"
			}
			return "single"
		},
		coloursFor: func(param string) int {
			if param == "random" {
				return 0
			}
			return 1
		},
	},
	{
		uid: "reactive", label: "Reactive", icon: "options/reactive.svg", base: "reactive",
		colours: 1,
		params: func(DeviceHandle, string) []*backend.Parameter {
			return []*backend.Parameter{
				{Data: "1", Label: "Fast", ColoursRequired: 1},
				{Data: "2", Label: "Medium", ColoursRequired: 1, Default: true},
				{Data: "3", Label: "Slow", ColoursRequired: 1},
				{Data: "4", Label: "Very Slow", ColoursRequired: 1},
			}
		},
		request: func(param string, colours [][3]uint8) (string, EffectRequest) {
			speed, _ := strconv.Atoi(param)
			return "reactive", EffectRequest{Colours: colours, Speed: speed}
		},
		paramFromState: func(st ZoneState) string {
			return strconv.Itoa(st.Speed)
		},
	},
	{
		uid: "blinking", label: "Blinking", icon: "options/blinking.svg", base: "blinking",
		colours: 1,
		request: func(_ string, colours [][3]uint8) (string, EffectRequest) {
			return "blinking", EffectRequest{Colours: colours}
		},
	},
	{
		uid: "static", label: "Static", icon: "options/static.svg", base: "static",
		colours: 1,
		request: func(_ string, colours [][3]uint8) (string, EffectRequest) {
			return "static", EffectRequest{Colours: colours}
		},
	},
	{
		uid: "breath", label: "Breath", icon: "options/breath.svg", base: "breath",
		capSuffixes:    []string{"breath_random", "breath_single", "breath_dual", "breath_triple"},
		params:         variantParams("breath"),
		request:        variantRequest("breath"),
		paramFromState: variantParamFromState("breath"),
		coloursFor:     variantColours,
	},
	{
		uid: "starlight", label: "Starlight", icon: "options/starlight.svg", base: "starlight",
		capSuffixes:    []string{"starlight_random", "starlight_single", "starlight_dual"},
		params:         variantParams("starlight"),
		request:        variantRequest("starlight"),
		paramFromState: variantParamFromState("starlight"),
		coloursFor:     variantColours,
	},
	{
		uid: "pulsate", label: "Pulsate", icon: "options/pulsate.svg", base: "pulsate",
	},
}

// colour-variant plumbing shared by breath and starlight, whose daemon
// namespace is "<base><Variant>" (breathSingle, starlightDual, ...).

var variantOrder = []struct {
	data    string
	label   string
	colours int
}{
	{"random", "Random", 0},
	{"single", "Single Colour", 1},
	{"dual", "Dual Colours", 2},
	{"triple", "Triple Colours", 3},
}

func variantParams(base string) func(DeviceHandle, string) []*backend.Parameter {
	return func(h DeviceHandle, zone string) []*backend.Parameter {
		var params []*backend.Parameter
		for _, v := range variantOrder {
			if !h.Has(zoneCapability(zone, base+"_"+v.data)) {
				continue
			}
			params = append(params, &backend.Parameter{
				Data:            v.data,
				Label:           v.label,
				Icon:            "params/" + v.data + ".svg",
				Default:         len(params) == 0,
				ColoursRequired: v.colours,
			})
		}
		return params
	}
}

func variantRequest(base string) func(string, [][3]uint8) (string, EffectRequest) {
	return func(param string, colours [][3]uint8) (string, EffectRequest) {
		return base + titleCase(param), EffectRequest{Colours: colours}
	}
}

func variantParamFromState(base string) func(ZoneState) string {
	return func(st ZoneState) string {
		return strings.ToLower(strings.TrimPrefix(st.Effect, base))
	}
}

func variantColours(param string) int {
	for _, v := range variantOrder {
		if v.data == param {
			return v.colours
		}
	}
	return 0
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// matchesEffect reports whether a persisted effect name belongs to this
// def's namespace: an exact match of the base, or the base followed by a
// capitalized variant suffix.
func matchesEffect(def effectDef, effect string) bool {
	if effect == def.base {
		return true
	}
	if !strings.HasPrefix(effect, def.base) {
		return false
	}
	rest := effect[len(def.base):]
	return rest != "" && rest[0] >= 'A' && rest[0] <= 'Z'
}

// effectSupported reports whether a zone offers the effect. Legacy
// sysfs devices get Pulsate and Static on the main zone regardless of
// what the daemon advertises.
func effectSupported(h DeviceHandle, zone string, def effectDef) bool {
	suffixes := def.capSuffixes
	if suffixes == nil {
		suffixes = []string{def.uid}
	}
	for _, suffix := range suffixes {
		if h.Has(zoneCapability(zone, suffix)) {
			return true
		}
	}
	if zone == "main" && usesLegacySysfs(h, def.uid) {
		return true
	}
	return false
}

// buildEffectOption constructs one effect option with its apply/refresh
// dispatchers capturing the handle, zone and persistence store.
func (a *Adapter) buildEffectOption(h DeviceHandle, zone string, store zoneStore, def effectDef) *backend.Option {
	opt := &backend.Option{
		Kind:            backend.OptionEffect,
		UID:             def.uid,
		Label:           def.label,
		Icon:            def.icon,
		ColoursRequired: def.colours,
	}
	if def.params != nil {
		opt.Parameters = def.params(h, zone)
	}

	// Seed colours from the persisted record so "reapply with last
	// colours" works before the first refresh.
	if st := store.state(); len(st.Colours) > 0 {
		opt.Colours = append([]string(nil), st.Colours...)
	}

	apply := func(_ context.Context, arg backend.Argument) error {
		ea := arg.(backend.EffectArgument)
		param := ea.Param
		if param == "" {
			if p := opt.DefaultParameter(); p != nil {
				param = p.Data
			}
		}

		required := def.colours
		if def.coloursFor != nil {
			required = def.coloursFor(param)
		}
		colours, err := parseColours(opt.Colours, required)
		if err != nil {
			return err
		}

		name := def.base
		req := EffectRequest{}
		if def.request != nil {
			name, req = def.request(param, colours)
		}

		if usesLegacySysfs(h, def.uid) {
			if err := writeLegacySysfs(a.sysfsRoot, h, def.uid); err != nil {
				return err
			}
		} else if err := h.SetEffect(zone, name, req); err != nil {
			return a.translate("applying "+def.uid, h, err)
		}

		store.record(ZoneState{
			Effect:        name,
			Colours:       append([]string(nil), opt.Colours[:required]...),
			Speed:         req.Speed,
			WaveDirection: req.Direction,
		})

		opt.Active = true
		for _, p := range opt.Parameters {
			p.Active = p.Data == param
		}
		return nil
	}

	refresh := func(_ context.Context, o *backend.Option) error {
		st := store.state()
		o.Active = st.Effect != "" && matchesEffect(def, st.Effect)
		if !o.Active {
			for _, p := range o.Parameters {
				p.Active = false
			}
			return nil
		}
		if def.paramFromState != nil {
			param := def.paramFromState(st)
			for _, p := range o.Parameters {
				p.Active = p.Data == param
			}
		}
		if len(st.Colours) > 0 {
			o.Colours = append([]string(nil), st.Colours...)
		}
		return nil
	}

	opt.Bind(apply, refresh)
	return opt
}

// buildBrightnessOption returns the zone's brightness control: a
// percentage slider where the hardware supports levels, an on/off
// toggle where it only supports "active", or nil.
func (a *Adapter) buildBrightnessOption(h DeviceHandle, zone string) *backend.Option {
	switch {
	case h.Has(brightnessCapability(zone)):
		opt := &backend.Option{
			Kind:   backend.OptionSlider,
			UID:    "brightness",
			Label:  "Brightness",
			Icon:   "options/brightness.svg",
			Min:    0,
			Max:    100,
			Step:   5,
			Suffix: "%",
		}
		opt.Bind(
			func(_ context.Context, arg backend.Argument) error {
				v := arg.(backend.SliderArgument).Value
				if err := h.SetBrightness(zone, v); err != nil {
					return a.translate("setting brightness", h, err)
				}
				opt.Value = v
				return nil
			},
			func(_ context.Context, o *backend.Option) error {
				v, err := h.Brightness(zone)
				if err != nil {
					return a.translate("reading brightness", h, err)
				}
				o.Value = v
				return nil
			},
		)
		return opt

	case h.Has(zoneCapability(zone, "active")):
		opt := &backend.Option{
			Kind:  backend.OptionToggle,
			UID:   "brightness",
			Label: "Brightness",
			Icon:  "options/brightness.svg",
		}
		opt.Bind(
			func(_ context.Context, arg backend.Argument) error {
				enabled := arg.(backend.ToggleArgument).Enabled
				if err := h.SetActive(zone, enabled); err != nil {
					return a.translate("toggling zone", h, err)
				}
				opt.Active = enabled
				return nil
			},
			func(_ context.Context, o *backend.Option) error {
				on, err := h.Active(zone)
				if err != nil {
					return a.translate("reading zone state", h, err)
				}
				o.Active = on
				return nil
			},
		)
		return opt
	}
	return nil
}

// buildDeviceOptions returns the non-lighting options that live on the
// main zone: game mode, poll rate, idle time, low battery threshold.
func (a *Adapter) buildDeviceOptions(h DeviceHandle) []*backend.Option {
	var opts []*backend.Option

	if h.Has("game_mode_led") {
		opt := &backend.Option{
			Kind:  backend.OptionToggle,
			UID:   "game_mode",
			Label: "Game Mode",
			Icon:  "options/game-mode.svg",
		}
		opt.Bind(
			func(_ context.Context, arg backend.Argument) error {
				enabled := arg.(backend.ToggleArgument).Enabled
				if err := h.SetGameMode(enabled); err != nil {
					return a.translate("setting game mode", h, err)
				}
				opt.Active = enabled
				return nil
			},
			func(_ context.Context, o *backend.Option) error {
				on, err := h.GameMode()
				if err != nil {
					return a.translate("reading game mode", h, err)
				}
				o.Active = on
				return nil
			},
		)
		opts = append(opts, opt)
	}

	if h.Has("poll_rate") {
		opt := &backend.Option{
			Kind:  backend.OptionMultipleChoice,
			UID:   "poll_rate",
			Label: "Poll Rate",
			Icon:  "options/poll-rate.svg",
		}
		for _, rate := range h.SupportedPollRates() {
			opt.Parameters = append(opt.Parameters, &backend.Parameter{
				Data:    strconv.Itoa(rate),
				Label:   fmt.Sprintf("%d Hz", rate),
				Default: rate == 500,
			})
		}
		opt.Bind(
			func(_ context.Context, arg backend.Argument) error {
				rate, _ := strconv.Atoi(arg.(backend.ChoiceArgument).Data)
				if err := h.SetPollRate(rate); err != nil {
					return a.translate("setting poll rate", h, err)
				}
				for _, p := range opt.Parameters {
					p.Active = p.Data == arg.(backend.ChoiceArgument).Data
				}
				return nil
			},
			func(_ context.Context, o *backend.Option) error {
				rate, err := h.PollRate()
				if err != nil {
					return a.translate("reading poll rate", h, err)
				}
				data := strconv.Itoa(rate)
				for _, p := range o.Parameters {
					p.Active = p.Data == data
				}
				return nil
			},
		)
		opts = append(opts, opt)
	}

	if h.Has("set_idle_time") {
		opt := &backend.Option{
			Kind:   backend.OptionSlider,
			UID:    "idle_time",
			Label:  "Sleep mode after",
			Icon:   "options/idle-time.svg",
			Min:    60,
			Max:    900,
			Step:   60,
			Suffix: "s",
		}
		opt.Bind(
			func(_ context.Context, arg backend.Argument) error {
				v := arg.(backend.SliderArgument).Value
				if err := h.SetIdleTime(v); err != nil {
					return a.translate("setting idle time", h, err)
				}
				opt.Value = v
				return nil
			},
			func(_ context.Context, o *backend.Option) error {
				v, err := h.IdleTime()
				if err != nil {
					return a.translate("reading idle time", h, err)
				}
				o.Value = v
				return nil
			},
		)
		opts = append(opts, opt)
	}

	if h.Has("set_low_battery_threshold") {
		opt := &backend.Option{
			Kind:   backend.OptionSlider,
			UID:    "low_battery_threshold",
			Label:  "Low Battery Warning",
			Icon:   "options/battery.svg",
			Min:    1,
			Max:    100,
			Step:   1,
			Suffix: "%",
		}
		opt.Bind(
			func(_ context.Context, arg backend.Argument) error {
				v := arg.(backend.SliderArgument).Value
				if err := h.SetLowBatteryThreshold(v); err != nil {
					return a.translate("setting low battery threshold", h, err)
				}
				opt.Value = v
				return nil
			},
			func(_ context.Context, o *backend.Option) error {
				v, err := h.LowBatteryThreshold()
				if err != nil {
					return a.translate("reading low battery threshold", h, err)
				}
				o.Value = v
				return nil
			},
		)
		opts = append(opts, opt)
	}

	return opts
}

// parseColours converts the first n "#RRGGBB" strings to RGB triplets.
func parseColours(colours []string, n int) ([][3]uint8, error) {
	if len(colours) < n {
		return nil, fmt.Errorf("%w: have %d, need %d", backend.ErrMissingColours, len(colours), n)
	}
	out := make([][3]uint8, 0, n)
	for _, hex := range colours[:n] {
		rgb, err := parseHexColour(hex)
		if err != nil {
			return nil, err
		}
		out = append(out, rgb)
	}
	return out, nil
}

func parseHexColour(hex string) ([3]uint8, error) {
	var rgb [3]uint8
	if len(hex) != 7 || hex[0] != '#' {
		return rgb, fmt.Errorf("openrazer: malformed colour %q", hex)
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return rgb, fmt.Errorf("openrazer: malformed colour %q: %w", hex, err)
		}
		rgb[i] = uint8(v)
	}
	return rgb, nil
}
