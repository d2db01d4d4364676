package backend

import (
	"context"
	"fmt"
)

// OptionKind discriminates the closed set of option variants. The kind
// fixes the shape of the argument accepted by Apply.
type OptionKind string

// Option variants.
const (
	// OptionEffect is a hardware lighting effect. At most one effect per
	// zone is active at a time; argument is an optional parameter.
	OptionEffect OptionKind = "effect"

	// OptionToggle is an on/off switch (e.g. game mode).
	OptionToggle OptionKind = "toggle"

	// OptionSlider is an integer within [Min, Max] stepped by Step
	// (e.g. brightness).
	OptionSlider OptionKind = "slider"

	// OptionMultipleChoice selects exactly one parameter (e.g. poll rate).
	OptionMultipleChoice OptionKind = "multiplechoice"

	// OptionDialog presents information; applying it has no hardware
	// side effect.
	OptionDialog OptionKind = "dialog"

	// OptionButton triggers an immediate one-shot action.
	OptionButton OptionKind = "button"
)

// Parameter is a sub-choice within an option, such as an effect's
// direction or speed. Data is opaque to everything except the owning
// backend.
type Parameter struct {
	Data            string
	Label           string
	Icon            string
	Active          bool
	Default         bool
	ColoursRequired int
}

// Argument is the sealed set of apply-argument shapes. Each Option
// variant accepts exactly one concrete Argument type.
type Argument interface {
	isArgument()
}

// EffectArgument selects a parameter for an effect option. Param may be
// empty, in which case the option's default parameter is used (or none,
// for parameterless effects).
type EffectArgument struct {
	Param string
}

// ToggleArgument switches a toggle option.
type ToggleArgument struct {
	Enabled bool
}

// SliderArgument sets a slider option's value.
type SliderArgument struct {
	Value int
}

// ChoiceArgument selects one parameter of a multiple choice option by
// its Data value.
type ChoiceArgument struct {
	Data string
}

// NoArgument is the argument for dialog and button options.
type NoArgument struct{}

func (EffectArgument) isArgument() {}
func (ToggleArgument) isArgument() {}
func (SliderArgument) isArgument() {}
func (ChoiceArgument) isArgument() {}
func (NoArgument) isArgument()     {}

// ApplyFunc pushes a validated argument to the vendor. Implementations
// must be idempotent: reapplying the same argument is a supported
// recovery action.
type ApplyFunc func(ctx context.Context, arg Argument) error

// RefreshFunc re-reads the option's state from the authoritative source
// into o. It must be free of hardware side effects and must leave o
// untouched when the source is unavailable.
type RefreshFunc func(ctx context.Context, o *Option) error

// Option is one controllable capability within a zone. The variant
// fields used depend on Kind; behaviour is captured at construction by
// the owning backend via Bind.
type Option struct {
	Kind  OptionKind
	UID   string
	Label string
	Icon  string

	// Active reports whether this option is the current selection. The
	// source of truth is the vendor; the model does not defensively
	// demote sibling options.
	Active bool

	Parameters      []*Parameter
	ColoursRequired int

	// Colours are "#RRGGBB" strings. When the option is active the
	// length equals the required colour count.
	Colours []string

	// Slider fields.
	Value  int
	Min    int
	Max    int
	Step   int
	Suffix string

	// Dialog message.
	Message string

	apply   ApplyFunc
	refresh RefreshFunc
}

// Bind wires the option to its backend handlers. Backends call this once
// at construction time.
func (o *Option) Bind(apply ApplyFunc, refresh RefreshFunc) {
	o.apply = apply
	o.refresh = refresh
}

// DefaultParameter returns the parameter marked Default, falling back to
// the first parameter when none is marked. Returns nil for parameterless
// options.
func (o *Option) DefaultParameter() *Parameter {
	for _, p := range o.Parameters {
		if p.Default {
			return p
		}
	}
	if len(o.Parameters) > 0 {
		return o.Parameters[0]
	}
	return nil
}

// ActiveParameter returns the currently selected parameter, falling back
// to DefaultParameter when none is marked active.
func (o *Option) ActiveParameter() *Parameter {
	for _, p := range o.Parameters {
		if p.Active {
			return p
		}
	}
	return o.DefaultParameter()
}

// FindParameter returns the parameter with the given Data value, or nil.
func (o *Option) FindParameter(data string) *Parameter {
	for _, p := range o.Parameters {
		if p.Data == data {
			return p
		}
	}
	return nil
}

// Apply validates the argument against the option variant and pushes it
// to the backend. Failures are always surfaced; a failed apply means the
// user's intended state change did not take effect.
func (o *Option) Apply(ctx context.Context, arg Argument) error {
	if o.apply == nil {
		return ErrNotBound
	}
	if err := o.validate(arg); err != nil {
		return err
	}
	return o.apply(ctx, arg)
}

// Refresh re-reads Active, Value and Colours from the authoritative
// source. On failure the in-memory state is unchanged and the error is
// returned for the caller to surface.
func (o *Option) Refresh(ctx context.Context) error {
	if o.refresh == nil {
		return ErrNotBound
	}
	return o.refresh(ctx, o)
}

func (o *Option) validate(arg Argument) error {
	switch o.Kind {
	case OptionEffect:
		a, ok := arg.(EffectArgument)
		if !ok {
			return fmt.Errorf("%w: %s expects EffectArgument", ErrBadArgument, o.UID)
		}
		return o.validateEffect(a)

	case OptionToggle:
		if _, ok := arg.(ToggleArgument); !ok {
			return fmt.Errorf("%w: %s expects ToggleArgument", ErrBadArgument, o.UID)
		}

	case OptionSlider:
		a, ok := arg.(SliderArgument)
		if !ok {
			return fmt.Errorf("%w: %s expects SliderArgument", ErrBadArgument, o.UID)
		}
		if a.Value < o.Min || a.Value > o.Max {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, a.Value, o.Min, o.Max)
		}
		if o.Step > 1 && (a.Value-o.Min)%o.Step != 0 {
			return fmt.Errorf("%w: %d not a multiple of step %d", ErrOutOfRange, a.Value, o.Step)
		}

	case OptionMultipleChoice:
		a, ok := arg.(ChoiceArgument)
		if !ok {
			return fmt.Errorf("%w: %s expects ChoiceArgument", ErrBadArgument, o.UID)
		}
		if o.FindParameter(a.Data) == nil {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, a.Data)
		}

	case OptionDialog, OptionButton:
		if _, ok := arg.(NoArgument); !ok {
			return fmt.Errorf("%w: %s takes no argument", ErrBadArgument, o.UID)
		}

	default:
		return fmt.Errorf("%w: unknown option kind %q", ErrBadArgument, o.Kind)
	}
	return nil
}

func (o *Option) validateEffect(a EffectArgument) error {
	required := o.ColoursRequired
	if a.Param != "" {
		p := o.FindParameter(a.Param)
		if p == nil {
			return fmt.Errorf("%w: %q", ErrUnknownParameter, a.Param)
		}
		required = p.ColoursRequired
	} else if p := o.DefaultParameter(); p != nil {
		required = p.ColoursRequired
	}
	if len(o.Colours) < required {
		return fmt.Errorf("%w: have %d, need %d", ErrMissingColours, len(o.Colours), required)
	}
	return nil
}
