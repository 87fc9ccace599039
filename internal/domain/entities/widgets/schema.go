package widgets

import (
	"fmt"
	"strconv"
)

// Kind is the value type of a property.
type Kind string

const (
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindNumber Kind = "number"
)

// Control is the editor control used for a property.
type Control string

const (
	ControlText     Control = "text"
	ControlTextarea Control = "textarea"
	ControlColor    Control = "color"
	ControlChoice   Control = "choice"
	ControlSlider   Control = "slider"
	ControlSelect   Control = "select"
)

// Option is one entry of a select or choice control.
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// Field is one property in a widget schema.
type Field struct {
	Key     string   `yaml:"key" json:"key"`
	Label   string   `yaml:"label" json:"label"`
	Default any      `yaml:"default" json:"default"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Control Control  `yaml:"control" json:"control,omitempty"`
	Options []Option `yaml:"options" json:"options,omitempty"`
	Min     *float64 `yaml:"min" json:"min,omitempty"`
	Max     *float64 `yaml:"max" json:"max,omitempty"`
	Step    *float64 `yaml:"step" json:"step,omitempty"`
}

// normalize settles Kind and coerces Default into a string or bool.
func (f *Field) normalize() {
	switch v := f.Default.(type) {
	case bool:
		f.Kind = KindBool
	case nil:
		f.Default = ""
	case string:
	default:
		f.Default = fmt.Sprint(v)
	}
	if f.Kind == "" {
		f.Kind = KindString
	}
	if f.Label == "" {
		f.Label = f.Key
	}
}

// Coerce converts an incoming value into the field's kind. Strings are
// accepted for every kind; bools parse "true"/"false".
func (f Field) Coerce(value any) (any, bool) {
	switch f.Kind {
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, false
			}
			return b, true
		}
		return nil, false
	case KindNumber:
		switch v := value.(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int:
			return strconv.Itoa(v), true
		}
		return nil, false
	default:
		switch v := value.(type) {
		case string:
			return v, true
		case bool:
			return strconv.FormatBool(v), true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int:
			return strconv.Itoa(v), true
		}
		return nil, false
	}
}
