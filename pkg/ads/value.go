package ads

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// StringOrBool holds either a string or a boolean. The zero value is false.
type StringOrBool struct {
	str      string
	isString bool
	b        bool
}

// String returns a StringOrBool holding s.
func String(s string) StringOrBool { return StringOrBool{str: s, isString: true} }

// Bool returns a StringOrBool holding b.
func Bool(b bool) StringOrBool { return StringOrBool{b: b} }

// IsString reports whether v holds a string.
func (v StringOrBool) IsString() bool { return v.isString }

// Str returns the held string, or "" for booleans.
func (v StringOrBool) Str() string { return v.str }

// Truthy reports whether v is a non-empty string or true.
func (v StringOrBool) Truthy() bool {
	if v.isString {
		return v.str != ""
	}
	return v.b
}

// Or returns the held string if it is non-empty and fallback otherwise.
// A boolean never names an ad unit, so true falls back as well: GPT.Zone
// is a plain string and there is no string form of true to send.
func (v StringOrBool) Or(fallback string) string {
	if v.isString && v.str != "" {
		return v.str
	}
	return fallback
}

// Value returns the held string or bool.
func (v StringOrBool) Value() any {
	if v.isString {
		return v.str
	}
	return v.b
}

func (v StringOrBool) String() string {
	if v.isString {
		return v.str
	}
	return strconv.FormatBool(v.b)
}

// MarshalYAML implements yaml.Marshaler.
func (v StringOrBool) MarshalYAML() (any, error) {
	return v.Value(), nil
}

// UnmarshalYAML accepts a boolean or any other scalar, which is kept as a string.
func (v *StringOrBool) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("ads: line %d: expected string or bool", node.Line)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	}
	*v = String(node.Value)
	return nil
}
