package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var jsonNull = []byte("null")

// Coordinate is an optional degree value accepted as a JSON number or a
// numeric string. An empty string or null means absent.
type Coordinate struct {
	Value   float64
	Present bool
	Invalid bool
}

// UnmarshalJSON never fails; malformed input is flagged as Invalid so that
// validation can report the offending field by name.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	*c = Coordinate{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		c.Invalid = true
		return nil
	}

	switch v := raw.(type) {
	case float64:
		c.Value, c.Present = v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.Invalid = true
			return nil
		}
		c.Value, c.Present = f, true
	default:
		c.Invalid = true
	}
	return nil
}

// MarshalJSON writes the number or null.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Present {
		return jsonNull, nil
	}
	return json.Marshal(c.Value)
}

// Ptr returns nil when the coordinate is absent.
func (c Coordinate) Ptr() *float64 {
	if !c.Present {
		return nil
	}
	v := c.Value
	return &v
}

// NewCoordinate builds a present coordinate.
func NewCoordinate(v float64) Coordinate {
	return Coordinate{Value: v, Present: true}
}

// InRange reports whether a present coordinate lies within [-limit, limit].
func (c Coordinate) InRange(limit float64) bool {
	return c.Value >= -limit && c.Value <= limit
}

// FlexBool accepts true/false, "true"/"false" in any case, and numbers or
// numeric strings where any non-zero value is true.
type FlexBool struct {
	Value   bool
	Present bool
	Invalid bool
}

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	*b = FlexBool{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		b.Invalid = true
		return nil
	}

	switch v := raw.(type) {
	case bool:
		b.Value, b.Present = v, true
	case float64:
		b.Value, b.Present = v != 0, true
	case string:
		s := strings.TrimSpace(v)
		switch strings.ToLower(s) {
		case "true":
			b.Value, b.Present = true, true
		case "false":
			b.Value, b.Present = false, true
		default:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				b.Invalid = true
				return nil
			}
			b.Value, b.Present = f != 0, true
		}
	default:
		b.Invalid = true
	}
	return nil
}

// Ptr returns nil when the flag was not supplied.
func (b FlexBool) Ptr() *bool {
	if !b.Present {
		return nil
	}
	v := b.Value
	return &v
}
