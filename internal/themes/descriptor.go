package themes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Parameter keys used by the built-in generators.
const (
	ParamMonth   = "month"
	ParamDay     = "day"
	ParamWeekday = "weekday"
	ParamXth     = "xth"
	ParamWeek    = "week"
	ParamIndex   = "index"
)

// paramKeys is the serialization order of known parameters.
var paramKeys = []string{ParamMonth, ParamDay, ParamWeekday, ParamXth, ParamWeek, ParamIndex}

// Descriptor is the persisted rule for one theme: the generator that owns it
// and the parameters that generator derived from the theme's history.
//
// A descriptor only makes sense together with its generator; parameter sets
// are not interchangeable between generators. Descriptors are values and are
// never modified once created.
type Descriptor struct {
	Theme       string
	Generator   string
	Description string
	Params      map[string]int

	// Extra holds JSON fields this package does not know about, so that
	// catalogues survive a read/write cycle unchanged.
	Extra map[string]json.RawMessage
}

// newDescriptor returns the base descriptor every generator starts from.
func newDescriptor(theme, generator string) Descriptor {
	return Descriptor{
		Theme:     theme,
		Generator: generator,
		Params:    map[string]int{},
	}
}

// Param returns the integer parameter stored under key.
func (d Descriptor) Param(key string) (int, error) {
	v, ok := d.Params[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s %q is missing %q", ErrInvalidDescriptor, d.Generator, d.Theme, key)
	}
	return v, nil
}

// paramInRange returns the parameter under key, requiring min <= value <= max.
func (d Descriptor) paramInRange(key string, min, max int) (int, error) {
	v, err := d.Param(key)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, invalidParam(d, key, v)
	}
	return v, nil
}

// MarshalJSON writes the flat catalogue form:
// {"theme": ..., "generator": ..., <params>, "description": ..., <extra>}.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(raw)
		return nil
	}

	if err := write("theme", d.Theme); err != nil {
		return nil, err
	}
	if err := write("generator", d.Generator); err != nil {
		return nil, err
	}
	for _, key := range paramKeys {
		if v, ok := d.Params[key]; ok {
			if err := write(key, v); err != nil {
				return nil, err
			}
		}
	}
	if err := write("description", d.Description); err != nil {
		return nil, err
	}

	extraKeys := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		if err := write(key, d.Extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the flat catalogue form. Known parameters that are not
// integers are kept in Extra; projection then reports them as missing.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("descriptor must be a JSON object")
	}

	out := Descriptor{Params: map[string]int{}}
	for key, raw := range fields {
		switch {
		case key == "theme":
			if err := json.Unmarshal(raw, &out.Theme); err != nil {
				return fmt.Errorf("descriptor theme: %w", err)
			}
		case key == "generator":
			if err := json.Unmarshal(raw, &out.Generator); err != nil {
				return fmt.Errorf("descriptor generator: %w", err)
			}
		case key == "description":
			if err := json.Unmarshal(raw, &out.Description); err != nil {
				return fmt.Errorf("descriptor description: %w", err)
			}
		case slices.Contains(paramKeys, key):
			var v int
			if err := json.Unmarshal(raw, &v); err == nil {
				out.Params[key] = v
				continue
			}
			fallthrough
		default:
			if out.Extra == nil {
				out.Extra = map[string]json.RawMessage{}
			}
			out.Extra[key] = append(json.RawMessage(nil), raw...)
		}
	}

	*d = out
	return nil
}
