package descriptor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pdef/pdef-go/generic"
)

// PrimitiveDescriptor describes a built-in scalar type.
// Primitives are always linked and are shared package-level values.
type PrimitiveDescriptor struct {
	kind Kind
}

// Built-in primitive descriptors.
var (
	Bool     = &PrimitiveDescriptor{kind: KindBool}
	Int16    = &PrimitiveDescriptor{kind: KindInt16}
	Int32    = &PrimitiveDescriptor{kind: KindInt32}
	Int64    = &PrimitiveDescriptor{kind: KindInt64}
	Float    = &PrimitiveDescriptor{kind: KindFloat}
	Double   = &PrimitiveDescriptor{kind: KindDouble}
	String   = &PrimitiveDescriptor{kind: KindString}
	Datetime = &PrimitiveDescriptor{kind: KindDatetime}
	Void     = &PrimitiveDescriptor{kind: KindVoid}
)

// Kind returns the primitive kind.
func (d *PrimitiveDescriptor) Kind() Kind { return d.kind }

// Name returns the lowercase primitive name.
func (d *PrimitiveDescriptor) Name() string { return strings.ToLower(d.kind.String()) }

func (*PrimitiveDescriptor) sealed() {}

var errEmptyText = errors.New("empty text")

// datetime layouts accepted by ParseText, most specific first.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ToGeneric converts a native scalar. Datetimes become RFC 3339 strings and
// the zero time converts to nil.
func (d *PrimitiveDescriptor) ToGeneric(v any) (any, error) {
	if isNil(v) || d.kind == KindVoid {
		return nil, nil
	}

	switch d.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return b, nil
	case KindInt16, KindInt32, KindInt64:
		i, ok := nativeInt(v)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return d.narrow(i, v)
	case KindFloat:
		f, ok := nativeFloat(v)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return d.narrowFloat(f, v)
	case KindDouble:
		f, ok := nativeFloat(v)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return f, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return s, nil
	case KindDatetime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		if t.IsZero() {
			return nil, nil
		}
		return formatTime(t), nil
	}
	return nil, convErr(d, v, nil)
}

// FromGeneric converts a generic scalar to its native type.
// Strings are accepted for every primitive and parsed as text.
func (d *PrimitiveDescriptor) FromGeneric(v any) (any, error) {
	if v == nil || d.kind == KindVoid {
		return nil, nil
	}
	if s, ok := v.(string); ok && d.kind != KindString {
		return d.ParseText(s)
	}

	switch d.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return b, nil
	case KindInt16, KindInt32, KindInt64:
		i, ok := generic.AsInt64(v)
		if !ok {
			f, isFloat := v.(float64)
			if !isFloat || f != math.Trunc(f) || f >= 1<<63 || f < math.MinInt64 {
				return nil, convErr(d, v, nil)
			}
			i = int64(f)
		}
		return d.narrow(i, v)
	case KindFloat:
		f, ok := generic.AsFloat64(v)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return d.narrowFloat(f, v)
	case KindDouble:
		f, ok := generic.AsFloat64(v)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return f, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, convErr(d, v, nil)
		}
		return s, nil
	case KindDatetime:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
		return nil, convErr(d, v, nil)
	}
	return nil, convErr(d, v, nil)
}

// ParseText parses the locale-independent text form of a primitive.
// Booleans accept "1", "0", "true" and "false" in any case.
func (d *PrimitiveDescriptor) ParseText(s string) (any, error) {
	switch d.kind {
	case KindVoid:
		return nil, nil
	case KindString:
		return s, nil
	case KindBool:
		switch strings.ToLower(s) {
		case "1", "true":
			return true, nil
		case "0", "false":
			return false, nil
		}
		return nil, convErr(d, s, fmt.Errorf("invalid boolean %q", s))
	case KindInt16:
		i, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return nil, convErr(d, s, err)
		}
		return int16(i), nil
	case KindInt32:
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, convErr(d, s, err)
		}
		return int32(i), nil
	case KindInt64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, convErr(d, s, err)
		}
		return i, nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, convErr(d, s, err)
		}
		return float32(f), nil
	case KindDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, convErr(d, s, err)
		}
		return f, nil
	case KindDatetime:
		if s == "" {
			return nil, convErr(d, s, errEmptyText)
		}
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, convErr(d, s, fmt.Errorf("invalid datetime %q", s))
	}
	return nil, convErr(d, s, nil)
}

// FormatText renders a native scalar in its text form.
func (d *PrimitiveDescriptor) FormatText(v any) (string, error) {
	g, err := d.ToGeneric(v)
	if err != nil || g == nil {
		return "", err
	}

	switch g := g.(type) {
	case bool:
		return strconv.FormatBool(g), nil
	case int16:
		return strconv.FormatInt(int64(g), 10), nil
	case int32:
		return strconv.FormatInt(int64(g), 10), nil
	case int64:
		return strconv.FormatInt(g, 10), nil
	case float32:
		return strconv.FormatFloat(float64(g), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(g, 'g', -1, 64), nil
	case string:
		return g, nil
	}
	return "", convErr(d, v, nil)
}

func (d *PrimitiveDescriptor) narrow(i int64, orig any) (any, error) {
	switch d.kind {
	case KindInt16:
		if i < math.MinInt16 || i > math.MaxInt16 {
			return nil, convErr(d, orig, errors.New("value out of range"))
		}
		return int16(i), nil
	case KindInt32:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, convErr(d, orig, errors.New("value out of range"))
		}
		return int32(i), nil
	}
	return i, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nativeInt(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}

// narrowFloat rejects finite values that overflow float32.
func (d *PrimitiveDescriptor) narrowFloat(f float64, orig any) (any, error) {
	if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return nil, convErr(d, orig, errors.New("value out of range"))
	}
	return float32(f), nil
}

func nativeFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if i, ok := nativeInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
