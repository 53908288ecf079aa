package descriptor

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindBool, "Bool"},
		{KindDatetime, "Datetime"},
		{KindMessage, "Message"},
		{KindInterface, "Interface"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}

	if !KindVoid.IsPrimitive() || KindList.IsPrimitive() {
		t.Error("IsPrimitive must be true for scalars and false for collections")
	}
}

func TestPrimitive_ParseText(t *testing.T) {
	tests := []struct {
		name    string
		d       *PrimitiveDescriptor
		text    string
		want    any
		wantErr bool
	}{
		{"bool true", Bool, "true", true, false},
		{"bool mixed case", Bool, "TruE", true, false},
		{"bool one", Bool, "1", true, false},
		{"bool zero", Bool, "0", false, false},
		{"bool invalid", Bool, "yes", nil, true},
		{"int16", Int16, "256", int16(256), false},
		{"int16 overflow", Int16, "40000", nil, true},
		{"int32 negative", Int32, "-32", int32(-32), false},
		{"int64", Int64, "9007199254740993", int64(9007199254740993), false},
		{"int32 not a number", Int32, "abc", nil, true},
		{"float", Float, "1.5", float32(1.5), false},
		{"double", Double, "-0.25", -0.25, false},
		{"string empty", String, "", "", false},
		{"string unicode", String, "Привет", "Привет", false},
		{"void", Void, "anything", nil, false},
		{"datetime empty", Datetime, "", nil, true},
		{"datetime invalid", Datetime, "yesterday", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.d.ParseText(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				var convErr *ConversionError
				if !errors.As(err, &convErr) {
					t.Errorf("expected *ConversionError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPrimitive_ParseDatetime(t *testing.T) {
	want := time.Date(2013, 11, 17, 19, 12, 0, 0, time.UTC)
	for _, text := range []string{"2013-11-17T19:12:00Z", "2013-11-17T20:12:00+01:00", "2013-11-17T19:12:00"} {
		got, err := Datetime.ParseText(text)
		if err != nil {
			t.Fatalf("ParseText(%q): %v", text, err)
		}
		if !got.(time.Time).Equal(want) {
			t.Errorf("ParseText(%q) = %v, want %v", text, got, want)
		}
	}

	got, err := Datetime.ParseText("2013-11-17")
	if err != nil {
		t.Fatal(err)
	}
	if !got.(time.Time).Equal(time.Date(2013, 11, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date-only parse = %v", got)
	}
}

func TestPrimitive_ToGeneric(t *testing.T) {
	tests := []struct {
		name    string
		d       *PrimitiveDescriptor
		in      any
		want    any
		wantErr bool
	}{
		{"nil", Int32, nil, nil, false},
		{"bool", Bool, true, true, false},
		{"int16", Int16, int16(256), int16(256), false},
		{"int16 from int", Int16, 7, int16(7), false},
		{"int16 out of range", Int16, int32(40000), nil, true},
		{"int64", Int64, int64(-1), int64(-1), false},
		{"float", Float, float32(0.5), float32(0.5), false},
		{"float overflow", Float, -1e300, nil, true},
		{"double from int", Double, int32(2), float64(2), false},
		{"string", String, "hi", "hi", false},
		{"string wrong type", String, 1, nil, true},
		{"datetime", Datetime, time.Date(2013, 11, 17, 19, 12, 0, 0, time.UTC), "2013-11-17T19:12:00Z", false},
		{"zero datetime", Datetime, time.Time{}, nil, false},
		{"void", Void, "ignored", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.d.ToGeneric(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPrimitive_FromGeneric(t *testing.T) {
	tests := []struct {
		name    string
		d       *PrimitiveDescriptor
		in      any
		want    any
		wantErr bool
	}{
		{"nil", Bool, nil, nil, false},
		{"int32 from string", Int32, "1", int32(1), false},
		{"int32 from int64", Int32, int64(5), int32(5), false},
		{"int32 from integral float", Int32, float64(3), int32(3), false},
		{"int32 from fraction", Int32, 3.5, nil, true},
		{"int16 overflow", Int16, int64(1 << 20), nil, true},
		{"int64 from float at 2^63", Int64, float64(1 << 63), nil, true},
		{"int64 from float below 2^63", Int64, float64(1 << 62), int64(1 << 62), false},
		{"float overflow", Float, 1e300, nil, true},
		{"float from max float32", Float, float64(math.MaxFloat32), float32(math.MaxFloat32), false},
		{"bool from string", Bool, "FALSE", false, false},
		{"bool from number", Bool, int64(1), nil, true},
		{"float from int", Float, int64(2), float32(2), false},
		{"double from float32", Double, float32(0.5), 0.5, false},
		{"string keeps text", String, "1", "1", false},
		{"string from number", String, int64(1), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.d.FromGeneric(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPrimitive_FormatText(t *testing.T) {
	tests := []struct {
		d    *PrimitiveDescriptor
		in   any
		want string
	}{
		{Bool, false, "false"},
		{Int16, int16(-5), "-5"},
		{Int64, int64(1) << 40, "1099511627776"},
		{Float, float32(1.5), "1.5"},
		{Double, 0.1, "0.1"},
		{String, "a b", "a b"},
		{Datetime, time.Date(2013, 11, 17, 19, 12, 0, 0, time.UTC), "2013-11-17T19:12:00Z"},
		{Int32, nil, ""},
	}
	for _, tt := range tests {
		got, err := tt.d.FormatText(tt.in)
		if err != nil {
			t.Errorf("%s.FormatText(%v): %v", tt.d.Name(), tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s.FormatText(%v) = %q, want %q", tt.d.Name(), tt.in, got, tt.want)
		}
	}
}

func TestPrimitive_TextRoundTrip(t *testing.T) {
	values := []struct {
		d *PrimitiveDescriptor
		v any
	}{
		{Bool, true},
		{Int16, int16(-32768)},
		{Int32, int32(2147483647)},
		{Int64, int64(-1)},
		{Float, float32(3.25)},
		{Double, 1e-9},
		{String, "/path?x"},
	}
	for _, tt := range values {
		text, err := tt.d.FormatText(tt.v)
		if err != nil {
			t.Fatal(err)
		}
		got, err := tt.d.ParseText(text)
		if err != nil {
			t.Fatalf("ParseText(%q): %v", text, err)
		}
		if got != tt.v {
			t.Errorf("%s round trip: got %#v, want %#v", tt.d.Name(), got, tt.v)
		}
	}
}
