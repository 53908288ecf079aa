// Package testfixtures provides messages, interfaces and services used by
// package tests. Types here are written the way generated code is.
package testfixtures

import (
	"time"
)

// TestEnum is a plain enumeration.
type TestEnum int32

const (
	TestEnumOne TestEnum = iota + 1
	TestEnumTwo
	TestEnumThree
)

// TestMessage exercises every data kind, including a self reference.
type TestMessage struct {
	String0   string
	Bool0     bool
	Short0    int16
	Int0      int32
	Long0     int64
	Float0    float32
	Double0   float64
	Datetime0 time.Time
	List0     []int32
	Set0      map[int32]struct{}
	Map0      map[int32]string
	Enum0     TestEnum
	Message0  *TestMessage
}

// TestForm is a form message flattened into request parameters.
type TestForm struct {
	FormString string `validate:"max=64"`
	FormList   []int32
	FormBool   bool
}

// TestException is a declared application exception.
type TestException struct {
	Text string
}

func (e *TestException) Error() string { return "test exception: " + e.Text }

// PolymorphicType discriminates the Base hierarchy.
type PolymorphicType int32

const (
	PolymorphicBase PolymorphicType = iota + 1
	PolymorphicSubtype
	PolymorphicSubtype2
	PolymorphicMultiLevelSubtype
)

// BaseMessage is implemented by every message in the Base hierarchy.
type BaseMessage interface {
	BaseFields() *Base
}

// Base is the root of a polymorphic hierarchy.
type Base struct {
	Type  PolymorphicType
	Field string
}

func (m *Base) BaseFields() *Base { return m }

// Subtype extends Base.
type Subtype struct {
	Base
	Subfield string
}

func (m *Subtype) SubtypeFields() *Subtype { return m }

type subtypeMessage interface {
	SubtypeFields() *Subtype
}

// Subtype2 extends Base.
type Subtype2 struct {
	Base
	Subfield2 string
}

// MultiLevelSubtype extends Subtype.
type MultiLevelSubtype struct {
	Subtype
	Mfield string
}
