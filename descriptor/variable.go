package descriptor

import (
	"github.com/pdef/pdef-go/generic"
)

// VariableDescriptor is an unbound type variable. Values pass through
// unchanged and must already be generic values.
type VariableDescriptor struct {
	name string
}

// NewVariable returns a type variable descriptor.
func NewVariable(name string) *VariableDescriptor {
	return &VariableDescriptor{name: name}
}

// Kind returns KindVariable.
func (d *VariableDescriptor) Kind() Kind { return KindVariable }

// Name returns the variable name.
func (d *VariableDescriptor) Name() string { return d.name }

func (*VariableDescriptor) sealed() {}

// ToGeneric returns v if it is a generic value.
func (d *VariableDescriptor) ToGeneric(v any) (any, error) {
	if generic.KindOf(v) == generic.KindInvalid {
		return nil, convErr(d, v, nil)
	}
	return v, nil
}

// FromGeneric returns v unchanged.
func (d *VariableDescriptor) FromGeneric(v any) (any, error) {
	return d.ToGeneric(v)
}

// ParseText decodes a JSON-shaped literal.
func (d *VariableDescriptor) ParseText(s string) (any, error) { return parseLiteral(d, s) }

// FormatText renders v as a JSON-shaped literal.
func (d *VariableDescriptor) FormatText(v any) (string, error) { return formatLiteral(d, v) }
