package pdef

import (
	"net/url"
	"strings"

	"github.com/pdef/pdef-go/descriptor"
	"github.com/pdef/pdef-go/generic"
)

// ParseRequest parses a REST request into an invocation chain against
// iface. It never invokes service code. Failures are *Error values with a
// routing code.
//
// The path is split on single slashes after discarding one leading slash.
// A segment names a method of the current interface or, when no method
// matches, selects its index method; a non-empty segment consumed by an
// index method is pushed back so the method can read it as an argument.
func ParseRequest(iface *descriptor.InterfaceDescriptor, req RestRequest) (*Invocation, error) {
	parts := strings.Split(strings.TrimPrefix(req.Path, "/"), "/")

	inv := Root()
	current := iface
	for len(parts) > 0 {
		if current == nil {
			return nil, MethodNotFound("Method not found")
		}

		part := parts[0]
		parts = parts[1:]

		method := current.FindMethod(part)
		if method == nil {
			method = current.IndexMethod()
		}
		if method == nil {
			return nil, MethodNotFound("Method not found")
		}
		if method.IsIndex() && part != "" {
			parts = append([]string{part}, parts...)
		}

		var args []any
		var err error
		switch {
		case method.IsPost():
			if !req.IsPost() {
				return nil, MethodNotAllowed("Method not allowed, POST required")
			}
			args, err = parseNamedArgs(method, req.Post)
		case method.IsRemote():
			args, err = parseNamedArgs(method, req.Query)
		default:
			args, parts, err = parsePositionalArgs(method, parts)
		}
		if err != nil {
			return nil, err
		}

		if inv, err = inv.Next(method, args...); err != nil {
			return nil, err
		}

		if method.IsRemote() {
			current = nil
		} else {
			current, _ = method.Result().(*descriptor.InterfaceDescriptor)
		}
	}

	if !inv.IsRemote() {
		return nil, MethodNotFound("The last method must be a remote one. It must return a data type.")
	}
	return inv, nil
}

func parsePositionalArgs(method *descriptor.MethodDescriptor, parts []string) ([]any, []string, error) {
	args := make([]any, 0, len(method.Args()))
	for _, arg := range method.Args() {
		if len(parts) == 0 {
			return nil, nil, WrongMethodArgs("Wrong number of method args")
		}
		segment := parts[0]
		parts = parts[1:]

		text, err := url.PathUnescape(segment)
		if err != nil {
			return nil, nil, WrongMethodArgs("Malformed path segment for argument %s", arg.Name())
		}
		value, err := parseText(arg.Type(), text)
		if err != nil {
			return nil, nil, WrongMethodArgs("Wrong method argument %s", arg.Name())
		}
		args = append(args, value)
	}
	return args, parts, nil
}

func parseNamedArgs(method *descriptor.MethodDescriptor, src map[string]string) ([]any, error) {
	args := make([]any, 0, len(method.Args()))
	for _, arg := range method.Args() {
		if form, ok := arg.Type().(*descriptor.MessageDescriptor); ok && form.IsForm() {
			value, err := parseForm(form, src)
			if err != nil {
				return nil, WrongMethodArgs("Wrong method argument %s", arg.Name())
			}
			args = append(args, value)
			continue
		}

		text, ok := src[arg.Name()]
		if !ok {
			args = append(args, nil)
			continue
		}
		value, err := parseText(arg.Type(), text)
		if err != nil {
			return nil, WrongMethodArgs("Wrong method argument %s", arg.Name())
		}
		args = append(args, value)
	}
	return args, nil
}

// parseForm reads each field of a form message from src by field name.
// Nested forms are not expanded.
func parseForm(form *descriptor.MessageDescriptor, src map[string]string) (any, error) {
	fields := generic.NewFields()
	for _, f := range form.Fields() {
		text, ok := src[f.Name()]
		if !ok {
			continue
		}
		value, err := textToGeneric(f.Type(), text)
		if err != nil {
			return nil, err
		}
		if value != nil {
			fields.Set(f.Name(), value)
		}
	}
	return form.FromGeneric(fields)
}

// parseText converts flat argument text to a native value. Empty text is
// nil for every type except string.
func parseText(d descriptor.DataDescriptor, text string) (any, error) {
	if text == "" && d.Kind() != descriptor.KindString {
		return nil, nil
	}
	return d.ParseText(text)
}

// textToGeneric converts flat text to the generic value FromGeneric expects.
func textToGeneric(d descriptor.DataDescriptor, text string) (any, error) {
	kind := d.Kind()
	if text == "" && kind != descriptor.KindString {
		return nil, nil
	}
	if kind.IsPrimitive() || kind == descriptor.KindEnum {
		return text, nil
	}
	return generic.ParseText(text)
}
