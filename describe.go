package pdef

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/schema"
	"github.com/pdef/pdef-go/descriptor"
)

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Manifest describes the interfaces reachable from a root interface and,
// optionally, the data types they use.
type Manifest struct {
	Root       string          `json:"root"`
	Interfaces []InterfaceInfo `json:"interfaces"`
	Messages   []MessageInfo   `json:"messages,omitempty"`
	Enums      []EnumInfo      `json:"enums,omitempty"`
}

// InterfaceInfo describes an interface and its methods.
type InterfaceInfo struct {
	Name    string       `json:"name"`
	Exc     string       `json:"exc,omitempty"`
	Methods []MethodInfo `json:"methods"`
}

// MethodInfo describes a method. Remote methods return data; the others
// return an interface and continue a chain.
type MethodInfo struct {
	Name   string    `json:"name"`
	Args   []ArgInfo `json:"args"`
	Result string    `json:"result"`
	Exc    string    `json:"exc,omitempty"`
	Remote bool      `json:"remote"`
	Post   bool      `json:"post,omitempty"`
	Index  bool      `json:"index,omitempty"`
}

// ArgInfo describes a method argument.
type ArgInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// MessageInfo describes a message.
type MessageInfo struct {
	Name          string      `json:"name"`
	Base          string      `json:"base,omitempty"`
	Discriminator string      `json:"discriminator,omitempty"`
	Form          bool        `json:"form,omitempty"`
	Exception     bool        `json:"exception,omitempty"`
	Fields        []FieldInfo `json:"fields"`
	Subtypes      []string    `json:"subtypes,omitempty"`
}

// FieldInfo describes a declared message field.
type FieldInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// EnumInfo describes an enum.
type EnumInfo struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// DescribeOptions selects what Describe includes.
type DescribeOptions struct {
	// Interface limits the manifest to a single interface by name.
	Interface string `schema:"interface"`

	// Types includes the messages and enums reachable from the interfaces.
	Types bool `schema:"types"`
}

// Describe builds a manifest of the interfaces reachable from iface.
// Entries are sorted by name.
func Describe(iface *descriptor.InterfaceDescriptor, opts DescribeOptions) *Manifest {
	w := &walker{
		interfaces: make(map[string]*descriptor.InterfaceDescriptor),
		messages:   make(map[string]*descriptor.MessageDescriptor),
		enums:      make(map[string]*descriptor.EnumDescriptor),
	}
	w.visitInterface(iface)

	m := &Manifest{Root: iface.Name(), Interfaces: []InterfaceInfo{}}
	for _, name := range sortedKeys(w.interfaces) {
		if opts.Interface != "" && opts.Interface != name {
			continue
		}
		m.Interfaces = append(m.Interfaces, describeInterface(w.interfaces[name]))
	}
	if !opts.Types {
		return m
	}
	for _, name := range sortedKeys(w.messages) {
		m.Messages = append(m.Messages, describeMessage(w.messages[name]))
	}
	for _, name := range sortedKeys(w.enums) {
		e := w.enums[name]
		info := EnumInfo{Name: e.Name()}
		for _, member := range e.Members() {
			g, _ := e.ToGeneric(member.Value)
			name, _ := g.(string)
			info.Values = append(info.Values, name)
		}
		m.Enums = append(m.Enums, info)
	}
	return m
}

// DescribeHandler serves the manifest of iface as JSON. Query parameters
// are decoded into DescribeOptions.
func DescribeHandler(iface *descriptor.InterfaceDescriptor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var opts DescribeOptions
		if err := schemaDecoder.Decode(&opts, r.URL.Query()); err != nil {
			writeResponse(w, textResponse(http.StatusBadRequest, "Malformed describe options"), nil)
			return
		}

		body, err := json.Marshal(Describe(iface, opts))
		if err != nil {
			writeResponse(w, textResponse(http.StatusInternalServerError, fallbackMessage), nil)
			return
		}
		writeResponse(w, RestResponse{Status: http.StatusOK, Body: string(body), ContentType: JSONContentType}, nil)
	})
}

func describeInterface(iface *descriptor.InterfaceDescriptor) InterfaceInfo {
	info := InterfaceInfo{Name: iface.Name(), Methods: []MethodInfo{}}
	if exc := iface.Exc(); exc != nil {
		info.Exc = exc.Name()
	}
	for _, m := range iface.Methods() {
		mi := MethodInfo{
			Name:   m.Name(),
			Args:   []ArgInfo{},
			Result: m.Result().Name(),
			Remote: m.IsRemote(),
			Post:   m.IsPost(),
			Index:  m.IsIndex(),
		}
		if exc := m.Exc(); exc != nil {
			mi.Exc = exc.Name()
		}
		for _, arg := range m.Args() {
			mi.Args = append(mi.Args, ArgInfo{Name: arg.Name(), Type: arg.Type().Name()})
		}
		info.Methods = append(info.Methods, mi)
	}
	return info
}

func describeMessage(msg *descriptor.MessageDescriptor) MessageInfo {
	info := MessageInfo{
		Name:      msg.Name(),
		Form:      msg.IsForm(),
		Exception: msg.IsException(),
		Fields:    []FieldInfo{},
	}
	if base := msg.Base(); base != nil {
		info.Base = base.Name()
	}
	if d := msg.Discriminator(); d != nil {
		info.Discriminator = d.Name()
	}
	for _, f := range msg.DeclaredFields() {
		info.Fields = append(info.Fields, FieldInfo{Name: f.Name(), Type: f.Type().Name()})
	}
	for _, sub := range msg.Subtypes() {
		if sub != msg {
			info.Subtypes = append(info.Subtypes, sub.Name())
		}
	}
	sort.Strings(info.Subtypes)
	return info
}

type walker struct {
	interfaces map[string]*descriptor.InterfaceDescriptor
	messages   map[string]*descriptor.MessageDescriptor
	enums      map[string]*descriptor.EnumDescriptor
}

func (w *walker) visitInterface(iface *descriptor.InterfaceDescriptor) {
	if _, ok := w.interfaces[iface.Name()]; ok {
		return
	}
	w.interfaces[iface.Name()] = iface
	if exc := iface.Exc(); exc != nil {
		w.visitData(exc)
	}
	for _, m := range iface.Methods() {
		for _, arg := range m.Args() {
			w.visitData(arg.Type())
		}
		if exc := m.Exc(); exc != nil {
			w.visitData(exc)
		}
		switch result := m.Result().(type) {
		case *descriptor.InterfaceDescriptor:
			w.visitInterface(result)
		case descriptor.DataDescriptor:
			w.visitData(result)
		}
	}
}

func (w *walker) visitData(d descriptor.DataDescriptor) {
	switch d := d.(type) {
	case *descriptor.EnumDescriptor:
		w.enums[d.Name()] = d
	case *descriptor.MessageDescriptor:
		if _, ok := w.messages[d.Name()]; ok {
			return
		}
		w.messages[d.Name()] = d
		if base := d.Base(); base != nil {
			w.visitData(base)
		}
		for _, f := range d.DeclaredFields() {
			w.visitData(f.Type())
		}
		for _, sub := range d.Subtypes() {
			w.visitData(sub)
		}
	case descriptor.MapType:
		w.visitData(d.Key())
		w.visitData(d.Value())
	case descriptor.ListType:
		w.visitData(d.Elem())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
