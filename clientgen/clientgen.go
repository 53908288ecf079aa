// Package clientgen generates typed Go clients from interface descriptors.
//
// Each reachable interface gets a <Name>Client type whose methods build the
// invocation chain and send it through a [pdef.Client]. Methods returning an
// interface return the client for that interface, so chains read as plain
// method calls:
//
//	root := client.NewRootInterfaceClient(c, schema.RootInterface)
//	sub, err := root.Interface0(true, -32, "hello")
//	s, err := sub.Get(ctx, 0, "world")
package clientgen

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"path"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/pdef/pdef-go/descriptor"
	"golang.org/x/tools/imports"
)

const (
	pdefImport       = "github.com/pdef/pdef-go"
	descriptorImport = "github.com/pdef/pdef-go/descriptor"
)

// Config controls code generation.
type Config struct {
	// Package is the package name of the generated file. Required.
	Package string

	// PackagePath is the import path of the generated package. Types
	// declared in it are referenced without a qualifier.
	PackagePath string

	// FileName is the generated file name. Default: "pdef_client.go".
	FileName string
}

func (c Config) fileName() string {
	if c.FileName == "" {
		return "pdef_client.go"
	}
	return c.FileName
}

// Generate renders clients for the given root interfaces and every
// interface reachable from them, and writes a single file to sink.
func Generate(ctx context.Context, cfg Config, sink Sink, roots ...*descriptor.InterfaceDescriptor) error {
	src, err := Source(cfg, roots...)
	if err != nil {
		return err
	}
	return sink.WriteFile(ctx, cfg.fileName(), src)
}

// Source renders the generated file and returns the formatted source.
func Source(cfg Config, roots ...*descriptor.InterfaceDescriptor) ([]byte, error) {
	if cfg.Package == "" {
		return nil, errors.New("clientgen: package name is required")
	}
	if !token.IsIdentifier(cfg.Package) {
		return nil, fmt.Errorf("clientgen: invalid package name %q", cfg.Package)
	}
	if len(roots) == 0 {
		return nil, errors.New("clientgen: no interfaces to generate")
	}

	e := &emitter{cfg: cfg, imports: map[string]string{
		"context":        "context",
		pdefImport:       "pdef",
		descriptorImport: "descriptor",
	}}
	for _, iface := range reachable(roots) {
		if err := e.emitInterface(iface); err != nil {
			return nil, err
		}
	}

	raw := e.file()
	out, err := imports.Process(cfg.fileName(), raw, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("clientgen: formatting generated source: %w", err)
	}
	return out, nil
}

// reachable returns roots and every interface returned by their methods,
// sorted by name.
func reachable(roots []*descriptor.InterfaceDescriptor) []*descriptor.InterfaceDescriptor {
	seen := make(map[*descriptor.InterfaceDescriptor]bool)
	var out []*descriptor.InterfaceDescriptor
	queue := append([]*descriptor.InterfaceDescriptor(nil), roots...)
	for len(queue) > 0 {
		iface := queue[0]
		queue = queue[1:]
		if iface == nil || seen[iface] {
			continue
		}
		seen[iface] = true
		out = append(out, iface)
		for _, m := range iface.Methods() {
			if next, ok := m.Result().(*descriptor.InterfaceDescriptor); ok {
				queue = append(queue, next)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

type emitter struct {
	cfg     Config
	imports map[string]string // path to package name
	body    strings.Builder
}

func (e *emitter) printf(format string, args ...any) {
	fmt.Fprintf(&e.body, format, args...)
}

func (e *emitter) file() []byte {
	var b strings.Builder
	b.WriteString("// Code generated by pdef gen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\nimport (\n", e.cfg.Package)
	paths := make([]string, 0, len(e.imports))
	for p := range e.imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if name := e.imports[p]; name != path.Base(p) {
			fmt.Fprintf(&b, "\t%s %q\n", name, p)
			continue
		}
		fmt.Fprintf(&b, "\t%q\n", p)
	}
	b.WriteString(")\n")
	b.WriteString(e.body.String())
	return []byte(b.String())
}

func clientName(iface *descriptor.InterfaceDescriptor) string {
	return exported(iface.Name()) + "Client"
}

func (e *emitter) emitInterface(iface *descriptor.InterfaceDescriptor) error {
	name := clientName(iface)

	e.printf("\n// %s is a typed client for %s.\n", name, iface.Name())
	e.printf("type %s struct {\n\tclient *pdef.Client\n\tiface *descriptor.InterfaceDescriptor\n\tinv *pdef.Invocation\n}\n", name)

	e.printf("\n// New%s returns a client calling iface from the root of the chain.\n", name)
	e.printf("func New%s(client *pdef.Client, iface *descriptor.InterfaceDescriptor) *%s {\n", name, name)
	e.printf("\treturn &%s{client: client, iface: iface, inv: pdef.Root()}\n}\n", name)

	for _, m := range iface.Methods() {
		if err := e.emitMethod(name, m); err != nil {
			return fmt.Errorf("clientgen: %s: %w", m, err)
		}
	}
	return nil
}

func (e *emitter) emitMethod(recv string, m *descriptor.MethodDescriptor) error {
	params := make([]string, 0, len(m.Args())+1)
	names := make([]string, 0, len(m.Args()))
	if m.IsRemote() {
		params = append(params, "ctx context.Context")
	}
	for _, arg := range m.Args() {
		typ, err := e.typeExpr(arg.Type())
		if err != nil {
			return fmt.Errorf("argument %s: %w", arg.Name(), err)
		}
		n := paramName(arg.Name())
		names = append(names, n)
		params = append(params, n+" "+typ)
	}

	next := fmt.Sprintf("c.inv.Next(c.iface.FindMethod(%q)", m.Name())
	for _, n := range names {
		next += ", " + n
	}
	next += ")"

	goName := exported(m.Name())
	e.printf("\n// %s calls %s.\n", goName, m.Name())

	switch result := m.Result().(type) {
	case *descriptor.InterfaceDescriptor:
		sub := clientName(result)
		e.printf("func (c *%s) %s(%s) (*%s, error) {\n", recv, goName, strings.Join(params, ", "), sub)
		e.printf("\tm := c.iface.FindMethod(%q)\n", m.Name())
		next = strings.Replace(next, fmt.Sprintf("c.iface.FindMethod(%q)", m.Name()), "m", 1)
		e.printf("\tinv, err := %s\n\tif err != nil {\n\t\treturn nil, err\n\t}\n", next)
		e.printf("\treturn &%s{client: c.client, iface: m.Result().(*descriptor.InterfaceDescriptor), inv: inv}, nil\n}\n", sub)

	default:
		if result.Kind() == descriptor.KindVoid {
			e.printf("func (c *%s) %s(%s) error {\n", recv, goName, strings.Join(params, ", "))
			e.printf("\tinv, err := %s\n\tif err != nil {\n\t\treturn err\n\t}\n", next)
			e.printf("\t_, err = c.client.Invoke(ctx, inv)\n\treturn err\n}\n")
			return nil
		}
		data, ok := result.(descriptor.DataDescriptor)
		if !ok {
			return fmt.Errorf("unsupported result %s", result.Name())
		}
		typ, err := e.typeExpr(data)
		if err != nil {
			return fmt.Errorf("result: %w", err)
		}
		e.printf("func (c *%s) %s(%s) (%s, error) {\n", recv, goName, strings.Join(params, ", "), typ)
		e.printf("\tinv, err := %s\n\tif err != nil {\n\t\tvar zero %s\n\t\treturn zero, err\n\t}\n", next, typ)
		e.printf("\treturn pdef.Call[%s](ctx, c.client, inv)\n}\n", typ)
	}
	return nil
}

// typeExpr returns the Go type expression for values described by d.
// Polymorphic messages are typed as any, since a subtype may arrive.
func (e *emitter) typeExpr(d descriptor.DataDescriptor) (string, error) {
	if msg, ok := d.(*descriptor.MessageDescriptor); ok && len(msg.Subtypes()) > 0 {
		return "any", nil
	}
	t := descriptor.NativeType(d)
	if t == nil {
		return "", fmt.Errorf("no native type for %s", d.Name())
	}
	return e.reflectExpr(t)
}

func (e *emitter) reflectExpr(t reflect.Type) (string, error) {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name(), nil
		}
		if t.PkgPath() == e.cfg.PackagePath {
			return t.Name(), nil
		}
		qualified := t.String()
		pkg, _, _ := strings.Cut(qualified, ".")
		e.imports[t.PkgPath()] = pkg
		return qualified, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := e.reflectExpr(t.Elem())
		return "*" + elem, err
	case reflect.Slice:
		elem, err := e.reflectExpr(t.Elem())
		return "[]" + elem, err
	case reflect.Map:
		key, err := e.reflectExpr(t.Key())
		if err != nil {
			return "", err
		}
		elem, err := e.reflectExpr(t.Elem())
		return "map[" + key + "]" + elem, err
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "any", nil
		}
	case reflect.Struct:
		if t.NumField() == 0 {
			return "struct{}", nil
		}
	}
	return "", fmt.Errorf("unsupported native type %s", t)
}

var reserved = map[string]bool{"c": true, "ctx": true, "inv": true, "err": true, "m": true, "zero": true}

func paramName(name string) string {
	if token.IsKeyword(name) || reserved[name] || !token.IsIdentifier(name) {
		return "arg_" + strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return '_'
		}, name)
	}
	return name
}

func exported(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
