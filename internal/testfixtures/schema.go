package testfixtures

import (
	"context"
	"time"

	"github.com/pdef/pdef-go/descriptor"
)

// Schema is a linked set of fixture descriptors. Each call to New builds an
// independent graph.
type Schema struct {
	Registry *descriptor.Registry

	TestEnum        *descriptor.EnumDescriptor
	PolymorphicType *descriptor.EnumDescriptor

	TestMessage       *descriptor.MessageDescriptor
	TestForm          *descriptor.MessageDescriptor
	TestException     *descriptor.MessageDescriptor
	Base              *descriptor.MessageDescriptor
	Subtype           *descriptor.MessageDescriptor
	Subtype2          *descriptor.MessageDescriptor
	MultiLevelSubtype *descriptor.MessageDescriptor

	TestInterface *descriptor.InterfaceDescriptor
	RootInterface *descriptor.InterfaceDescriptor
	SubInterface  *descriptor.InterfaceDescriptor
}

// New builds and links the fixture schema. It panics on link errors.
func New() *Schema {
	s := &Schema{}
	s.enums()
	s.messages()
	s.interfaces()

	s.Registry = descriptor.NewRegistry().Add(
		s.TestEnum, s.PolymorphicType,
		s.TestMessage, s.TestForm, s.TestException,
		s.Base, s.Subtype, s.Subtype2, s.MultiLevelSubtype,
		s.TestInterface, s.RootInterface, s.SubInterface,
	)
	if err := s.Registry.Link(); err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) enums() {
	s.TestEnum = descriptor.NewEnum("TestEnum",
		descriptor.EnumMember{Name: "ONE", Value: TestEnumOne},
		descriptor.EnumMember{Name: "TWO", Value: TestEnumTwo},
		descriptor.EnumMember{Name: "THREE", Value: TestEnumThree},
	)
	s.PolymorphicType = descriptor.NewEnum("PolymorphicType",
		descriptor.EnumMember{Name: "BASE", Value: PolymorphicBase},
		descriptor.EnumMember{Name: "SUBTYPE", Value: PolymorphicSubtype},
		descriptor.EnumMember{Name: "SUBTYPE2", Value: PolymorphicSubtype2},
		descriptor.EnumMember{Name: "MULTILEVEL_SUBTYPE", Value: PolymorphicMultiLevelSubtype},
	)
}

func (s *Schema) messages() {
	int32List := descriptor.NewList[int32](descriptor.Of(descriptor.Int32))
	int32Set := descriptor.NewSet[int32](descriptor.Of(descriptor.Int32))
	int32Map := descriptor.NewMap[int32, string](descriptor.Of(descriptor.Int32), descriptor.Of(descriptor.String))

	s.TestMessage = descriptor.NewMessage("TestMessage", func() any { return &TestMessage{} }).WithFields(
		descriptor.Field("string0", descriptor.Of(descriptor.String),
			func(m *TestMessage) string { return m.String0 },
			func(m *TestMessage, v string) { m.String0 = v }),
		descriptor.Field("bool0", descriptor.Of(descriptor.Bool),
			func(m *TestMessage) bool { return m.Bool0 },
			func(m *TestMessage, v bool) { m.Bool0 = v }),
		descriptor.Field("short0", descriptor.Of(descriptor.Int16),
			func(m *TestMessage) int16 { return m.Short0 },
			func(m *TestMessage, v int16) { m.Short0 = v }),
		descriptor.Field("int0", descriptor.Of(descriptor.Int32),
			func(m *TestMessage) int32 { return m.Int0 },
			func(m *TestMessage, v int32) { m.Int0 = v }),
		descriptor.Field("long0", descriptor.Of(descriptor.Int64),
			func(m *TestMessage) int64 { return m.Long0 },
			func(m *TestMessage, v int64) { m.Long0 = v }),
		descriptor.Field("float0", descriptor.Of(descriptor.Float),
			func(m *TestMessage) float32 { return m.Float0 },
			func(m *TestMessage, v float32) { m.Float0 = v }),
		descriptor.Field("double0", descriptor.Of(descriptor.Double),
			func(m *TestMessage) float64 { return m.Double0 },
			func(m *TestMessage, v float64) { m.Double0 = v }),
		descriptor.Field("datetime0", descriptor.Of(descriptor.Datetime),
			func(m *TestMessage) time.Time { return m.Datetime0 },
			func(m *TestMessage, v time.Time) { m.Datetime0 = v }),
		descriptor.Field("list0", descriptor.Of(int32List),
			func(m *TestMessage) []int32 { return m.List0 },
			func(m *TestMessage, v []int32) { m.List0 = v }),
		descriptor.Field("set0", descriptor.Of(int32Set),
			func(m *TestMessage) map[int32]struct{} { return m.Set0 },
			func(m *TestMessage, v map[int32]struct{}) { m.Set0 = v }),
		descriptor.Field("map0", descriptor.Of(int32Map),
			func(m *TestMessage) map[int32]string { return m.Map0 },
			func(m *TestMessage, v map[int32]string) { m.Map0 = v }),
		descriptor.Field("enum0", func() descriptor.DataDescriptor { return s.TestEnum },
			func(m *TestMessage) TestEnum { return m.Enum0 },
			func(m *TestMessage, v TestEnum) { m.Enum0 = v }),
		descriptor.Field("message0", func() descriptor.DataDescriptor { return s.TestMessage },
			func(m *TestMessage) *TestMessage { return m.Message0 },
			func(m *TestMessage, v *TestMessage) { m.Message0 = v }),
	)

	s.TestForm = descriptor.NewMessage("TestForm", func() any { return &TestForm{} }).WithFields(
		descriptor.Field("formString", descriptor.Of(descriptor.String),
			func(m *TestForm) string { return m.FormString },
			func(m *TestForm, v string) { m.FormString = v }),
		descriptor.Field("formList", descriptor.Of(int32List),
			func(m *TestForm) []int32 { return m.FormList },
			func(m *TestForm, v []int32) { m.FormList = v }),
		descriptor.Field("formBool", descriptor.Of(descriptor.Bool),
			func(m *TestForm) bool { return m.FormBool },
			func(m *TestForm, v bool) { m.FormBool = v }),
	).AsForm()

	s.TestException = descriptor.NewMessage("TestException", func() any { return &TestException{} }).WithFields(
		descriptor.Field("text", descriptor.Of(descriptor.String),
			func(m *TestException) string { return m.Text },
			func(m *TestException, v string) { m.Text = v }),
	)

	s.Base = descriptor.NewMessage("Base", func() any { return &Base{Type: PolymorphicBase} }).
		WithFields(
			descriptor.Field("type", func() descriptor.DataDescriptor { return s.PolymorphicType },
				func(m BaseMessage) PolymorphicType { return m.BaseFields().Type },
				func(m BaseMessage, v PolymorphicType) { m.BaseFields().Type = v }).AsDiscriminator(),
			descriptor.Field("field", descriptor.Of(descriptor.String),
				func(m BaseMessage) string { return m.BaseFields().Field },
				func(m BaseMessage, v string) { m.BaseFields().Field = v }),
		).
		Subtype(PolymorphicSubtype, func() *descriptor.MessageDescriptor { return s.Subtype }).
		Subtype(PolymorphicSubtype2, func() *descriptor.MessageDescriptor { return s.Subtype2 }).
		Subtype(PolymorphicMultiLevelSubtype, func() *descriptor.MessageDescriptor { return s.MultiLevelSubtype })

	s.Subtype = descriptor.NewMessage("Subtype", func() any {
		return &Subtype{Base: Base{Type: PolymorphicSubtype}}
	}).
		Extends(s.Base).
		WithFields(
			descriptor.Field("subfield", descriptor.Of(descriptor.String),
				func(m subtypeMessage) string { return m.SubtypeFields().Subfield },
				func(m subtypeMessage, v string) { m.SubtypeFields().Subfield = v }),
		).
		Subtype(PolymorphicMultiLevelSubtype, func() *descriptor.MessageDescriptor { return s.MultiLevelSubtype })

	s.Subtype2 = descriptor.NewMessage("Subtype2", func() any {
		return &Subtype2{Base: Base{Type: PolymorphicSubtype2}}
	}).
		Extends(s.Base).
		WithFields(
			descriptor.Field("subfield2", descriptor.Of(descriptor.String),
				func(m *Subtype2) string { return m.Subfield2 },
				func(m *Subtype2, v string) { m.Subfield2 = v }),
		)

	s.MultiLevelSubtype = descriptor.NewMessage("MultiLevelSubtype", func() any {
		return &MultiLevelSubtype{Subtype: Subtype{Base: Base{Type: PolymorphicMultiLevelSubtype}}}
	}).
		Extends(s.Subtype).
		WithFields(
			descriptor.Field("mfield", descriptor.Of(descriptor.String),
				func(m *MultiLevelSubtype) string { return m.Mfield },
				func(m *MultiLevelSubtype, v string) { m.Mfield = v }),
		)
}

func (s *Schema) interfaces() {
	i32 := descriptor.Of(descriptor.Int32)
	str := descriptor.Of(descriptor.String)
	message := func() descriptor.DataDescriptor { return s.TestMessage }
	exc := func() *descriptor.MessageDescriptor { return s.TestException }

	s.TestInterface = descriptor.NewInterface("TestInterface").WithExc(exc)
	s.TestInterface.WithMethods(
		descriptor.NewMethod("testIndex", descriptor.Ref(descriptor.Int32),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestIndex(ctx, descriptor.As[int32](args[0]), descriptor.As[int32](args[1]))
			})).
			WithArgs(descriptor.Arg("arg0", i32), descriptor.Arg("arg1", i32)).
			AsIndex(),

		descriptor.NewMethod("testRemote", descriptor.Ref(descriptor.String),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestRemote(ctx)
			})),

		descriptor.NewMethod("testPost", descriptor.Ref(descriptor.Int32),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestPost(ctx, descriptor.As[int32](args[0]), descriptor.As[int32](args[1]))
			})).
			WithArgs(descriptor.Arg("arg0", i32), descriptor.Arg("arg1", i32)).
			AsPost(),

		descriptor.NewMethod("testString", descriptor.Ref(descriptor.String),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestString(ctx, descriptor.As[string](args[0]))
			})).
			WithArgs(descriptor.Arg("text", str)),

		descriptor.NewMethod("testDatetime", descriptor.Ref(descriptor.Datetime),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestDatetime(ctx, descriptor.As[time.Time](args[0]))
			})).
			WithArgs(descriptor.Arg("datetime0", descriptor.Of(descriptor.Datetime))),

		descriptor.NewMethod("testEnum", func() descriptor.Descriptor { return s.TestEnum },
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestEnum(ctx, descriptor.As[TestEnum](args[0]))
			})).
			WithArgs(descriptor.Arg("enum0", func() descriptor.DataDescriptor { return s.TestEnum })),

		descriptor.NewMethod("testMessage", func() descriptor.Descriptor { return s.TestMessage },
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestMessage(ctx, descriptor.As[*TestMessage](args[0]))
			})).
			WithArgs(descriptor.Arg("msg", message)),

		descriptor.NewMethod("testForm", func() descriptor.Descriptor { return s.TestForm },
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestForm(ctx, descriptor.As[*TestForm](args[0]))
			})).
			WithArgs(descriptor.Arg("form", func() descriptor.DataDescriptor { return s.TestForm })),

		descriptor.NewMethod("testPolymorphic", func() descriptor.Descriptor { return s.Base },
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestPolymorphic(ctx, descriptor.As[BaseMessage](args[0]))
			})).
			WithArgs(descriptor.Arg("msg", func() descriptor.DataDescriptor { return s.Base })),

		descriptor.NewMethod("testCollections", func() descriptor.Descriptor { return s.TestMessage },
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestCollections(ctx,
					descriptor.As[[]int32](args[0]),
					descriptor.As[map[int32]struct{}](args[1]),
					descriptor.As[map[int32]string](args[2]))
			})).
			WithArgs(
				descriptor.Arg("list0", descriptor.Of(descriptor.NewList[int32](i32))),
				descriptor.Arg("set0", descriptor.Of(descriptor.NewSet[int32](i32))),
				descriptor.Arg("map0", descriptor.Of(descriptor.NewMap[int32, string](i32, str))),
			),

		descriptor.NewMethod("testVoid", descriptor.Ref(descriptor.Void),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return nil, svc.TestVoid(ctx)
			})),

		descriptor.NewMethod("testExc", descriptor.Ref(descriptor.String),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestExc(ctx, descriptor.As[string](args[0]))
			})).
			WithArgs(descriptor.Arg("text", str)),

		descriptor.NewMethod("testError", descriptor.Ref(descriptor.Void),
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return nil, svc.TestError(ctx)
			})),

		descriptor.NewMethod("testInterface", func() descriptor.Descriptor { return s.TestInterface },
			descriptor.Bind(func(ctx context.Context, svc TestService, args []any) (any, error) {
				return svc.TestInterface(ctx, descriptor.As[int32](args[0]), descriptor.As[int32](args[1]))
			})).
			WithArgs(descriptor.Arg("a", i32), descriptor.Arg("b", i32)),
	)

	s.RootInterface = descriptor.NewInterface("RootInterface").WithMethods(
		descriptor.NewMethod("interface0", func() descriptor.Descriptor { return s.SubInterface },
			descriptor.Bind(func(ctx context.Context, svc RootService, args []any) (any, error) {
				return svc.Interface0(ctx,
					descriptor.As[bool](args[0]),
					descriptor.As[int32](args[1]),
					descriptor.As[string](args[2]))
			})).
			WithArgs(
				descriptor.Arg("bool0", descriptor.Of(descriptor.Bool)),
				descriptor.Arg("int0", i32),
				descriptor.Arg("string0", str),
			),
	)

	s.SubInterface = descriptor.NewInterface("SubInterface").WithMethods(
		descriptor.NewMethod("get", descriptor.Ref(descriptor.String),
			descriptor.Bind(func(ctx context.Context, svc SubService, args []any) (any, error) {
				return svc.Get(ctx, descriptor.As[int32](args[0]), descriptor.As[string](args[1]))
			})).
			WithArgs(descriptor.Arg("int0", i32), descriptor.Arg("string0", str)),
	)
}
