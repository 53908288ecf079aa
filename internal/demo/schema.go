package demo

import (
	"context"
	"time"

	"github.com/pdef/pdef-go/descriptor"
)

// Schema holds the linked demo descriptors.
type Schema struct {
	Registry *descriptor.Registry

	Priority     *descriptor.EnumDescriptor
	Note         *descriptor.MessageDescriptor
	NoteForm     *descriptor.MessageDescriptor
	NoteNotFound *descriptor.MessageDescriptor

	Notes     *descriptor.InterfaceDescriptor
	Workspace *descriptor.InterfaceDescriptor
}

// NewSchema builds and links the demo schema. It panics on link errors.
func NewSchema() *Schema {
	s := &Schema{}
	str := descriptor.Of(descriptor.String)
	id := descriptor.Of(descriptor.Int64)
	priority := func() descriptor.DataDescriptor { return s.Priority }
	tags := descriptor.Of(descriptor.NewList[string](str))
	notes := descriptor.NewList[*Note](func() descriptor.DataDescriptor { return s.Note })

	s.Priority = descriptor.NewEnum("Priority",
		descriptor.EnumMember{Name: "LOW", Value: PriorityLow},
		descriptor.EnumMember{Name: "NORMAL", Value: PriorityNormal},
		descriptor.EnumMember{Name: "HIGH", Value: PriorityHigh},
	)

	s.Note = descriptor.NewMessage("Note", func() any { return &Note{} }).WithFields(
		descriptor.Field("id", id,
			func(m *Note) int64 { return m.ID },
			func(m *Note, v int64) { m.ID = v }),
		descriptor.Field("title", str,
			func(m *Note) string { return m.Title },
			func(m *Note, v string) { m.Title = v }),
		descriptor.Field("body", str,
			func(m *Note) string { return m.Body },
			func(m *Note, v string) { m.Body = v }),
		descriptor.Field("priority", priority,
			func(m *Note) Priority { return m.Priority },
			func(m *Note, v Priority) { m.Priority = v }),
		descriptor.Field("tags", tags,
			func(m *Note) []string { return m.Tags },
			func(m *Note, v []string) { m.Tags = v }),
		descriptor.Field("created", descriptor.Of(descriptor.Datetime),
			func(m *Note) time.Time { return m.Created },
			func(m *Note, v time.Time) { m.Created = v }),
	)

	s.NoteForm = descriptor.NewMessage("NoteForm", func() any { return &NoteForm{} }).WithFields(
		descriptor.Field("title", str,
			func(m *NoteForm) string { return m.Title },
			func(m *NoteForm, v string) { m.Title = v }),
		descriptor.Field("body", str,
			func(m *NoteForm) string { return m.Body },
			func(m *NoteForm, v string) { m.Body = v }),
		descriptor.Field("priority", priority,
			func(m *NoteForm) Priority { return m.Priority },
			func(m *NoteForm, v Priority) { m.Priority = v }),
		descriptor.Field("tags", tags,
			func(m *NoteForm) []string { return m.Tags },
			func(m *NoteForm, v []string) { m.Tags = v }),
	).AsForm()

	s.NoteNotFound = descriptor.NewMessage("NoteNotFound", func() any { return &NoteNotFound{} }).WithFields(
		descriptor.Field("id", id,
			func(m *NoteNotFound) int64 { return m.ID },
			func(m *NoteNotFound, v int64) { m.ID = v }),
	)

	s.Workspace = descriptor.NewInterface("Workspace").
		WithExc(func() *descriptor.MessageDescriptor { return s.NoteNotFound }).
		WithMethods(
			descriptor.NewMethod("list", descriptor.Ref(notes),
				descriptor.Bind(func(ctx context.Context, svc WorkspaceService, args []any) (any, error) {
					return svc.List(ctx, descriptor.As[Priority](args[0]))
				})).
				WithArgs(descriptor.Arg("priority", priority)).
				AsIndex(),

			descriptor.NewMethod("get", func() descriptor.Descriptor { return s.Note },
				descriptor.Bind(func(ctx context.Context, svc WorkspaceService, args []any) (any, error) {
					return svc.Get(ctx, descriptor.As[int64](args[0]))
				})).
				WithArgs(descriptor.Arg("id", id)),

			descriptor.NewMethod("create", func() descriptor.Descriptor { return s.Note },
				descriptor.Bind(func(ctx context.Context, svc WorkspaceService, args []any) (any, error) {
					return svc.Create(ctx, descriptor.As[*NoteForm](args[0]))
				})).
				WithArgs(descriptor.Arg("note", func() descriptor.DataDescriptor { return s.NoteForm })).
				AsPost(),

			descriptor.NewMethod("delete", descriptor.Ref(descriptor.Void),
				descriptor.Bind(func(ctx context.Context, svc WorkspaceService, args []any) (any, error) {
					return nil, svc.Delete(ctx, descriptor.As[int64](args[0]))
				})).
				WithArgs(descriptor.Arg("id", id)).
				AsPost(),
		)

	s.Notes = descriptor.NewInterface("Notes").WithMethods(
		descriptor.NewMethod("status", descriptor.Ref(descriptor.String),
			descriptor.Bind(func(ctx context.Context, svc NotesService, args []any) (any, error) {
				return svc.Status(ctx)
			})).
			AsIndex(),

		descriptor.NewMethod("workspace", func() descriptor.Descriptor { return s.Workspace },
			descriptor.Bind(func(ctx context.Context, svc NotesService, args []any) (any, error) {
				return svc.Workspace(ctx, descriptor.As[string](args[0]))
			})).
			WithArgs(descriptor.Arg("name", str)),
	)

	s.Registry = descriptor.NewRegistry().Add(
		s.Priority, s.Note, s.NoteForm, s.NoteNotFound, s.Notes, s.Workspace,
	)
	if err := s.Registry.Link(); err != nil {
		panic(err)
	}
	return s
}
