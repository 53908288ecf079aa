package demo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pdef/pdef-go"
)

// NotesService is the native interface bound to Notes.
type NotesService interface {
	Status(ctx context.Context) (string, error)
	Workspace(ctx context.Context, name string) (WorkspaceService, error)
}

// WorkspaceService is the native interface bound to Workspace.
type WorkspaceService interface {
	List(ctx context.Context, priority Priority) ([]*Note, error)
	Get(ctx context.Context, id int64) (*Note, error)
	Create(ctx context.Context, form *NoteForm) (*Note, error)
	Delete(ctx context.Context, id int64) error
}

// ErrNoWorkspace is returned when a workspace name is empty.
var ErrNoWorkspace = pdef.NewError(pdef.CodeWrongMethodArgs, "Workspace name is required")

// Store keeps notes in memory, partitioned by workspace.
type Store struct {
	mu     sync.RWMutex
	notes  map[string]map[int64]*Note
	nextID int64
	now    func() time.Time
}

var _ NotesService = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		notes: make(map[string]map[int64]*Note),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// WithClock sets the time source used for Note.Created.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Status reports that the store is serving.
func (s *Store) Status(ctx context.Context) (string, error) {
	return "ok", nil
}

// Workspace returns the notes of one workspace. Names are case-insensitive.
func (s *Store) Workspace(ctx context.Context, name string) (WorkspaceService, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrNoWorkspace
	}
	return &workspace{store: s, name: name}, nil
}

type workspace struct {
	store *Store
	name  string
}

func (w *workspace) List(ctx context.Context, priority Priority) ([]*Note, error) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()

	out := make([]*Note, 0, len(w.store.notes[w.name]))
	for _, n := range w.store.notes[w.name] {
		if priority == 0 || n.Priority == priority {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b *Note) int {
		if a.Priority != b.Priority {
			return int(b.Priority) - int(a.Priority)
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (w *workspace) Get(ctx context.Context, id int64) (*Note, error) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()

	n, ok := w.store.notes[w.name][id]
	if !ok {
		return nil, &NoteNotFound{ID: id}
	}
	return n, nil
}

func (w *workspace) Create(ctx context.Context, form *NoteForm) (*Note, error) {
	if form == nil {
		form = &NoteForm{}
	}
	priority := form.Priority
	if priority == 0 {
		priority = PriorityNormal
	}

	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	w.store.nextID++
	n := &Note{
		ID:       w.store.nextID,
		Title:    form.Title,
		Body:     form.Body,
		Priority: priority,
		Tags:     slices.Clone(form.Tags),
		Created:  w.store.now(),
	}
	if w.store.notes[w.name] == nil {
		w.store.notes[w.name] = make(map[int64]*Note)
	}
	w.store.notes[w.name][n.ID] = n
	return n, nil
}

func (w *workspace) Delete(ctx context.Context, id int64) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	if _, ok := w.store.notes[w.name][id]; !ok {
		return &NoteNotFound{ID: id}
	}
	delete(w.store.notes[w.name], id)
	return nil
}

// NewServer returns a pdef server exposing store through schema.Notes with
// argument validation enabled.
func NewServer(schema *Schema, store *Store) *pdef.Server {
	return pdef.NewServer(schema.Notes, pdef.Singleton(store)).WithValidation(nil)
}
