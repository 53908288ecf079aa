package demo

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/pdef/pdef-go/testutil"
)

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newHandler() (http.Handler, *Store) {
	store := NewStore().WithClock(func() time.Time { return fixedTime })
	return NewServer(NewSchema(), store).Handler(), store
}

func TestNotes_HTTP(t *testing.T) {
	h, _ := newHandler()

	t.Run("status", func(t *testing.T) {
		w := testutil.NewRequest().GET("/").Serve(h)
		testutil.AssertEnvelope(t, w, "OK", "ok")
	})

	t.Run("create", func(t *testing.T) {
		w := testutil.NewRequest().
			POST("/workspace/Home/create").
			WithForm("title", "Buy milk").
			WithForm("priority", "high").
			WithForm("tags", `["errand","food"]`).
			Serve(h)
		testutil.AssertEnvelope(t, w, "OK", map[string]any{
			"id":       1,
			"title":    "Buy milk",
			"body":     "",
			"priority": "high",
			"tags":     []string{"errand", "food"},
			"created":  "2024-01-02T03:04:05Z",
		})
	})

	t.Run("create with default priority", func(t *testing.T) {
		w := testutil.NewRequest().
			POST("/workspace/home/create").
			WithForm("title", "Call back").
			Serve(h)
		testutil.AssertEnvelope(t, w, "OK", map[string]any{
			"id":       2,
			"title":    "Call back",
			"body":     "",
			"priority": "normal",
			"created":  "2024-01-02T03:04:05Z",
		})
	})

	t.Run("list by priority", func(t *testing.T) {
		w := testutil.NewRequest().GET("/workspace/home/").WithQuery("priority", "normal").Serve(h)
		testutil.AssertEnvelope(t, w, "OK", []map[string]any{{
			"id":       2,
			"title":    "Call back",
			"body":     "",
			"priority": "normal",
			"created":  "2024-01-02T03:04:05Z",
		}})
	})

	t.Run("list orders by priority", func(t *testing.T) {
		w := testutil.NewRequest().GET("/workspace/home/").Serve(h)
		testutil.AssertEnvelope(t, w, "OK", []map[string]any{
			{"id": 1, "title": "Buy milk", "body": "", "priority": "high", "tags": []string{"errand", "food"}, "created": "2024-01-02T03:04:05Z"},
			{"id": 2, "title": "Call back", "body": "", "priority": "normal", "created": "2024-01-02T03:04:05Z"},
		})
	})

	t.Run("workspaces are isolated", func(t *testing.T) {
		w := testutil.NewRequest().GET("/workspace/work/").Serve(h)
		testutil.AssertEnvelope(t, w, "OK", []any{})
	})

	t.Run("get missing", func(t *testing.T) {
		w := testutil.NewRequest().GET("/workspace/home/get").WithQuery("id", "42").Serve(h)
		testutil.AssertEnvelope(t, w, "EXCEPTION", map[string]any{"id": 42})
	})

	t.Run("delete", func(t *testing.T) {
		w := testutil.NewRequest().POST("/workspace/home/delete").WithForm("id", "2").Serve(h)
		testutil.AssertEnvelope(t, w, "OK", nil)

		w = testutil.NewRequest().POST("/workspace/home/delete").WithForm("id", "2").Serve(h)
		testutil.AssertEnvelope(t, w, "EXCEPTION", map[string]any{"id": 2})
	})
}

func TestNotes_HTTPErrors(t *testing.T) {
	h, _ := newHandler()

	tests := []struct {
		name       string
		req        *testutil.RequestBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing title",
			req:        testutil.NewRequest().POST("/workspace/home/create").WithForm("body", "no title"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "NoteForm.Title: required",
		},
		{
			name:       "empty workspace",
			req:        testutil.NewRequest().GET("/workspace//"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Workspace name is required",
		},
		{
			name:       "create requires post",
			req:        testutil.NewRequest().GET("/workspace/home/create").WithQuery("title", "x"),
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   "Method not allowed, POST required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.req.Serve(h)
			testutil.AssertTextError(t, w, tt.wantStatus, tt.wantBody)
		})
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.Workspace(ctx, "  "); !errors.Is(err, ErrNoWorkspace) {
		t.Fatalf("expected ErrNoWorkspace, got %v", err)
	}

	a, _ := store.Workspace(ctx, "A")
	b, _ := store.Workspace(ctx, "a")
	n, err := a.Create(ctx, &NoteForm{Title: "x", Tags: []string{"t"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := b.Get(ctx, n.ID)
	if err != nil || got != n {
		t.Fatalf("expected workspace names to be case-insensitive, got %v %v", got, err)
	}

	var nf *NoteNotFound
	if _, err := a.Get(ctx, 99); !errors.As(err, &nf) || nf.ID != 99 {
		t.Errorf("expected NoteNotFound{99}, got %v", err)
	}
	if n.Created.IsZero() {
		t.Error("expected creation time")
	}
}
