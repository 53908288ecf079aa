// Package demo is a small notes service used by the pdef command.
package demo

import (
	"fmt"
	"time"
)

// Priority orders notes.
type Priority int32

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
)

// Note is a stored note.
type Note struct {
	ID       int64
	Title    string
	Body     string
	Priority Priority
	Tags     []string
	Created  time.Time
}

// NoteForm carries the fields of a new note.
type NoteForm struct {
	Title    string `validate:"required,max=120"`
	Body     string `validate:"max=4096"`
	Priority Priority
	Tags     []string `validate:"max=8,dive,max=32"`
}

// NoteNotFound is raised when a note id does not exist in a workspace.
type NoteNotFound struct {
	ID int64
}

func (e *NoteNotFound) Error() string { return fmt.Sprintf("note %d not found", e.ID) }
