package note

import (
	"time"

	"github.com/mominaamjad/pixel-notes/internal/export"
)

type CreateNoteRequest struct {
	Title   string   `json:"title"   validate:"max=200"`
	Content string   `json:"content" validate:"required"`
	Color   string   `json:"color"   validate:"omitempty,hexcolor"`
	Tags    []string `json:"tags"    validate:"omitempty,max=20,dive,min=1,max=50"`
}

// UpdateNoteRequest distinguishes "absent" from "set to zero value" with
// pointer fields; only present fields are written.
type UpdateNoteRequest struct {
	Title      *string   `json:"title"      validate:"omitempty,max=200"`
	Content    *string   `json:"content"    validate:"omitempty,min=1"`
	Color      *string   `json:"color"      validate:"omitempty,hexcolor"`
	Tags       *[]string `json:"tags"       validate:"omitempty,max=20,dive,min=1,max=50"`
	IsFavorite *bool     `json:"isFavorite"`
	IsArchived *bool     `json:"isArchived"`
}

func (r UpdateNoteRequest) IsEmpty() bool {
	return r.Title == nil &&
		r.Content == nil &&
		r.Color == nil &&
		r.Tags == nil &&
		r.IsFavorite == nil &&
		r.IsArchived == nil
}

type NoteResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Color      string    `json:"color"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"isFavorite"`
	IsArchived bool      `json:"isArchived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NoteEnvelope struct {
	Note NoteResponse `json:"note"`
}

type NotesEnvelope struct {
	Notes []NoteResponse `json:"notes"`
}

type TagsEnvelope struct {
	Tags []string `json:"tags"`
}

// ListFilters narrows a note listing. Nil pointer fields mean "don't
// filter on this".
type ListFilters struct {
	Tags     []string
	Favorite *bool
	Archived *bool
	Color    string
	Search   string
}

func toNoteResponse(n *Note) NoteResponse {
	tags := n.Tags
	if tags == nil {
		tags = Tags{}
	}
	return NoteResponse{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Color:      n.Color,
		Tags:       tags,
		IsFavorite: n.IsFavorite,
		IsArchived: n.IsArchived,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

func toExportNotes(notes []NoteResponse) []export.Note {
	out := make([]export.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, export.Note(n))
	}
	return out
}

func toNoteResponses(notes []Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteResponse(&notes[i]))
	}
	return out
}
