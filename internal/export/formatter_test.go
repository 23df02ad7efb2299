package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mominaamjad/pixel-notes/internal/core"
)

func sampleNotes() []Note {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []Note{
		{
			ID:        "n1",
			Title:     "Groceries",
			Content:   "milk, eggs",
			Color:     "#FFFFFF",
			Tags:      []string{"shopping", "home"},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		{
			ID:         "n2",
			Title:      "Quote, with \"commas\"",
			Content:    "line one\nline two",
			Color:      "#FFAA00",
			Tags:       []string{},
			IsFavorite: true,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
	}
}

type notesEnvelope struct {
	Status string `json:"status"`
	Length *int   `json:"length"`
	Data   struct {
		Notes []Note `json:"notes"`
	} `json:"data"`
}

func TestFormatMany_JSON(t *testing.T) {
	f := NewFormatter()

	artifact, err := f.FormatMany("json", sampleNotes())
	require.NoError(t, err)
	require.Equal(t, "application/json", artifact.ContentType)

	// JSON is served inline in the response envelope, not as a file.
	require.False(t, artifact.Attachment)
	require.Empty(t, artifact.FileName)

	var env notesEnvelope
	require.NoError(t, json.Unmarshal(artifact.Body, &env))
	require.Equal(t, "success", env.Status)
	require.NotNil(t, env.Length)
	require.Equal(t, 2, *env.Length)
	require.Len(t, env.Data.Notes, 2)
	require.Equal(t, "Groceries", env.Data.Notes[0].Title)
	require.Equal(t, []string{"shopping", "home"}, env.Data.Notes[0].Tags)
}

func TestFormatMany_CSV(t *testing.T) {
	f := NewFormatter()

	artifact, err := f.FormatMany("csv", sampleNotes())
	require.NoError(t, err)
	require.Contains(t, artifact.ContentType, "text/csv")
	require.True(t, artifact.Attachment)
	require.True(t, strings.HasSuffix(artifact.FileName, ".csv"))

	records, err := csv.NewReader(strings.NewReader(string(artifact.Body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	require.Contains(t, header, "title")
	require.Contains(t, header, "content")

	// Embedded quotes and newlines survive the round trip.
	require.Equal(t, "Quote, with \"commas\"", records[2][1])
	require.Equal(t, "line one\nline two", records[2][2])
}

func TestFormatMany_Text(t *testing.T) {
	f := NewFormatter()

	artifact, err := f.FormatMany("txt", sampleNotes())
	require.NoError(t, err)
	require.Contains(t, artifact.ContentType, "text/plain")
	require.True(t, artifact.Attachment)

	body := string(artifact.Body)
	require.Contains(t, body, "Title: Groceries")
	require.Contains(t, body, "milk, eggs")
	require.Contains(t, body, "Tags: shopping, home")
	require.Contains(t, body, "Created: 2026-03-14T09:30:00Z")
	require.Contains(t, body, "Updated: 2026-03-14T10:30:00Z")
}

func TestFormatMany_Empty(t *testing.T) {
	f := NewFormatter()

	// An empty collection is a valid document, not an error.
	for _, format := range []string{"json", "csv", "txt"} {
		artifact, err := f.FormatMany(format, nil)
		require.NoError(t, err, format)
		require.NotNil(t, artifact, format)
	}

	artifact, err := f.FormatMany("json", nil)
	require.NoError(t, err)

	var env notesEnvelope
	require.NoError(t, json.Unmarshal(artifact.Body, &env))
	require.Equal(t, "success", env.Status)
	require.NotNil(t, env.Length)
	require.Equal(t, 0, *env.Length)
	require.NotNil(t, env.Data.Notes)
	require.Empty(t, env.Data.Notes)
}

func TestFormatMany_UnsupportedFormat(t *testing.T) {
	f := NewFormatter()

	_, err := f.FormatMany("xml", sampleNotes())
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrUnsupportedFormat))

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, core.KindUnsupportedFormat, appErr.Kind)
}

func TestFormatMany_FormatCaseInsensitive(t *testing.T) {
	f := NewFormatter()

	artifact, err := f.FormatMany(" JSON ", sampleNotes())
	require.NoError(t, err)
	require.Equal(t, "application/json", artifact.ContentType)
}

func TestFormatOne_JSON(t *testing.T) {
	f := NewFormatter()

	artifact, err := f.FormatOne("json", sampleNotes()[0])
	require.NoError(t, err)
	require.Equal(t, "application/json", artifact.ContentType)
	require.False(t, artifact.Attachment)

	var env struct {
		Status string `json:"status"`
		Data   struct {
			Note Note `json:"note"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(artifact.Body, &env))
	require.Equal(t, "success", env.Status)
	require.Equal(t, "Groceries", env.Data.Note.Title)
}

func TestFormatOne_Text(t *testing.T) {
	f := NewFormatter()

	artifact, err := f.FormatOne("txt", sampleNotes()[0])
	require.NoError(t, err)
	require.True(t, artifact.Attachment)
	require.Equal(t, "groceries.txt", artifact.FileName)
	require.Contains(t, string(artifact.Body), "milk, eggs")
}

func TestFormatOne_UntitledFallback(t *testing.T) {
	f := NewFormatter()

	n := sampleNotes()[0]
	n.Title = ""

	artifact, err := f.FormatOne("txt", n)
	require.NoError(t, err)
	require.Equal(t, "note.txt", artifact.FileName)
	require.Contains(t, string(artifact.Body), "(untitled)")
}

func TestIsSupportedFormat(t *testing.T) {
	require.True(t, IsSupportedFormat("json"))
	require.True(t, IsSupportedFormat("CSV"))
	require.True(t, IsSupportedFormat(" txt "))
	require.False(t, IsSupportedFormat("pdf"))
	require.False(t, IsSupportedFormat(""))
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "meeting-notes-2026", slugify("Meeting Notes: 2026!"))
	require.Equal(t, "", slugify("!!!"))
}
