// Package export renders notes into downloadable artifacts.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mominaamjad/pixel-notes/internal/core"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "txt"
)

// IsSupportedFormat reports whether format names a supported export
// format, ignoring case and surrounding whitespace.
func IsSupportedFormat(format string) bool {
	switch normalizeFormat(format) {
	case FormatJSON, FormatCSV, FormatText:
		return true
	}
	return false
}

// Note is the exportable view of a note. Field-compatible with the
// note package's response type so callers convert with a plain struct
// conversion.
type Note struct {
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

// Artifact is a rendered export ready to be written to a response.
// Attachment artifacts carry a file name and are served with a
// Content-Disposition header; JSON renders inline in the standard
// response envelope instead.
type Artifact struct {
	ContentType string
	FileName    string
	Body        []byte
	Attachment  bool
}

// Formatter renders note collections into the supported export formats.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatMany renders a collection. An empty collection is a valid
// document in every format, not an error.
func (f *Formatter) FormatMany(
	format string,
	notes []Note,
) (*Artifact, error) {
	switch normalizeFormat(format) {
	case FormatJSON:
		return f.manyJSON(notes)
	case FormatCSV:
		return f.manyCSV(notes)
	case FormatText:
		return f.manyText(notes)
	default:
		return nil, core.UnsupportedFormatError(format)
	}
}

// FormatOne renders a single note for download.
func (f *Formatter) FormatOne(format string, n Note) (*Artifact, error) {
	switch normalizeFormat(format) {
	case FormatJSON:
		body, err := json.Marshal(core.Envelope{
			Status: "success",
			Data:   map[string]Note{"note": n},
		})
		if err != nil {
			return nil, fmt.Errorf("marshal note: %w", err)
		}
		return &Artifact{
			ContentType: "application/json",
			Body:        body,
		}, nil
	case FormatCSV:
		artifact, err := f.manyCSV([]Note{n})
		if err != nil {
			return nil, err
		}
		artifact.FileName = downloadFileName(n.Title, "csv")
		return artifact, nil
	case FormatText:
		var buf bytes.Buffer
		writeNoteText(&buf, n)
		return &Artifact{
			ContentType: "text/plain; charset=utf-8",
			FileName:    downloadFileName(n.Title, "txt"),
			Body:        buf.Bytes(),
			Attachment:  true,
		}, nil
	default:
		return nil, core.UnsupportedFormatError(format)
	}
}

func (f *Formatter) manyJSON(notes []Note) (*Artifact, error) {
	if notes == nil {
		notes = []Note{}
	}

	length := len(notes)
	body, err := json.Marshal(core.Envelope{
		Status: "success",
		Length: &length,
		Data:   map[string][]Note{"notes": notes},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal notes: %w", err)
	}

	return &Artifact{
		ContentType: "application/json",
		Body:        body,
	}, nil
}

func (f *Formatter) manyCSV(notes []Note) (*Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"id", "title", "content", "color", "tags",
		"is_favorite", "is_archived", "created_at", "updated_at",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, n := range notes {
		record := []string{
			n.ID,
			n.Title,
			n.Content,
			n.Color,
			strings.Join(n.Tags, ";"),
			fmt.Sprintf("%t", n.IsFavorite),
			fmt.Sprintf("%t", n.IsArchived),
			n.CreatedAt.Format(time.RFC3339),
			n.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &Artifact{
		ContentType: "text/csv; charset=utf-8",
		FileName:    exportFileName("csv"),
		Body:        buf.Bytes(),
		Attachment:  true,
	}, nil
}

func (f *Formatter) manyText(notes []Note) (*Artifact, error) {
	var buf bytes.Buffer
	for i, n := range notes {
		if i > 0 {
			buf.WriteString("\n" + strings.Repeat("-", 40) + "\n\n")
		}
		writeNoteText(&buf, n)
	}

	return &Artifact{
		ContentType: "text/plain; charset=utf-8",
		FileName:    exportFileName("txt"),
		Body:        buf.Bytes(),
		Attachment:  true,
	}, nil
}

func writeNoteText(buf *bytes.Buffer, n Note) {
	title := n.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(buf, "Title: %s\n", title)
	if len(n.Tags) > 0 {
		fmt.Fprintf(buf, "Tags: %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintf(buf, "Created: %s\n", n.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(buf, "Updated: %s\n", n.UpdatedAt.Format(time.RFC3339))
	buf.WriteString("\n")
	buf.WriteString(n.Content)
	buf.WriteString("\n")
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

func exportFileName(ext string) string {
	return fmt.Sprintf("notes-export-%s.%s",
		time.Now().UTC().Format("2006-01-02"), ext)
}

// downloadFileName derives a safe file name from the note title.
func downloadFileName(title, ext string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "note"
	}
	return slug + "." + ext
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
