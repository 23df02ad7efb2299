package note

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultColor is applied when a note is created without one.
const DefaultColor = "#FFFFFF"

// Tags is a string slice stored as a JSONB array.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return b, nil
}

func (t *Tags) Scan(src any) error {
	if src == nil {
		*t = Tags{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}

	if err := json.Unmarshal(data, t); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	if *t == nil {
		*t = Tags{}
	}
	return nil
}

type Note struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	Color      string    `db:"color"`
	Tags       Tags      `db:"tags"`
	IsFavorite bool      `db:"is_favorite"`
	IsArchived bool      `db:"is_archived"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
