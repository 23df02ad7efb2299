package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mominaamjad/pixel-notes/internal/core"
)

type Repository interface {
	Create(ctx context.Context, note *Note) error
	GetByID(ctx context.Context, id, userID string) (*Note, error)
	List(ctx context.Context, userID string, filters ListFilters) ([]Note, error)
	Update(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id, userID string) error
	ToggleFavorite(ctx context.Context, id, userID string) (*Note, error)
	ToggleArchive(ctx context.Context, id, userID string) (*Note, error)
	ListTags(ctx context.Context, userID string) ([]string, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const noteColumns = `
	id, user_id, title, content, color, tags,
	is_favorite, is_archived, created_at, updated_at`

func (r *repository) Create(ctx context.Context, note *Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, color, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, note, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Color,
		note.Tags,
	)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID scopes by owner in the query itself; a note belonging to
// another user is reported as not found.
func (r *repository) GetByID(
	ctx context.Context,
	id, userID string,
) (*Note, error) {
	query := `SELECT` + noteColumns + `
		FROM notes
		WHERE id = $1 AND user_id = $2`

	var note Note
	err := r.db.GetContext(ctx, &note, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get note: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}

func (r *repository) List(
	ctx context.Context,
	userID string,
	filters ListFilters,
) ([]Note, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT`)
	sb.WriteString(noteColumns)
	sb.WriteString(` FROM notes WHERE user_id = $1`)

	args := []any{userID}

	if len(filters.Tags) > 0 {
		// OR semantics: any requested tag matches.
		conds := make([]string, 0, len(filters.Tags))
		for _, tag := range filters.Tags {
			args = append(args, tag)
			conds = append(conds, fmt.Sprintf("tags ? $%d", len(args)))
		}
		sb.WriteString(" AND (")
		sb.WriteString(strings.Join(conds, " OR "))
		sb.WriteString(")")
	}

	if filters.Favorite != nil {
		args = append(args, *filters.Favorite)
		fmt.Fprintf(&sb, " AND is_favorite = $%d", len(args))
	}

	if filters.Archived != nil {
		args = append(args, *filters.Archived)
		fmt.Fprintf(&sb, " AND is_archived = $%d", len(args))
	}

	if filters.Color != "" {
		args = append(args, filters.Color)
		fmt.Fprintf(&sb, " AND color = $%d", len(args))
	}

	if filters.Search != "" {
		args = append(args, "%"+escapeLike(filters.Search)+"%")
		fmt.Fprintf(&sb,
			" AND (title ILIKE $%d OR content ILIKE $%d)",
			len(args), len(args),
		)
	}

	sb.WriteString(" ORDER BY updated_at DESC")

	notes := []Note{}
	if err := r.db.SelectContext(ctx, &notes, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}

func (r *repository) Update(ctx context.Context, note *Note) error {
	query := `
		UPDATE notes
		SET title = $3,
		    content = $4,
		    color = $5,
		    tags = $6,
		    is_favorite = $7,
		    is_archived = $8,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &note.UpdatedAt, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Color,
		note.Tags,
		note.IsFavorite,
		note.IsArchived,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update note: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete note: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ToggleFavorite(
	ctx context.Context,
	id, userID string,
) (*Note, error) {
	return r.toggleFlag(ctx, "is_favorite", id, userID)
}

func (r *repository) ToggleArchive(
	ctx context.Context,
	id, userID string,
) (*Note, error) {
	return r.toggleFlag(ctx, "is_archived", id, userID)
}

// toggleFlag flips a boolean column in a single statement so concurrent
// toggles never lose an update.
func (r *repository) toggleFlag(
	ctx context.Context,
	column, id, userID string,
) (*Note, error) {
	query := fmt.Sprintf(`
		UPDATE notes
		SET %s = NOT %s,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING`+noteColumns, column, column)

	var note Note
	err := r.db.GetContext(ctx, &note, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("toggle %s: %w", column, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle %s: %w", column, err)
	}

	return &note, nil
}

func (r *repository) ListTags(
	ctx context.Context,
	userID string,
) ([]string, error) {
	query := `
		SELECT DISTINCT tag
		FROM notes, jsonb_array_elements_text(tags) AS tag
		WHERE user_id = $1
		ORDER BY tag`

	tags := []string{}
	if err := r.db.SelectContext(ctx, &tags, query, userID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
