package note

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateNoteRequest,
) (*NoteResponse, error) {
	color := req.Color
	if color == "" {
		color = DefaultColor
	}

	n := &Note{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Color:   color,
		Tags:    normalizeTags(req.Tags),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	resp := toNoteResponse(n)
	return &resp, nil
}

// normalizeTags trims every tag and drops any left empty. Never nil so
// the column always stores a JSON array.
func normalizeTags(tags []string) Tags {
	out := make(Tags, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) Get(
	ctx context.Context,
	id, userID string,
) (*NoteResponse, error) {
	n, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	resp := toNoteResponse(n)
	return &resp, nil
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	filters ListFilters,
) ([]NoteResponse, error) {
	notes, err := s.repo.List(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	return toNoteResponses(notes), nil
}

// Update applies a partial patch on top of the stored note.
func (s *Service) Update(
	ctx context.Context,
	id, userID string,
	req UpdateNoteRequest,
) (*NoteResponse, error) {
	n, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		n.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if req.Color != nil {
		n.Color = *req.Color
	}
	if req.Tags != nil {
		n.Tags = normalizeTags(*req.Tags)
	}
	if req.IsFavorite != nil {
		n.IsFavorite = *req.IsFavorite
	}
	if req.IsArchived != nil {
		n.IsArchived = *req.IsArchived
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}

	resp := toNoteResponse(n)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *Service) ToggleFavorite(
	ctx context.Context,
	id, userID string,
) (*NoteResponse, error) {
	n, err := s.repo.ToggleFavorite(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	resp := toNoteResponse(n)
	return &resp, nil
}

func (s *Service) ToggleArchive(
	ctx context.Context,
	id, userID string,
) (*NoteResponse, error) {
	n, err := s.repo.ToggleArchive(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	resp := toNoteResponse(n)
	return &resp, nil
}

func (s *Service) ListTags(
	ctx context.Context,
	userID string,
) ([]string, error) {
	tags, err := s.repo.ListTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}
