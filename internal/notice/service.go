package notice

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Title    string
	Body     string
	Pinned   bool
	PostedBy string
}

type UpdateRequest struct {
	Title  *string
	Body   *string
	Pinned *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Notice, error)
	GetByID(ctx context.Context, id string) (*Notice, error)
	List(ctx context.Context, filter Filter) ([]*Notice, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Notice, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Notice, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, ErrBodyRequired
	}

	n := &Notice{
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
		Pinned:   req.Pinned,
		PostedBy: req.PostedBy,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, n.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Notice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Notice, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Notice, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		n.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return nil, ErrBodyRequired
		}
		n.Body = *req.Body
	}
	if req.Pinned != nil {
		n.Pinned = *req.Pinned
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
