package boat

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Code      string
	Name      string
	BoatType  string
	UsageType string
	InService bool
}

type UpdateRequest struct {
	Code      *string
	Name      *string
	BoatType  *string
	UsageType *string
	InService *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Boat, error)
	GetByID(ctx context.Context, id string) (*Boat, error)
	List(ctx context.Context, filter Filter) ([]*Boat, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Boat, error)
	Delete(ctx context.Context, id string) error

	GrantPermission(ctx context.Context, boatID, memberID string) error
	RevokePermission(ctx context.Context, boatID, memberID string) error
	ListPermissions(ctx context.Context, boatID string) ([]*Permission, error)

	// CheckBookable verifies the boat exists, is in service, and that
	// the actor may book it given its usage type. Every booking path
	// goes through this gate regardless of any external policy layer.
	CheckBookable(ctx context.Context, boatID, memberID string, isAdmin bool) (*Boat, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validUsageType(t string) bool {
	switch UsageType(t) {
	case UsageGeneral, UsageRestricted, UsageCaptainsPermission:
		return true
	}
	return false
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Boat, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		return nil, ErrEmptyName
	}
	if !validUsageType(req.UsageType) {
		return nil, ErrInvalidUsageType
	}

	b := &Boat{
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		BoatType:  strings.TrimSpace(req.BoatType),
		UsageType: UsageType(req.UsageType),
		InService: req.InService,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Boat, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Boat, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Boat, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		if strings.TrimSpace(*req.Code) == "" {
			return nil, ErrEmptyName
		}
		b.Code = strings.TrimSpace(*req.Code)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.BoatType != nil {
		b.BoatType = strings.TrimSpace(*req.BoatType)
	}
	if req.UsageType != nil {
		if !validUsageType(*req.UsageType) {
			return nil, ErrInvalidUsageType
		}
		b.UsageType = UsageType(*req.UsageType)
	}
	if req.InService != nil {
		b.InService = *req.InService
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) GrantPermission(ctx context.Context, boatID, memberID string) error {
	// Make sure the boat exists before recording a grant.
	if _, err := s.repo.GetByID(ctx, boatID); err != nil {
		return err
	}
	return s.repo.GrantPermission(ctx, boatID, memberID)
}

func (s *service) RevokePermission(ctx context.Context, boatID, memberID string) error {
	return s.repo.RevokePermission(ctx, boatID, memberID)
}

func (s *service) ListPermissions(ctx context.Context, boatID string) ([]*Permission, error) {
	return s.repo.ListPermissions(ctx, boatID)
}

func (s *service) CheckBookable(ctx context.Context, boatID, memberID string, isAdmin bool) (*Boat, error) {
	b, err := s.repo.GetByID(ctx, boatID)
	if err != nil {
		return nil, err
	}

	if !b.InService {
		return nil, ErrOutOfService
	}

	switch b.UsageType {
	case UsageRestricted:
		// Restricted boats accept no bookings, admins included.
		return nil, ErrRestricted
	case UsageCaptainsPermission:
		if isAdmin {
			return b, nil
		}
		granted, err := s.repo.HasPermission(ctx, boatID, memberID)
		if err != nil {
			return nil, err
		}
		if !granted {
			return nil, ErrPermissionNeeded
		}
	}

	return b, nil
}
