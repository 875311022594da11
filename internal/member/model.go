package member

import (
	"net/http"
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("member not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrEmailNotAllowed    = apperror.Permission("email is not on the club allow-list")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrPasswordTooShort   = apperror.Validation("password is too short")
	ErrEmailRequired      = apperror.Validation("email is required")
)

// Member is a club member who can book boats.
type Member struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	Name         string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Filter defines filter options for listing members.
type Filter struct {
	Email string
	Name  string

	Page     int
	PageSize int
}
