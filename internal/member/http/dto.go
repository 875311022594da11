package http

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/member"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/request"
)

// ListMembersRequest defines query parameters for listing members.
type ListMembersRequest struct {
	request.ListParams
	Email string `form:"email" binding:"omitempty,email"`
	Name  string `form:"name"`
}

// Validate performs custom validation for ListMembersRequest.
func (r *ListMembersRequest) Validate() error {
	return nil
}

// MemberResponse is the shape of member data returned in API responses.
type MemberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberTag is a brief representation of a member.
type MemberTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewMemberResponse converts domain member.Member to MemberResponse used by the API.
func NewMemberResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
	}
}

// RegisterRequest defines the payload for member registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// Validate performs custom validation for RegisterRequest.
func (r *RegisterRequest) Validate() error {
	return nil
}

// LoginRequest defines the payload for member login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Validate performs custom validation for LoginRequest.
func (r *LoginRequest) Validate() error {
	return nil
}

// LoginResponse returns the token and member info.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Member      MemberResponse `json:"member"`
}

// MeResponse returns the current member info.
type MeResponse struct {
	Member MemberResponse `json:"member"`
}
