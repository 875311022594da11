package http

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/boat"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/request"
)

// ListBoatsRequest defines query parameters for listing boats.
type ListBoatsRequest struct {
	request.ListParams
	BoatType  string `form:"boat_type"`
	UsageType string `form:"usage_type" binding:"omitempty,oneof=general restricted captains_permission"`
	InService *bool  `form:"in_service"`
}

// Validate performs custom validation for ListBoatsRequest.
func (r *ListBoatsRequest) Validate() error {
	return nil
}

// BoatResponse is the shape of boat data returned in API responses.
type BoatResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	BoatType  string    `json:"boat_type"`
	UsageType string    `json:"usage_type"`
	InService bool      `json:"in_service"`
	CreatedAt time.Time `json:"created_at"`
}

// BoatTag is a brief representation of a boat.
type BoatTag struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewBoatResponse converts domain boat.Boat to BoatResponse used by the API.
func NewBoatResponse(b *boat.Boat) BoatResponse {
	return BoatResponse{
		ID:        b.ID,
		Code:      b.Code,
		Name:      b.Name,
		BoatType:  b.BoatType,
		UsageType: string(b.UsageType),
		InService: b.InService,
		CreatedAt: b.CreatedAt,
	}
}

type CreateBoatRequest struct {
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name" binding:"required"`
	BoatType  string `json:"boat_type" binding:"required"`
	UsageType string `json:"usage_type" binding:"required,oneof=general restricted captains_permission"`
	InService *bool  `json:"in_service"`
}

// Validate performs custom validation for CreateBoatRequest.
func (r *CreateBoatRequest) Validate() error {
	return nil
}

type UpdateBoatRequest struct {
	Code      *string `json:"code"`
	Name      *string `json:"name"`
	BoatType  *string `json:"boat_type"`
	UsageType *string `json:"usage_type" binding:"omitempty,oneof=general restricted captains_permission"`
	InService *bool   `json:"in_service"`
}

// Validate performs custom validation for UpdateBoatRequest.
func (r *UpdateBoatRequest) Validate() error {
	return nil
}

// GrantPermissionRequest adds a captain's-permission grant for a member.
type GrantPermissionRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
}

// PermissionResponse is a single boat permission grant.
type PermissionResponse struct {
	BoatID    string    `json:"boat_id"`
	MemberID  string    `json:"member_id"`
	CreatedAt time.Time `json:"created_at"`
}
