package http

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	BoatID        string     `form:"boat_id" binding:"omitempty,uuid"`
	MemberID      string     `form:"member_id" binding:"omitempty,uuid"`
	UsageStatus   string     `form:"usage_status" binding:"omitempty,oneof=scheduled pending confirmed cancelled"`
	StartTimeFrom *time.Time `form:"start_time_from" time_format:"2006-01-02T15:04:05Z07:00"`
	StartTimeTo   *time.Time `form:"start_time_to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy        string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at usage_status"`
	SortOrder     string     `form:"sort_order" binding:"omitempty,oneof=ASC DESC"`
}

// Validate performs custom validation for ListBookingsRequest.
func (r *ListBookingsRequest) Validate() error {
	if r.StartTimeFrom != nil && r.StartTimeTo != nil {
		if r.StartTimeFrom.After(*r.StartTimeTo) {
			return booking.ErrInvalidTimeRange
		}
	}
	return nil
}

// BoatTag is a brief representation of the booked boat.
type BoatTag struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// MemberTag is a brief representation of the booking member.
type MemberTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID               string     `json:"id"`
	Boat             BoatTag    `json:"boat"`
	Member           MemberTag  `json:"member"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	UsageStatus      string     `json:"usage_status"`
	UsageConfirmedAt *time.Time `json:"usage_confirmed_at,omitempty"`
	UsageConfirmedBy *string    `json:"usage_confirmed_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		Boat:             BoatTag{ID: b.BoatID, Code: b.BoatCode, Name: b.BoatName},
		Member:           MemberTag{ID: b.MemberID, Name: b.MemberName},
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		UsageStatus:      string(b.UsageStatus),
		UsageConfirmedAt: b.UsageConfirmedAt,
		UsageConfirmedBy: b.UsageConfirmedBy,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	BoatID    string    `json:"boat_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	if !r.EndTime.After(r.StartTime) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

// BatchCreateBookingRequest books the same interval on several boats
// at once.
type BatchCreateBookingRequest struct {
	BoatIDs   []string  `json:"boat_ids" binding:"required,min=1,dive,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// Validate performs custom validation for BatchCreateBookingRequest.
func (r *BatchCreateBookingRequest) Validate() error {
	if !r.EndTime.After(r.StartTime) {
		return booking.ErrInvalidTimeRange
	}
	return nil
}

// BatchItemResponse reports the per-boat outcome of a batch create.
type BatchItemResponse struct {
	BoatID  string           `json:"boat_id"`
	Booking *BookingResponse `json:"booking,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type BatchCreateBookingResponse struct {
	Items []BatchItemResponse `json:"items"`
}

type UpdateBookingRequest struct {
	BoatID    *string    `json:"boat_id" binding:"omitempty,uuid"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// Validate performs custom validation for UpdateBookingRequest.
func (r *UpdateBookingRequest) Validate() error {
	if r.StartTime != nil && r.EndTime != nil {
		if !r.EndTime.After(*r.StartTime) {
			return booking.ErrInvalidTimeRange
		}
	}
	return nil
}

// ResolveUsageRequest records the post-outing outcome for a booking.
type ResolveUsageRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=confirmed cancelled"`
}
