package booking

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.NotFound("booking not found")
	ErrTimeConflict      = apperror.Conflict("time slot already booked")
	ErrTemplateConflict  = apperror.Conflict("time slot is held by a recurring booking")
	ErrInvalidTimeRange  = apperror.Validation("start time must be before end time")
	ErrStartTimePast     = apperror.Validation("cannot create booking in the past")
	ErrBeforeOpeningTime = apperror.Validation("booking starts before the earliest allowed time")
	ErrInvalidOutcome    = apperror.Validation("outcome must be confirmed or cancelled")
	ErrPermissionDenied  = apperror.Permission("permission denied")
	ErrImmutable         = apperror.Immutable("booking can no longer be changed")
	ErrNotPendingUsage   = apperror.Immutable("booking usage is not awaiting confirmation")
)

// UsageStatus is the lifecycle state of a booking's post-outing
// confirmation.
type UsageStatus string

const (
	// StatusScheduled is the initial state of every booking.
	StatusScheduled UsageStatus = "scheduled"
	// StatusPending means the outing has ended and the member has not
	// yet confirmed whether the boat was used.
	StatusPending UsageStatus = "pending"
	StatusConfirmed UsageStatus = "confirmed"
	StatusCancelled UsageStatus = "cancelled"
)

// Actor identifies who is performing an operation. Role is always
// passed explicitly; core logic never infers it from ambient state.
type Actor struct {
	MemberID string
	IsAdmin  bool
}

// Booking is a one-off reservation of a boat for a time interval.
// Boat and member fields are resolved server-side into this flat
// projection so callers never deal with nested row shapes.
type Booking struct {
	ID               string
	BoatID           string
	BoatCode         string
	BoatName         string
	MemberID         string
	MemberName       string
	StartTime        time.Time
	EndTime          time.Time
	UsageStatus      UsageStatus
	UsageConfirmedAt *time.Time
	UsageConfirmedBy *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	BoatID        string
	MemberID      string
	UsageStatus   string
	StartTimeFrom *time.Time
	StartTimeTo   *time.Time

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
