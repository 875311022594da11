package template

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/pkg/apperror"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
)

var (
	ErrNotFound             = apperror.NotFound("template not found")
	ErrConfirmationNotFound = apperror.NotFound("template confirmation not found")
	ErrInvalidWeekday       = apperror.Validation("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidClockRange    = apperror.Validation("start time must be before end time")
	ErrInvalidClock         = apperror.Validation("times must be in HH:MM format")
	ErrTemplateOverlap      = apperror.Conflict("another template holds this boat at that time")
	ErrNoBoat               = apperror.Validation("template has no boat assigned and cannot be confirmed into a booking")
	ErrNotAnOccurrence      = apperror.Validation("date does not fall on the template's weekday")
	ErrInvalidOutcome       = apperror.Validation("outcome must be confirmed or cancelled")
	ErrAlreadyResolved      = apperror.Immutable("occurrence has already been resolved")
	ErrWindowTooLarge       = apperror.Validation("occurrence window must not exceed 93 days")
	ErrPermissionDenied     = apperror.Permission("permission denied")
)

// Template is a recurring weekly slot. A template with a nil BoatID is
// a generic placeholder (labels only) and can never be confirmed into
// a concrete booking.
type Template struct {
	ID          string
	Weekday     int // 0 = Sunday, matching time.Weekday
	BoatID      *string
	BoatCode    *string
	BoatName    *string
	MemberID    string
	MemberName  string
	StartClock  clock.Clock
	EndClock    clock.Clock
	BoatLabel   string
	MemberLabel string
	CreatedAt   time.Time
}

// Exception suppresses a single calendar occurrence of a template.
type Exception struct {
	ID            string
	TemplateID    string
	ExceptionDate time.Time // date only, midnight in the club timezone
	Reason        string
	CreatedAt     time.Time
}

// ConfirmationStatus is the lifecycle state of an upcoming occurrence's
// confirmation: (none) -> pending -> confirmed | cancelled.
type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pending"
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationCancelled ConfirmationStatus = "cancelled"
)

// Confirmation tracks whether the member has confirmed that a specific
// upcoming occurrence is still needed. Unique per template and date.
type Confirmation struct {
	ID             string
	TemplateID     string
	MemberID       string
	OccurrenceDate time.Time
	Status         ConfirmationStatus
	BookingID      *string
	NotifiedAt     *time.Time
	RespondedAt    *time.Time
	CreatedAt      time.Time
}

// Occurrence is one concrete calendar-date instance of a template,
// with its confirmation state attached when one exists.
type Occurrence struct {
	Template     *Template
	Date         time.Time
	StartTime    time.Time
	EndTime      time.Time
	Confirmation *Confirmation
}

// Filter defines parameters for listing templates.
type Filter struct {
	Weekday  *int
	BoatID   string
	MemberID string

	Page     int
	PageSize int
}
