package boat

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("boat not found")
	ErrCodeAlreadyUsed  = apperror.Conflict("boat code already used")
	ErrEmptyName        = apperror.Validation("name cannot be empty")
	ErrInvalidUsageType = apperror.Validation("invalid usage type")
	ErrRestricted       = apperror.Permission("boat is not available for booking")
	ErrPermissionNeeded = apperror.Permission("boat requires a captain's permission grant")
	ErrOutOfService     = apperror.Validation("boat is out of service")
	ErrGrantNotFound    = apperror.NotFound("boat permission grant not found")
)

// UsageType controls who may book a boat.
type UsageType string

const (
	// UsageGeneral boats are bookable by any member.
	UsageGeneral UsageType = "general"
	// UsageRestricted boats accept no bookings at all.
	UsageRestricted UsageType = "restricted"
	// UsageCaptainsPermission boats require an explicit per-member
	// grant, unless the actor is an admin.
	UsageCaptainsPermission UsageType = "captains_permission"
)

// Boat represents a bookable club boat.
type Boat struct {
	ID        string
	Code      string
	Name      string
	BoatType  string
	UsageType UsageType
	InService bool
	CreatedAt time.Time
}

// Permission grants a non-admin member the right to book a
// captain's-permission boat.
type Permission struct {
	BoatID    string
	MemberID  string
	CreatedAt time.Time
}

// Filter defines parameters for listing boats.
type Filter struct {
	BoatType  string
	UsageType string
	InService *bool

	Page     int
	PageSize int
}
