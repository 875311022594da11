package notice

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.NotFound("notice not found")
	ErrTitleRequired = apperror.Validation("title is required")
	ErrBodyRequired  = apperror.Validation("body is required")
)

// Notice is a club-wide noticeboard entry: outage warnings, regatta
// announcements, safety bulletins. Pinned notices sort first.
type Notice struct {
	ID         string
	Title      string
	Body       string
	Pinned     bool
	PostedBy   string
	PosterName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter defines parameters for listing notices.
type Filter struct {
	Keyword    string
	PinnedOnly bool

	Page     int
	PageSize int
}
