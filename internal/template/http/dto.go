package http

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/request"
	"github.com/oarlockdev/boathouse-backend/internal/template"
)

const dateLayout = "2006-01-02"

// ListTemplatesRequest defines query parameters for listing templates.
type ListTemplatesRequest struct {
	request.ListParams
	Weekday  *int   `form:"weekday" binding:"omitempty,min=0,max=6"`
	BoatID   string `form:"boat_id" binding:"omitempty,uuid"`
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
}

// BoatTag is a brief representation of the template's boat, if any.
type BoatTag struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type TemplateResponse struct {
	ID          string   `json:"id"`
	Weekday     int      `json:"weekday"`
	Boat        *BoatTag `json:"boat,omitempty"`
	MemberID    string   `json:"member_id"`
	MemberName  string   `json:"member_name"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	BoatLabel   string   `json:"boat_label"`
	MemberLabel string   `json:"member_label"`
}

func NewTemplateResponse(t *template.Template) TemplateResponse {
	resp := TemplateResponse{
		ID:          t.ID,
		Weekday:     t.Weekday,
		MemberID:    t.MemberID,
		MemberName:  t.MemberName,
		StartTime:   t.StartClock.String(),
		EndTime:     t.EndClock.String(),
		BoatLabel:   t.BoatLabel,
		MemberLabel: t.MemberLabel,
	}
	if t.BoatID != nil {
		tag := BoatTag{ID: *t.BoatID}
		if t.BoatCode != nil {
			tag.Code = *t.BoatCode
		}
		if t.BoatName != nil {
			tag.Name = *t.BoatName
		}
		resp.Boat = &tag
	}
	return resp
}

type CreateTemplateRequest struct {
	Weekday     int     `json:"weekday" binding:"min=0,max=6"`
	BoatID      *string `json:"boat_id" binding:"omitempty,uuid"`
	MemberID    string  `json:"member_id" binding:"required,uuid"`
	StartTime   string  `json:"start_time" binding:"required"`
	EndTime     string  `json:"end_time" binding:"required"`
	BoatLabel   string  `json:"boat_label"`
	MemberLabel string  `json:"member_label"`
}

// Clocks parses the start/end wall clocks.
func (r *CreateTemplateRequest) Clocks() (start, end clock.Clock, err error) {
	if start, err = clock.Parse(r.StartTime); err != nil {
		return 0, 0, template.ErrInvalidClock
	}
	if end, err = clock.Parse(r.EndTime); err != nil {
		return 0, 0, template.ErrInvalidClock
	}
	return start, end, nil
}

type UpdateTemplateRequest struct {
	Weekday     *int    `json:"weekday" binding:"omitempty,min=0,max=6"`
	BoatID      *string `json:"boat_id" binding:"omitempty,uuid"`
	ClearBoat   bool    `json:"clear_boat"`
	MemberID    *string `json:"member_id" binding:"omitempty,uuid"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	BoatLabel   *string `json:"boat_label"`
	MemberLabel *string `json:"member_label"`
}

// OccurrencesRequest bounds the calendar expansion.
type OccurrencesRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

type ConfirmationResponse struct {
	ID             string     `json:"id"`
	TemplateID     string     `json:"template_id"`
	MemberID       string     `json:"member_id"`
	OccurrenceDate string     `json:"occurrence_date"`
	Status         string     `json:"status"`
	BookingID      *string    `json:"booking_id,omitempty"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
}

func NewConfirmationResponse(c *template.Confirmation) ConfirmationResponse {
	return ConfirmationResponse{
		ID:             c.ID,
		TemplateID:     c.TemplateID,
		MemberID:       c.MemberID,
		OccurrenceDate: c.OccurrenceDate.Format(dateLayout),
		Status:         string(c.Status),
		BookingID:      c.BookingID,
		NotifiedAt:     c.NotifiedAt,
		RespondedAt:    c.RespondedAt,
	}
}

type OccurrenceResponse struct {
	Template     TemplateResponse      `json:"template"`
	Date         string                `json:"date"`
	StartTime    time.Time             `json:"start_time"`
	EndTime      time.Time             `json:"end_time"`
	Confirmation *ConfirmationResponse `json:"confirmation,omitempty"`
}

func NewOccurrenceResponse(o template.Occurrence) OccurrenceResponse {
	resp := OccurrenceResponse{
		Template:  NewTemplateResponse(o.Template),
		Date:      o.Date.Format(dateLayout),
		StartTime: o.StartTime,
		EndTime:   o.EndTime,
	}
	if o.Confirmation != nil {
		c := NewConfirmationResponse(o.Confirmation)
		resp.Confirmation = &c
	}
	return resp
}

// ResolveOccurrenceRequest settles one occurrence of a template.
type ResolveOccurrenceRequest struct {
	OccurrenceDate string `json:"occurrence_date" binding:"required,datetime=2006-01-02"`
	Outcome        string `json:"outcome" binding:"required,oneof=confirmed cancelled"`
}

// AddExceptionRequest suppresses one occurrence of a template.
type AddExceptionRequest struct {
	ExceptionDate string `json:"exception_date" binding:"required,datetime=2006-01-02"`
	Reason        string `json:"reason"`
}

type ExceptionResponse struct {
	ID            string `json:"id"`
	TemplateID    string `json:"template_id"`
	ExceptionDate string `json:"exception_date"`
	Reason        string `json:"reason"`
}

func NewExceptionResponse(e *template.Exception) ExceptionResponse {
	return ExceptionResponse{
		ID:            e.ID,
		TemplateID:    e.TemplateID,
		ExceptionDate: e.ExceptionDate.Format(dateLayout),
		Reason:        e.Reason,
	}
}
