package template

import (
	"context"
	"errors"
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
)

type CreateRequest struct {
	Weekday     int
	BoatID      *string
	MemberID    string
	StartClock  clock.Clock
	EndClock    clock.Clock
	BoatLabel   string
	MemberLabel string
}

type UpdateRequest struct {
	Weekday     *int
	BoatID      *string
	ClearBoat   bool
	MemberID    *string
	StartClock  *clock.Clock
	EndClock    *clock.Clock
	BoatLabel   *string
	MemberLabel *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Template, error)
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, filter Filter) ([]*Template, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Template, error)
	Delete(ctx context.Context, id string) error

	// OccursOn reports whether the template generates an occurrence on
	// the date: the weekday matches and no exception suppresses it.
	OccursOn(ctx context.Context, templateID string, date time.Time) (bool, error)

	// Occurrences expands every template into concrete calendar
	// occurrences inside [from, to], applying exceptions and attaching
	// confirmation state where it exists.
	Occurrences(ctx context.Context, from, to time.Time) ([]Occurrence, error)

	// Resolve settles one occurrence. Confirming materializes it into a
	// concrete booking (the template must have a boat); either outcome
	// suppresses the recurring slot for that date via an exception and
	// records the terminal confirmation. Once resolved, the date belongs
	// to the booking, not the template.
	Resolve(ctx context.Context, templateID string, date time.Time, outcome ConfirmationStatus, actor booking.Actor) (*Confirmation, error)

	// AddException suppresses a single occurrence without resolving it.
	AddException(ctx context.Context, templateID string, date time.Time, reason string) error

	// ListExceptions returns recorded exceptions for a template inside
	// [from, to].
	ListExceptions(ctx context.Context, templateID string, from, to time.Time) ([]*Exception, error)
}

type service struct {
	repo     Repository
	bookings booking.Service

	loc *time.Location
	now func() time.Time
}

func NewService(repo Repository, bookings booking.Service, loc *time.Location) Service {
	return &service{
		repo:     repo,
		bookings: bookings,
		loc:      loc,
		now:      time.Now,
	}
}

func validateSlot(weekday int, start, end clock.Clock) error {
	if weekday < 0 || weekday > 6 {
		return ErrInvalidWeekday
	}
	if start >= end {
		return ErrInvalidClockRange
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Template, error) {
	if err := validateSlot(req.Weekday, req.StartClock, req.EndClock); err != nil {
		return nil, err
	}

	if req.BoatID != nil {
		overlap, err := s.repo.HasTemplateOverlap(ctx, req.Weekday, *req.BoatID, req.StartClock, req.EndClock, "")
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, ErrTemplateOverlap
		}
	}

	t := &Template{
		Weekday:     req.Weekday,
		BoatID:      req.BoatID,
		MemberID:    req.MemberID,
		StartClock:  req.StartClock,
		EndClock:    req.EndClock,
		BoatLabel:   req.BoatLabel,
		MemberLabel: req.MemberLabel,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Template, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Template, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Weekday != nil {
		t.Weekday = *req.Weekday
	}
	if req.ClearBoat {
		t.BoatID = nil
	} else if req.BoatID != nil {
		t.BoatID = req.BoatID
	}
	if req.MemberID != nil {
		t.MemberID = *req.MemberID
	}
	if req.StartClock != nil {
		t.StartClock = *req.StartClock
	}
	if req.EndClock != nil {
		t.EndClock = *req.EndClock
	}
	if req.BoatLabel != nil {
		t.BoatLabel = *req.BoatLabel
	}
	if req.MemberLabel != nil {
		t.MemberLabel = *req.MemberLabel
	}

	if err := validateSlot(t.Weekday, t.StartClock, t.EndClock); err != nil {
		return nil, err
	}

	if t.BoatID != nil {
		overlap, err := s.repo.HasTemplateOverlap(ctx, t.Weekday, *t.BoatID, t.StartClock, t.EndClock, t.ID)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, ErrTemplateOverlap
		}
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t.ID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) OccursOn(ctx context.Context, templateID string, date time.Time) (bool, error) {
	t, err := s.repo.GetByID(ctx, templateID)
	if err != nil {
		return false, err
	}

	date = dateOnly(date, s.loc)
	if int(date.Weekday()) != t.Weekday {
		return false, nil
	}

	excepted, err := s.repo.HasException(ctx, templateID, date)
	if err != nil {
		return false, err
	}
	return !excepted, nil
}

// maxOccurrenceWindowDays bounds a single expansion to roughly one
// quarter; the feed walks every day in the window.
const maxOccurrenceWindowDays = 93

func (s *service) Occurrences(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	from = dateOnly(from, s.loc)
	to = dateOnly(to, s.loc)
	if to.After(from.AddDate(0, 0, maxOccurrenceWindowDays)) {
		return nil, ErrWindowTooLarge
	}

	exceptions, err := s.repo.ListExceptions(ctx, "", from, to)
	if err != nil {
		return nil, err
	}
	excepted := make(map[string]bool, len(exceptions))
	for _, e := range exceptions {
		excepted[occurrenceKey(e.TemplateID, e.ExceptionDate)] = true
	}

	confirmations, err := s.repo.ListConfirmations(ctx, from, to)
	if err != nil {
		return nil, err
	}
	confirmed := make(map[string]*Confirmation, len(confirmations))
	for _, c := range confirmations {
		confirmed[occurrenceKey(c.TemplateID, c.OccurrenceDate)] = c
	}

	byWeekday := make(map[int][]*Template)

	var occurrences []Occurrence
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		weekday := int(date.Weekday())

		templates, ok := byWeekday[weekday]
		if !ok {
			templates, err = s.repo.ListByWeekday(ctx, weekday)
			if err != nil {
				return nil, err
			}
			byWeekday[weekday] = templates
		}

		for _, t := range templates {
			key := occurrenceKey(t.ID, date)
			if excepted[key] {
				continue
			}
			occurrences = append(occurrences, Occurrence{
				Template:     t,
				Date:         date,
				StartTime:    t.StartClock.At(date, s.loc),
				EndTime:      t.EndClock.At(date, s.loc),
				Confirmation: confirmed[key],
			})
		}
	}
	return occurrences, nil
}

func (s *service) Resolve(ctx context.Context, templateID string, date time.Time, outcome ConfirmationStatus, actor booking.Actor) (*Confirmation, error) {
	if outcome != ConfirmationConfirmed && outcome != ConfirmationCancelled {
		return nil, ErrInvalidOutcome
	}

	t, err := s.repo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin && t.MemberID != actor.MemberID {
		return nil, ErrPermissionDenied
	}

	date = dateOnly(date, s.loc)
	if int(date.Weekday()) != t.Weekday {
		return nil, ErrNotAnOccurrence
	}

	// A settled occurrence stays settled. Repeating the same outcome is
	// allowed so retries stay harmless, but flipping a cancelled date
	// back into a booking (or the reverse) is not.
	existing, err := s.repo.GetConfirmation(ctx, templateID, date)
	switch {
	case err == nil:
		if existing.Status != ConfirmationPending && existing.Status != outcome {
			return nil, ErrAlreadyResolved
		}
	case !errors.Is(err, ErrConfirmationNotFound):
		return nil, err
	}

	var bookingID *string
	var reason string

	switch outcome {
	case ConfirmationConfirmed:
		if t.BoatID == nil {
			return nil, ErrNoBoat
		}

		start := t.StartClock.At(date, s.loc)
		end := t.EndClock.At(date, s.loc)

		// The template's own occurrence is excluded from the conflict
		// check; everything else conflicts as usual. A repeated confirm
		// finds the booking created the first time and fails there,
		// which keeps the whole operation idempotent.
		b, err := s.bookings.CreateFromTemplate(ctx, templateID, *t.BoatID, t.MemberID, start, end)
		if err != nil {
			return nil, err
		}
		bookingID = &b.ID
		reason = "confirmed as standalone booking"
	case ConfirmationCancelled:
		reason = "occurrence cancelled"
	}

	// The exception hands ownership of the date to the outcome: the
	// recurring slot no longer claims it.
	if err := s.repo.UpsertException(ctx, templateID, date, reason); err != nil {
		return nil, err
	}

	return s.repo.ResolveConfirmation(ctx, templateID, t.MemberID, date, outcome, bookingID, s.now().UTC())
}

func (s *service) AddException(ctx context.Context, templateID string, date time.Time, reason string) error {
	if _, err := s.repo.GetByID(ctx, templateID); err != nil {
		return err
	}
	return s.repo.UpsertException(ctx, templateID, dateOnly(date, s.loc), reason)
}

func (s *service) ListExceptions(ctx context.Context, templateID string, from, to time.Time) ([]*Exception, error) {
	if _, err := s.repo.GetByID(ctx, templateID); err != nil {
		return nil, err
	}
	return s.repo.ListExceptions(ctx, templateID, from, to)
}

func occurrenceKey(templateID string, date time.Time) string {
	return templateID + "|" + date.Format("2006-01-02")
}
