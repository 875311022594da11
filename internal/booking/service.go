package booking

import (
	"context"
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/boat"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
)

// TemplateConflictChecker reports whether a recurring template holds
// the given boat during the interval, ignoring occurrences that have
// been excepted for that date. Implemented by the template repository;
// declared here so the booking package stays free of a template import.
// excludeTemplateID lets a template confirm its own occurrence without
// colliding with itself.
type TemplateConflictChecker interface {
	HasOccurrenceConflict(ctx context.Context, boatID string, start, end time.Time, excludeTemplateID string) (bool, error)
}

type CreateRequest struct {
	BoatID    string
	MemberID  string
	StartTime time.Time
	EndTime   time.Time
}

type UpdateRequest struct {
	BoatID    *string
	StartTime *time.Time
	EndTime   *time.Time
}

// BatchResult reports the outcome for one boat of a multi-boat create.
type BatchResult struct {
	BoatID  string
	Booking *Booking
	Err     error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest, actor Actor) (*Booking, error)

	// CreateBatch inserts one booking per boat. Each boat is checked and
	// inserted independently: a failure for one boat does not roll back
	// bookings already created for the others. The caller surfaces which
	// boats succeeded and which failed.
	CreateBatch(ctx context.Context, boatIDs []string, memberID string, start, end time.Time, actor Actor) ([]BatchResult, error)

	// CreateFromTemplate inserts a booking for a confirmed template
	// occurrence. The recurring slot already holds the interval, so only
	// the conflict check applies (excluding the template itself);
	// usage-type gates were settled when the template was created.
	CreateFromTemplate(ctx context.Context, templateID, boatID, memberID string, start, end time.Time) (*Booking, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actor Actor) (*Booking, error)
	Delete(ctx context.Context, id string, actor Actor) error

	// ResolveUsage records whether a completed outing happened. Only the
	// owning member or an admin may resolve, and only while the booking
	// is pending.
	ResolveUsage(ctx context.Context, id string, outcome UsageStatus, actor Actor) (*Booking, error)

	// CheckConflict is the single conflict contract used by every
	// mutation path: it fails if any non-cancelled booking or any
	// un-excepted template occurrence overlaps the interval on the boat.
	CheckConflict(ctx context.Context, boatID string, start, end time.Time, excludeBookingID string) error

	// MarkCompletedPending transitions scheduled bookings whose end time
	// has passed into the pending usage state.
	MarkCompletedPending(ctx context.Context) (int64, error)
}

type service struct {
	repo      Repository
	boats     boat.Service
	templates TemplateConflictChecker

	earliestStart clock.Clock
	loc           *time.Location
	now           func() time.Time
}

// NewService creates a booking Service. earliestStart is the operating
// floor: no booking may start before this wall clock, evaluated in loc.
func NewService(repo Repository, boats boat.Service, templates TemplateConflictChecker, earliestStart clock.Clock, loc *time.Location) Service {
	return &service{
		repo:          repo,
		boats:         boats,
		templates:     templates,
		earliestStart: earliestStart,
		loc:           loc,
		now:           time.Now,
	}
}

func (s *service) validateTimes(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	if clock.FromTime(start.In(s.loc)) < s.earliestStart {
		return ErrBeforeOpeningTime
	}
	if start.Before(s.now()) {
		return ErrStartTimePast
	}
	return nil
}

func (s *service) CheckConflict(ctx context.Context, boatID string, start, end time.Time, excludeBookingID string) error {
	return s.checkConflict(ctx, boatID, start, end, excludeBookingID, "")
}

func (s *service) checkConflict(ctx context.Context, boatID string, start, end time.Time, excludeBookingID, excludeTemplateID string) error {
	hasOverlap, err := s.repo.HasOverlap(ctx, boatID, start, end, excludeBookingID)
	if err != nil {
		return err
	}
	if hasOverlap {
		return ErrTimeConflict
	}

	held, err := s.templates.HasOccurrenceConflict(ctx, boatID, start, end, excludeTemplateID)
	if err != nil {
		return err
	}
	if held {
		return ErrTemplateConflict
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest, actor Actor) (*Booking, error) {
	if err := s.validateTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if _, err := s.boats.CheckBookable(ctx, req.BoatID, actor.MemberID, actor.IsAdmin); err != nil {
		return nil, err
	}

	if err := s.CheckConflict(ctx, req.BoatID, req.StartTime, req.EndTime, ""); err != nil {
		return nil, err
	}

	b := &Booking{
		BoatID:      req.BoatID,
		MemberID:    req.MemberID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		UsageStatus: StatusScheduled,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) CreateBatch(ctx context.Context, boatIDs []string, memberID string, start, end time.Time, actor Actor) ([]BatchResult, error) {
	// Shared time validation fails the whole batch before any write.
	if err := s.validateTimes(start, end); err != nil {
		return nil, err
	}

	results := make([]BatchResult, 0, len(boatIDs))
	for _, boatID := range boatIDs {
		res := BatchResult{BoatID: boatID}

		b, err := s.Create(ctx, CreateRequest{
			BoatID:    boatID,
			MemberID:  memberID,
			StartTime: start,
			EndTime:   end,
		}, actor)
		if err != nil {
			res.Err = err
		} else {
			res.Booking = b
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *service) CreateFromTemplate(ctx context.Context, templateID, boatID, memberID string, start, end time.Time) (*Booking, error) {
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}

	if err := s.checkConflict(ctx, boatID, start, end, "", templateID); err != nil {
		return nil, err
	}

	b := &Booking{
		BoatID:      boatID,
		MemberID:    memberID,
		StartTime:   start,
		EndTime:     end,
		UsageStatus: StatusScheduled,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

// canMutate gates edits and deletions: only the owner or an admin, and
// only while the booking is still scheduled and in the future. Once the
// usage lifecycle has advanced (or the outing has ended) the booking is
// immutable except for usage resolution.
func (s *service) canMutate(b *Booking, actor Actor) error {
	if !actor.IsAdmin && b.MemberID != actor.MemberID {
		return ErrPermissionDenied
	}
	if b.UsageStatus != StatusScheduled {
		return ErrImmutable
	}
	if b.EndTime.Before(s.now()) {
		return ErrImmutable
	}
	return nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.canMutate(b, actor); err != nil {
		return nil, err
	}

	newBoatID := b.BoatID
	newStart := b.StartTime
	newEnd := b.EndTime

	if req.BoatID != nil {
		newBoatID = *req.BoatID
	}
	if req.StartTime != nil {
		newStart = *req.StartTime
	}
	if req.EndTime != nil {
		newEnd = *req.EndTime
	}

	// Re-run every create-time validation against the new values,
	// excluding this booking from the overlap check.
	if err := s.validateTimes(newStart, newEnd); err != nil {
		return nil, err
	}
	if _, err := s.boats.CheckBookable(ctx, newBoatID, actor.MemberID, actor.IsAdmin); err != nil {
		return nil, err
	}
	if err := s.CheckConflict(ctx, newBoatID, newStart, newEnd, b.ID); err != nil {
		return nil, err
	}

	b.BoatID = newBoatID
	b.StartTime = newStart
	b.EndTime = newEnd

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id string, actor Actor) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.canMutate(b, actor); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) ResolveUsage(ctx context.Context, id string, outcome UsageStatus, actor Actor) (*Booking, error) {
	if outcome != StatusConfirmed && outcome != StatusCancelled {
		return nil, ErrInvalidOutcome
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin && b.MemberID != actor.MemberID {
		return nil, ErrPermissionDenied
	}

	resolved, err := s.repo.ResolveUsage(ctx, id, outcome, actor.MemberID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, ErrNotPendingUsage
	}

	return s.repo.GetByID(ctx, id)
}

func (s *service) MarkCompletedPending(ctx context.Context) (int64, error) {
	return s.repo.MarkPendingBefore(ctx, s.now().UTC())
}
