package template

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
)

// fakeRepo is an in-memory Repository keyed the same way the store is:
// templates by ID, exceptions and confirmations by (template, date).
type fakeRepo struct {
	templates     map[string]*Template
	exceptions    map[string]*Exception
	confirmations map[string]*Confirmation
	nextID        int
	loc           *time.Location
}

func newFakeRepo(loc *time.Location) *fakeRepo {
	return &fakeRepo{
		templates:     make(map[string]*Template),
		exceptions:    make(map[string]*Exception),
		confirmations: make(map[string]*Confirmation),
		loc:           loc,
	}
}

func (r *fakeRepo) Create(_ context.Context, t *Template) error {
	r.nextID++
	t.ID = fmt.Sprintf("tpl-%d", r.nextID)
	t.CreatedAt = time.Now()
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Template, int, error) {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		cp := *t
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListByWeekday(_ context.Context, weekday int) ([]*Template, error) {
	var out []*Template
	for _, t := range r.templates {
		if t.Weekday == weekday {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, t *Template) error {
	if _, ok := r.templates[t.ID]; !ok {
		return ErrNotFound
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.templates[id]; !ok {
		return ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *fakeRepo) HasTemplateOverlap(_ context.Context, weekday int, boatID string, start, end clock.Clock, excludeTemplateID string) (bool, error) {
	for _, t := range r.templates {
		if t.ID == excludeTemplateID || t.Weekday != weekday || t.BoatID == nil || *t.BoatID != boatID {
			continue
		}
		if clock.Overlaps(start, end, t.StartClock, t.EndClock) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) HasOccurrenceConflict(_ context.Context, boatID string, start, end time.Time, excludeTemplateID string) (bool, error) {
	for date := dateOnly(start, r.loc); date.Before(end); date = date.AddDate(0, 0, 1) {
		for _, t := range r.templates {
			if t.ID == excludeTemplateID || t.BoatID == nil || *t.BoatID != boatID || t.Weekday != int(date.Weekday()) {
				continue
			}
			if _, excepted := r.exceptions[occurrenceKey(t.ID, date)]; excepted {
				continue
			}
			if start.Before(t.EndClock.At(date, r.loc)) && end.After(t.StartClock.At(date, r.loc)) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeRepo) UpsertException(_ context.Context, templateID string, date time.Time, reason string) error {
	key := occurrenceKey(templateID, date)
	if _, ok := r.exceptions[key]; ok {
		return nil
	}
	r.exceptions[key] = &Exception{
		ID:            key,
		TemplateID:    templateID,
		ExceptionDate: date,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
	return nil
}

func (r *fakeRepo) HasException(_ context.Context, templateID string, date time.Time) (bool, error) {
	_, ok := r.exceptions[occurrenceKey(templateID, date)]
	return ok, nil
}

func (r *fakeRepo) ListExceptions(_ context.Context, templateID string, from, to time.Time) ([]*Exception, error) {
	var out []*Exception
	for _, e := range r.exceptions {
		if templateID != "" && e.TemplateID != templateID {
			continue
		}
		if e.ExceptionDate.Before(from) || e.ExceptionDate.After(to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) GetConfirmation(_ context.Context, templateID string, date time.Time) (*Confirmation, error) {
	c, ok := r.confirmations[occurrenceKey(templateID, date)]
	if !ok {
		return nil, ErrConfirmationNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) ListConfirmations(_ context.Context, from, to time.Time) ([]*Confirmation, error) {
	var out []*Confirmation
	for _, c := range r.confirmations {
		if c.OccurrenceDate.Before(from) || c.OccurrenceDate.After(to) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) CreatePendingConfirmation(_ context.Context, templateID, memberID string, date time.Time) (bool, error) {
	key := occurrenceKey(templateID, date)
	if _, ok := r.confirmations[key]; ok {
		return false, nil
	}
	r.confirmations[key] = &Confirmation{
		ID:             key,
		TemplateID:     templateID,
		MemberID:       memberID,
		OccurrenceDate: date,
		Status:         ConfirmationPending,
		CreatedAt:      time.Now(),
	}
	return true, nil
}

func (r *fakeRepo) MarkConfirmationNotified(_ context.Context, id string, at time.Time) error {
	for _, c := range r.confirmations {
		if c.ID == id && c.NotifiedAt == nil {
			c.NotifiedAt = &at
		}
	}
	return nil
}

func (r *fakeRepo) ResolveConfirmation(_ context.Context, templateID, memberID string, date time.Time, status ConfirmationStatus, bookingID *string, at time.Time) (*Confirmation, error) {
	key := occurrenceKey(templateID, date)
	c, ok := r.confirmations[key]
	if !ok {
		c = &Confirmation{
			ID:             key,
			TemplateID:     templateID,
			MemberID:       memberID,
			OccurrenceDate: date,
			CreatedAt:      time.Now(),
		}
		r.confirmations[key] = c
	}
	c.Status = status
	if bookingID != nil {
		c.BookingID = bookingID
	}
	c.RespondedAt = &at
	cp := *c
	return &cp, nil
}

// fakeBookings records CreateFromTemplate calls and answers with a
// canned booking or error.
type fakeBookings struct {
	booking.Service
	err   error
	calls []string
}

func (f *fakeBookings) CreateFromTemplate(_ context.Context, templateID, boatID, memberID string, start, end time.Time) (*booking.Booking, error) {
	f.calls = append(f.calls, templateID)
	if f.err != nil {
		return nil, f.err
	}
	return &booking.Booking{
		ID:          "booking-" + templateID,
		BoatID:      boatID,
		MemberID:    memberID,
		StartTime:   start,
		EndTime:     end,
		UsageStatus: booking.StatusScheduled,
	}, nil
}

type fixture struct {
	svc      *service
	repo     *fakeRepo
	bookings *fakeBookings
	loc      *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	repo := newFakeRepo(loc)
	bookings := &fakeBookings{}

	svc := NewService(repo, bookings, loc).(*service)
	svc.now = func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, loc) }

	return &fixture{svc: svc, repo: repo, bookings: bookings, loc: loc}
}

func (f *fixture) date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, f.loc)
}

// wednesdayTemplate creates a Wednesday 08:00-10:00 slot on boat-1.
func (f *fixture) wednesdayTemplate(t *testing.T) *Template {
	t.Helper()
	boatID := "boat-1"
	tpl, err := f.svc.Create(context.Background(), CreateRequest{
		Weekday:    3,
		BoatID:     &boatID,
		MemberID:   "m1",
		StartClock: clock.MustParse("08:00"),
		EndClock:   clock.MustParse("10:00"),
	})
	require.NoError(t, err)
	return tpl
}

// wednesdayTemplateFor creates the same slot for another member on
// another boat.
func (f *fixture) wednesdayTemplateFor(t *testing.T, memberID, boatID string) *Template {
	t.Helper()
	tpl, err := f.svc.Create(context.Background(), CreateRequest{
		Weekday:    3,
		BoatID:     &boatID,
		MemberID:   memberID,
		StartClock: clock.MustParse("08:00"),
		EndClock:   clock.MustParse("10:00"),
	})
	require.NoError(t, err)
	return tpl
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateRequest{Weekday: 7, MemberID: "m1", StartClock: clock.MustParse("08:00"), EndClock: clock.MustParse("10:00")})
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = f.svc.Create(ctx, CreateRequest{Weekday: 3, MemberID: "m1", StartClock: clock.MustParse("10:00"), EndClock: clock.MustParse("08:00")})
	assert.ErrorIs(t, err, ErrInvalidClockRange)
}

func TestCreateRejectsTemplateOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.wednesdayTemplate(t)

	boatID := "boat-1"
	_, err := f.svc.Create(ctx, CreateRequest{
		Weekday:    3,
		BoatID:     &boatID,
		MemberID:   "m2",
		StartClock: clock.MustParse("09:00"),
		EndClock:   clock.MustParse("11:00"),
	})
	assert.ErrorIs(t, err, ErrTemplateOverlap)

	// Same clocks on another weekday are fine.
	_, err = f.svc.Create(ctx, CreateRequest{
		Weekday:    4,
		BoatID:     &boatID,
		MemberID:   "m2",
		StartClock: clock.MustParse("09:00"),
		EndClock:   clock.MustParse("11:00"),
	})
	assert.NoError(t, err)

	// Placeholder templates without a boat never collide.
	_, err = f.svc.Create(ctx, CreateRequest{
		Weekday:     3,
		MemberID:    "m2",
		StartClock:  clock.MustParse("09:00"),
		EndClock:    clock.MustParse("11:00"),
		MemberLabel: "junior squad",
	})
	assert.NoError(t, err)
}

func TestOccursOn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)

	// 2024-06-12 is a Wednesday.
	ok, err := f.svc.OccursOn(ctx, tpl.ID, f.date(2024, 6, 12))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.OccursOn(ctx, tpl.ID, f.date(2024, 6, 13))
	require.NoError(t, err)
	assert.False(t, ok, "Thursday is not the template's weekday")

	require.NoError(t, f.svc.AddException(ctx, tpl.ID, f.date(2024, 6, 12), "regatta"))

	ok, err = f.svc.OccursOn(ctx, tpl.ID, f.date(2024, 6, 12))
	require.NoError(t, err)
	assert.False(t, ok, "exception suppresses the occurrence")

	ok, err = f.svc.OccursOn(ctx, tpl.ID, f.date(2024, 6, 19))
	require.NoError(t, err)
	assert.True(t, ok, "the following week is unaffected")
}

func TestOccurrences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)

	occs, err := f.svc.Occurrences(ctx, f.date(2024, 6, 10), f.date(2024, 6, 23))
	require.NoError(t, err)
	require.Len(t, occs, 2, "two Wednesdays in the window")

	first := occs[0]
	assert.Equal(t, tpl.ID, first.Template.ID)
	assert.Equal(t, f.date(2024, 6, 12), first.Date)
	assert.Equal(t, time.Date(2024, 6, 12, 8, 0, 0, 0, f.loc), first.StartTime)
	assert.Equal(t, time.Date(2024, 6, 12, 10, 0, 0, 0, f.loc), first.EndTime)
	assert.Nil(t, first.Confirmation)

	// An exception removes only its own date.
	require.NoError(t, f.svc.AddException(ctx, tpl.ID, f.date(2024, 6, 12), "regatta"))

	occs, err = f.svc.Occurrences(ctx, f.date(2024, 6, 10), f.date(2024, 6, 23))
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, f.date(2024, 6, 19), occs[0].Date)
}

func TestOccurrencesRejectsOversizedWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.wednesdayTemplate(t)

	_, err := f.svc.Occurrences(ctx, f.date(2024, 1, 1), f.date(2100, 1, 1))
	assert.ErrorIs(t, err, ErrWindowTooLarge)

	// A full quarter is still fine.
	occs, err := f.svc.Occurrences(ctx, f.date(2024, 6, 10), f.date(2024, 9, 10))
	require.NoError(t, err)
	assert.NotEmpty(t, occs)
}

func TestOccurrencesAttachConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)

	_, err := f.repo.CreatePendingConfirmation(ctx, tpl.ID, "m1", f.date(2024, 6, 12))
	require.NoError(t, err)

	occs, err := f.svc.Occurrences(ctx, f.date(2024, 6, 10), f.date(2024, 6, 16))
	require.NoError(t, err)
	require.Len(t, occs, 1)
	require.NotNil(t, occs[0].Confirmation)
	assert.Equal(t, ConfirmationPending, occs[0].Confirmation.Status)
}

func TestResolveConfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)
	date := f.date(2024, 6, 12)

	conf, err := f.svc.Resolve(ctx, tpl.ID, date, ConfirmationConfirmed, booking.Actor{MemberID: "m1"})
	require.NoError(t, err)

	assert.Equal(t, ConfirmationConfirmed, conf.Status)
	require.NotNil(t, conf.BookingID)
	assert.Equal(t, "booking-"+tpl.ID, *conf.BookingID)
	assert.NotNil(t, conf.RespondedAt)
	assert.Equal(t, []string{tpl.ID}, f.bookings.calls, "booking created once, excluding the template itself")

	// The date now belongs to the standalone booking.
	ok, err := f.svc.OccursOn(ctx, tpl.ID, date)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)
	date := f.date(2024, 6, 12)

	conf, err := f.svc.Resolve(ctx, tpl.ID, date, ConfirmationCancelled, booking.Actor{MemberID: "m1"})
	require.NoError(t, err)

	assert.Equal(t, ConfirmationCancelled, conf.Status)
	assert.Nil(t, conf.BookingID)
	assert.Empty(t, f.bookings.calls, "cancelling never touches bookings")

	ok, err := f.svc.OccursOn(ctx, tpl.ID, date)
	require.NoError(t, err)
	assert.False(t, ok, "cancelled occurrence is excepted")
}

func TestResolveOutcomeIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)
	date := f.date(2024, 6, 12)

	_, err := f.svc.Resolve(ctx, tpl.ID, date, ConfirmationCancelled, booking.Actor{MemberID: "m1"})
	require.NoError(t, err)

	// A cancelled date cannot come back as a booking, admin or not.
	_, err = f.svc.Resolve(ctx, tpl.ID, date, ConfirmationConfirmed, booking.Actor{MemberID: "m1"})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	_, err = f.svc.Resolve(ctx, tpl.ID, date, ConfirmationConfirmed, booking.Actor{MemberID: "m2", IsAdmin: true})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Empty(t, f.bookings.calls)

	// Repeating the settled outcome stays harmless.
	conf, err := f.svc.Resolve(ctx, tpl.ID, date, ConfirmationCancelled, booking.Actor{MemberID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, ConfirmationCancelled, conf.Status)

	// The reverse flip is blocked the same way.
	other := f.wednesdayTemplateFor(t, "m2", "boat-2")
	_, err = f.svc.Resolve(ctx, other.ID, date, ConfirmationConfirmed, booking.Actor{MemberID: "m2"})
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, other.ID, date, ConfirmationCancelled, booking.Actor{MemberID: "m2"})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestResolveGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)
	date := f.date(2024, 6, 12)

	_, err := f.svc.Resolve(ctx, tpl.ID, date, ConfirmationPending, booking.Actor{MemberID: "m1"})
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	_, err = f.svc.Resolve(ctx, tpl.ID, f.date(2024, 6, 13), ConfirmationConfirmed, booking.Actor{MemberID: "m1"})
	assert.ErrorIs(t, err, ErrNotAnOccurrence)

	_, err = f.svc.Resolve(ctx, tpl.ID, date, ConfirmationConfirmed, booking.Actor{MemberID: "m2"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Admins may resolve on the member's behalf.
	_, err = f.svc.Resolve(ctx, tpl.ID, date, ConfirmationCancelled, booking.Actor{MemberID: "m2", IsAdmin: true})
	assert.NoError(t, err)
}

func TestResolveConfirmRequiresBoat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.Create(ctx, CreateRequest{
		Weekday:     3,
		MemberID:    "m1",
		StartClock:  clock.MustParse("08:00"),
		EndClock:    clock.MustParse("10:00"),
		MemberLabel: "junior squad",
	})
	require.NoError(t, err)
	date := f.date(2024, 6, 12)

	_, err = f.svc.Resolve(ctx, tpl.ID, date, ConfirmationConfirmed, booking.Actor{MemberID: "m1"})
	assert.ErrorIs(t, err, ErrNoBoat)

	// A placeholder can still be cancelled.
	_, err = f.svc.Resolve(ctx, tpl.ID, date, ConfirmationCancelled, booking.Actor{MemberID: "m1"})
	assert.NoError(t, err)
}

func TestResolveBookingFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)
	date := f.date(2024, 6, 12)

	f.bookings.err = booking.ErrTimeConflict

	_, err := f.svc.Resolve(ctx, tpl.ID, date, ConfirmationConfirmed, booking.Actor{MemberID: "m1"})
	assert.ErrorIs(t, err, booking.ErrTimeConflict)

	// No exception or confirmation was written, so the occurrence still
	// stands and the member can retry.
	ok, err := f.svc.OccursOn(ctx, tpl.ID, date)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.repo.GetConfirmation(ctx, tpl.ID, date)
	assert.ErrorIs(t, err, ErrConfirmationNotFound)
}

func TestUpdateClearsBoat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)

	updated, err := f.svc.Update(ctx, tpl.ID, UpdateRequest{ClearBoat: true})
	require.NoError(t, err)
	assert.Nil(t, updated.BoatID)
}

func TestUpdateRevalidatesOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl := f.wednesdayTemplate(t)

	boatID := "boat-1"
	other, err := f.svc.Create(ctx, CreateRequest{
		Weekday:    3,
		BoatID:     &boatID,
		MemberID:   "m2",
		StartClock: clock.MustParse("10:00"),
		EndClock:   clock.MustParse("12:00"),
	})
	require.NoError(t, err)

	// Stretching into the earlier slot collides.
	start := clock.MustParse("09:00")
	_, err = f.svc.Update(ctx, other.ID, UpdateRequest{StartClock: &start})
	assert.ErrorIs(t, err, ErrTemplateOverlap)

	// A template never collides with itself.
	end := clock.MustParse("09:30")
	_, err = f.svc.Update(ctx, tpl.ID, UpdateRequest{EndClock: &end})
	assert.NoError(t, err)
}
