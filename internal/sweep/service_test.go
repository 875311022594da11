package sweep

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/notify"
	"github.com/oarlockdev/boathouse-backend/internal/template"
)

type fakeBookings struct {
	booking.Service
	pending int64
	err     error
}

func (f *fakeBookings) MarkCompletedPending(_ context.Context) (int64, error) {
	return f.pending, f.err
}

type resolveCall struct {
	templateID string
	date       time.Time
	outcome    template.ConfirmationStatus
}

type fakeTemplates struct {
	template.Service
	occurrences []template.Occurrence
	resolves    []resolveCall
	resolveErr  error
}

func (f *fakeTemplates) Occurrences(_ context.Context, _, _ time.Time) ([]template.Occurrence, error) {
	return f.occurrences, nil
}

func (f *fakeTemplates) Resolve(_ context.Context, templateID string, date time.Time, outcome template.ConfirmationStatus, _ booking.Actor) (*template.Confirmation, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	f.resolves = append(f.resolves, resolveCall{templateID: templateID, date: date, outcome: outcome})
	return &template.Confirmation{TemplateID: templateID, OccurrenceDate: date, Status: outcome}, nil
}

type fakeConfirmations struct {
	template.Repository
	existing  map[string]*template.Confirmation
	pending   []*template.Confirmation
	notified  []string
	createErr error
}

func confKey(templateID string, date time.Time) string {
	return templateID + "|" + date.Format("2006-01-02")
}

func (f *fakeConfirmations) CreatePendingConfirmation(_ context.Context, templateID, memberID string, date time.Time) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	key := confKey(templateID, date)
	if _, ok := f.existing[key]; ok {
		return false, nil
	}
	f.existing[key] = &template.Confirmation{
		ID:             key,
		TemplateID:     templateID,
		MemberID:       memberID,
		OccurrenceDate: date,
		Status:         template.ConfirmationPending,
	}
	return true, nil
}

func (f *fakeConfirmations) GetConfirmation(_ context.Context, templateID string, date time.Time) (*template.Confirmation, error) {
	c, ok := f.existing[confKey(templateID, date)]
	if !ok {
		return nil, template.ErrConfirmationNotFound
	}
	return c, nil
}

func (f *fakeConfirmations) MarkConfirmationNotified(_ context.Context, id string, at time.Time) error {
	f.notified = append(f.notified, id)
	for _, c := range f.existing {
		if c.ID == id {
			stamped := at
			c.NotifiedAt = &stamped
		}
	}
	return nil
}

func (f *fakeConfirmations) ListConfirmations(_ context.Context, from, to time.Time) ([]*template.Confirmation, error) {
	var out []*template.Confirmation
	for _, c := range f.pending {
		if c.OccurrenceDate.Before(from) || c.OccurrenceDate.After(to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type sentNote struct {
	memberID string
	note     notify.Notification
}

type fakeNotifier struct {
	sent []sentNote
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, memberID string, n notify.Notification) error {
	f.sent = append(f.sent, sentNote{memberID: memberID, note: n})
	return f.err
}

type fixture struct {
	svc           *Service
	bookings      *fakeBookings
	templates     *fakeTemplates
	confirmations *fakeConfirmations
	notifier      *fakeNotifier
	loc           *time.Location
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	f := &fixture{
		bookings:      &fakeBookings{},
		templates:     &fakeTemplates{},
		confirmations: &fakeConfirmations{existing: map[string]*template.Confirmation{}},
		notifier:      &fakeNotifier{},
		loc:           loc,
		// A Monday at noon; notice window 3 days, auto-cancel 2.
		now: time.Date(2024, 6, 10, 12, 0, 0, 0, loc),
	}

	f.svc = NewService(f.bookings, f.templates, f.confirmations, f.notifier, zap.NewNop(), 3, 2, loc)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) date(day int) time.Time {
	return time.Date(2024, 6, day, 0, 0, 0, 0, f.loc)
}

func (f *fixture) occurrence(templateID string, day int, boatID *string, conf *template.Confirmation) template.Occurrence {
	tpl := &template.Template{
		ID:       templateID,
		Weekday:  int(f.date(day).Weekday()),
		BoatID:   boatID,
		MemberID: "m1",
	}
	return template.Occurrence{
		Template:     tpl,
		Date:         f.date(day),
		Confirmation: conf,
	}
}

func TestRunMarksCompletedBookings(t *testing.T) {
	f := newFixture(t)
	f.bookings.pending = 4

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.UsagePending)
}

func TestRunAbortsWhenBookingPassFails(t *testing.T) {
	f := newFixture(t)
	f.bookings.err = errors.New("db down")

	_, err := f.svc.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestRequestConfirmations(t *testing.T) {
	f := newFixture(t)
	boatID := "boat-1"
	notifiedAt := f.now.Add(-24 * time.Hour)

	f.templates.occurrences = []template.Occurrence{
		// Needs a confirmation request.
		f.occurrence("tpl-1", 12, &boatID, nil),
		// Already asked; never renotified.
		f.occurrence("tpl-2", 12, &boatID, &template.Confirmation{Status: template.ConfirmationPending, NotifiedAt: &notifiedAt}),
		// Already settled by the member.
		f.occurrence("tpl-4", 12, &boatID, &template.Confirmation{Status: template.ConfirmationConfirmed}),
		// Placeholder without a boat; nothing to confirm.
		f.occurrence("tpl-3", 12, nil, nil),
	}

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "m1", f.notifier.sent[0].memberID)
	assert.Contains(t, f.notifier.sent[0].note.Body, "2024-06-12")

	require.Len(t, f.confirmations.notified, 1)
	assert.Equal(t, confKey("tpl-1", f.date(12)), f.confirmations.notified[0])
}

func TestRequestConfirmationsResumesUnnotified(t *testing.T) {
	f := newFixture(t)
	boatID := "boat-1"

	// A previous run stored the pending row but died before stamping
	// notified_at. The member still has to hear about it.
	leftover := &template.Confirmation{
		ID:             confKey("tpl-1", f.date(12)),
		TemplateID:     "tpl-1",
		MemberID:       "m1",
		OccurrenceDate: f.date(12),
		Status:         template.ConfirmationPending,
	}
	f.confirmations.existing[confKey("tpl-1", f.date(12))] = leftover
	f.templates.occurrences = []template.Occurrence{f.occurrence("tpl-1", 12, &boatID, leftover)}

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "m1", f.notifier.sent[0].memberID)
	require.Len(t, f.confirmations.notified, 1)
	require.NotNil(t, leftover.NotifiedAt)

	// Rerunning stays silent once the stamp is in place.
	res, err = f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Notified)
	assert.Len(t, f.notifier.sent, 1)
}

func TestRequestConfirmationsIdempotent(t *testing.T) {
	f := newFixture(t)
	boatID := "boat-1"
	f.templates.occurrences = []template.Occurrence{f.occurrence("tpl-1", 12, &boatID, nil)}

	ctx := context.Background()
	res, err := f.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)

	// The second run finds the row already there and stays silent. The
	// occurrence feed still reports no confirmation attached, mirroring
	// a sweep racing a stale read.
	res, err = f.svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Notified)
	assert.Len(t, f.notifier.sent, 1)
}

func TestRequestConfirmationsNotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	boatID := "boat-1"
	f.templates.occurrences = []template.Occurrence{f.occurrence("tpl-1", 12, &boatID, nil)}
	f.notifier.err = errors.New("smtp down")

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)
	assert.Len(t, f.confirmations.notified, 1, "still marked notified")
}

func TestRequestConfirmationsStoreErrorAborts(t *testing.T) {
	f := newFixture(t)
	boatID := "boat-1"
	f.templates.occurrences = []template.Occurrence{f.occurrence("tpl-1", 12, &boatID, nil)}
	f.confirmations.createErr = errors.New("db down")

	_, err := f.svc.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestCancelUnconfirmed(t *testing.T) {
	f := newFixture(t)

	f.confirmations.pending = []*template.Confirmation{
		{TemplateID: "tpl-1", MemberID: "m1", OccurrenceDate: f.date(11), Status: template.ConfirmationPending},
		// Already settled occurrences are left alone.
		{TemplateID: "tpl-2", MemberID: "m2", OccurrenceDate: f.date(11), Status: template.ConfirmationConfirmed},
		{TemplateID: "tpl-3", MemberID: "m3", OccurrenceDate: f.date(11), Status: template.ConfirmationCancelled},
	}

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AutoCancelled)

	require.Len(t, f.templates.resolves, 1)
	assert.Equal(t, resolveCall{templateID: "tpl-1", date: f.date(11), outcome: template.ConfirmationCancelled}, f.templates.resolves[0])

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "m1", f.notifier.sent[0].memberID)
}

func TestCancelUnconfirmedHonorsWindow(t *testing.T) {
	f := newFixture(t)

	// Auto-cancel window is 2 days; this occurrence is 3 days out and
	// the member still has time to respond.
	f.confirmations.pending = []*template.Confirmation{
		{TemplateID: "tpl-1", MemberID: "m1", OccurrenceDate: f.date(13), Status: template.ConfirmationPending},
	}

	res, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.AutoCancelled)
	assert.Empty(t, f.templates.resolves)
}

func TestCancelUnconfirmedResolveErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.confirmations.pending = []*template.Confirmation{
		{TemplateID: "tpl-1", MemberID: "m1", OccurrenceDate: f.date(11), Status: template.ConfirmationPending},
	}
	f.templates.resolveErr = fmt.Errorf("resolve failed")

	_, err := f.svc.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, f.notifier.sent)
}
