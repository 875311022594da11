package sweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/notify"
	"github.com/oarlockdev/boathouse-backend/internal/template"
)

// Result summarizes one sweep run.
type Result struct {
	UsagePending  int64 `json:"usage_pending"`
	Notified      int   `json:"notified"`
	AutoCancelled int   `json:"auto_cancelled"`
}

// Service runs the periodic maintenance passes: moving completed
// bookings into the pending usage state, asking members to confirm
// upcoming template occurrences, and cancelling occurrences that went
// unconfirmed into the cutoff window.
type Service struct {
	bookings      booking.Service
	templates     template.Service
	confirmations template.Repository
	notifier      notify.Notifier
	logger        *zap.Logger

	noticeDays     int
	autoCancelDays int
	loc            *time.Location
	now            func() time.Time
}

func NewService(
	bookings booking.Service,
	templates template.Service,
	confirmations template.Repository,
	notifier notify.Notifier,
	logger *zap.Logger,
	noticeDays, autoCancelDays int,
	loc *time.Location,
) *Service {
	return &Service{
		bookings:       bookings,
		templates:      templates,
		confirmations:  confirmations,
		notifier:       notifier,
		logger:         logger,
		noticeDays:     noticeDays,
		autoCancelDays: autoCancelDays,
		loc:            loc,
		now:            time.Now,
	}
}

// Run executes one full sweep. Each pass is idempotent, so an aborted
// run is simply picked up by the next one. A store error aborts the
// current pass; notification failures are logged and skipped.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var res Result

	n, err := s.bookings.MarkCompletedPending(ctx)
	if err != nil {
		return res, fmt.Errorf("mark completed bookings pending: %w", err)
	}
	res.UsagePending = n
	if n > 0 {
		s.logger.Info("bookings moved to pending usage", zap.Int64("count", n))
	}

	res.Notified, err = s.requestConfirmations(ctx)
	if err != nil {
		return res, fmt.Errorf("request confirmations: %w", err)
	}

	res.AutoCancelled, err = s.cancelUnconfirmed(ctx)
	if err != nil {
		return res, fmt.Errorf("cancel unconfirmed occurrences: %w", err)
	}

	return res, nil
}

// Start runs the sweep on a fixed interval until ctx is cancelled. One
// goroutine drives every run, so sweeps never overlap.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if res, err := s.Run(ctx); err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
			} else if res != (Result{}) {
				s.logger.Info("sweep complete",
					zap.Int64("usage_pending", res.UsagePending),
					zap.Int("notified", res.Notified),
					zap.Int("auto_cancelled", res.AutoCancelled),
				)
			}
		}
	}
}

// today returns midnight of the current day in the club timezone.
func (s *Service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// requestConfirmations ensures every bookable occurrence inside the
// notice window has a pending confirmation and that its member has
// been notified. Confirmations created by an earlier run that aborted
// before the notified stamp are picked up again here.
func (s *Service) requestConfirmations(ctx context.Context) (int, error) {
	from := s.today()
	to := from.AddDate(0, 0, s.noticeDays)

	occurrences, err := s.templates.Occurrences(ctx, from, to)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, occ := range occurrences {
		// Placeholder templates carry no boat and cannot become
		// bookings, so there is nothing to confirm.
		if occ.Template.BoatID == nil {
			continue
		}

		conf := occ.Confirmation
		if conf == nil {
			if _, err := s.confirmations.CreatePendingConfirmation(ctx, occ.Template.ID, occ.Template.MemberID, occ.Date); err != nil {
				return notified, err
			}
			conf, err = s.confirmations.GetConfirmation(ctx, occ.Template.ID, occ.Date)
			if err != nil {
				return notified, err
			}
		}
		if conf.Status != template.ConfirmationPending || conf.NotifiedAt != nil {
			continue
		}

		date := occ.Date.Format("2006-01-02")
		err = s.notifier.Notify(ctx, occ.Template.MemberID, notify.Notification{
			Title: "Confirm your recurring booking",
			Body:  fmt.Sprintf("Your recurring slot on %s from %s to %s needs confirmation or it will be released.", date, occ.Template.StartClock, occ.Template.EndClock),
			URL:   fmt.Sprintf("/templates/%s/occurrences/%s", occ.Template.ID, date),
		})
		if err != nil {
			s.logger.Warn("confirmation notice failed",
				zap.String("template_id", occ.Template.ID),
				zap.String("member_id", occ.Template.MemberID),
				zap.Error(err),
			)
		}

		if err := s.confirmations.MarkConfirmationNotified(ctx, conf.ID, s.now().UTC()); err != nil {
			return notified, err
		}
		notified++
	}

	return notified, nil
}

// cancelUnconfirmed releases occurrences whose confirmation is still
// pending inside the auto-cancel window. Confirmations already in a
// terminal state are left alone, so members are never renotified about
// an occurrence that was settled.
func (s *Service) cancelUnconfirmed(ctx context.Context) (int, error) {
	from := s.today()
	to := from.AddDate(0, 0, s.autoCancelDays)

	pending, err := s.confirmations.ListConfirmations(ctx, from, to)
	if err != nil {
		return 0, err
	}

	system := booking.Actor{IsAdmin: true}
	cancelled := 0
	for _, conf := range pending {
		if conf.Status != template.ConfirmationPending {
			continue
		}

		if _, err := s.templates.Resolve(ctx, conf.TemplateID, conf.OccurrenceDate, template.ConfirmationCancelled, system); err != nil {
			return cancelled, err
		}
		cancelled++

		date := conf.OccurrenceDate.Format("2006-01-02")
		err = s.notifier.Notify(ctx, conf.MemberID, notify.Notification{
			Title: "Recurring booking released",
			Body:  fmt.Sprintf("Your recurring slot on %s was not confirmed in time and has been released.", date),
			URL:   fmt.Sprintf("/templates/%s/occurrences/%s", conf.TemplateID, date),
		})
		if err != nil {
			s.logger.Warn("cancellation notice failed",
				zap.String("template_id", conf.TemplateID),
				zap.String("member_id", conf.MemberID),
				zap.Error(err),
			)
		}
	}

	return cancelled, nil
}
