package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
)

type Repository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, filter Filter) ([]*Template, int, error)
	ListByWeekday(ctx context.Context, weekday int) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id string) error

	// HasTemplateOverlap checks whether another template claims the same
	// boat on the same weekday with an overlapping clock range.
	HasTemplateOverlap(ctx context.Context, weekday int, boatID string, start, end clock.Clock, excludeTemplateID string) (bool, error)

	// HasOccurrenceConflict reports whether an un-excepted template
	// occurrence holds the boat during [start, end), ignoring
	// excludeTemplateID. It implements the booking package's template
	// conflict contract.
	HasOccurrenceConflict(ctx context.Context, boatID string, start, end time.Time, excludeTemplateID string) (bool, error)

	UpsertException(ctx context.Context, templateID string, date time.Time, reason string) error
	HasException(ctx context.Context, templateID string, date time.Time) (bool, error)
	ListExceptions(ctx context.Context, templateID string, from, to time.Time) ([]*Exception, error)

	GetConfirmation(ctx context.Context, templateID string, date time.Time) (*Confirmation, error)
	ListConfirmations(ctx context.Context, from, to time.Time) ([]*Confirmation, error)

	// CreatePendingConfirmation inserts a pending confirmation unless one
	// already exists for (template, date). Returns whether a row was
	// created; the unique constraint makes repeated sweeps idempotent.
	CreatePendingConfirmation(ctx context.Context, templateID, memberID string, date time.Time) (bool, error)
	MarkConfirmationNotified(ctx context.Context, id string, at time.Time) error

	// ResolveConfirmation upserts the confirmation for (template, date)
	// into a terminal status, stamping responded_at and linking the
	// created booking if any.
	ResolveConfirmation(ctx context.Context, templateID, memberID string, date time.Time, status ConfirmationStatus, bookingID *string, at time.Time) (*Confirmation, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewPgxRepository creates a Repository backed by pgxpool. loc anchors
// occurrence dates and weekday math.
func NewPgxRepository(pool *pgxpool.Pool, loc *time.Location) Repository {
	return &pgxRepository{pool: pool, loc: loc}
}

const templateColumns = `t.id, t.weekday, t.boat_id, bt.code, bt.name,
	t.member_id, m.name, t.start_clock, t.end_clock,
	t.boat_label, t.member_label, t.created_at`

func scanTemplate(row pgx.Row, extra ...any) (*Template, error) {
	var t Template
	var startClock, endClock string

	dest := []any{
		&t.ID, &t.Weekday, &t.BoatID, &t.BoatCode, &t.BoatName,
		&t.MemberID, &t.MemberName, &startClock, &endClock,
		&t.BoatLabel, &t.MemberLabel, &t.CreatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if t.StartClock, err = clock.Parse(startClock); err != nil {
		return nil, fmt.Errorf("bad start_clock on template %s: %w", t.ID, err)
	}
	if t.EndClock, err = clock.Parse(endClock); err != nil {
		return nil, fmt.Errorf("bad end_clock on template %s: %w", t.ID, err)
	}
	return &t, nil
}

func (r *pgxRepository) Create(ctx context.Context, t *Template) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.booking_templates").
		Columns("weekday", "boat_id", "member_id", "start_clock", "end_clock", "boat_label", "member_label").
		Values(t.Weekday, t.BoatID, t.MemberID, t.StartClock.String(), t.EndClock.String(), t.BoatLabel, t.MemberLabel).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create template query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("create template failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Template, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(templateColumns).
		From("public.booking_templates t").
		LeftJoin("public.boats bt ON t.boat_id = bt.id").
		Join("public.members m ON t.member_id = m.id").
		Where(squirrel.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get template query failed: %w", err)
	}

	t, err := scanTemplate(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get template failed: %w", err)
	}
	return t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Template, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(templateColumns + ", count(*) OVER() as total_count").
		From("public.booking_templates t").
		LeftJoin("public.boats bt ON t.boat_id = bt.id").
		Join("public.members m ON t.member_id = m.id")

	if filter.Weekday != nil {
		query = query.Where(squirrel.Eq{"t.weekday": *filter.Weekday})
	}
	if filter.BoatID != "" {
		query = query.Where(squirrel.Eq{"t.boat_id": filter.BoatID})
	}
	if filter.MemberID != "" {
		query = query.Where(squirrel.Eq{"t.member_id": filter.MemberID})
	}

	query = query.OrderBy("t.weekday ASC", "t.start_clock ASC")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 50
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list templates query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates failed: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	var total int

	for rows.Next() {
		t, err := scanTemplate(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan template failed: %w", err)
		}
		templates = append(templates, t)
	}

	return templates, total, nil
}

func (r *pgxRepository) ListByWeekday(ctx context.Context, weekday int) ([]*Template, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(templateColumns).
		From("public.booking_templates t").
		LeftJoin("public.boats bt ON t.boat_id = bt.id").
		Join("public.members m ON t.member_id = m.id").
		Where(squirrel.Eq{"t.weekday": weekday}).
		OrderBy("t.start_clock ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list templates by weekday query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list templates by weekday failed: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template failed: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *Template) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.booking_templates").
		Set("weekday", t.Weekday).
		Set("boat_id", t.BoatID).
		Set("member_id", t.MemberID).
		Set("start_clock", t.StartClock.String()).
		Set("end_clock", t.EndClock.String()).
		Set("boat_label", t.BoatLabel).
		Set("member_label", t.MemberLabel).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update template query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update template failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.booking_templates").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete template query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete template failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasTemplateOverlap(ctx context.Context, weekday int, boatID string, start, end clock.Clock, excludeTemplateID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.booking_templates").
		Where(squirrel.Eq{"weekday": weekday}).
		Where(squirrel.Eq{"boat_id": boatID}).
		Where(squirrel.Lt{"start_clock": end.String()}).
		Where(squirrel.Gt{"end_clock": start.String()})

	if excludeTemplateID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeTemplateID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build template overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check template overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) HasOccurrenceConflict(ctx context.Context, boatID string, start, end time.Time, excludeTemplateID string) (bool, error) {
	start = start.In(r.loc)
	end = end.In(r.loc)

	// Walk each calendar date the interval touches and test the clock
	// window falling on that date. Bookings rarely span more than one.
	for date := dateOnly(start, r.loc); date.Before(end); date = date.AddDate(0, 0, 1) {
		dayStart := clock.Clock(0)
		if date.Equal(dateOnly(start, r.loc)) {
			dayStart = clock.FromTime(start)
		}
		dayEnd := clock.Clock(24 * 60)
		nextDay := date.AddDate(0, 0, 1)
		if end.Before(nextDay) {
			dayEnd = clock.FromTime(end)
		}
		if dayStart >= dayEnd {
			continue
		}

		conflict, err := r.hasOccurrenceConflictOn(ctx, boatID, date, dayStart, dayEnd, excludeTemplateID)
		if err != nil {
			return false, err
		}
		if conflict {
			return true, nil
		}
	}
	return false, nil
}

func (r *pgxRepository) hasOccurrenceConflictOn(ctx context.Context, boatID string, date time.Time, start, end clock.Clock, excludeTemplateID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM public.booking_templates t
			WHERE t.boat_id = $1
			  AND t.weekday = $2
			  AND t.start_clock < $3
			  AND t.end_clock > $4
			  AND ($5 = '' OR t.id::text <> $5)
			  AND NOT EXISTS (
				SELECT 1 FROM public.template_exceptions e
				WHERE e.template_id = t.id AND e.exception_date = $6
			  )
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query,
		boatID, int(date.Weekday()), end.String(), start.String(), excludeTemplateID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check occurrence conflict failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UpsertException(ctx context.Context, templateID string, date time.Time, reason string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.template_exceptions").
		Columns("template_id", "exception_date", "reason").
		Values(templateID, date, reason).
		Suffix("ON CONFLICT (template_id, exception_date) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert exception query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert exception failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) HasException(ctx context.Context, templateID string, date time.Time) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub, args, err := psql.Select("1").
		From("public.template_exceptions").
		Where(squirrel.Eq{"template_id": templateID, "exception_date": date}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build check exception query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check exception failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListExceptions(ctx context.Context, templateID string, from, to time.Time) ([]*Exception, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select("id", "template_id", "exception_date", "reason", "created_at").
		From("public.template_exceptions").
		Where(squirrel.GtOrEq{"exception_date": from}).
		Where(squirrel.LtOrEq{"exception_date": to}).
		OrderBy("exception_date ASC")

	if templateID != "" {
		query = query.Where(squirrel.Eq{"template_id": templateID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list exceptions query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list exceptions failed: %w", err)
	}
	defer rows.Close()

	var exceptions []*Exception
	for rows.Next() {
		var e Exception
		if err := rows.Scan(&e.ID, &e.TemplateID, &e.ExceptionDate, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exception failed: %w", err)
		}
		exceptions = append(exceptions, &e)
	}
	return exceptions, nil
}

const confirmationColumns = "id, template_id, member_id, occurrence_date, status, booking_id, notified_at, responded_at, created_at"

func scanConfirmation(row pgx.Row) (*Confirmation, error) {
	var c Confirmation
	if err := row.Scan(
		&c.ID, &c.TemplateID, &c.MemberID, &c.OccurrenceDate, &c.Status,
		&c.BookingID, &c.NotifiedAt, &c.RespondedAt, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) GetConfirmation(ctx context.Context, templateID string, date time.Time) (*Confirmation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(confirmationColumns).
		From("public.template_confirmations").
		Where(squirrel.Eq{"template_id": templateID, "occurrence_date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get confirmation query failed: %w", err)
	}

	c, err := scanConfirmation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		return nil, fmt.Errorf("get confirmation failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) ListConfirmations(ctx context.Context, from, to time.Time) ([]*Confirmation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(confirmationColumns).
		From("public.template_confirmations").
		Where(squirrel.GtOrEq{"occurrence_date": from}).
		Where(squirrel.LtOrEq{"occurrence_date": to}).
		OrderBy("occurrence_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list confirmations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list confirmations failed: %w", err)
	}
	defer rows.Close()

	var confirmations []*Confirmation
	for rows.Next() {
		var c Confirmation
		if err := rows.Scan(
			&c.ID, &c.TemplateID, &c.MemberID, &c.OccurrenceDate, &c.Status,
			&c.BookingID, &c.NotifiedAt, &c.RespondedAt, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan confirmation failed: %w", err)
		}
		confirmations = append(confirmations, &c)
	}
	return confirmations, nil
}

func (r *pgxRepository) CreatePendingConfirmation(ctx context.Context, templateID, memberID string, date time.Time) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.template_confirmations").
		Columns("template_id", "member_id", "occurrence_date", "status").
		Values(templateID, memberID, date, ConfirmationPending).
		Suffix("ON CONFLICT (template_id, occurrence_date) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build create pending confirmation query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("create pending confirmation failed: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *pgxRepository) MarkConfirmationNotified(ctx context.Context, id string, at time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.template_confirmations").
		Set("notified_at", at).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"notified_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark notified query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark notified failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ResolveConfirmation(ctx context.Context, templateID, memberID string, date time.Time, status ConfirmationStatus, bookingID *string, at time.Time) (*Confirmation, error) {
	const query = `
		INSERT INTO public.template_confirmations
			(template_id, member_id, occurrence_date, status, booking_id, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (template_id, occurrence_date) DO UPDATE SET
			status = EXCLUDED.status,
			booking_id = COALESCE(EXCLUDED.booking_id, public.template_confirmations.booking_id),
			responded_at = EXCLUDED.responded_at
		RETURNING ` + confirmationColumns

	c, err := scanConfirmation(r.pool.QueryRow(ctx, query, templateID, memberID, date, status, bookingID, at))
	if err != nil {
		return nil, fmt.Errorf("resolve confirmation failed: %w", err)
	}
	return c, nil
}

// dateOnly truncates t to midnight in loc.
func dateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
