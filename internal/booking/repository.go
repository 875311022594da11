package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id string) error

	// HasOverlap checks if there is any conflicting booking for the boat
	// in the given time range (half-open interval semantics).
	// excludeBookingID is used during updates to ignore the booking itself.
	HasOverlap(ctx context.Context, boatID string, start, end time.Time, excludeBookingID string) (bool, error)

	// MarkPendingBefore moves every scheduled booking whose end time is
	// before the cutoff into the pending usage state. Returns the number
	// of bookings transitioned.
	MarkPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// ResolveUsage sets the usage outcome only if the booking is still
	// pending. Returns false if another actor resolved it first.
	ResolveUsage(ctx context.Context, id string, outcome UsageStatus, actorID string, at time.Time) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("boat_id", "member_id", "start_time", "end_time", "usage_status").
		Values(b.BoatID, b.MemberID, b.StartTime, b.EndTime, b.UsageStatus).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		// The bookings table carries an exclusion constraint on
		// (boat_id, time range) for non-cancelled rows. It is the
		// authoritative guard against concurrent double-booking; the
		// service-level overlap check only exists for friendly errors.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrTimeConflict
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.boat_id", "bt.code", "bt.name", "b.member_id", "m.name",
		"b.start_time", "b.end_time", "b.usage_status",
		"b.usage_confirmed_at", "b.usage_confirmed_by",
		"b.created_at", "b.updated_at",
	).
		From("public.bookings b").
		Join("public.boats bt ON b.boat_id = bt.id").
		Join("public.members m ON b.member_id = m.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var b Booking
	if err := row.Scan(
		&b.ID, &b.BoatID, &b.BoatCode, &b.BoatName, &b.MemberID, &b.MemberName,
		&b.StartTime, &b.EndTime, &b.UsageStatus,
		&b.UsageConfirmedAt, &b.UsageConfirmedBy,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.boat_id", "bt.code", "bt.name", "b.member_id", "m.name",
		"b.start_time", "b.end_time", "b.usage_status",
		"b.usage_confirmed_at", "b.usage_confirmed_by",
		"b.created_at", "b.updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.bookings b").
		Join("public.boats bt ON b.boat_id = bt.id").
		Join("public.members m ON b.member_id = m.id")

	if filter.BoatID != "" {
		query = query.Where(squirrel.Eq{"b.boat_id": filter.BoatID})
	}
	if filter.MemberID != "" {
		query = query.Where(squirrel.Eq{"b.member_id": filter.MemberID})
	}
	if filter.UsageStatus != "" {
		query = query.Where(squirrel.Eq{"b.usage_status": filter.UsageStatus})
	}
	// Date range filtering (intersection logic)
	if filter.StartTimeFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.end_time": filter.StartTimeFrom})
	}
	if filter.StartTimeTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.start_time": filter.StartTimeTo})
	}

	orderBy := "b.start_time"
	if filter.SortBy != "" {
		orderBy = "b." + filter.SortBy
	}
	orderDir := "DESC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.BoatID, &b.BoatCode, &b.BoatName, &b.MemberID, &b.MemberName,
			&b.StartTime, &b.EndTime, &b.UsageStatus,
			&b.UsageConfirmedAt, &b.UsageConfirmedBy,
			&b.CreatedAt, &b.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("boat_id", b.BoatID).
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrTimeConflict
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasOverlap(ctx context.Context, boatID string, start, end time.Time, excludeBookingID string) (bool, error) {
	// Two intervals conflict iff start_a < end_b AND end_a > start_b.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"boat_id": boatID}).
		Where(squirrel.NotEq{"usage_status": StatusCancelled}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})

	if excludeBookingID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeBookingID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) MarkPendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("usage_status", StatusPending).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"usage_status": StatusScheduled}).
		Where(squirrel.Lt{"end_time": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark pending query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark pending failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *pgxRepository) ResolveUsage(ctx context.Context, id string, outcome UsageStatus, actorID string, at time.Time) (bool, error) {
	// Conditional update keyed on the current status so two concurrent
	// resolutions cannot both win.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("usage_status", outcome).
		Set("usage_confirmed_at", at).
		Set("usage_confirmed_by", actorID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"usage_status": StatusPending}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build resolve usage query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("resolve usage failed: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}
