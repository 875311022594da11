package boat

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing boat data from storage.
type Repository interface {
	Create(ctx context.Context, b *Boat) error
	GetByID(ctx context.Context, id string) (*Boat, error)
	List(ctx context.Context, filter Filter) ([]*Boat, int, error)
	Update(ctx context.Context, b *Boat) error
	Delete(ctx context.Context, id string) error

	GrantPermission(ctx context.Context, boatID, memberID string) error
	RevokePermission(ctx context.Context, boatID, memberID string) error
	HasPermission(ctx context.Context, boatID, memberID string) (bool, error)
	ListPermissions(ctx context.Context, boatID string) ([]*Permission, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *Boat) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.boats").
		Columns("code", "name", "boat_type", "usage_type", "in_service").
		Values(b.Code, b.Name, b.BoatType, b.UsageType, b.InService).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create boat query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrCodeAlreadyUsed
		}
		return fmt.Errorf("create boat failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Boat, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "code", "name", "boat_type", "usage_type", "in_service", "created_at").
		From("public.boats").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get boat query failed: %w", err)
	}

	var b Boat
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&b.ID, &b.Code, &b.Name, &b.BoatType, &b.UsageType, &b.InService, &b.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get boat failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Boat, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "code", "name", "boat_type", "usage_type", "in_service", "created_at",
		"count(*) OVER() as total_count",
	).From("public.boats")

	if filter.BoatType != "" {
		query = query.Where(squirrel.Eq{"boat_type": filter.BoatType})
	}
	if filter.UsageType != "" {
		query = query.Where(squirrel.Eq{"usage_type": filter.UsageType})
	}
	if filter.InService != nil {
		query = query.Where(squirrel.Eq{"in_service": *filter.InService})
	}

	query = query.OrderBy("code ASC")

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
		return nil, 0, fmt.Errorf("build list boats query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list boats failed: %w", err)
	}
	defer rows.Close()

	var boats []*Boat
	var total int

	for rows.Next() {
		var b Boat
		if err := rows.Scan(
			&b.ID, &b.Code, &b.Name, &b.BoatType, &b.UsageType, &b.InService, &b.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan boat failed: %w", err)
		}
		boats = append(boats, &b)
	}

	return boats, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Boat) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.boats").
		Set("code", b.Code).
		Set("name", b.Name).
		Set("boat_type", b.BoatType).
		Set("usage_type", b.UsageType).
		Set("in_service", b.InService).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update boat query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrCodeAlreadyUsed
		}
		return fmt.Errorf("update boat failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.boats").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete boat query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete boat failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) GrantPermission(ctx context.Context, boatID, memberID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.boat_permissions").
		Columns("boat_id", "member_id").
		Values(boatID, memberID).
		Suffix("ON CONFLICT (boat_id, member_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build grant permission query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("grant permission failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) RevokePermission(ctx context.Context, boatID, memberID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.boat_permissions").
		Where(squirrel.Eq{"boat_id": boatID, "member_id": memberID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke permission query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("revoke permission failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrGrantNotFound
	}
	return nil
}

func (r *pgxRepository) HasPermission(ctx context.Context, boatID, memberID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sub, args, err := psql.Select("1").
		From("public.boat_permissions").
		Where(squirrel.Eq{"boat_id": boatID, "member_id": memberID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build check permission query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check permission failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListPermissions(ctx context.Context, boatID string) ([]*Permission, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("boat_id", "member_id", "created_at").
		From("public.boat_permissions").
		Where(squirrel.Eq{"boat_id": boatID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions failed: %w", err)
	}
	defer rows.Close()

	var grants []*Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.BoatID, &p.MemberID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission failed: %w", err)
		}
		grants = append(grants, &p)
	}
	return grants, nil
}
