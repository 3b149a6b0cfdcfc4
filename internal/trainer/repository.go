package trainer

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, t *Trainer) error
	GetByID(ctx context.Context, id string) (*Trainer, error)
	List(ctx context.Context, filter Filter) ([]*Trainer, int, error)
	Update(ctx context.Context, t *Trainer) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) Create(ctx context.Context, t *Trainer) error {
	query, args, err := psql.Insert("public.trainers").
		Columns("name", "specialty", "available").
		Values(t.Name, t.Specialty, t.Available).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create trainer query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("create trainer failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Trainer, error) {
	query, args, err := psql.Select("id", "name", "specialty", "available", "created_at", "updated_at").
		From("public.trainers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get trainer query failed: %w", err)
	}

	var t Trainer
	err = r.pool.QueryRow(ctx, query, args...).
		Scan(&t.ID, &t.Name, &t.Specialty, &t.Available, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get trainer failed: %w", err)
	}
	return &t, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Trainer, int, error) {
	query := psql.Select("id", "name", "specialty", "available", "created_at", "updated_at",
		"count(*) OVER() AS total_count").
		From("public.trainers")

	if filter.Available != nil {
		query = query.Where(squirrel.Eq{"available": *filter.Available})
	}
	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Name + "%"})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.OrderBy("name ASC", "id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list trainers query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list trainers failed: %w", err)
	}
	defer rows.Close()

	var result []*Trainer
	var total int
	for rows.Next() {
		var t Trainer
		if err := rows.Scan(&t.ID, &t.Name, &t.Specialty, &t.Available, &t.CreatedAt, &t.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan trainer failed: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate trainers failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, t *Trainer) error {
	query, args, err := psql.Update("public.trainers").
		Set("name", t.Name).
		Set("specialty", t.Specialty).
		Set("available", t.Available).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": t.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update trainer query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update trainer failed: %w", err)
	}
	return nil
}
