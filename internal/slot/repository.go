package slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/gym-booking-backend/internal/db"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

type Repository interface {
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id string) (*Slot, error)
	ListByTrainer(ctx context.Context, trainerID string) ([]*Slot, error)
	Update(ctx context.Context, s *Slot) error
	Delete(ctx context.Context, id string) error

	// FindOverlap returns a slot of the trainer on day whose window overlaps w,
	// ignoring excludeID. It returns nil when there is none.
	FindOverlap(ctx context.Context, trainerID string, day schedule.Weekday, w schedule.Window, excludeID string) (*Slot, error)

	// WithinLock runs fn while holding exclusive locks on keys. Writes made via
	// the repository passed to fn become visible atomically when fn succeeds.
	WithinLock(ctx context.Context, keys []string, fn func(ctx context.Context, repo Repository) error) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
	db   db.DBTX
	tx   pgx.Tx
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, db: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var slotColumns = []string{"id", "trainer_id", "day", "start_minute", "end_minute", "created_at", "updated_at"}

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	var day int16
	var start, end int32
	if err := row.Scan(&s.ID, &s.TrainerID, &day, &start, &end, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Day = schedule.Weekday(day)
	s.Window = schedule.Window{Start: schedule.Clock(start), End: schedule.Clock(end)}
	return &s, nil
}

func (r *pgxRepository) WithinLock(ctx context.Context, keys []string, fn func(ctx context.Context, repo Repository) error) error {
	if r.tx != nil {
		if err := db.LockKeys(ctx, r.tx, keys...); err != nil {
			return err
		}
		return fn(ctx, r)
	}

	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := db.LockKeys(ctx, tx, keys...); err != nil {
			return err
		}
		return fn(ctx, &pgxRepository{pool: r.pool, db: tx, tx: tx})
	})
}

func (r *pgxRepository) Create(ctx context.Context, s *Slot) error {
	query, args, err := psql.Insert("public.slots").
		Columns("trainer_id", "day", "start_minute", "end_minute").
		Values(s.TrainerID, int(s.Day), int(s.Window.Start), int(s.Window.End)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create slot query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Slot, error) {
	query, args, err := psql.Select(slotColumns...).
		From("public.slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get slot query failed: %w", err)
	}

	s, err := scanSlot(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) ListByTrainer(ctx context.Context, trainerID string) ([]*Slot, error) {
	query, args, err := psql.Select(slotColumns...).
		From("public.slots").
		Where(squirrel.Eq{"trainer_id": trainerID}).
		OrderBy("day ASC", "start_minute ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list slots query failed: %w", err)
	}

	return r.query(ctx, query, args)
}

func (r *pgxRepository) FindOverlap(ctx context.Context, trainerID string, day schedule.Weekday, w schedule.Window, excludeID string) (*Slot, error) {
	query := psql.Select(slotColumns...).
		From("public.slots").
		Where(squirrel.Eq{"trainer_id": trainerID, "day": int(day)}).
		Where(squirrel.Lt{"start_minute": int(w.End)}).
		Where(squirrel.Gt{"end_minute": int(w.Start)})

	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.OrderBy("start_minute ASC").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlap query failed: %w", err)
	}

	slots, err := r.query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}
	return slots[0], nil
}

func (r *pgxRepository) Update(ctx context.Context, s *Slot) error {
	query, args, err := psql.Update("public.slots").
		Set("day", int(s.Day)).
		Set("start_minute", int(s.Window.Start)).
		Set("end_minute", int(s.Window.End)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update slot query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update slot failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.slots").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete slot query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete slot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) query(ctx context.Context, sql string, args []any) ([]*Slot, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query slots failed: %w", err)
	}
	defer rows.Close()

	var result []*Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots failed: %w", err)
	}
	return result, nil
}
