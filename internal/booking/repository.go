package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/gym-booking-backend/internal/db"
	"github.com/nekogravitycat/gym-booking-backend/internal/schedule"
)

// errStatusChanged means a compare-and-set status update found the booking in
// a different status than expected.
var errStatusChanged = errors.New("booking status changed")

const activeSlotIndex = "idx_bookings_active_slot_date"

type Repository interface {
	// Create inserts a pending booking. A second active booking for the same
	// (slot, date) fails with ErrSlotTaken.
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Delete(ctx context.Context, id string) error

	// FindActive returns the active booking for (slotID, date), ignoring excludeID,
	// or nil when the occurrence is free.
	FindActive(ctx context.Context, slotID string, date time.Time, excludeID string) (*Booking, error)
	// ListActiveBetween returns the trainer's active bookings dated within [from, to].
	ListActiveBetween(ctx context.Context, trainerID string, from, to time.Time) ([]*Booking, error)
	// ListPendingBefore returns up to limit pending bookings dated before date.
	ListPendingBefore(ctx context.Context, date time.Time, limit int) ([]*Booking, error)

	// UpdateStatus moves the booking from one status to another only if it is
	// still in from. It returns errStatusChanged when it is not.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Booking, error)
	// Reschedule writes the slot snapshot and date of b if it is still pending.
	Reschedule(ctx context.Context, b *Booking) error

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

var bookingColumns = []string{
	"id", "trainer_id", "slot_id", "slot_day", "slot_start_minute", "slot_end_minute",
	"booking_date", "client_name", "client_phone", "client_email", "notes", "status",
	"created_by", "created_at", "updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	var day int16
	var start, end int32
	var status string

	dest := []any{
		&b.ID, &b.TrainerID, &b.SlotID, &day, &start, &end,
		&b.Date, &b.ClientName, &b.Contact.Phone, &b.Contact.Email, &b.Notes, &status,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	b.SlotDay = schedule.Weekday(day)
	b.SlotWindow = schedule.Window{Start: schedule.Clock(start), End: schedule.Clock(end)}
	b.Date = schedule.DateOf(b.Date)
	b.Status = Status(status)
	return &b, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
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

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("trainer_id", "slot_id", "slot_day", "slot_start_minute", "slot_end_minute",
			"booking_date", "client_name", "client_phone", "client_email", "notes", "status", "created_by").
		Values(b.TrainerID, b.SlotID, int(b.SlotDay), int(b.SlotWindow.Start), int(b.SlotWindow.End),
			b.Date, b.ClientName, b.Contact.Phone, b.Contact.Email, b.Notes, string(b.Status), b.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err, activeSlotIndex) {
			return ErrSlotTaken
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(append(bookingColumns, "count(*) OVER() AS total_count")...).
		From("public.bookings")

	if filter.CreatedBy != "" {
		query = query.Where(squirrel.Eq{"created_by": filter.CreatedBy})
	}
	if filter.TrainerID != "" {
		query = query.Where(squirrel.Eq{"trainer_id": filter.TrainerID})
	}
	if filter.SlotID != "" {
		query = query.Where(squirrel.Eq{"slot_id": filter.SlotID})
	}
	if filter.ClientEmail != "" {
		query = query.Where(squirrel.Eq{"lower(client_email)": strings.ToLower(filter.ClientEmail)})
	}
	if filter.ClientPhone != "" {
		query = query.Where(squirrel.Eq{"client_phone": filter.ClientPhone})
	}
	if len(filter.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"booking_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"booking_date": *filter.DateTo})
	}

	orderDir := "ASC"
	if strings.EqualFold(filter.SortOrder, "DESC") {
		orderDir = "DESC"
	}
	query = query.OrderBy("booking_date "+orderDir, "slot_start_minute "+orderDir, "id ASC")

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

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.bookings").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) FindActive(ctx context.Context, slotID string, date time.Time, excludeID string) (*Booking, error) {
	query := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{
			"slot_id":      slotID,
			"booking_date": schedule.DateOf(date),
			"status":       statusStrings(ActiveStatuses),
		})
	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find active booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) ListActiveBetween(ctx context.Context, trainerID string, from, to time.Time) ([]*Booking, error) {
	sql, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"trainer_id": trainerID, "status": statusStrings(ActiveStatuses)}).
		Where(squirrel.GtOrEq{"booking_date": schedule.DateOf(from)}).
		Where(squirrel.LtOrEq{"booking_date": schedule.DateOf(to)}).
		OrderBy("booking_date ASC", "slot_start_minute ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active bookings query failed: %w", err)
	}
	return r.query(ctx, sql, args)
}

func (r *pgxRepository) ListPendingBefore(ctx context.Context, date time.Time, limit int) ([]*Booking, error) {
	sql, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"status": string(StatusPending)}).
		Where(squirrel.Lt{"booking_date": schedule.DateOf(date)}).
		OrderBy("booking_date ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list pending bookings query failed: %w", err)
	}
	return r.query(ctx, sql, args)
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (*Booking, error) {
	sql, args, err := psql.Update("public.bookings").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update booking status query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, sql, args...))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, errStatusChanged
}

func (r *pgxRepository) Reschedule(ctx context.Context, b *Booking) error {
	sql, args, err := psql.Update("public.bookings").
		Set("slot_id", b.SlotID).
		Set("slot_day", int(b.SlotDay)).
		Set("slot_start_minute", int(b.SlotWindow.Start)).
		Set("slot_end_minute", int(b.SlotWindow.End)).
		Set("booking_date", b.Date).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "status": string(StatusPending)}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build reschedule booking query failed: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&b.UpdatedAt)
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err, activeSlotIndex) {
		return ErrSlotTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("reschedule booking failed: %w", err)
	}

	cur, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	return notPendingError(cur)
}

func (r *pgxRepository) query(ctx context.Context, sql string, args []any) ([]*Booking, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return result, nil
}
