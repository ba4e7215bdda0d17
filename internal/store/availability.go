package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psyconnect/psyconnect_backend/internal/model"
)

type AvailabilityStore struct {
	pool *pgxpool.Pool
}

func NewAvailabilityStore(pool *pgxpool.Pool) *AvailabilityStore {
	return &AvailabilityStore{pool: pool}
}

const slotColumns = `id, psychologist_id, start_time, end_time, status, reason, created_at, updated_at`

func scanSlot(row pgx.Row) (*model.AvailabilitySlot, error) {
	var sl model.AvailabilitySlot
	err := row.Scan(
		&sl.ID,
		&sl.PsychologistID,
		&sl.Start,
		&sl.End,
		&sl.Status,
		&sl.Reason,
		&sl.CreatedAt,
		&sl.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sl, nil
}

func (s *AvailabilityStore) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (psychologist_id, start_time, end_time, status, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(
		ctx, query,
		slot.PsychologistID,
		slot.Start,
		slot.End,
		slot.Status,
		slot.Reason,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create availability slot: %w", err)
	}

	return nil
}

func (s *AvailabilityStore) GetByID(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`

	sl, err := scanSlot(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get availability slot: %w", err)
	}
	return sl, nil
}

// ListByPsychologist returns a psychologist's slots, optionally narrowed to
// windows intersecting [from, to). Nil bounds are open-ended.
func (s *AvailabilityStore) ListByPsychologist(ctx context.Context, psychologistID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE psychologist_id = $1
		  AND ($2::timestamptz IS NULL OR end_time > $2)
		  AND ($3::timestamptz IS NULL OR start_time < $3)
		ORDER BY start_time
	`

	rows, err := s.pool.Query(ctx, query, psychologistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list availability slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		sl, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability slot: %w", err)
		}
		slots = append(slots, sl)
	}

	return slots, rows.Err()
}

// FindBlockedCovering returns a blocked slot whose [start_time, end_time)
// window contains the instant, or ErrNotFound. When several overlapping
// slots cover the instant, blocked wins: any blocked cover vetoes booking.
func (s *AvailabilityStore) FindBlockedCovering(ctx context.Context, psychologistID uuid.UUID, instant time.Time) (*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE psychologist_id = $1
		  AND status = 'blocked'
		  AND start_time <= $2
		  AND end_time > $2
		ORDER BY start_time
		LIMIT 1
	`

	sl, err := scanSlot(s.pool.QueryRow(ctx, query, psychologistID, instant))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find blocked slot: %w", err)
	}
	return sl, nil
}

// ListAvailableOverlapping returns available slots intersecting [from, to).
func (s *AvailabilityStore) ListAvailableOverlapping(ctx context.Context, psychologistID uuid.UUID, from, to time.Time) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE psychologist_id = $1
		  AND status = 'available'
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`

	rows, err := s.pool.Query(ctx, query, psychologistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		sl, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability slot: %w", err)
		}
		slots = append(slots, sl)
	}

	return slots, rows.Err()
}

// Update rewrites the mutable fields of a slot owned by the psychologist.
func (s *AvailabilityStore) Update(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		UPDATE availability_slots
		SET start_time = $3, end_time = $4, status = $5, reason = $6, updated_at = now()
		WHERE id = $1 AND psychologist_id = $2
		RETURNING updated_at
	`

	err := s.pool.QueryRow(
		ctx, query,
		slot.ID,
		slot.PsychologistID,
		slot.Start,
		slot.End,
		slot.Status,
		slot.Reason,
	).Scan(&slot.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("update availability slot: %w", err)
	}

	return nil
}

func (s *AvailabilityStore) Delete(ctx context.Context, psychologistID, id uuid.UUID) error {
	query := `DELETE FROM availability_slots WHERE id = $1 AND psychologist_id = $2`

	result, err := s.pool.Exec(ctx, query, id, psychologistID)
	if err != nil {
		return fmt.Errorf("delete availability slot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
