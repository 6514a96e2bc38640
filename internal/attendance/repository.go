// Package attendance tracks employee clock-in/clock-out punches. A punch is
// authenticated by PIN only, so the terminal at the staff entrance never
// holds a session.
package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/doppler-bar/barpos/internal/db"
)

// Record is one shift punch; ClockOut stays nil while the shift is open.
type Record struct {
	ID       int64      `json:"record_id"`
	UserID   int64      `json:"user_id"`
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
}

type ReportRow struct {
	RecordID int64      `json:"record_id"`
	UserID   int64      `json:"user_id"`
	FullName string     `json:"full_name"`
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
}

// StaffPIN pairs an active employee with their hashed PIN for matching.
type StaffPIN struct {
	UserID  int64
	PINHash string
}

type Repository interface {
	ActivePINs(ctx context.Context) ([]StaffPIN, error)
	// OpenRecord returns the user's unclosed punch, or nil when none exists.
	OpenRecord(ctx context.Context, userID int64) (*Record, error)
	ClockIn(ctx context.Context, userID int64, at time.Time) (int64, error)
	ClockOut(ctx context.Context, recordID int64, at time.Time) error
	Report(ctx context.Context, start, end time.Time, userID *int64) ([]ReportRow, error)
}

type repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repository{q: q}
}

func (r *repository) ActivePINs(ctx context.Context) ([]StaffPIN, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id, pin_hash FROM users WHERE is_active`)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff pins: %w", err)
	}
	defer rows.Close()

	var pins []StaffPIN
	for rows.Next() {
		var p StaffPIN
		if err := rows.Scan(&p.UserID, &p.PINHash); err != nil {
			return nil, fmt.Errorf("failed to scan staff pin: %w", err)
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}

func (r *repository) OpenRecord(ctx context.Context, userID int64) (*Record, error) {
	rows, err := r.q.Query(ctx, `
		SELECT record_id, user_id, clock_in, clock_out
		FROM attendance_records
		WHERE user_id = $1 AND clock_out IS NULL`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up open attendance record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var rec Record
	if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ClockIn, &rec.ClockOut); err != nil {
		return nil, fmt.Errorf("failed to scan attendance record: %w", err)
	}
	return &rec, nil
}

func (r *repository) ClockIn(ctx context.Context, userID int64, at time.Time) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO attendance_records (user_id, clock_in) VALUES ($1, $2)
		RETURNING record_id`, userID, at).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to clock in user %d: %w", userID, err)
	}
	return id, nil
}

func (r *repository) ClockOut(ctx context.Context, recordID int64, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE attendance_records SET clock_out = $1 WHERE record_id = $2`, at, recordID)
	if err != nil {
		return fmt.Errorf("failed to clock out record %d: %w", recordID, err)
	}
	return nil
}

func (r *repository) Report(ctx context.Context, start, end time.Time, userID *int64) ([]ReportRow, error) {
	query := `
		SELECT ar.record_id, ar.user_id, u.full_name, ar.clock_in, ar.clock_out
		FROM attendance_records ar
		JOIN users u ON ar.user_id = u.user_id
		WHERE ar.clock_in::date BETWEEN $1 AND $2`
	args := []any{start, end}
	if userID != nil {
		query += ` AND ar.user_id = $3`
		args = append(args, *userID)
	}
	query += ` ORDER BY ar.clock_in DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance report: %w", err)
	}
	defer rows.Close()

	var report []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.RecordID, &row.UserID, &row.FullName, &row.ClockIn, &row.ClockOut); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
