package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RotationRecord is a completed rotation in the journal.
type RotationRecord struct {
	RotationID   int64
	SessionID    string
	Seq          uint64
	Token        string // Face token, or empty for a middle slice
	Slice        string // e.g. "x2"
	Direction    string // "up" or "down"
	StartTick    uint64
	CompleteTick uint64
	RecordedAt   time.Time
}

// RotationRepository appends and reads journal entries.
type RotationRepository struct {
	db *DB
}

// NewRotationRepository creates a new rotation repository.
func NewRotationRepository(db *DB) *RotationRepository {
	return &RotationRepository{db: db}
}

// Append records a completed rotation and returns its row ID.
func (r *RotationRepository) Append(rec RotationRecord) (int64, error) {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}

	result, err := r.db.Exec(`
		INSERT INTO rotations (session_id, seq, token, slice, direction, start_tick, complete_tick, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.SessionID, rec.Seq, rec.Token, rec.Slice, rec.Direction,
		rec.StartTick, rec.CompleteTick, formatTime(rec.RecordedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to append rotation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get rotation ID: %w", err)
	}

	return id, nil
}

// AppendBatch records several rotations in one transaction.
func (r *RotationRepository) AppendBatch(recs []RotationRecord) error {
	return r.db.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO rotations (session_id, seq, token, slice, direction, start_tick, complete_tick, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, rec := range recs {
			if rec.RecordedAt.IsZero() {
				rec.RecordedAt = now
			}
			_, err := stmt.Exec(rec.SessionID, rec.Seq, rec.Token, rec.Slice, rec.Direction,
				rec.StartTick, rec.CompleteTick, formatTime(rec.RecordedAt))
			if err != nil {
				return fmt.Errorf("failed to append rotation %d: %w", rec.Seq, err)
			}
		}
		return nil
	})
}

// GetBySession retrieves a session's rotations in sequence order.
func (r *RotationRepository) GetBySession(sessionID string) ([]RotationRecord, error) {
	rows, err := r.db.Query(`
		SELECT rotation_id, session_id, seq, token, slice, direction, start_tick, complete_tick, recorded_at
		FROM rotations
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rotations: %w", err)
	}
	defer rows.Close()

	var recs []RotationRecord
	for rows.Next() {
		var rec RotationRecord
		var recordedAt string
		err := rows.Scan(&rec.RotationID, &rec.SessionID, &rec.Seq, &rec.Token, &rec.Slice,
			&rec.Direction, &rec.StartTick, &rec.CompleteTick, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rotation: %w", err)
		}
		rec.RecordedAt, _ = time.Parse(timeLayout, recordedAt)
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// Count returns the number of rotations in a session.
func (r *RotationRepository) Count(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM rotations WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rotations: %w", err)
	}
	return count, nil
}
