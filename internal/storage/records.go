package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Insert stores a new candidate record and returns its generated ID.
// The record always starts non-deleted with current_status Submitted and
// a single seeded history entry timestamped at insertion.
func (db *DB) Insert(ctx context.Context, rec *CandidateRecord, initialStatus string) (string, error) {
	id := uuid.NewString()
	rec.ID = id
	rec.IsDeleted = false
	rec.CurrentStatus = initialStatus
	rec.StatusHistory = []StatusEntry{{Status: initialStatus, Timestamp: NowTimestamp()}}
	NormalizeRecord(rec)

	knownData, err := json.Marshal(rec.KnownData)
	if err != nil {
		return "", fmt.Errorf("marshal known_data: %w", err)
	}
	history, err := json.Marshal(rec.StatusHistory)
	if err != nil {
		return "", fmt.Errorf("marshal status_history: %w", err)
	}
	var fileMeta, processing []byte
	if rec.FileMetadata != nil {
		if fileMeta, err = json.Marshal(rec.FileMetadata); err != nil {
			return "", fmt.Errorf("marshal file_metadata: %w", err)
		}
	}
	if rec.Processing != nil {
		if processing, err = json.Marshal(rec.Processing); err != nil {
			return "", fmt.Errorf("marshal processing: %w", err)
		}
	}

	const q = `INSERT INTO candidate_records
        (id, known_data, file_metadata, processing, extracted_text, current_status, status_history, is_deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`
	_, err = db.connection.ExecContext(ctx, q, id, knownData,
		nullableJSON(fileMeta), nullableJSON(processing), rec.ExtractedText,
		rec.CurrentStatus, history)
	if err != nil {
		return "", err
	}
	return id, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

const recordColumns = `id, known_data, file_metadata, processing, extracted_text, current_status, status_history, is_deleted`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*CandidateRecord, error) {
	rec := &CandidateRecord{}
	var knownData, history []byte
	var fileMeta, processing sql.NullString
	err := row.Scan(&rec.ID, &knownData, &fileMeta, &processing,
		&rec.ExtractedText, &rec.CurrentStatus, &history, &rec.IsDeleted)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(knownData, &rec.KnownData); err != nil {
		return nil, fmt.Errorf("unmarshal known_data: %w", err)
	}
	if err := json.Unmarshal(history, &rec.StatusHistory); err != nil {
		return nil, fmt.Errorf("unmarshal status_history: %w", err)
	}
	if fileMeta.Valid {
		rec.FileMetadata = &FileMetadata{}
		if err := json.Unmarshal([]byte(fileMeta.String), rec.FileMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal file_metadata: %w", err)
		}
	}
	if processing.Valid {
		rec.Processing = &Processing{}
		if err := json.Unmarshal([]byte(processing.String), rec.Processing); err != nil {
			return nil, fmt.Errorf("unmarshal processing: %w", err)
		}
	}
	NormalizeRecord(rec)
	return rec, nil
}

// FindByID returns a record regardless of its deleted flag, so deleted
// records stay individually retrievable. A malformed ID is treated as
// not found rather than an error.
func (db *DB) FindByID(ctx context.Context, id string) (*CandidateRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	q := `SELECT ` + recordColumns + ` FROM candidate_records WHERE id = $1`
	rec, err := scanRecord(db.connection.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (db *DB) queryRecords(ctx context.Context, q string, args ...interface{}) ([]*CandidateRecord, error) {
	rows, err := db.connection.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*CandidateRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// FindAll lists records. deleted nil or false selects only non-deleted
// records; true selects only deleted ones.
func (db *DB) FindAll(ctx context.Context, deleted *bool) ([]*CandidateRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM candidate_records WHERE NOT is_deleted`
	if deleted != nil && *deleted {
		q = `SELECT ` + recordColumns + ` FROM candidate_records WHERE is_deleted`
	}
	return db.queryRecords(ctx, q)
}

// FindByStatus lists non-deleted records whose current_status equals
// status. Deleted records are excluded unconditionally so processors
// never touch them.
func (db *DB) FindByStatus(ctx context.Context, status string) ([]*CandidateRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM candidate_records
        WHERE current_status = $1 AND NOT is_deleted`
	return db.queryRecords(ctx, q, status)
}

func historyEntryJSON(statusStr string) ([]byte, error) {
	return json.Marshal([]StatusEntry{{Status: statusStr, Timestamp: NowTimestamp()}})
}

// UpdateStatus sets current_status and appends the matching history
// entry in a single statement. Returns whether a record was modified.
func (db *DB) UpdateStatus(ctx context.Context, id, statusStr string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	entry, err := historyEntryJSON(statusStr)
	if err != nil {
		return false, err
	}
	const q = `UPDATE candidate_records
        SET current_status = $2, status_history = status_history || $3::jsonb
        WHERE id = $1`
	res, err := db.connection.ExecContext(ctx, q, id, statusStr, entry)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AdvanceStatus moves a record from one lifecycle status to the next
// only if it is still in the expected status. Two concurrent runs of the
// same processor can both pick a record up; this conditional update is
// what keeps the second one from advancing it twice.
func (db *DB) AdvanceStatus(ctx context.Context, id, from, to string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	entry, err := historyEntryJSON(to)
	if err != nil {
		return false, err
	}
	const q = `UPDATE candidate_records
        SET current_status = $3, status_history = status_history || $4::jsonb
        WHERE id = $1 AND current_status = $2 AND NOT is_deleted`
	res, err := db.connection.ExecContext(ctx, q, id, from, to, entry)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AppendHistory appends an auxiliary entry to status_history without
// touching current_status.
func (db *DB) AppendHistory(ctx context.Context, id, statusStr string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	entry, err := historyEntryJSON(statusStr)
	if err != nil {
		return false, err
	}
	const q = `UPDATE candidate_records
        SET status_history = status_history || $2::jsonb
        WHERE id = $1`
	res, err := db.connection.ExecContext(ctx, q, id, entry)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// knownDataPatch filters updates down to the mergeable known_data keys:
// protected keys and keys outside the schema are dropped, "unknown"
// strings become explicit nulls. Returns the jsonb patch document and
// how many keys survived.
func knownDataPatch(updates map[string]*string) ([]byte, int, error) {
	valid := (&KnownData{}).fields()
	patch := make(map[string]*string, len(updates))
	for key, val := range updates {
		if protectedFields[key] {
			continue
		}
		if _, ok := valid[key]; !ok {
			continue
		}
		patch[key] = normalizeValue(val)
	}
	out, err := json.Marshal(patch)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal known_data patch: %w", err)
	}
	return out, len(patch), nil
}

// UpdateFieldsOnly merges the provided keys into known_data. Protected
// keys (status, current_status, status_history, phone) are silently
// dropped; "unknown" strings become nulls in the merge. The merge is a
// single jsonb concatenation so concurrent merges of different keys
// never overwrite each other. Returns false when the record is missing
// or deleted, true when there was nothing left to merge.
func (db *DB) UpdateFieldsOnly(ctx context.Context, id string, updates map[string]*string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	patch, _, err := knownDataPatch(updates)
	if err != nil {
		return false, err
	}
	// an empty patch merges "{}", which still reports whether the
	// record exists and is not deleted
	const q = `UPDATE candidate_records
        SET known_data = known_data || $2::jsonb
        WHERE id = $1 AND NOT is_deleted`
	res, err := db.connection.ExecContext(ctx, q, id, patch)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (db *DB) setDeleted(ctx context.Context, id string, deleted bool) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	const q = `UPDATE candidate_records SET is_deleted = $2 WHERE id = $1`
	res, err := db.connection.ExecContext(ctx, q, id, deleted)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SoftDelete marks a record deleted. The row is never physically
// removed.
func (db *DB) SoftDelete(ctx context.Context, id string) (bool, error) {
	return db.setDeleted(ctx, id, true)
}

// Restore clears the deleted flag. Restoring an already-restored record
// is a harmless no-op that still reports the record as found.
func (db *DB) Restore(ctx context.Context, id string) (bool, error) {
	return db.setDeleted(ctx, id, false)
}
