// Package sqlite provides SQLite-backed arrangement persistence.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/tangram.space/internal/arrangement"
	"github.com/louisbranch/tangram.space/internal/platform/id"
	sqlitemigrate "github.com/louisbranch/tangram.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/tangram.space/internal/storage"
	"github.com/louisbranch/tangram.space/internal/storage/sqlite/migrations"
)

// Store provides SQLite-backed persistence for arrangements and attempts.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates an arrangement SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutArrangement upserts an arrangement definition by id.
func (s *Store) PutArrangement(ctx context.Context, arr arrangement.GridArrangement) error {
	if strings.TrimSpace(arr.ID) == "" {
		return fmt.Errorf("arrangement id is required")
	}

	var buf bytes.Buffer
	if err := arrangement.Encode(&buf, arr); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO arrangements (id, name, definition_json, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    name = excluded.name,
		    definition_json = excluded.definition_json,
		    updated_at = excluded.updated_at`,
		arr.ID,
		arr.Name,
		buf.String(),
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put arrangement: %w", err)
	}
	return nil
}

// GetArrangement loads an arrangement definition by id.
func (s *Store) GetArrangement(ctx context.Context, arrangementID string) (arrangement.GridArrangement, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT definition_json FROM arrangements WHERE id = ?`,
		arrangementID,
	)

	var definition string
	if err := row.Scan(&definition); err != nil {
		if err == sql.ErrNoRows {
			return arrangement.GridArrangement{}, storage.ErrNotFound
		}
		return arrangement.GridArrangement{}, fmt.Errorf("get arrangement: %w", err)
	}
	return arrangement.Decode(strings.NewReader(definition))
}

// ListArrangements returns every stored arrangement ordered by id.
func (s *Store) ListArrangements(ctx context.Context) ([]arrangement.GridArrangement, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT definition_json FROM arrangements ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list arrangements: %w", err)
	}
	defer rows.Close()

	var out []arrangement.GridArrangement
	for rows.Next() {
		var definition string
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("scan arrangement: %w", err)
		}
		arr, err := arrangement.Decode(strings.NewReader(definition))
		if err != nil {
			return nil, err
		}
		out = append(out, arr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list arrangements: %w", err)
	}
	return out, nil
}

// DeleteArrangement removes an arrangement and its attempts.
func (s *Store) DeleteArrangement(ctx context.Context, arrangementID string) error {
	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM arrangements WHERE id = ?`,
		arrangementID,
	)
	if err != nil {
		return fmt.Errorf("delete arrangement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete arrangement: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RecordAttempt stores one validation outcome. A missing attempt id is
// generated; a zero timestamp means now.
func (s *Store) RecordAttempt(ctx context.Context, attempt storage.Attempt) error {
	if strings.TrimSpace(attempt.ArrangementID) == "" {
		return fmt.Errorf("arrangement id is required")
	}
	if attempt.ID == "" {
		generated, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate attempt id: %w", err)
		}
		attempt.ID = generated
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	violated := attempt.ViolatedConstraints
	if violated == nil {
		violated = []string{}
	}
	violatedJSON, err := json.Marshal(violated)
	if err != nil {
		return fmt.Errorf("encode violated constraints: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO attempts (
		    id, arrangement_id, passed, anchor_id, global_rotation_index, violated_json, overlap_count, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.ArrangementID,
		boolToInt(attempt.Passed),
		attempt.AnchorID,
		attempt.GlobalRotationIndex,
		string(violatedJSON),
		attempt.OverlapCount,
		attempt.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// ListAttempts returns an arrangement's attempts, oldest first.
func (s *Store) ListAttempts(ctx context.Context, arrangementID string) ([]storage.Attempt, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, arrangement_id, passed, anchor_id, global_rotation_index, violated_json, overlap_count, created_at
		 FROM attempts
		 WHERE arrangement_id = ?
		 ORDER BY created_at, id`,
		arrangementID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []storage.Attempt
	for rows.Next() {
		var attempt storage.Attempt
		var passed int64
		var violatedJSON string
		var createdAt int64
		if err := rows.Scan(
			&attempt.ID,
			&attempt.ArrangementID,
			&passed,
			&attempt.AnchorID,
			&attempt.GlobalRotationIndex,
			&violatedJSON,
			&attempt.OverlapCount,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt.Passed = passed != 0
		if err := json.Unmarshal([]byte(violatedJSON), &attempt.ViolatedConstraints); err != nil {
			return nil, fmt.Errorf("decode violated constraints: %w", err)
		}
		attempt.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return out, nil
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
