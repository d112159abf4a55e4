// SPDX-License-Identifier: MIT

// Package store keeps a history of recognition results in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"earshot/internal/recognition"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS recognitions (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		primaryRecognition TEXT NOT NULL,
		confidence REAL NOT NULL,
		audioType TEXT NOT NULL,
		transcription TEXT,
		analysisTimeMs INTEGER NOT NULL,
		result TEXT NOT NULL,
		createdAt REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS recognitions_createdAt ON recognitions(createdAt);
`

// Record is one stored recognition.
type Record struct {
	ID                 string
	Source             string // File name or other caller-supplied origin.
	PrimaryRecognition string
	Confidence         float64
	AudioType          string
	Transcription      string
	AnalysisTime       time.Duration
	CreatedAt          time.Time
	Result             *recognition.Result // Full result as stored.
}

// Store provides access to the recognition history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer keeps SQLite free of SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores res under its ID, assigning a new one when it has none.
func (s *Store) Save(ctx context.Context, source string, res *recognition.Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	id := res.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := res.Timestamp
	if created.IsZero() {
		created = time.Now()
	}

	stored := *res
	stored.ID = id
	body, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recognitions
			(id, source, primaryRecognition, confidence, audioType, transcription, analysisTimeMs, result, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, source, res.PrimaryRecognition, res.Confidence, string(res.AudioType),
		nullString(res.Transcription), res.AnalysisTime, string(body), unixFromTime(created))
	if err != nil {
		return "", fmt.Errorf("insert recognition: %w", err)
	}
	return id, nil
}

const selectColumns = `
	SELECT id, source, primaryRecognition, confidence, audioType, transcription, analysisTimeMs, result, createdAt
	FROM recognitions`

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		ORDER BY createdAt DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recognitions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get returns the record with id, or nil when there is none.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recognitions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recognitions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var r Record
	var transcription sql.NullString
	var analysisMs int64
	var body string
	var createdAt float64
	if err := sc.Scan(&r.ID, &r.Source, &r.PrimaryRecognition, &r.Confidence, &r.AudioType,
		&transcription, &analysisMs, &body, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan recognition: %w", err)
	}
	if transcription.Valid {
		r.Transcription = transcription.String
	}
	r.AnalysisTime = time.Duration(analysisMs) * time.Millisecond
	r.CreatedAt = timeFromUnix(createdAt)

	var res recognition.Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return r, fmt.Errorf("decode stored result %s: %w", r.ID, err)
	}
	r.Result = &res
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(f float64) time.Time {
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
