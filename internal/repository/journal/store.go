// Package journal persists generated rulings in SQLite.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/lexcase/internal/domain"
	"github.com/kailas-cloud/lexcase/internal/domain/casefile"
	"github.com/kailas-cloud/lexcase/internal/domain/judgment"
	"github.com/kailas-cloud/lexcase/internal/domain/scoring"
)

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 20

// Fixed-width so that created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS rulings (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	model          TEXT NOT NULL,
	case_type      TEXT NOT NULL,
	narrative      TEXT NOT NULL,
	ruling         TEXT NOT NULL,
	law_ids        TEXT NOT NULL,
	precedent_ids  TEXT NOT NULL,
	assessment     TEXT,
	warnings       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS rulings_created_at ON rulings (created_at DESC);
`

const columns = `id, created_at, model, case_type, narrative, ruling, law_ids, precedent_ids, assessment, warnings`

// Store is the ruling journal.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping journal: %w", err)
	}
	return nil
}

// Save inserts one record. Ids are unique.
func (s *Store) Save(ctx context.Context, rec *judgment.Record) error {
	laws, err := json.Marshal(orEmpty(rec.LawIDs))
	if err != nil {
		return fmt.Errorf("marshal law ids: %w", err)
	}
	precs, err := json.Marshal(orEmpty(rec.PrecedentIDs))
	if err != nil {
		return fmt.Errorf("marshal precedent ids: %w", err)
	}
	warnings, err := json.Marshal(orEmpty(rec.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	var assessment sql.NullString
	if rec.Assessment != nil {
		b, err := json.Marshal(rec.Assessment)
		if err != nil {
			return fmt.Errorf("marshal assessment: %w", err)
		}
		assessment = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rulings (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(timeLayout), rec.Model, string(rec.CaseType),
		rec.Narrative, rec.Ruling, string(laws), string(precs), assessment, string(warnings),
	)
	if err != nil {
		return fmt.Errorf("insert ruling %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns one record or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*judgment.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM rulings WHERE id = ?`, id)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ruling %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the most recent records first.
func (s *Store) List(ctx context.Context, limit int) ([]*judgment.Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM rulings ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list rulings: %w", err)
	}
	defer rows.Close()

	var out []*judgment.Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rulings: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (*judgment.Record, error) {
	var (
		rec                   judgment.Record
		createdAt, caseType   string
		laws, precs, warnings string
		assessment            sql.NullString
	)
	if err := r.Scan(&rec.ID, &createdAt, &rec.Model, &caseType, &rec.Narrative, &rec.Ruling,
		&laws, &precs, &assessment, &warnings); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ruling: %w", err)
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	rec.CaseType = casefile.Type(caseType)

	if err := json.Unmarshal([]byte(laws), &rec.LawIDs); err != nil {
		return nil, fmt.Errorf("decode law ids of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(precs), &rec.PrecedentIDs); err != nil {
		return nil, fmt.Errorf("decode precedent ids of %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(warnings), &rec.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings of %s: %w", rec.ID, err)
	}
	if assessment.Valid {
		var a scoring.Assessment
		if err := json.Unmarshal([]byte(assessment.String), &a); err != nil {
			return nil, fmt.Errorf("decode assessment of %s: %w", rec.ID, err)
		}
		rec.Assessment = &a
	}
	return &rec, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
