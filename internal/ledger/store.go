package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	invocation_id          TEXT PRIMARY KEY,
	stage                  TEXT NOT NULL,
	seed                   TEXT NOT NULL,
	min_cows_threshold     INTEGER NOT NULL,
	min_harvest_threshold  REAL NOT NULL,
	min_woodland_threshold REAL NOT NULL,
	inputs_json            TEXT,
	output_file            TEXT,
	run_count              INTEGER NOT NULL DEFAULT 0,
	created_at             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_summaries (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	invocation_id      TEXT NOT NULL,
	run_id             TEXT NOT NULL,
	termination_reason TEXT NOT NULL,
	end_year           INTEGER,
	row_json           TEXT NOT NULL,
	created_at         TEXT NOT NULL,
	FOREIGN KEY (invocation_id) REFERENCES invocations(invocation_id)
);
`
// #endregion schema

// #region store-struct
// Store records invocations and their run summaries in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion constructor

// #region begin
// Begin records a new invocation and returns it with its generated ID.
func (s *Store) Begin(inv Invocation) (Invocation, error) {
	inv.InvocationID = uuid.New().String()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO invocations (invocation_id, stage, seed, min_cows_threshold, min_harvest_threshold,
		 min_woodland_threshold, inputs_json, output_file, run_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.InvocationID, inv.Stage, fmt.Sprint(inv.Seed), inv.MinCowsThreshold,
		inv.MinHarvestThreshold, inv.MinWoodlandThreshold, nullIfEmpty(inv.InputsJSON),
		nullIfEmpty(inv.OutputFile), inv.RunCount, inv.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Invocation{}, fmt.Errorf("insert invocation: %w", err)
	}
	return inv, nil
}
// #endregion begin

// #region finish
// Finish stores the run summaries of an invocation and its final run count
// in one transaction.
func (s *Store) Finish(invocationID string, summaries []RunSummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, rs := range summaries {
		rs.InvocationID = invocationID
		if err := insertSummary(tx, rs); err != nil {
			return err
		}
	}

	res, err := tx.Exec(
		`UPDATE invocations SET run_count = ? WHERE invocation_id = ?`,
		len(summaries), invocationID,
	)
	if err != nil {
		return fmt.Errorf("update run count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invocation %s not found", invocationID)
	}

	return tx.Commit()
}
// #endregion finish

// #region get-invocation
// GetInvocation retrieves one invocation by ID.
func (s *Store) GetInvocation(id string) (Invocation, error) {
	row := s.db.QueryRow(
		`SELECT invocation_id, stage, seed, min_cows_threshold, min_harvest_threshold,
		 min_woodland_threshold, inputs_json, output_file, run_count, created_at
		 FROM invocations WHERE invocation_id = ?`, id,
	)
	inv, err := scanInvocation(row)
	if err != nil {
		return Invocation{}, fmt.Errorf("get invocation %s: %w", id, err)
	}
	return inv, nil
}
// #endregion get-invocation

// #region list-invocations
// ListInvocations returns the most recent invocations, newest first.
func (s *Store) ListInvocations(limit int) ([]Invocation, error) {
	rows, err := s.db.Query(
		`SELECT invocation_id, stage, seed, min_cows_threshold, min_harvest_threshold,
		 min_woodland_threshold, inputs_json, output_file, run_count, created_at
		 FROM invocations ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
// #endregion list-invocations

// #region reason-counts
// ReasonCounts groups an invocation's run summaries by termination reason.
func (s *Store) ReasonCounts(invocationID string) ([]ReasonCount, error) {
	rows, err := s.db.Query(
		`SELECT termination_reason, COUNT(*) FROM run_summaries
		 WHERE invocation_id = ? GROUP BY termination_reason ORDER BY termination_reason`,
		invocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("reason counts: %w", err)
	}
	defer rows.Close()

	var out []ReasonCount
	for rows.Next() {
		var rc ReasonCount
		if err := rows.Scan(&rc.Reason, &rc.Runs); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
// #endregion reason-counts

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(sc scanner) (Invocation, error) {
	var inv Invocation
	var seed, createdStr string
	var inputsJSON, outputFile sql.NullString

	err := sc.Scan(&inv.InvocationID, &inv.Stage, &seed, &inv.MinCowsThreshold,
		&inv.MinHarvestThreshold, &inv.MinWoodlandThreshold, &inputsJSON, &outputFile,
		&inv.RunCount, &createdStr)
	if err != nil {
		return Invocation{}, err
	}
	if _, err := fmt.Sscan(seed, &inv.Seed); err != nil {
		return Invocation{}, fmt.Errorf("parse seed %q: %w", seed, err)
	}
	if inputsJSON.Valid {
		inv.InputsJSON = inputsJSON.String
	}
	if outputFile.Valid {
		inv.OutputFile = outputFile.String
	}
	inv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return inv, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion scan
