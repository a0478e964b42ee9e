// Package store caches imported datasets in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/rentstat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const dateLayout = "2006-01-02"

// ErrNoImport is returned when nothing has been imported yet.
var ErrNoImport = errors.New("no dataset imported")

// Import describes the most recent dataset import.
type Import struct {
	Source     string
	ImportedAt time.Time
	Rows       int
}

// Store wraps SQLite access for imported records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			hour INTEGER NOT NULL,
			h_holiday INTEGER NOT NULL,
			h_weekday INTEGER NOT NULL,
			h_workingday INTEGER NOT NULL,
			h_atemp REAL NOT NULL,
			h_hum REAL NOT NULL,
			h_casual INTEGER NOT NULL,
			h_registered INTEGER NOT NULL,
			h_cnt INTEGER NOT NULL,
			d_holiday INTEGER NOT NULL,
			d_weekday INTEGER NOT NULL,
			d_workingday INTEGER NOT NULL,
			d_atemp REAL NOT NULL,
			d_hum REAL NOT NULL,
			d_casual INTEGER NOT NULL,
			d_registered INTEGER NOT NULL,
			d_cnt INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			row_count INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ImportRecords replaces the cached dataset with records.
func (s *Store) ImportRecords(ctx context.Context, source string, records []model.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return err
	}

	if len(records) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO records (date, hour,
				h_holiday, h_weekday, h_workingday, h_atemp, h_hum, h_casual, h_registered, h_cnt,
				d_holiday, d_weekday, d_workingday, d_atemp, d_hum, d_casual, d_registered, d_cnt)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, rec := range records {
			args := []any{rec.Date.UTC().Format(dateLayout), rec.Hour}
			args = append(args, contextArgs(rec.Hourly)...)
			args = append(args, contextArgs(rec.Daily)...)
			if _, err = stmt.ExecContext(ctx, args...); err != nil {
				return err
			}
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO imports (source, imported_at, row_count) VALUES (?, ?, ?)`,
		source, time.Now().UTC().Format(time.RFC3339Nano), len(records),
	); err != nil {
		return err
	}

	return tx.Commit()
}

// ListRecords returns cached records within rng ordered by date. Nil
// bounds are open.
func (s *Store) ListRecords(ctx context.Context, rng model.DateRange) ([]model.Record, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if rng.Start != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, rng.Start.UTC().Format(dateLayout))
	}
	if rng.End != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, rng.End.UTC().Format(dateLayout))
	}
	query := fmt.Sprintf(`SELECT date, hour,
			h_holiday, h_weekday, h_workingday, h_atemp, h_hum, h_casual, h_registered, h_cnt,
			d_holiday, d_weekday, d_workingday, d_atemp, d_hum, d_casual, d_registered, d_cnt
		FROM records
		WHERE %s
		ORDER BY date ASC, id ASC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var (
			rec  model.Record
			date string
			h, d contextRow
		)
		dest := []any{&date, &rec.Hour}
		dest = append(dest, h.dest()...)
		dest = append(dest, d.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, err
		}
		rec.Date = parsed
		rec.Hourly = h.context()
		rec.Daily = d.context()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// LastImport returns metadata about the most recent import.
func (s *Store) LastImport(ctx context.Context) (Import, error) {
	var (
		imp        Import
		importedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT source, imported_at, row_count FROM imports ORDER BY id DESC LIMIT 1`,
	).Scan(&imp.Source, &importedAt, &imp.Rows)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, ErrNoImport
	}
	if err != nil {
		return Import{}, err
	}
	imp.ImportedAt, err = time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return Import{}, err
	}
	return imp, nil
}

func contextArgs(c model.Context) []any {
	return []any{
		boolInt(c.Holiday), c.Weekday, boolInt(c.WorkingDay),
		c.ATemp, c.Humidity, c.Casual, c.Registered, c.Total,
	}
}

type contextRow struct {
	holiday, weekday, workingDay int
	atemp, humidity              float64
	casual, registered, total    int64
}

func (r *contextRow) dest() []any {
	return []any{
		&r.holiday, &r.weekday, &r.workingDay,
		&r.atemp, &r.humidity, &r.casual, &r.registered, &r.total,
	}
}

func (r contextRow) context() model.Context {
	return model.Context{
		Holiday:    r.holiday != 0,
		Weekday:    r.weekday,
		WorkingDay: r.workingDay != 0,
		ATemp:      r.atemp,
		Humidity:   r.humidity,
		Casual:     r.casual,
		Registered: r.registered,
		Total:      r.total,
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
