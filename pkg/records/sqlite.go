package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	// SQLite drivers: "sqlite" is pure Go, "sqlite3" needs cgo.
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite driver names.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

const defaultBusyTimeout = 5000 // ms

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSource reads every row of a table as a map[string]any keyed by column
// name. BLOB and TEXT values are returned as strings.
type SQLSource struct {
	db    *sql.DB
	path  string
	table string
	limit int
}

// SQLOptions configures OpenSQLite.
type SQLOptions struct {
	Driver string // DriverModernc (default) or DriverCgo
	Table  string // Required
	Limit  int    // Zero means no limit
}

// OpenSQLite opens the database at path read-only.
func OpenSQLite(path string, opts SQLOptions) (*SQLSource, error) {
	if !tablePattern.MatchString(opts.Table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, opts.Table)
	}

	driver := opts.Driver
	switch driver {
	case "":
		driver = DriverModernc
	case DriverModernc, DriverCgo:
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d", path, defaultBusyTimeout)
	if driver == DriverModernc {
		dsn = fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(%d)", path, defaultBusyTimeout)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &SourceError{Kind: KindSQLite, Path: path, Cause: err}
	}
	db.SetMaxOpenConns(1)
	return NewSQLSource(db, path, opts.Table, opts.Limit)
}

// NewSQLSource reads table from an open database. The source takes
// ownership of db.
func NewSQLSource(db *sql.DB, path, table string, limit int) (*SQLSource, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return &SQLSource{db: db, path: path, table: table, limit: limit}, nil
}

// Kind returns "sqlite".
func (s *SQLSource) Kind() string { return KindSQLite }

// Table returns the table being read.
func (s *SQLSource) Table() string { return s.table }

// Ping checks that the database is reachable and the table exists.
func (s *SQLSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`, s.table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return &SourceError{Kind: KindSQLite, Path: s.path, Cause: fmt.Errorf("no such table: %s", s.table)}
	}
	if err != nil {
		return &SourceError{Kind: KindSQLite, Path: s.path, Cause: err}
	}
	return nil
}

// Each implements Source.
func (s *SQLSource) Each(ctx context.Context, fn func(Record) error) error {
	query := fmt.Sprintf(`SELECT * FROM "%s"`, s.table)
	var args []any
	if s.limit > 0 {
		query += " LIMIT ?"
		args = append(args, s.limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return &SourceError{Kind: KindSQLite, Path: s.path, Cause: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return &SourceError{Kind: KindSQLite, Path: s.path, Cause: err}
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	row := 0
	for rows.Next() {
		row++
		if err := rows.Scan(dest...); err != nil {
			return &SourceError{Kind: KindSQLite, Path: s.path, Line: row, Cause: err}
		}
		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			rec[col] = columnValue(values[i])
		}
		if err := fn(rec); err != nil {
			return stopped(err)
		}
	}
	if err := rows.Err(); err != nil {
		return &SourceError{Kind: KindSQLite, Path: s.path, Cause: err}
	}
	return nil
}

func columnValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return v
}

// Close closes the database.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
