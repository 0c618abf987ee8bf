// Package store caches built chain operators in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	tableShape  = "shape"
	tableMatrix = "m"
)

// ErrNotFound is returned by Get for operators that were never stored.
var ErrNotFound = errors.New("operator not found")

// Store holds operators keyed by a name and the number of sites.
type Store struct {
	Path string

	db *sql.DB
}

// Open opens the database at path, creating it if necessary.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, path)
	}
	return &Store{Path: path, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores m, replacing any operator previously stored under the same key.
func (s *Store) Put(ctx context.Context, name string, n int, m mat.CMatrix) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := put(ctx, tx, name, n, m); err != nil {
		tx.Rollback()
		return errors.Wrap(err, fmt.Sprintf("%s %d", name, n))
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func put(ctx context.Context, tx *sql.Tx, name string, n int, m mat.CMatrix) error {
	if err := deleteKey(ctx, tx, name, n); err != nil {
		return errors.Wrap(err, "")
	}

	rows, cols := m.Dims()
	sqlStr := fmt.Sprintf(`INSERT INTO %s (name, n, nrows, ncols) VALUES (?, ?, ?, ?)`, tableShape)
	if _, err := tx.ExecContext(ctx, sqlStr, name, n, rows, cols); err != nil {
		return errors.Wrap(err, sqlStr)
	}

	sqlStr = fmt.Sprintf(`INSERT INTO %s (name, n, i, j, re, im) VALUES (?, ?, ?, ?, ?, ?)`, tableMatrix)
	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return errors.Wrap(err, sqlStr)
	}
	defer stmt.Close()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if v == 0 {
				continue
			}
			args := []any{name, n, i, j, real(v), imag(v)}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
			}
		}
	}
	return nil
}

// Get returns the operator stored under name and n.
func (s *Store) Get(ctx context.Context, name string, n int) (*mat.CDense, error) {
	var rows, cols int
	sqlStr := fmt.Sprintf(`SELECT nrows, ncols FROM %s WHERE name=? AND n=?`, tableShape)
	err := s.db.QueryRowContext(ctx, sqlStr, name, n).Scan(&rows, &cols)
	switch {
	case err == sql.ErrNoRows:
		return nil, errors.Wrap(ErrNotFound, fmt.Sprintf("%s %d", name, n))
	case err != nil:
		return nil, errors.Wrap(err, "")
	}
	m := mat.NewCDense(rows, cols, nil)

	sqlStr = fmt.Sprintf(`SELECT i, j, re, im FROM %s WHERE name=? AND n=? ORDER BY i, j`, tableMatrix)
	rs, err := s.db.QueryContext(ctx, sqlStr, name, n)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rs.Close()
	for rs.Next() {
		var i, j int
		var re, im float64
		if err := rs.Scan(&i, &j, &re, &im); err != nil {
			return nil, errors.Wrap(err, "")
		}
		m.Set(i, j, complex(re, im))
	}
	if err := rs.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return m, nil
}

// Has reports whether an operator is stored under name and n.
func (s *Store) Has(ctx context.Context, name string, n int) (bool, error) {
	sqlStr := fmt.Sprintf(`SELECT count(1) FROM %s WHERE name=? AND n=?`, tableShape)
	var count int
	if err := s.db.QueryRowContext(ctx, sqlStr, name, n).Scan(&count); err != nil {
		return false, errors.Wrap(err, "")
	}
	return count > 0, nil
}

// NumNonZero returns the number of stored nonzero entries of an operator.
func (s *Store) NumNonZero(ctx context.Context, name string, n int) (int, error) {
	sqlStr := fmt.Sprintf(`SELECT count(1) FROM %s WHERE name=? AND n=?`, tableMatrix)
	var count int
	if err := s.db.QueryRowContext(ctx, sqlStr, name, n).Scan(&count); err != nil {
		return -1, errors.Wrap(err, "")
	}
	return count, nil
}

// Delete removes an operator, and is a no-op for unknown keys.
func (s *Store) Delete(ctx context.Context, name string, n int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := deleteKey(ctx, tx, name, n); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func deleteKey(ctx context.Context, tx *sql.Tx, name string, n int) error {
	for _, table := range []string{tableShape, tableMatrix} {
		sqlStr := fmt.Sprintf(`DELETE FROM %s WHERE name=? AND n=?`, table)
		if _, err := tx.ExecContext(ctx, sqlStr, name, n); err != nil {
			return errors.Wrap(err, sqlStr)
		}
	}
	return nil
}

func prepareDB(ctx context.Context, db *sql.DB) error {
	sqlStrs := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT, n INTEGER, nrows INTEGER, ncols INTEGER, PRIMARY KEY (name, n)) STRICT`, tableShape),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name TEXT, n INTEGER, i INTEGER, j INTEGER, re REAL, im REAL, PRIMARY KEY (name, n, i, j)) STRICT`, tableMatrix),
	}
	for _, sqlStr := range sqlStrs {
		if _, err := db.ExecContext(ctx, sqlStr); err != nil {
			return errors.Wrap(err, sqlStr)
		}
	}
	return nil
}
