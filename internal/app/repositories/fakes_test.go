package repositories

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordedQuery struct {
	sql  string
	args []any
}

// fakeRow hands scripted column values to Scan in order. A nil value leaves
// the destination at its zero value, which models SQL NULL for pointer columns.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(r.values[i])
		if !v.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan column %d: cannot assign %s to %s", i, v.Type(), target.Type())
		}
		target.Set(v)
	}
	return nil
}

// fakeDB is a scripted DBTX. Every statement is recorded; queryRow and exec
// decide the result from the statement text.
type fakeDB struct {
	queries    []recordedQuery
	queryRow   func(sql string, args []any) pgx.Row
	exec       func(sql string, args []any) (pgconn.CommandTag, error)
	savepoints []*fakeSavepoint
}

func (f *fakeDB) record(sql string, args []any) {
	f.queries = append(f.queries, recordedQuery{sql: sql, args: args})
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	if f.exec == nil {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return f.exec(sql, args)
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	return nil, errors.New("unexpected Query")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	if f.queryRow == nil {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return f.queryRow(sql, args)
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	sp := &fakeSavepoint{db: f}
	f.savepoints = append(f.savepoints, sp)
	return sp, nil
}

// fakeSavepoint is a nested transaction on fakeDB. Methods the repositories
// never call fall through to the nil embedded pgx.Tx.
type fakeSavepoint struct {
	pgx.Tx
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (s *fakeSavepoint) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.db.Exec(ctx, sql, args...)
}

func (s *fakeSavepoint) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.db.Query(ctx, sql, args...)
}

func (s *fakeSavepoint) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.db.QueryRow(ctx, sql, args...)
}

func (s *fakeSavepoint) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.db.Begin(ctx)
}

func (s *fakeSavepoint) Commit(context.Context) error {
	if s.committed || s.rolledBack {
		return pgx.ErrTxClosed
	}
	s.committed = true
	return nil
}

func (s *fakeSavepoint) Rollback(context.Context) error {
	if s.committed || s.rolledBack {
		return pgx.ErrTxClosed
	}
	s.rolledBack = true
	return nil
}
