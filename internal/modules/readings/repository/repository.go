package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"esp8266-web/internal/db"
	"esp8266-web/pkg/types"
)

//go:embed sql/select-readings.sql
var selectReadingsSQL string

//go:embed sql/count-readings.sql
var countReadingsSQL string

//go:embed sql/latest-reading.sql
var latestReadingSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

// Filter selects a page of readings. Nil bounds are open.
type Filter struct {
	From   *int64
	To     *int64
	Limit  int
	Offset int
}

type ReadingsRepository interface {
	// ListPage returns one page and the number of rows matching f's time
	// range, both read from the same snapshot.
	ListPage(ctx context.Context, f Filter) ([]types.Reading, int, error)
	ListReadings(ctx context.Context, f Filter) ([]types.Reading, error)
	CountReadings(ctx context.Context, from, to *int64) (int, error)
	// LatestReading returns nil when there are no readings.
	LatestReading(ctx context.Context) (*types.Reading, error)
	InsertReading(ctx context.Context, tempCo, tempRoom, humidity float64, ts int64) (types.Reading, error)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repositoryImpl struct {
	db     *sql.DB
	driver string
}

// NewRepository returns a repository for conn. driver selects the placeholder style.
func NewRepository(conn *sql.DB, driver string) ReadingsRepository {
	return &repositoryImpl{db: conn, driver: driver}
}

func (r *repositoryImpl) ListPage(ctx context.Context, f Filter) ([]types.Reading, int, error) {
	tx, err := r.db.BeginTx(ctx, r.snapshotTxOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("begin read: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	total, err := r.count(ctx, tx, f.From, f.To)
	if err != nil {
		return nil, 0, err
	}
	readings, err := r.list(ctx, tx, f)
	if err != nil {
		return nil, 0, err
	}
	return readings, total, nil
}

// snapshotTxOptions keeps both statements of ListPage on one snapshot.
// Postgres needs repeatable read for that; a SQLite transaction holds its
// read snapshot from the first read until it ends.
func (r *repositoryImpl) snapshotTxOptions() *sql.TxOptions {
	if r.driver == db.DriverPostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

func (r *repositoryImpl) ListReadings(ctx context.Context, f Filter) ([]types.Reading, error) {
	return r.list(ctx, r.db, f)
}

func (r *repositoryImpl) list(ctx context.Context, q querier, f Filter) ([]types.Reading, error) {
	where, args := timeRange(f.From, f.To)
	query := strings.TrimSpace(selectReadingsSQL) + where + " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := q.QueryContext(ctx, db.Rebind(r.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()

	out := make([]types.Reading, 0)
	for rows.Next() {
		rec, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) CountReadings(ctx context.Context, from, to *int64) (int, error) {
	return r.count(ctx, r.db, from, to)
}

func (r *repositoryImpl) count(ctx context.Context, q querier, from, to *int64) (int, error) {
	where, args := timeRange(from, to)
	query := strings.TrimSpace(countReadingsSQL) + where

	var n int
	if err := q.QueryRowContext(ctx, db.Rebind(r.driver, query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

func (r *repositoryImpl) LatestReading(ctx context.Context) (*types.Reading, error) {
	rec, err := scanReading(r.db.QueryRowContext(ctx, latestReadingSQL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repositoryImpl) InsertReading(ctx context.Context, tempCo, tempRoom, humidity float64, ts int64) (types.Reading, error) {
	row := r.db.QueryRowContext(ctx, db.Rebind(r.driver, insertReadingSQL), tempCo, tempRoom, humidity, ts)
	rec, err := scanReading(row)
	if err != nil {
		return types.Reading{}, fmt.Errorf("insert reading: %w", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(s scanner) (types.Reading, error) {
	var rec types.Reading
	if err := s.Scan(&rec.ID, &rec.TempCo, &rec.TempRoom, &rec.Humidity, &rec.Timestamp); err != nil {
		return types.Reading{}, err
	}
	return rec, nil
}

func timeRange(from, to *int64) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	if from != nil {
		b.WriteString(" AND timestamp >= ?")
		args = append(args, *from)
	}
	if to != nil {
		b.WriteString(" AND timestamp <= ?")
		args = append(args, *to)
	}
	return b.String(), args
}
