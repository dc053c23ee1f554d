package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meteo-server/internal/modules/weather/types"
)

//go:embed sql/get-latest-readings.sql
var getLatestReadingsSQL string

//go:embed sql/get-readings-since.sql
var getReadingsSinceSQL string

//go:embed sql/get-latest-pressures.sql
var getLatestPressuresSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/count-readings.sql
var countReadingsSQL string

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

type WeatherRepository interface {
	GetLatestReading(ctx context.Context) (types.Reading, error)
	GetLatestReadings(ctx context.Context, limit int) ([]types.Reading, error)
	GetReadingsSince(ctx context.Context, from time.Time) ([]types.Reading, error)
	GetLatestPressures(ctx context.Context, limit int) ([]float64, error)
	CountReadings(ctx context.Context) (int, error)
	InsertReading(ctx context.Context, temperature, humidity, pressure float64, ts time.Time) (types.Reading, error)
}

type repositoryImpl struct {
	db  *sql.DB
	loc *time.Location
}

// NewRepository returns a repository storing and reading timestamps as wall
// clock text in loc (time.Local when nil).
func NewRepository(db *sql.DB, loc *time.Location) WeatherRepository {
	if loc == nil {
		loc = time.Local
	}
	return &repositoryImpl{db: db, loc: loc}
}

func (r *repositoryImpl) GetLatestReading(ctx context.Context) (types.Reading, error) {
	readings, err := r.GetLatestReadings(ctx, 1)
	if err != nil {
		return types.Reading{}, err
	}
	if len(readings) == 0 {
		return types.Reading{}, ErrNotFound
	}
	return readings[0], nil
}

func (r *repositoryImpl) GetLatestReadings(ctx context.Context, limit int) ([]types.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getLatestReadingsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest readings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close latest readings rows", "error", err)
		}
	}()
	return r.scanReadings(rows)
}

// GetReadingsSince returns readings whose timestamp text sorts at or after
// from, newest first.
func (r *repositoryImpl) GetReadingsSince(ctx context.Context, from time.Time) ([]types.Reading, error) {
	fromStr := types.FormatTimestamp(from, r.loc)
	rows, err := r.db.QueryContext(ctx, getReadingsSinceSQL, fromStr)
	if err != nil {
		return nil, fmt.Errorf("query readings since %s: %w", fromStr, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()
	return r.scanReadings(rows)
}

func (r *repositoryImpl) GetLatestPressures(ctx context.Context, limit int) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx, getLatestPressuresSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest pressures: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close pressure rows", "error", err)
		}
	}()
	var out []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) CountReadings(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countReadingsSQL).Scan(&n)
	return n, err
}

func (r *repositoryImpl) scanReadings(rows *sql.Rows) ([]types.Reading, error) {
	var out []types.Reading
	for rows.Next() {
		var rec types.Reading
		if err := rows.Scan(&rec.ID, &rec.Temperature, &rec.Humidity, &rec.Pressure, &rec.Timestamp); err != nil {
			return nil, err
		}
		t, err := types.ParseTimestamp(rec.Timestamp, r.loc)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", rec.ID, err)
		}
		rec.Time = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) InsertReading(ctx context.Context, temperature, humidity, pressure float64, ts time.Time) (types.Reading, error) {
	tsStr := types.FormatTimestamp(ts, r.loc)
	res, err := r.db.ExecContext(ctx, insertReadingSQL, temperature, humidity, pressure, tsStr)
	if err != nil {
		return types.Reading{}, fmt.Errorf("insert reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Reading{}, fmt.Errorf("insert reading: last insert id: %w", err)
	}
	t, err := types.ParseTimestamp(tsStr, r.loc)
	if err != nil {
		return types.Reading{}, err
	}
	return types.Reading{
		ID:          id,
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressure,
		Timestamp:   tsStr,
		Time:        t,
	}, nil
}
