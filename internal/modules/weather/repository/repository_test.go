package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"meteo-server/internal/migrate"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Fatalf("close db: %v", closeErr)
		}
	})
	if err := migrate.Run(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func insertRows(t *testing.T, db *sql.DB, rows ...[4]any) {
	t.Helper()
	for _, r := range rows {
		if _, err := db.Exec(`INSERT INTO weather_data (temperature, humidity, pressure, timestamp) VALUES (?, ?, ?, ?)`, r[0], r[1], r[2], r[3]); err != nil {
			t.Fatalf("insert %v: %v", r, err)
		}
	}
}

func TestGetLatestReading_Empty(t *testing.T) {
	repo := NewRepository(setupTestDB(t), time.UTC)

	_, err := repo.GetLatestReading(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLatestReading err = %v; want ErrNotFound", err)
	}
}

func TestGetLatestReading_OrdersByTimestamp(t *testing.T) {
	db := setupTestDB(t)
	// Inserted out of order; the newest timestamp wins, not the newest id.
	insertRows(t, db,
		[4]any{10.0, 40.0, 1000.0, "2025-02-01T12:00:00.000000"},
		[4]any{12.0, 42.0, 1002.0, "2025-02-01T14:00:00.000000"},
		[4]any{11.0, 41.0, 1001.0, "2025-02-01T13:00:00.000000"},
	)
	repo := NewRepository(db, time.UTC)

	got, err := repo.GetLatestReading(context.Background())
	if err != nil {
		t.Fatalf("GetLatestReading: %v", err)
	}
	if got.ID != 2 || got.Temperature != 12 || got.Humidity != 42 || got.Pressure != 1002 {
		t.Errorf("got %+v; want id=2 temp=12", got)
	}
	want := time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC)
	if !got.Time.Equal(want) {
		t.Errorf("Time = %v; want %v", got.Time, want)
	}
	if got.Timestamp != "2025-02-01T14:00:00.000000" {
		t.Errorf("Timestamp = %q; want stored text", got.Timestamp)
	}
}

func TestGetLatestReadings_LimitAndTies(t *testing.T) {
	db := setupTestDB(t)
	insertRows(t, db,
		[4]any{1.0, 1.0, 1.0, "2025-02-01T12:00:00"},
		[4]any{2.0, 2.0, 2.0, "2025-02-01T12:05:00"},
		[4]any{3.0, 3.0, 3.0, "2025-02-01T12:05:00"},
		[4]any{4.0, 4.0, 4.0, "2025-02-01T12:10:00"},
	)
	repo := NewRepository(db, time.UTC)

	got, err := repo.GetLatestReadings(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetLatestReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3", len(got))
	}
	wantIDs := []int64{4, 3, 2}
	for i, r := range got {
		if r.ID != wantIDs[i] {
			t.Errorf("got[%d].ID = %d; want %d", i, r.ID, wantIDs[i])
		}
	}
}

func TestGetReadingsSince(t *testing.T) {
	db := setupTestDB(t)
	insertRows(t, db,
		[4]any{1.0, 1.0, 1.0, "2025-02-01T09:59:59.999999"},
		[4]any{2.0, 2.0, 2.0, "2025-02-01T10:00:00.000000"},
		[4]any{3.0, 3.0, 3.0, "2025-02-01T11:30:00.000000"},
	)
	repo := NewRepository(db, time.UTC)

	got, err := repo.GetReadingsSince(context.Background(), time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetReadingsSince: %v", err)
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 2 {
		t.Fatalf("got %+v; want ids 3, 2", got)
	}
}

func TestGetReadingsSince_UsesRepositoryLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	db := setupTestDB(t)
	insertRows(t, db,
		[4]any{1.0, 1.0, 1.0, "2025-02-01T12:30:00.000000"},
		[4]any{2.0, 2.0, 2.0, "2025-02-01T13:30:00.000000"},
	)
	repo := NewRepository(db, loc)

	// 10:00 UTC is 13:00 wall clock in loc.
	got, err := repo.GetReadingsSince(context.Background(), time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetReadingsSince: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("got %+v; want only id 2", got)
	}
	if got[0].Time.Hour() != 13 || got[0].Time.Location() != loc {
		t.Errorf("Time = %v; want 13:30 in %v", got[0].Time, loc)
	}
}

func TestGetLatestPressures(t *testing.T) {
	db := setupTestDB(t)
	insertRows(t, db,
		[4]any{1.0, 1.0, 1010.0, "2025-02-01T10:00:00"},
		[4]any{1.0, 1.0, 1011.5, "2025-02-01T10:05:00"},
		[4]any{1.0, 1.0, 1013.0, "2025-02-01T10:10:00"},
	)
	repo := NewRepository(db, time.UTC)

	got, err := repo.GetLatestPressures(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetLatestPressures: %v", err)
	}
	if len(got) != 2 || got[0] != 1013 || got[1] != 1011.5 {
		t.Errorf("got %v; want [1013 1011.5]", got)
	}
}

func TestInsertReading(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, time.UTC)
	ctx := context.Background()
	ts := time.Date(2025, 3, 4, 5, 6, 7, 890000000, time.UTC)

	rec, err := repo.InsertReading(ctx, 21.5, 55, 1009.2, ts)
	if err != nil {
		t.Fatalf("InsertReading: %v", err)
	}
	if rec.ID != 1 || rec.Timestamp != "2025-03-04T05:06:07.890000" || !rec.Time.Equal(ts) {
		t.Errorf("InsertReading = %+v", rec)
	}

	n, err := repo.CountReadings(ctx)
	if err != nil {
		t.Fatalf("CountReadings: %v", err)
	}
	if n != 1 {
		t.Errorf("CountReadings = %d; want 1", n)
	}

	got, err := repo.GetLatestReading(ctx)
	if err != nil {
		t.Fatalf("GetLatestReading: %v", err)
	}
	if got.Temperature != 21.5 || got.Humidity != 55 || got.Pressure != 1009.2 || got.Timestamp != rec.Timestamp {
		t.Errorf("stored %+v; want %+v", got, rec)
	}
}

func TestScanReadings_BadTimestamp(t *testing.T) {
	db := setupTestDB(t)
	insertRows(t, db, [4]any{1.0, 1.0, 1.0, "yesterday"})
	repo := NewRepository(db, time.UTC)

	if _, err := repo.GetLatestReadings(context.Background(), 10); err == nil {
		t.Fatal("GetLatestReadings err = nil; want parse error")
	}
}

func TestQueries_ContextCanceled(t *testing.T) {
	repo := NewRepository(setupTestDB(t), time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.GetLatestReadings(ctx, 1); err == nil {
		t.Error("GetLatestReadings with canceled ctx = nil error")
	}
	if _, err := repo.InsertReading(ctx, 1, 1, 1, time.Now()); err == nil {
		t.Error("InsertReading with canceled ctx = nil error")
	}
}
