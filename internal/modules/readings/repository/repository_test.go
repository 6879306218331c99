package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"esp8266-web/internal/db/migrate"
	"esp8266-web/pkg/types"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := conn.Close(); closeErr != nil {
			t.Fatalf("close db: %v", closeErr)
		}
	})
	if err := migrate.Run(context.Background(), conn, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seed(t *testing.T, repo ReadingsRepository, timestamps ...int64) {
	t.Helper()
	for i, ts := range timestamps {
		if _, err := repo.InsertReading(context.Background(), 20+float64(i), 18, 50, ts); err != nil {
			t.Fatalf("seed %d: %v", ts, err)
		}
	}
}

func TestInsertReading_ReturnsStoredRow(t *testing.T) {
	repo := NewRepository(setupTestDB(t), "sqlite3")

	got, err := repo.InsertReading(context.Background(), 25.5, 22.0, 60.0, 1761388101)
	if err != nil {
		t.Fatalf("InsertReading: %v", err)
	}
	want := types.Reading{ID: 1, Timestamp: 1761388101, TempCo: 25.5, TempRoom: 22.0, Humidity: 60.0}
	if got != want {
		t.Errorf("InsertReading = %+v; want %+v", got, want)
	}

	second, err := repo.InsertReading(context.Background(), 1, 2, 3, 4)
	if err != nil {
		t.Fatalf("InsertReading #2: %v", err)
	}
	if second.ID != 2 {
		t.Errorf("second id = %d; want 2", second.ID)
	}
}

func TestListReadings_Empty(t *testing.T) {
	repo := NewRepository(setupTestDB(t), "sqlite3")

	got, err := repo.ListReadings(context.Background(), Filter{Limit: 10})
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if got == nil {
		t.Fatal("ListReadings returned nil slice; want empty non-nil")
	}
	if len(got) != 0 {
		t.Errorf("len = %d; want 0", len(got))
	}
}

func TestListReadings_NewestFirst(t *testing.T) {
	repo := NewRepository(setupTestDB(t), "sqlite3")
	seed(t, repo, 200, 100, 300)

	got, err := repo.ListReadings(context.Background(), Filter{Limit: 10})
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3", len(got))
	}
	if got[0].Timestamp != 300 || got[1].Timestamp != 200 || got[2].Timestamp != 100 {
		t.Errorf("order = %d, %d, %d; want 300, 200, 100", got[0].Timestamp, got[1].Timestamp, got[2].Timestamp)
	}
}

func TestListReadings_TimestampFilter(t *testing.T) {
	const base = int64(1704067200) // 2024-01-01T00:00:00Z
	repo := NewRepository(setupTestDB(t), "sqlite3")
	seed(t, repo, base-1000, base, base+1000, base+2000)

	ptr := types.Int64
	tests := []struct {
		name string
		from *int64
		to   *int64
		want int
	}{
		{name: "no filters", want: 4},
		{name: "from only", from: ptr(base), want: 3},
		{name: "to only", to: ptr(base + 1000), want: 3},
		{name: "from and to", from: ptr(base), to: ptr(base + 1000), want: 2},
		{name: "narrow range", from: ptr(base + 1500), to: ptr(base + 1500), want: 0},
		{name: "inverted range", from: ptr(base + 2000), to: ptr(base), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListReadings(context.Background(), Filter{From: tt.from, To: tt.to, Limit: 100})
			if err != nil {
				t.Fatalf("ListReadings: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d; want %d", len(got), tt.want)
			}

			n, err := repo.CountReadings(context.Background(), tt.from, tt.to)
			if err != nil {
				t.Fatalf("CountReadings: %v", err)
			}
			if n != tt.want {
				t.Errorf("count = %d; want %d", n, tt.want)
			}
		})
	}
}

func TestListReadings_Pagination(t *testing.T) {
	const base = int64(1704067200)
	repo := NewRepository(setupTestDB(t), "sqlite3")
	for i := 0; i < 10; i++ {
		seed(t, repo, base+int64(i*1000))
	}

	got, err := repo.ListReadings(context.Background(), Filter{From: types.Int64(base), Limit: 3, Offset: 1})
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3", len(got))
	}
	// newest is base+9000; offset 1 skips it
	if got[0].Timestamp != base+8000 {
		t.Errorf("first timestamp = %d; want %d", got[0].Timestamp, base+8000)
	}

	past, err := repo.ListReadings(context.Background(), Filter{Limit: 5, Offset: 50})
	if err != nil {
		t.Fatalf("ListReadings past end: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("past end len = %d; want 0", len(past))
	}
}

func TestListPage(t *testing.T) {
	const base = int64(1704067200)
	repo := NewRepository(setupTestDB(t), "sqlite3")
	for i := 0; i < 10; i++ {
		seed(t, repo, base+int64(i*1000))
	}

	got, total, err := repo.ListPage(context.Background(), Filter{From: types.Int64(base + 2000), Limit: 3, Offset: 1})
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 8 {
		t.Errorf("total = %d; want 8", total)
	}
	if len(got) != 3 || got[0].Timestamp != base+8000 {
		t.Errorf("page = %+v; want 3 rows starting at %d", got, base+8000)
	}

	empty, total, err := repo.ListPage(context.Background(), Filter{From: types.Int64(base * 2), Limit: 5})
	if err != nil {
		t.Fatalf("ListPage empty: %v", err)
	}
	if empty == nil || len(empty) != 0 || total != 0 {
		t.Errorf("empty page = %v total = %d; want [] and 0", empty, total)
	}
}

func TestListPage_CountMatchesRowsDuringWrites(t *testing.T) {
	repo := NewRepository(setupTestDB(t), "sqlite3")
	seed(t, repo, 1, 2, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ts := int64(10); ctx.Err() == nil && ts < 200; ts++ {
			if _, err := repo.InsertReading(ctx, 1, 1, 1, ts); err != nil && ctx.Err() == nil {
				t.Errorf("insert %d: %v", ts, err)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		rows, total, err := repo.ListPage(context.Background(), Filter{Limit: 1000})
		if err != nil {
			t.Fatalf("ListPage: %v", err)
		}
		if len(rows) != total {
			t.Fatalf("rows = %d total = %d; want equal", len(rows), total)
		}
	}
	cancel()
	<-done
}

func TestLatestReading(t *testing.T) {
	repo := NewRepository(setupTestDB(t), "sqlite3")

	none, err := repo.LatestReading(context.Background())
	if err != nil {
		t.Fatalf("LatestReading (empty): %v", err)
	}
	if none != nil {
		t.Fatalf("LatestReading (empty) = %+v; want nil", none)
	}

	seed(t, repo, 10, 30, 20)
	latest, err := repo.LatestReading(context.Background())
	if err != nil {
		t.Fatalf("LatestReading: %v", err)
	}
	if latest == nil || latest.Timestamp != 30 {
		t.Errorf("LatestReading = %+v; want timestamp 30", latest)
	}
}

func TestTimeRange(t *testing.T) {
	where, args := timeRange(nil, nil)
	if where != "" || len(args) != 0 {
		t.Errorf("open range = %q %v; want empty", where, args)
	}

	where, args = timeRange(types.Int64(1), types.Int64(2))
	if where != " AND timestamp >= ? AND timestamp <= ?" {
		t.Errorf("where = %q", where)
	}
	if len(args) != 2 || args[0] != int64(1) || args[1] != int64(2) {
		t.Errorf("args = %v; want [1 2]", args)
	}
}
