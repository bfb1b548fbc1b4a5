package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/codr1/Opsboard/internal/config"
	"github.com/codr1/Opsboard/internal/db/queries"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestReturnRequestLifecycle(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	q := database.Queries

	older := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	firstID, err := q.CreateReturnRequest(ctx, queries.CreateReturnRequestParams{
		Applicant:      "ops@example.com",
		TrackingNumber: "TRK-1",
		Reason:         sql.NullString{String: "damaged", Valid: true},
		MediaUrls:      sql.NullString{String: `["1_a.jpg"]`, Valid: true},
		SubmittedAt:    older,
	})
	if err != nil {
		t.Fatalf("CreateReturnRequest() error = %v", err)
	}
	secondID, err := q.CreateReturnRequest(ctx, queries.CreateReturnRequestParams{
		Applicant:      "anonymous",
		TrackingNumber: "TRK-2",
		SubmittedAt:    newer,
	})
	if err != nil {
		t.Fatalf("CreateReturnRequest() error = %v", err)
	}

	items, err := q.ListReturnRequests(ctx)
	if err != nil {
		t.Fatalf("ListReturnRequests() error = %v", err)
	}
	if len(items) != 2 || items[0].ID != secondID || items[1].ID != firstID {
		t.Fatalf("ListReturnRequests() = %+v, want newest first", items)
	}
	if !items[1].SubmittedAt.Equal(older) {
		t.Fatalf("submitted_at = %v, want %v", items[1].SubmittedAt, older)
	}

	n, err := q.UpdateReturnRequest(ctx, queries.UpdateReturnRequestParams{
		ID:             firstID,
		TrackingNumber: "TRK-1B",
		Applicant:      "anonymous",
	})
	if err != nil || n != 1 {
		t.Fatalf("UpdateReturnRequest() = %d, %v, want 1 row", n, err)
	}
	n, err = q.UpdateReturnRequest(ctx, queries.UpdateReturnRequestParams{ID: 999, TrackingNumber: "x", Applicant: "anonymous"})
	if err != nil || n != 0 {
		t.Fatalf("UpdateReturnRequest(missing) = %d, %v, want 0 rows", n, err)
	}

	media, err := q.GetReturnRequestMedia(ctx, firstID)
	if err != nil || media.String != `["1_a.jpg"]` {
		t.Fatalf("GetReturnRequestMedia() = %v, %v", media, err)
	}
	if _, err := q.GetReturnRequestMedia(ctx, 999); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetReturnRequestMedia(missing) error = %v, want sql.ErrNoRows", err)
	}

	n, err = q.DeleteReturnRequest(ctx, firstID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteReturnRequest() = %d, %v", n, err)
	}
}

func TestRepairRequestLifecycle(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	q := database.Queries

	received := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	err := q.CreateRepairRequest(ctx, queries.CreateRepairRequestParams{
		RepairID:    "REP-250303-ABC",
		ReceiveDate: sql.NullTime{Time: received, Valid: true},
		Purpose:     sql.NullString{String: "warranty", Valid: true},
		Applicant:   "tech@example.com",
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateRepairRequest() error = %v", err)
	}

	exists, err := q.RepairRequestExists(ctx, "REP-250303-ABC")
	if err != nil || !exists {
		t.Fatalf("RepairRequestExists() = %v, %v", exists, err)
	}

	items, err := q.ListRepairRequests(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("ListRepairRequests() = %+v, %v", items, err)
	}
	got := items[0]
	if !got.ReceiveDate.Valid || got.ReceiveDate.Time.Format("2006-01-02") != "2025-03-03" {
		t.Fatalf("receive_date = %+v", got.ReceiveDate)
	}
	if got.RepairDate.Valid {
		t.Fatalf("repair_date = %+v, want NULL", got.RepairDate)
	}

	n, err := q.UpdateRepairRequest(ctx, queries.UpdateRepairRequestParams{
		RepairID:  "REP-250303-ABC",
		Issue:     sql.NullString{String: "screen", Valid: true},
		Applicant: "anonymous",
	})
	if err != nil || n != 1 {
		t.Fatalf("UpdateRepairRequest() = %d, %v", n, err)
	}

	n, err = q.DeleteRepairRequest(ctx, "REP-250303-ABC")
	if err != nil || n != 1 {
		t.Fatalf("DeleteRepairRequest() = %d, %v", n, err)
	}
	n, err = q.DeleteRepairRequest(ctx, "REP-250303-ABC")
	if err != nil || n != 0 {
		t.Fatalf("DeleteRepairRequest(again) = %d, %v", n, err)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	sentinel := errors.New("abort")

	err := database.RunInTx(ctx, func(tx *DB) error {
		if _, err := tx.Queries.CreateReturnRequest(ctx, queries.CreateReturnRequestParams{
			Applicant: "anonymous", TrackingNumber: "T", SubmittedAt: time.Now(),
		}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("RunInTx() error = %v, want sentinel", err)
	}

	items, err := database.Queries.ListReturnRequests(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("ListReturnRequests() = %d items, %v, want none", len(items), err)
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.DatabaseConfig{Host: "db.internal", User: "ops", Password: "p@ss", Name: "opsboard"})
	for _, want := range []string{"ops:p@ss@tcp(db.internal:3306)/opsboard", "parseTime=true", "clientFoundRows=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("MySQLDSN() = %q, want containing %q", dsn, want)
		}
	}
}

func TestEnsureForeignKeysEnabledDSN(t *testing.T) {
	tests := map[string]string{
		"data.db":             "data.db?_fk=1",
		"data.db?cache=share": "data.db?cache=share&_fk=1",
		"data.db?_fk=0":       "data.db?_fk=0",
	}
	for in, want := range tests {
		if got := ensureForeignKeysEnabledDSN(in); got != want {
			t.Fatalf("ensureForeignKeysEnabledDSN(%q) = %q, want %q", in, got, want)
		}
	}
}
