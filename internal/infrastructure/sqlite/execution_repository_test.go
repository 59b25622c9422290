package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/repository"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(command string, status domain.ExecutionStatus, start time.Time) *domain.ExecutionRecord {
	res := domain.ExecutionResult{
		Command:    command,
		ExitCode:   0,
		Stdout:     "out",
		Stderr:     "",
		DurationMs: 42,
		PID:        1234,
	}
	if status == domain.ExecutionStatusFailed {
		res.ExitCode = 1
	}
	return domain.NewExecutionRecord(res, start, start.Add(42*time.Millisecond))
}

func TestExecutionRepositoryCreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExecutionRepository(db)
	ctx := context.Background()

	record := testRecord("echo hello", domain.ExecutionStatusSuccess, time.Now().UTC())
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	found, err := repo.FindByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}

	if found.Command != "echo hello" {
		t.Errorf("Command = %q, want %q", found.Command, "echo hello")
	}
	if found.Status != domain.ExecutionStatusSuccess {
		t.Errorf("Status = %q, want %q", found.Status, domain.ExecutionStatusSuccess)
	}
	if found.Stdout != "out" {
		t.Errorf("Stdout = %q, want %q", found.Stdout, "out")
	}
	if found.DurationMs != 42 {
		t.Errorf("DurationMs = %d, want 42", found.DurationMs)
	}
	if found.PID != 1234 {
		t.Errorf("PID = %d, want 1234", found.PID)
	}
}

func TestExecutionRepositoryFindByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExecutionRepository(db)

	_, err := repo.FindByID(context.Background(), "nonexistent-id")
	if err == nil {
		t.Fatal("expected an error for an unknown id")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want a not-found error", err)
	}
}

func TestExecutionRepositoryListOrdersByStartTimeDesc(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExecutionRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, command := range []string{"echo first", "echo second", "echo third"} {
		record := testRecord(command, domain.ExecutionStatusSuccess, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("Create(%q): %v", command, err)
		}
	}

	records, err := repo.List(ctx, repository.ExecutionFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List returned %d records, want 3", len(records))
	}
	for i, want := range []string{"echo third", "echo second", "echo first"} {
		if records[i].Command != want {
			t.Errorf("records[%d].Command = %q, want %q", i, records[i].Command, want)
		}
	}
}

func TestExecutionRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExecutionRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	statuses := []domain.ExecutionStatus{
		domain.ExecutionStatusSuccess,
		domain.ExecutionStatusFailed,
		domain.ExecutionStatusFailed,
		domain.ExecutionStatusSuccess,
	}
	for i, status := range statuses {
		record := testRecord("ls", status, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	failed, err := repo.List(ctx, repository.ExecutionFilter{Status: domain.ExecutionStatusFailed})
	if err != nil {
		t.Fatalf("List(failed) returned error: %v", err)
	}
	if len(failed) != 2 {
		t.Errorf("List(failed) returned %d records, want 2", len(failed))
	}
	for _, record := range failed {
		if record.Status != domain.ExecutionStatusFailed {
			t.Errorf("record %s has status %q", record.ID, record.Status)
		}
	}

	page, err := repo.List(ctx, repository.ExecutionFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List(paged) returned error: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("List(paged) returned %d records, want 2", len(page))
	}
}

func TestExecutionRepositoryCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExecutionRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	for _, status := range []domain.ExecutionStatus{
		domain.ExecutionStatusSuccess,
		domain.ExecutionStatusFailed,
		domain.ExecutionStatusSuccess,
	} {
		if err := repo.Create(ctx, testRecord("ls", status, base)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	total, err := repo.Count(ctx, repository.ExecutionFilter{})
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if total != 3 {
		t.Errorf("Count() = %d, want 3", total)
	}

	failed, err := repo.Count(ctx, repository.ExecutionFilter{Status: domain.ExecutionStatusFailed})
	if err != nil {
		t.Fatalf("Count(failed) returned error: %v", err)
	}
	if failed != 1 {
		t.Errorf("Count(failed) = %d, want 1", failed)
	}
}
