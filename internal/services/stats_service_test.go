package services_test

import (
	"testing"

	"picklist/internal/domain"
	"picklist/internal/repos"
	"picklist/internal/services"
	"picklist/internal/store"
)

func sheetItemsFor() []domain.Item {
	return []domain.Item{
		{Position: 1, Code: "AA1", Description: "Towel", Quantity: 1},
		{Position: 2, Code: "BB2", Description: "Duvet", Quantity: 2},
	}
}

func TestStatsRecomputeOnWrites(t *testing.T) {
	db := memdb(t)
	local := store.NewLocal(repos.NewListRepo(db))
	stats := services.NewStatsService(local, local)

	if s := stats.Snapshot(); s.Pending != 0 || s.InProgress != 0 || s.CompletedToday != 0 {
		t.Fatalf("expected empty counters, got %+v", s)
	}

	a, err := local.CreateList("a", sheetItemsFor(), 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := local.CreateList("b", sheetItemsFor(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if s := stats.Snapshot(); s.Pending != 2 {
		t.Fatalf("expected 2 pending after imports, got %+v", s)
	}

	if _, err := local.MarkInProgress(a.ID, "P001"); err != nil {
		t.Fatal(err)
	}
	if s := stats.Snapshot(); s.Pending != 1 || s.InProgress != 1 {
		t.Fatalf("counters stale after start: %+v", s)
	}

	if err := local.MarkCompleted(a.ID); err != nil {
		t.Fatal(err)
	}
	s := stats.Snapshot()
	if s.InProgress != 0 || s.CompletedToday != 1 {
		t.Fatalf("counters stale after completion: %+v", s)
	}
	_ = b
}
