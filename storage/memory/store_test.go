package memory

import (
	"context"
	"testing"

	"github.com/cyp0633/recurcal/recurrence"
	"github.com/cyp0633/recurcal/storage"
)

func TestStore_LoadSave(t *testing.T) {
	ctx := context.Background()
	store := New()

	events, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected empty store, got %d events", len(events))
	}

	want := storage.NewMockSeriesEvent("e1", "g1", "2024-01-01")
	want.Repeat.ExcludeDates = []string{"2024-01-03"}
	if err := store.Save(ctx, []recurrence.Event{want}); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e1" {
		t.Fatalf("got %+v, want one event e1", got)
	}
	if store.Saves() != 1 {
		t.Errorf("got %d saves, want 1", store.Saves())
	}
}

func TestStore_Isolation(t *testing.T) {
	ctx := context.Background()
	seed := storage.NewMockSeriesEvent("e1", "g1", "2024-01-01")
	seed.Repeat.ExcludeDates = []string{"2024-01-03"}
	store := New(seed)

	// Mutating the seed or a loaded copy must not reach the store
	seed.Repeat.ExcludeDates[0] = "changed"
	loaded, _ := store.Load(ctx)
	loaded[0].Title = "changed"

	again, _ := store.Load(ctx)
	if again[0].Title == "changed" {
		t.Error("loaded copy leaked into the store")
	}
	if again[0].Repeat.ExcludeDates[0] != "2024-01-03" {
		t.Error("seed slice leaked into the store")
	}
}

func TestStore_SaveCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Save(ctx, nil)
	if err == nil {
		t.Fatal("expected error saving with canceled context")
	}
	if !storage.IsType(err, storage.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
