package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/tangram.space/internal/arrangement"
	"github.com/louisbranch/tangram.space/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "arrangements.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestArrangementRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := arrangement.TwoTriangleSquare()
	if err := store.PutArrangement(ctx, want); err != nil {
		t.Fatalf("put arrangement: %v", err)
	}

	got, err := store.GetArrangement(ctx, want.ID)
	if err != nil {
		t.Fatalf("get arrangement: %v", err)
	}
	if got.ID != want.ID || got.Name != want.Name {
		t.Fatalf("got %q/%q, want %q/%q", got.ID, got.Name, want.ID, want.Name)
	}
	if got.Metadata.Mode != want.Metadata.Mode || got.Metadata.RotationStep != want.Metadata.RotationStep {
		t.Fatalf("metadata = %+v, want %+v", got.Metadata, want.Metadata)
	}
	if len(got.Elements) != len(want.Elements) || len(got.Constraints) != len(want.Constraints) {
		t.Fatalf("got %d elements, %d constraints, want %d and %d",
			len(got.Elements), len(got.Constraints), len(want.Elements), len(want.Constraints))
	}
}

func TestPutArrangementUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	arr := arrangement.TwoTriangleSquare()
	if err := store.PutArrangement(ctx, arr); err != nil {
		t.Fatalf("put arrangement: %v", err)
	}
	arr.Name = "Renamed"
	if err := store.PutArrangement(ctx, arr); err != nil {
		t.Fatalf("put arrangement again: %v", err)
	}

	got, err := store.GetArrangement(ctx, arr.ID)
	if err != nil {
		t.Fatalf("get arrangement: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("name = %q, want upserted value", got.Name)
	}

	all, err := store.ListArrangements(ctx)
	if err != nil {
		t.Fatalf("list arrangements: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("listed %d arrangements, want 1", len(all))
	}
}

func TestGetArrangementNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetArrangement(context.Background(), "absent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteArrangement(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	arr := arrangement.TwoTriangleSquare()
	if err := store.PutArrangement(ctx, arr); err != nil {
		t.Fatalf("put arrangement: %v", err)
	}
	if err := store.DeleteArrangement(ctx, arr.ID); err != nil {
		t.Fatalf("delete arrangement: %v", err)
	}
	if err := store.DeleteArrangement(ctx, arr.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestAttemptsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	arr := arrangement.TwoTriangleSquare()
	if err := store.PutArrangement(ctx, arr); err != nil {
		t.Fatalf("put arrangement: %v", err)
	}

	base := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	attempts := []storage.Attempt{
		{
			ArrangementID:       arr.ID,
			Passed:              false,
			AnchorID:            "tri-a",
			GlobalRotationIndex: 0,
			ViolatedConstraints: []string{"hypotenuse-join"},
			CreatedAt:           base,
		},
		{
			ArrangementID:       arr.ID,
			Passed:              true,
			AnchorID:            "tri-a",
			GlobalRotationIndex: 0,
			CreatedAt:           base.Add(time.Minute),
		},
	}
	for _, attempt := range attempts {
		if err := store.RecordAttempt(ctx, attempt); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}

	got, err := store.ListAttempts(ctx, arr.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d attempts, want 2", len(got))
	}
	if got[0].Passed || !got[1].Passed {
		t.Fatalf("attempts out of order: %+v", got)
	}
	if got[0].ID == "" || got[1].ID == "" {
		t.Fatal("expected generated attempt ids")
	}
	if len(got[0].ViolatedConstraints) != 1 || got[0].ViolatedConstraints[0] != "hypotenuse-join" {
		t.Fatalf("violated = %v, want [hypotenuse-join]", got[0].ViolatedConstraints)
	}
	if !got[0].CreatedAt.Equal(base) {
		t.Fatalf("created at = %v, want %v", got[0].CreatedAt, base)
	}
}

func TestRecordAttemptRequiresArrangement(t *testing.T) {
	store := openTestStore(t)

	err := store.RecordAttempt(context.Background(), storage.Attempt{})
	if err == nil {
		t.Fatal("expected error for missing arrangement id")
	}
}
