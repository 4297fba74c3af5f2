package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sw965/rockets/ga"
	"github.com/sw965/rockets/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := history.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	id, err := s.BeginRun(ctx, map[string]any{"population": 100, "selector": "pool"})
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("want a non-nil run id")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Params["selector"] != "pool" || run.Params["population"] != float64(100) {
		t.Errorf("params: %v", run.Params)
	}
	if run.CreatedAt.IsZero() {
		t.Error("want created_at to be set")
	}

	if _, err := s.GetRun(ctx, uuid.New()); !errors.Is(err, history.ErrRunNotFound) {
		t.Errorf("want: %v, got: %v", history.ErrRunNotFound, err)
	}
}

func TestGenerationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	id, err := s.BeginRun(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []history.Generation{
		{Stats: ga.NewStats(0, []float32{1, 2, 3}), HitWall: 2},
		{Stats: ga.NewStats(1, []float32{2, 4, 1000}), HitTarget: 1, HitWall: 1},
	}
	// 逆順に記録しても世代順に返る
	for i := len(want) - 1; i >= 0; i-- {
		if err := s.RecordGeneration(ctx, id, want[i]); err != nil {
			t.Fatalf("RecordGeneration: %v", err)
		}
	}

	got, err := s.Generations(ctx, id)
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("want %d generations, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("generation %d: want %+v, got %+v", i, want[i], got[i])
		}
	}

	// 同じ世代の記録は上書きされる
	updated := want[1]
	updated.HitTarget = 5
	if err := s.RecordGeneration(ctx, id, updated); err != nil {
		t.Fatal(err)
	}
	got, err = s.Generations(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].HitTarget != 5 {
		t.Errorf("upsert: %+v", got)
	}
}

func TestClosedStore(t *testing.T) {
	s := openStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.BeginRun(context.Background(), nil); !errors.Is(err, history.ErrNotOpen) {
		t.Errorf("want: %v, got: %v", history.ErrNotOpen, err)
	}
}
