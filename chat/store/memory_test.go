package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load preserves order by seq", func(t *testing.T) {
		s := NewMemStore()
		defer s.Close()

		// Saved out of order on purpose.
		for _, seq := range []int{2, 1, 3} {
			err := s.SaveTurn(ctx, "s-1", Turn{
				Seq:      seq,
				Question: "q",
				Answer:   "a",
			})
			if err != nil {
				t.Fatalf("save turn %d: %v", seq, err)
			}
		}

		turns, err := s.LoadTranscript(ctx, "s-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(turns) != 3 {
			t.Fatalf("expected 3 turns, got %d", len(turns))
		}
		for i, turn := range turns {
			if turn.Seq != i+1 {
				t.Errorf("turn %d: expected seq %d, got %d", i, i+1, turn.Seq)
			}
		}
	})

	t.Run("same seq overwrites", func(t *testing.T) {
		s := NewMemStore()
		defer s.Close()

		_ = s.SaveTurn(ctx, "s-1", Turn{Seq: 1, Answer: "old"})
		_ = s.SaveTurn(ctx, "s-1", Turn{Seq: 1, Answer: "new"})

		turns, err := s.LoadTranscript(ctx, "s-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(turns) != 1 || turns[0].Answer != "new" {
			t.Errorf("expected a single overwritten turn, got %+v", turns)
		}
	})

	t.Run("unknown session returns ErrNotFound", func(t *testing.T) {
		s := NewMemStore()
		defer s.Close()

		if _, err := s.LoadTranscript(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list sessions sorted", func(t *testing.T) {
		s := NewMemStore()
		defer s.Close()

		for _, id := range []string{"charlie", "alpha", "bravo"} {
			_ = s.SaveTurn(ctx, id, Turn{Seq: 1, CreatedAt: time.Now()})
		}

		ids, err := s.ListSessions(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"alpha", "bravo", "charlie"}
		if len(ids) != len(want) {
			t.Fatalf("expected %v, got %v", want, ids)
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, ids)
			}
		}
	})

	t.Run("loaded transcript is a copy", func(t *testing.T) {
		s := NewMemStore()
		defer s.Close()

		_ = s.SaveTurn(ctx, "s-1", Turn{Seq: 1, Answer: "original"})

		turns, _ := s.LoadTranscript(ctx, "s-1")
		turns[0].Answer = "mutated"

		again, _ := s.LoadTranscript(ctx, "s-1")
		if again[0].Answer != "original" {
			t.Error("mutating the returned slice changed the store")
		}
	})
}
