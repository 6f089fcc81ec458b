package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	if _, _, err := st.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(unknown) err = %v", err)
	}
	if err := st.Save(ctx, Entry{}); err == nil {
		t.Fatal("Save(nil game) succeeded")
	}

	g, _ := game.New("abc", 3, game.WithID("g1"))
	if err := st.Save(ctx, Entry{Game: g, Owner: "u1"}); err != nil {
		t.Fatal(err)
	}
	err := st.Update(ctx, "g1", func(e Entry) error {
		_, err := e.Game.Guess("a")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	snap, owner, err := st.Get(ctx, "g1")
	if err != nil || owner != "u1" || snap.Reveal != "a__" {
		t.Fatalf("Get = %+v, %q, %v", snap, owner, err)
	}

	_ = st.Delete(ctx, "g1")
	if err := st.Update(ctx, "g1", func(Entry) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update after Delete err = %v", err)
	}
}

func TestMemoryStoreSerialisesUpdates(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g, _ := game.New("abcdefghijklmnopqrstuvwxyz", 26, game.WithID("g"))
	_ = st.Save(ctx, Entry{Game: g})

	var wg sync.WaitGroup
	for r := 'a'; r <= 'z'; r++ {
		wg.Add(1)
		go func(letter string) {
			defer wg.Done()
			_ = st.Update(ctx, "g", func(e Entry) error {
				_, err := e.Game.Guess(letter)
				return err
			})
		}(string(r))
	}
	wg.Wait()

	snap, _, _ := st.Get(ctx, "g")
	if snap.Status != game.StatusWon || snap.Guesses != 26 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestMemoryStorePrune(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	at := func(min int) game.Option {
		return game.WithClock(func() time.Time { return base.Add(time.Duration(min) * time.Minute) })
	}

	tests := []struct {
		id     string
		end    string // guess applied at creation; "" leaves the game in progress
		clock  int
		pruned bool
	}{
		{"won-early", "a", 0, true},
		{"lost-early", "z", 0, true},
		{"won-late", "a", 30, false},
		{"playing", "", 0, false},
	}

	st := NewMemoryStore()
	for _, tt := range tests {
		g, err := game.New("a", 1, game.WithID(tt.id), at(tt.clock))
		if err != nil {
			t.Fatal(err)
		}
		if tt.end != "" {
			if _, err := g.Guess(tt.end); err != nil {
				t.Fatal(err)
			}
		}
		_ = st.Save(ctx, Entry{Game: g, Owner: "u"})
	}

	n, err := st.Prune(ctx, base.Add(10*time.Minute))
	if err != nil || n != 2 {
		t.Fatalf("Prune = %d, %v", n, err)
	}
	for _, tt := range tests {
		_, _, err := st.Get(ctx, tt.id)
		if gone := errors.Is(err, ErrNotFound); gone != tt.pruned {
			t.Errorf("%s: pruned = %v, want %v", tt.id, gone, tt.pruned)
		}
	}
}
