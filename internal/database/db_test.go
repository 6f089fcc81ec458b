package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/words"
)

func openTest(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenMigrated(Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTest(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("_migrations rows = %d, want 2", n)
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hangman.db")
	db, err := OpenMigrated(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := NewUsers(db).Create(context.Background(), "filed", "hash"); err != nil {
		t.Fatal(err)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(openTest(t))

	u, err := users.Create(ctx, " Alice ", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "Alice" {
		t.Fatalf("Username = %q", u.Username)
	}
	if _, err := users.Create(ctx, "alice", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate err = %v", err)
	}

	byName, err := users.ByUsername(ctx, "ALICE")
	if err != nil || byName.ID != u.ID || byName.PasswordHash != "hash" {
		t.Fatalf("ByUsername = %+v, %v", byName, err)
	}
	if _, err := users.ByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ByID(missing) err = %v", err)
	}
}

func playedState(t *testing.T, word string, letters ...string) game.State {
	t.Helper()
	g, err := game.New(word, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range letters {
		if _, err := g.Guess(l); err != nil {
			t.Fatal(err)
		}
	}
	return g.Snapshot()
}

func TestGamesRecordBumpsStatsOnce(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	users, games := NewUsers(db), NewGames(db)

	u, _ := users.Create(ctx, "bob", "hash")
	owner := Owner{UserID: u.ID}

	start := playedState(t, "go")
	if err := games.Insert(ctx, owner, start); err != nil {
		t.Fatal(err)
	}
	g, _ := game.New("go", 2, game.WithID(start.ID))
	_, _ = g.Guess("g")
	if err := games.Record(ctx, owner, g.Snapshot()); err != nil {
		t.Fatal(err)
	}
	_, _ = g.Guess("o")
	final := g.Snapshot()
	for i := 0; i < 2; i++ {
		if err := games.Record(ctx, owner, final); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := users.ByID(ctx, u.ID)
	if got.GamesPlayed != 1 || got.Wins != 1 || got.Streak != 1 {
		t.Fatalf("stats = %+v", got)
	}
	mine, err := games.Mine(ctx, u.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].Status != "won" || mine[0].Word != "go" || mine[0].Guesses != 2 {
		t.Fatalf("Mine = %+v", mine)
	}
}

func TestGamesClaimAnonymous(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	users, games := NewUsers(db), NewGames(db)

	anon := Owner{AnonymousID: "anon-1"}
	lost := playedState(t, "cat", "x", "y")
	if err := games.Insert(ctx, anon, lost); err != nil {
		t.Fatal(err)
	}
	if err := games.Record(ctx, anon, lost); err != nil {
		t.Fatal(err)
	}

	u, _ := users.Create(ctx, "carol", "hash")
	n, err := games.ClaimAnonymous(ctx, "anon-1", u.ID)
	if err != nil || n != 1 {
		t.Fatalf("ClaimAnonymous = %d, %v", n, err)
	}
	mine, _ := games.Mine(ctx, u.ID, 0)
	if len(mine) != 1 || mine[0].Status != "lost" || mine[0].Incorrect != 2 {
		t.Fatalf("Mine = %+v", mine)
	}
}

func TestWordStoreBacksBank(t *testing.T) {
	ctx := context.Background()
	store := NewWordStore(openTest(t))

	bank, err := words.NewBank(ctx, store, words.Static{"seed"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bank.Add(ctx, "Zulu"); err != nil {
		t.Fatal(err)
	}
	if _, err := bank.Add(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"seed", "zulu", "alpha"}) {
		t.Fatalf("Load() = %q", got)
	}
}
