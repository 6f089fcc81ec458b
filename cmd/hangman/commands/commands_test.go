package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WORDS_FILE", filepath.Join(dir, "words.txt"))
	t.Setenv("DB_PATH", filepath.Join(dir, "hangman.db"))
	t.Setenv("WORDS_URL", "")
	t.Setenv("MAX_INCORRECT", "6")
	return dir
}

func TestWordsFileBank(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(path, []byte("cat\ndog\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "", "words", "add", "Owl", "cat")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Owl: Word added") || !strings.Contains(out, "cat: Word already in word bank") {
		t.Fatalf("add output = %q", out)
	}

	out, err = runCmd(t, "", "words", "remove", "dog", "emu")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "dog: Word removed") || !strings.Contains(out, "emu: Word not found") {
		t.Fatalf("remove output = %q", out)
	}

	out, err = runCmd(t, "", "words", "list")
	if err != nil {
		t.Fatal(err)
	}
	if out != "cat\nowl\n2 words loaded\n" {
		t.Fatalf("list output = %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "cat\nowl\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestWordsImportAndClear(t *testing.T) {
	dir := setupEnv(t)
	if err := os.WriteFile(filepath.Join(dir, "words.txt"), []byte("cat\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	list := filepath.Join(dir, "more.txt")
	if err := os.WriteFile(list, []byte("ant\nbee\ncat\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "", "words", "import", list)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "2 words added from") {
		t.Fatalf("import output = %q", out)
	}

	out, err = runCmd(t, "", "words", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if out != "3 words cleared\n" {
		t.Fatalf("clear output = %q", out)
	}

	if _, err := runCmd(t, "", "words", "import", filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("import of a missing file succeeded")
	}
}

func TestWordsDatabaseBank(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "", "words", "--db", "add", "quokka")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "quokka: Word added") {
		t.Fatalf("add output = %q", out)
	}
	out, err = runCmd(t, "", "words", "--db", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "\nquokka\n") {
		t.Fatalf("database bank missing the new word: %q", out)
	}

	// The file bank is separate.
	out, err = runCmd(t, "", "words", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "quokka") {
		t.Fatalf("file bank has the database word: %q", out)
	}
}

func TestPlayExits(t *testing.T) {
	dir := setupEnv(t)
	if err := os.WriteFile(filepath.Join(dir, "words.txt"), []byte("cat\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "2\nc\na\nt\n1\n", "play", "--max-incorrect", "2")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Welcome to Hangman!", "You won!", "Thanks for playing!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestMaxIncorrectFlagValidated(t *testing.T) {
	setupEnv(t)
	if _, err := runCmd(t, "", "play", "--max-incorrect=-1"); err == nil {
		t.Fatal("negative --max-incorrect accepted")
	}
}
