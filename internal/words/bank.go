package words

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// BankStore persists the contents of a Bank.
// Implementations: FileStore (this package) and database.WordStore.
type BankStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, list []string) error
}

// Bank is an editable, de-duplicated word list shared by the sessions of
// one process. Safe for concurrent use.
type Bank struct {
	mu    sync.RWMutex
	list  []string
	index map[string]struct{}
	store BankStore // optional
}

// NewBank loads the bank from store. When the store holds no words the
// bank is seeded from fallback (if any) without writing it back.
func NewBank(ctx context.Context, store BankStore, fallback Source) (*Bank, error) {
	b := &Bank{index: make(map[string]struct{}), store: store}
	var list []string
	if store != nil {
		var err error
		if list, err = store.Load(ctx); err != nil {
			return nil, err
		}
	}
	if len(list) == 0 && fallback != nil {
		var err error
		if list, err = fallback.Words(ctx); err != nil {
			return nil, err
		}
	}
	list, _ = b.merged(list)
	b.set(list)
	return b, nil
}

// Words returns a copy of the bank, in insertion order. It makes Bank a Source.
func (b *Bank) Words(context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.list), nil
}

// Sorted returns the bank's words in alphabetical order.
func (b *Bank) Sorted() []string {
	b.mu.RLock()
	out := slices.Clone(b.list)
	b.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Len returns the number of words in the bank.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.list)
}

// Contains reports whether w (after normalisation) is in the bank.
func (b *Bank) Contains(w string) bool {
	n := Normalize([]string{w})
	if len(n) == 0 {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.index[n[0]]
	return ok
}

// Add inserts w and persists the bank. It reports false if w was
// already present. Words without letters are rejected with ErrNoWords.
func (b *Bank) Add(ctx context.Context, w string) (bool, error) {
	n := Normalize([]string{w})
	if len(n) == 0 {
		return false, ErrNoWords
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	next, added := b.merged(n)
	if added == 0 {
		return false, nil
	}
	return true, b.commit(ctx, next)
}

// Remove deletes w and persists the bank. It reports false if w was absent.
func (b *Bank) Remove(ctx context.Context, w string) (bool, error) {
	n := Normalize([]string{w})
	if len(n) == 0 {
		return false, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.index[n[0]]; !ok {
		return false, nil
	}
	next := slices.DeleteFunc(slices.Clone(b.list), func(s string) bool { return s == n[0] })
	return true, b.commit(ctx, next)
}

// Clear empties the bank, returning how many words were removed.
func (b *Bank) Clear(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.list)
	if err := b.commit(ctx, nil); err != nil {
		return 0, err
	}
	return n, nil
}

// Import adds every word of src, returning how many were new.
func (b *Bank) Import(ctx context.Context, src Source) (int, error) {
	list, err := src.Words(ctx)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	next, added := b.merged(list)
	if added == 0 {
		return 0, nil
	}
	if err := b.commit(ctx, next); err != nil {
		return 0, err
	}
	return added, nil
}

// merged returns a copy of the bank with the new words of list appended,
// and how many were new. Callers hold the lock (or own b).
func (b *Bank) merged(list []string) ([]string, int) {
	next := slices.Clone(b.list)
	seen := make(map[string]struct{}, len(list))
	added := 0
	for _, w := range list {
		if _, ok := b.index[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		next = append(next, w)
		added++
	}
	return next, added
}

// commit saves list and then makes it the bank's contents. A failed
// save leaves the bank unchanged. Callers hold the write lock.
func (b *Bank) commit(ctx context.Context, list []string) error {
	if b.store != nil {
		if err := b.store.Save(ctx, slices.Clone(list)); err != nil {
			return err
		}
	}
	b.set(list)
	return nil
}

func (b *Bank) set(list []string) {
	b.list = list
	b.index = make(map[string]struct{}, len(list))
	for _, w := range list {
		b.index[w] = struct{}{}
	}
}

// FileStore keeps the bank in a plain text file, one word per line.
// A missing file loads as an empty bank.
type FileStore string

func (f FileStore) Load(ctx context.Context) ([]string, error) {
	list, err := File(f).Words(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return list, err
}

func (f FileStore) Save(_ context.Context, list []string) error {
	path := string(f)
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data := strings.Join(list, "\n")
	if data != "" {
		data += "\n"
	}
	return os.WriteFile(path, []byte(data), 0o644)
}
