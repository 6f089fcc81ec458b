package words

import (
	"math/rand/v2"
	"slices"
)

// Pick returns a uniformly random word from list using rng.
func Pick(list []string, rng *rand.Rand) (string, error) {
	if len(list) == 0 {
		return "", ErrNoWords
	}
	return list[rng.IntN(len(list))], nil
}

// NewRand returns a PCG-backed generator. Tests pass fixed seeds; callers
// that want fresh games pass values from rand.Uint64.
func NewRand(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// Rotation hands out words without repeating any until every word has
// been used once, then starts over. Each session owns its own Rotation.
type Rotation struct {
	rng  *rand.Rand
	used map[string]struct{}
}

// NewRotation returns an empty rotation drawing from rng.
func NewRotation(rng *rand.Rand) *Rotation {
	return &Rotation{rng: rng, used: make(map[string]struct{})}
}

// Next picks an unused word from list. The list may change between calls
// (for example when the bank is edited); words no longer present are
// simply never offered.
func (r *Rotation) Next(list []string) (string, error) {
	if len(list) == 0 {
		return "", ErrNoWords
	}
	fresh := slices.DeleteFunc(slices.Clone(list), func(w string) bool {
		_, ok := r.used[w]
		return ok
	})
	if len(fresh) == 0 {
		clear(r.used)
		fresh = list
	}
	w, err := Pick(fresh, r.rng)
	if err != nil {
		return "", err
	}
	r.used[w] = struct{}{}
	return w, nil
}

// Used is the number of words handed out since the last reset.
func (r *Rotation) Used() int { return len(r.used) }
