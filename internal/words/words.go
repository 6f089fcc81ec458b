// internal/words/words.go
//
// Word sources for the game engine.
//
// Responsibilities:
//   - Define Source, the seam between the engine and where words come from.
//   - Provide sources for a static list, the embedded default bank, a local
//     word file and a remote word list (plain text or JSON array).
//   - Normalise every word the same way the engine normalises secrets.
//
// Constraints:
//   • A usable word contains at least one letter.
//   • Lines that are blank or start with '#' are ignored.
//   • Lists are de-duplicated, keeping first occurrence order.

package words

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/robalobadob/hangman/assets"
	"github.com/robalobadob/hangman/internal/game"
)

// ErrNoWords is returned when a source or bank has no usable words.
var ErrNoWords = errors.New("words: no words loaded")

// Source supplies candidate secret words.
type Source interface {
	Words(ctx context.Context) ([]string, error)
}

// Static is a fixed in-memory word list.
type Static []string

func (s Static) Words(context.Context) ([]string, error) {
	return Normalize(s), nil
}

// Embedded returns the default bank compiled into the binary.
func Embedded() Source { return embedded{} }

type embedded struct{}

func (embedded) Words(context.Context) ([]string, error) {
	list, err := assets.Words()
	if err != nil {
		return nil, fmt.Errorf("read embedded words: %w", err)
	}
	return Normalize(list), nil
}

// File reads one word per line from a local file.
type File string

func (f File) Words(context.Context) ([]string, error) {
	fh, err := os.Open(string(f))
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return readLines(fh)
}

// URL fetches a remote word list. text/* bodies are read one word per
// line; application/json bodies must be a JSON array of strings.
type URL struct {
	Location string
	Client   *http.Client // defaults to a client with a 15s timeout
}

func (u URL) Words(ctx context.Context) ([]string, error) {
	client := u.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u.Location, resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: content type: %w", u.Location, err)
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return readLines(resp.Body)
	case mediaType == "application/json":
		var list []string
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			return nil, fmt.Errorf("fetch %s: JSON data was not a list of words: %w", u.Location, err)
		}
		return Normalize(list), nil
	default:
		return nil, fmt.Errorf("fetch %s: unsupported content type %q", u.Location, mediaType)
	}
}

// Locate picks File or URL based on the location's scheme.
func Locate(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return URL{Location: location}
	}
	return File(location)
}

// Multi is the de-duplicated union of several sources. A source failing
// aborts the whole load.
type Multi []Source

func (m Multi) Words(ctx context.Context) ([]string, error) {
	var all []string
	for _, s := range m {
		list, err := s.Words(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
	}
	return Normalize(all), nil
}

// readLines loads one word per line, skipping blanks and '#' comments.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return Normalize(out), nil
}

// Normalize applies game.Normalize to each word, drops unusable entries
// and removes duplicates.
func Normalize(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, w := range list {
		w = game.Normalize(w)
		if !Valid(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Valid reports whether w can be used as a secret word.
func Valid(w string) bool {
	return strings.ContainsFunc(w, unicode.IsLetter)
}
