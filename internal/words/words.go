// internal/words/words.go
//
// Provides the solution word for the engine.
//
// Responsibilities:
//   - Resolve the configured solution, falling back to the built-in default.
//   - Normalize (trim, uppercase) and validate it as a 5-letter A–Z word.
//   - Optionally read the solution from a file (first usable line wins).
//
// There is no vocabulary: guesses are never checked against a word list.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robalobadob/lemonle/internal/game"
)

// DefaultSolution is used when nothing is configured.
const DefaultSolution = "LEMON"

var ErrNoSolution = errors.New("words: no usable solution in file")

// Resolve validates raw as the solution. Empty input selects DefaultSolution.
func Resolve(raw string) (game.Word, error) {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultSolution
	}
	w, err := game.ParseWord(raw)
	if err != nil {
		return game.Word{}, fmt.Errorf("words: solution: %w", err)
	}
	return w, nil
}

// ReadSolutionFile returns the first line of path that is a valid word.
// Blank lines and lines starting with '#' are skipped.
func ReadSolutionFile(path string) (game.Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return game.Word{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if w, err := game.ParseWord(line); err == nil {
			return w, nil
		}
	}
	if err := sc.Err(); err != nil {
		return game.Word{}, err
	}
	return game.Word{}, fmt.Errorf("%s: %w", path, ErrNoSolution)
}
