// Package auxdata parses the auxiliary files that accompany a pool.
//
// All three formats are line-oriented, tab-separated text:
//
//   - group weights: one weight per object, one float per line;
//   - pairs: "winner<TAB>loser[<TAB>weight]", object indices, weight
//     defaulting to 1;
//   - baseline: one line per object with one float per baseline dimension
//     (one column for regression/binary, one per class otherwise).
//
// Readers validate against the pool's object count; the loader wires the
// parsed values into the dataset visitor after the streaming pass.
package auxdata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrObjectCountMismatch is returned when a file's line count does not
// match the pool's object count.
var ErrObjectCountMismatch = errors.New("auxdata: object count mismatch")

// Pair is one pairwise preference: the winner should rank above the loser.
type Pair struct {
	WinnerID uint32
	LoserID  uint32
	Weight   float32
}

// ReadGroupWeights parses per-object group weights.
func ReadGroupWeights(r io.Reader, docCount uint32) ([]float32, error) {
	weights := make([]float32, 0, docCount)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		w, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("auxdata: group weights line %d: %w", line, err)
		}
		weights = append(weights, float32(w))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("auxdata: group weights: %w", err)
	}

	if uint32(len(weights)) != docCount {
		return nil, fmt.Errorf("%w: group weights has %d entries, pool has %d objects",
			ErrObjectCountMismatch, len(weights), docCount)
	}
	return weights, nil
}

// ReadPairs parses pairwise preferences. Object indices must be < docCount.
func ReadPairs(r io.Reader, docCount uint32) ([]Pair, error) {
	var pairs []Pair

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 2 && len(fields) != 3 {
			return nil, fmt.Errorf("auxdata: pairs line %d: expected 2 or 3 fields, got %d", line, len(fields))
		}

		winner, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("auxdata: pairs line %d: winner: %w", line, err)
		}
		loser, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("auxdata: pairs line %d: loser: %w", line, err)
		}
		if uint32(winner) >= docCount || uint32(loser) >= docCount {
			return nil, fmt.Errorf("auxdata: pairs line %d: object index out of range [0, %d)", line, docCount)
		}

		p := Pair{WinnerID: uint32(winner), LoserID: uint32(loser), Weight: 1}
		if len(fields) == 3 {
			w, err := strconv.ParseFloat(fields[2], 32)
			if err != nil {
				return nil, fmt.Errorf("auxdata: pairs line %d: weight: %w", line, err)
			}
			p.Weight = float32(w)
		}
		pairs = append(pairs, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("auxdata: pairs: %w", err)
	}
	return pairs, nil
}

// ReadBaseline parses per-object baseline predictions. The result is
// indexed [dimension][object]; the dimension count is len(classNames) for
// multi-class targets, 1 otherwise.
func ReadBaseline(r io.Reader, docCount uint32, classNames []string) ([][]float32, error) {
	dim := len(classNames)
	if dim == 0 {
		dim = 1
	}

	baseline := make([][]float32, dim)
	for i := range baseline {
		baseline[i] = make([]float32, 0, docCount)
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != dim {
			return nil, fmt.Errorf("auxdata: baseline line %d: expected %d columns, got %d", line, dim, len(fields))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("auxdata: baseline line %d: %w", line, err)
			}
			baseline[i] = append(baseline[i], float32(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("auxdata: baseline: %w", err)
	}

	if uint32(len(baseline[0])) != docCount {
		return nil, fmt.Errorf("%w: baseline has %d entries, pool has %d objects",
			ErrObjectCountMismatch, len(baseline[0]), docCount)
	}
	return baseline, nil
}
