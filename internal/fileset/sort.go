package fileset

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"fitcsv/internal/services"
)

// DefaultSortIndex selects the last numeric substring of a path.
const DefaultSortIndex = -1

var numberPattern = regexp.MustCompile(`\d*\.?\d+`)

// Numbers returns every numeric substring of path, left to right.
func Numbers(path string) []string {
	return numberPattern.FindAllString(path, -1)
}

// SortKey extracts the numeric substring at position (negative counts from the
// end) and parses it as a float. Paths without any number key as +Inf.
func SortKey(path string, position int) (float64, error) {
	matches := Numbers(path)
	if len(matches) == 0 {
		return math.Inf(1), nil
	}
	idx := position
	if idx < 0 {
		idx += len(matches)
	}
	if idx < 0 || idx >= len(matches) {
		return 0, &services.SortIndexError{Path: path, Index: position, Matches: len(matches)}
	}
	value, err := strconv.ParseFloat(matches[idx], 64)
	if err != nil {
		return 0, &services.SortIndexError{Path: path, Index: position, Matches: len(matches)}
	}
	return value, nil
}

// Sort returns a copy of paths ordered by SortKey. Equal keys keep their
// input order.
func Sort(paths []string, position int) ([]string, error) {
	type keyed struct {
		path string
		key  float64
	}
	items := make([]keyed, len(paths))
	for i, path := range paths {
		key, err := SortKey(path, position)
		if err != nil {
			return nil, err
		}
		items[i] = keyed{path: path, key: key}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key < items[j].key
	})
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.path
	}
	return out, nil
}

// Sorted returns the set reordered by Sort.
func (s Set) Sorted(position int) (Set, error) {
	paths, err := Sort(s.Paths, position)
	if err != nil {
		return Set{}, err
	}
	s.Paths = paths
	return s, nil
}
