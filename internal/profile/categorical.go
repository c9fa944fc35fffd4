package profile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/KaramelBytes/dataquality-cli/internal/dataset"
)

// DefaultMaxCategories is the page size used when none is configured.
const DefaultMaxCategories = 10

// ErrInvalidPageSize is returned by Paginate for a non-positive page size.
var ErrInvalidPageSize = errors.New("max categories must be a positive integer")

// CategoryCount is one distinct value and how often it occurs.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// CategoryPage is a contiguous slice of the ranked counts. Index is 1-based.
type CategoryPage struct {
	Index   int             `json:"index" yaml:"index"`
	Total   int             `json:"total" yaml:"total"`
	Entries []CategoryCount `json:"entries" yaml:"entries"`
}

// ValueCounts ranks the values of every categorical column.
func ValueCounts(t dataset.Table) (map[string][]CategoryCount, error) {
	out := make(map[string][]CategoryCount)
	for _, c := range t.Columns() {
		if c.Kind != dataset.KindCategorical {
			continue
		}
		vals, err := t.Values(c.Name)
		if err != nil {
			return nil, fmt.Errorf("value counts %q: %w", c.Name, err)
		}
		out[c.Name] = Rank(vals)
	}
	return out, nil
}

// Rank groups the non-null values and orders them by descending count.
// Equal counts keep the order in which the values first appear.
func Rank(vals []dataset.Value) []CategoryCount {
	pos := make(map[string]int)
	var counts []CategoryCount
	for _, v := range vals {
		if v.Null {
			continue
		}
		i, ok := pos[v.Raw]
		if !ok {
			i = len(counts)
			pos[v.Raw] = i
			counts = append(counts, CategoryCount{Value: v.Raw})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

// Paginate splits ranked counts into pages of at most maxCategories entries. Pages are
// contiguous, in rank order, and concatenate back to counts. An empty input
// yields no pages.
func Paginate(counts []CategoryCount, maxCategories int) ([]CategoryPage, error) {
	if maxCategories <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, maxCategories)
	}
	n := len(counts)
	total := (n + maxCategories - 1) / maxCategories
	pages := make([]CategoryPage, 0, total)
	for lo := 0; lo < n; lo += maxCategories {
		hi := min(lo+maxCategories, n)
		pages = append(pages, CategoryPage{
			Index:   len(pages) + 1,
			Total:   total,
			Entries: counts[lo:hi:hi],
		})
	}
	return pages, nil
}
