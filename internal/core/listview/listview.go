// Package listview holds the presentation state of a fetched collection:
// the current page, page size, sort order, and the set of selected ids.
// It has no knowledge of how items are fetched or drawn.
package listview

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// DefaultPageSizes are the page sizes offered when none are configured.
var DefaultPageSizes = []int{5, 10, 20, 50}

// DefaultPageSize is the initial page size.
const DefaultPageSize = 5

var (
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrUnknownSortKey  = errors.New("unknown sort key")
)

// Sort selects a comparator by key and a direction.
type Sort struct {
	Key  string `json:"key"`
	Desc bool   `json:"desc"`
}

// Options configures a State.
type Options[T any] struct {
	// ID returns the stable identifier of an item. Required.
	ID func(T) string
	// Comparators maps sort keys to ascending comparators.
	Comparators map[string]func(a, b T) int
	PageSizes   []int
	PageSize    int
	Sort        Sort
}

// State is the list presentation state. It is not safe for concurrent use;
// the owner serializes all access.
type State[T any] struct {
	id          func(T) string
	comparators map[string]func(a, b T) int
	pageSizes   []int

	page     int
	pageSize int
	sort     Sort
	items    []T
	selected map[string]struct{}
}

// New returns a State on page 1 with an empty collection. An unknown
// PageSize falls back to the first allowed size.
func New[T any](opts Options[T]) *State[T] {
	if opts.ID == nil {
		panic("listview: Options.ID is required")
	}

	sizes := slices.Clone(opts.PageSizes)
	if len(sizes) == 0 {
		sizes = slices.Clone(DefaultPageSizes)
	}

	s := &State[T]{
		id:          opts.ID,
		comparators: opts.Comparators,
		pageSizes:   sizes,
		page:        1,
		pageSize:    sizes[0],
		selected:    make(map[string]struct{}),
	}

	if slices.Contains(sizes, opts.PageSize) {
		s.pageSize = opts.PageSize
	}
	if _, ok := s.comparators[opts.Sort.Key]; ok {
		s.sort = opts.Sort
	}

	return s
}

func (s *State[T]) Page() int        { return s.page }
func (s *State[T]) PageSize() int    { return s.pageSize }
func (s *State[T]) PageSizes() []int { return slices.Clone(s.pageSizes) }
func (s *State[T]) Sort() Sort       { return s.sort }

// Total is the size of the last synced collection.
func (s *State[T]) Total() int { return len(s.items) }

// TotalPages is ceil(total/pageSize), and at least 1.
func (s *State[T]) TotalPages() int {
	return totalPages(len(s.items), s.pageSize)
}

func totalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// SetCollection replaces the collection with a sorted copy of items, prunes
// selected ids that no longer exist, and clamps the page.
func (s *State[T]) SetCollection(items []T) {
	s.items = s.sorted(items)

	ids := make([]string, len(s.items))
	for i, it := range s.items {
		ids[i] = s.id(it)
	}
	s.PruneSelection(ids)
	s.SetPage(s.page)
}

// Items returns the sorted collection.
func (s *State[T]) Items() []T { return slices.Clone(s.items) }

// SetPage moves to page n, clamped to [1, TotalPages].
func (s *State[T]) SetPage(n int) {
	s.page = min(max(n, 1), s.TotalPages())
}

func (s *State[T]) NextPage() { s.SetPage(s.page + 1) }
func (s *State[T]) PrevPage() { s.SetPage(s.page - 1) }

// SetPageSize changes the page size and returns to page 1. Sizes outside
// the allowed set are rejected and leave the state untouched.
func (s *State[T]) SetPageSize(size int) error {
	if !slices.Contains(s.pageSizes, size) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrInvalidPageSize, size, s.pageSizes)
	}
	s.pageSize = size
	s.page = 1
	return nil
}

// CyclePageSize steps to the next (delta > 0) or previous allowed page size,
// wrapping around.
func (s *State[T]) CyclePageSize(delta int) {
	i := slices.Index(s.pageSizes, s.pageSize)
	n := len(s.pageSizes)
	next := ((i+delta)%n + n) % n
	_ = s.SetPageSize(s.pageSizes[next])
}

// SetSort re-sorts the collection by key. Choosing the active key again
// with the same direction is a no-op.
func (s *State[T]) SetSort(sort Sort) error {
	if _, ok := s.comparators[sort.Key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, sort.Key)
	}
	s.sort = sort
	s.items = s.sorted(s.items)
	return nil
}

// ToggleSort sorts by key ascending, or flips the direction when key is
// already active.
func (s *State[T]) ToggleSort(key string) error {
	next := Sort{Key: key}
	if s.sort.Key == key {
		next.Desc = !s.sort.Desc
	}
	return s.SetSort(next)
}

// Visible is the current page of the synced collection.
func (s *State[T]) Visible() []T {
	return pageOf(s.items, s.page, s.pageSize)
}

// VisibleSlice returns the page of collection the state currently points
// at. It sorts a copy of collection and never mutates it or the state. The
// effective page is clamped to the collection's page count.
func (s *State[T]) VisibleSlice(collection []T) []T {
	return pageOf(s.sorted(collection), s.page, s.pageSize)
}

func pageOf[T any](items []T, page, size int) []T {
	if size <= 0 || len(items) == 0 {
		return []T{}
	}

	page = min(max(page, 1), totalPages(len(items), size))
	start := (page - 1) * size
	end := min(start+size, len(items))
	if start >= end {
		return []T{}
	}
	return slices.Clone(items[start:end])
}

func (s *State[T]) sorted(items []T) []T {
	out := slices.Clone(items)
	compare, ok := s.comparators[s.sort.Key]
	if !ok {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		c := compare(a, b)
		if c == 0 {
			c = cmp.Compare(s.id(a), s.id(b))
		}
		if s.sort.Desc {
			return -c
		}
		return c
	})
	return out
}

// ToggleSelect adds or removes a single id.
func (s *State[T]) ToggleSelect(id string, checked bool) {
	if checked {
		s.selected[id] = struct{}{}
		return
	}
	delete(s.selected, id)
}

// ToggleSelectAll adds or removes exactly the ids on the visible page.
// Selections on other pages are left alone.
func (s *State[T]) ToggleSelectAll(checked bool) {
	for _, it := range s.Visible() {
		s.ToggleSelect(s.id(it), checked)
	}
}

// IsSelected reports whether id is selected.
func (s *State[T]) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// IsAllVisibleSelected reports whether every visible item is selected. An
// empty page reports false.
func (s *State[T]) IsAllVisibleSelected() bool {
	visible := s.Visible()
	if len(visible) == 0 {
		return false
	}
	for _, it := range visible {
		if !s.IsSelected(s.id(it)) {
			return false
		}
	}
	return true
}

// IsSomeVisibleSelected reports whether at least one, but not every,
// visible item is selected.
func (s *State[T]) IsSomeVisibleSelected() bool {
	n := 0
	visible := s.Visible()
	for _, it := range visible {
		if s.IsSelected(s.id(it)) {
			n++
		}
	}
	return n > 0 && n < len(visible)
}

// PruneSelection drops selected ids not present in currentIDs.
func (s *State[T]) PruneSelection(currentIDs []string) {
	keep := make(map[string]struct{}, len(currentIDs))
	for _, id := range currentIDs {
		keep[id] = struct{}{}
	}
	for id := range s.selected {
		if _, ok := keep[id]; !ok {
			delete(s.selected, id)
		}
	}
}

// Deselect removes ids from the selection.
func (s *State[T]) Deselect(ids ...string) {
	for _, id := range ids {
		delete(s.selected, id)
	}
}

// ClearSelection empties the selection.
func (s *State[T]) ClearSelection() {
	clear(s.selected)
}

// Selected returns the selected ids in sorted order.
func (s *State[T]) Selected() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SelectedCount is the number of selected ids.
func (s *State[T]) SelectedCount() int { return len(s.selected) }
