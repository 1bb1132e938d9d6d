package student

import (
	"cmp"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys understood by Comparators.
const (
	SortName   = "name"
	SortAge    = "age"
	SortEmail  = "email"
	SortCourse = "course"
)

// DefaultSort is the sort key applied when none is chosen.
const DefaultSort = SortName

var textOrder = struct {
	mu sync.Mutex
	c  *collate.Collator
}{c: collate.New(language.Und, collate.IgnoreCase)}

// CompareText orders strings case-insensitively using the root collation.
func CompareText(a, b string) int {
	textOrder.mu.Lock()
	defer textOrder.mu.Unlock()
	return textOrder.c.CompareString(a, b)
}

// Comparators returns the ascending comparator for every sort key.
func Comparators() map[string]func(a, b Record) int {
	return map[string]func(a, b Record) int{
		SortName:   func(a, b Record) int { return CompareText(a.Name, b.Name) },
		SortAge:    func(a, b Record) int { return cmp.Compare(a.Age, b.Age) },
		SortEmail:  func(a, b Record) int { return CompareText(a.Email, b.Email) },
		SortCourse: func(a, b Record) int { return CompareText(a.Course, b.Course) },
	}
}

// SortKeys lists the sort keys in display order.
func SortKeys() []string {
	return []string{SortName, SortAge, SortEmail, SortCourse}
}
