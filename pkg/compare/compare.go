// Package compare implements the bounded, ordered comparison tray.
package compare

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
)

// DefaultCapacity is the maximum number of items the tray holds.
const DefaultCapacity = 3

// MinCompare is the number of items needed before a comparison can open.
const MinCompare = 2

// Set is an insertion-ordered set of comparison items with a capacity.
// It is not safe for concurrent use; the controller serializes access.
type Set struct {
	capacity int
	items    []domain.ComparisonItem
}

// New creates an empty set. A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Set {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Set{capacity: capacity}
}

// Add appends an item.
//
// Checks run in order: missing id, duplicate id, capacity. A refused add
// leaves the set unchanged.
func (s *Set) Add(item domain.ComparisonItem) error {
	if item.ID == "" {
		return domain.ErrInvalidItem
	}
	if s.Contains(item.ID) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateItem, item.ID)
	}
	if len(s.items) >= s.capacity {
		return fmt.Errorf("%w: %d of %d", domain.ErrCapacityExceeded, len(s.items), s.capacity)
	}
	s.items = append(s.items, item)
	return nil
}

// Remove deletes the item with the given id. It reports whether anything was removed.
func (s *Set) Remove(id string) bool {
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the set.
func (s *Set) Clear() {
	s.items = nil
}

// CanCompare reports whether enough items are selected to compare them.
func (s *Set) CanCompare() bool {
	return len(s.items) >= MinCompare
}

// Items returns a copy of the items in insertion order.
func (s *Set) Items() []domain.ComparisonItem {
	return append([]domain.ComparisonItem(nil), s.items...)
}

// IDs returns the selected ids in insertion order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.items))
	for i, it := range s.items {
		ids[i] = it.ID
	}
	return ids
}

func (s *Set) Len() int { return len(s.items) }

func (s *Set) Capacity() int { return s.capacity }

// Contains reports whether an item with the id is selected.
func (s *Set) Contains(id string) bool {
	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Restore replaces the content with items, dropping invalid entries,
// duplicates and anything past capacity.
func (s *Set) Restore(items []domain.ComparisonItem) {
	s.items = nil
	for _, it := range items {
		_ = s.Add(it)
	}
}
