package domain

import (
	"reflect"
)

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Route *RouteRecord `json:"route,omitempty"`

	// Compare carries the whole tray when it changed; the tray is small.
	Compare []ComparisonItem `json:"compare,omitempty"`

	// Wizards contains only changed wizards. A removed wizard maps to nil.
	Wizards map[string]*WizardSnapshot `json:"wizards,omitempty"`

	Context *SessionContext `json:"context,omitempty"`

	// CompareCleared distinguishes an emptied tray from an unchanged one.
	CompareCleared bool `json:"compare_cleared,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{
		SessionID: newSnap.SessionID,
	}

	if oldSnap == nil || !reflect.DeepEqual(oldSnap.Route, newSnap.Route) {
		route := newSnap.Route
		diff.Route = &route
	}

	diff.Compare, diff.CompareCleared = diffCompare(oldSnap, newSnap)
	diff.Wizards = diffWizards(oldSnap, newSnap)

	if oldSnap == nil || !reflect.DeepEqual(oldSnap.Context, newSnap.Context) {
		ctx := newSnap.Context
		diff.Context = &ctx
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffCompare(old, new *Snapshot) ([]ComparisonItem, bool) {
	if old == nil {
		return new.Compare, false
	}
	if reflect.DeepEqual(old.Compare, new.Compare) {
		return nil, false
	}
	if len(new.Compare) == 0 {
		return nil, true
	}
	return new.Compare, false
}

func diffWizards(old, new *Snapshot) map[string]*WizardSnapshot {
	delta := make(map[string]*WizardSnapshot)

	for name, w := range new.Wizards {
		if old != nil {
			if prev, ok := old.Wizards[name]; ok && reflect.DeepEqual(prev, w) {
				continue
			}
		}
		w := w
		delta[name] = &w
	}

	if old != nil {
		for name := range old.Wizards {
			if _, ok := new.Wizards[name]; !ok {
				delta[name] = nil
			}
		}
	}

	// Return nil if delta is empty so omitempty can remove the key
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Route == nil &&
		len(d.Compare) == 0 &&
		!d.CompareCleared &&
		len(d.Wizards) == 0 &&
		d.Context == nil
}
