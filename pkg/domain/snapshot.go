package domain

// WizardSnapshot is the persisted progress of one wizard.
type WizardSnapshot struct {
	Step  int    `json:"step"`
	Steps int    `json:"steps"`
	Valid []bool `json:"valid"`
	Dirty bool   `json:"dirty,omitempty"`
}

// Snapshot is the serializable state of a controller.
// Notifications and pending checkouts are transient and never part of it.
type Snapshot struct {
	SessionID string                    `json:"session_id"`
	Route     RouteRecord               `json:"route"`
	Compare   []ComparisonItem          `json:"compare"`
	Wizards   map[string]WizardSnapshot `json:"wizards,omitempty"`
	Context   SessionContext            `json:"context"`
	// Sealed carries the encrypted form of a snapshot written through an
	// encrypting store. The other fields are empty when it is set.
	Sealed []byte `json:"sealed,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.Route.Params != nil {
		out.Route.Params = make(Params, len(s.Route.Params))
		for k, v := range s.Route.Params {
			out.Route.Params[k] = v
		}
	}
	out.Compare = append([]ComparisonItem(nil), s.Compare...)
	if s.Wizards != nil {
		out.Wizards = make(map[string]WizardSnapshot, len(s.Wizards))
		for name, w := range s.Wizards {
			w.Valid = append([]bool(nil), w.Valid...)
			out.Wizards[name] = w
		}
	}
	if s.Context.User != nil {
		u := *s.Context.User
		out.Context.User = &u
	}
	out.Sealed = append([]byte(nil), s.Sealed...)
	return &out
}

// View is what a host renders: the snapshot plus the transient parts.
type View struct {
	Snapshot        *Snapshot      `json:"snapshot"`
	Notifications   []Notification `json:"notifications"`
	CanCompare      bool           `json:"can_compare"`
	CheckoutPending bool           `json:"checkout_pending"`
}
