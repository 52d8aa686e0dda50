package domain

import "time"

// Session is the conversation state of a single user or channel.
// It is owned by the caller and mutated by the dialog engine one turn at a time.
type Session struct {
	ID string `json:"id"`

	// ActiveIntent is the slot-filling flow in progress, if any.
	ActiveIntent Intent `json:"active_intent,omitempty"`

	// Slots holds the values collected for ActiveIntent.
	Slots map[string]string `json:"slots"`

	// LastBookingReference is the reference of the last booking created in
	// this session. Lookups, updates and cancellations fall back to it.
	LastBookingReference string `json:"last_booking_reference,omitempty"`

	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Slots:     make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Slot returns the value of a slot and whether it is set.
func (s *Session) Slot(name string) (string, bool) {
	v, ok := s.Slots[name]
	return v, ok
}

// SetSlot stores a slot value. Empty values are ignored.
func (s *Session) SetSlot(name, value string) {
	if value == "" {
		return
	}
	if s.Slots == nil {
		s.Slots = make(map[string]string)
	}
	s.Slots[name] = value
}

// DeleteSlot removes a slot.
func (s *Session) DeleteSlot(name string) {
	delete(s.Slots, name)
}

// MergeSlots copies every non-empty value of slots into the session,
// overwriting existing values.
func (s *Session) MergeSlots(slots map[string]string) {
	for k, v := range slots {
		s.SetSlot(k, v)
	}
}

// SwitchIntent makes i the active intent. When the intent changes, slots
// outside the scope of i are dropped so values collected for one flow never
// satisfy another.
func (s *Session) SwitchIntent(i Intent) {
	if s.ActiveIntent == i {
		return
	}
	s.ActiveIntent = i
	s.PruneSlots()
}

// PruneSlots drops slots outside the scope of the active intent.
func (s *Session) PruneSlots() {
	for name := range s.Slots {
		if !InScope(s.ActiveIntent, name) {
			delete(s.Slots, name)
		}
	}
}

// Reset clears the active intent and all slots. LastBookingReference is kept.
func (s *Session) Reset() {
	s.ActiveIntent = IntentNone
	s.Slots = make(map[string]string)
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Slots = make(map[string]string, len(s.Slots))
	for k, v := range s.Slots {
		out.Slots[k] = v
	}
	return &out
}
