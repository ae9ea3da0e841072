package session

import (
	"encoding/json"
	"fmt"
)

// Step is the highest wizard page a session has legitimately reached. The
// four steps are strictly ordered; a session only ever moves forward, and
// only through the store's mutators.
type Step int

const (
	StepBrowse Step = iota
	StepBooking
	StepCheckout
	StepSubmitted
)

var stepNames = map[Step]string{
	StepBrowse:    "browse",
	StepBooking:   "booking",
	StepCheckout:  "checkout",
	StepSubmitted: "submitted",
}

var stepValues = map[string]Step{
	"browse":    StepBrowse,
	"booking":   StepBooking,
	"checkout":  StepCheckout,
	"submitted": StepSubmitted,
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Valid reports whether s is one of the four defined steps.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// Reached reports whether a session at s may access the page for requested.
// Revisiting earlier steps is always allowed; skipping ahead never is.
func (s Step) Reached(requested Step) bool {
	return requested.Valid() && requested <= s
}

// advance moves forward to target, never backward.
func (s Step) advance(target Step) Step {
	if target > s {
		return target
	}
	return s
}

func (s Step) MarshalJSON() ([]byte, error) {
	name, ok := stepNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown step %d", int(s))
	}
	return json.Marshal(name)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := stepValues[name]
	if !ok {
		return fmt.Errorf("unknown step %q", name)
	}
	*s = v
	return nil
}
