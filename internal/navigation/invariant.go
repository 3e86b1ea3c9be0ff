package navigation

import "fmt"

// StateInvariantError reports a cursor index outside its zone. It is a
// programming defect, never a user condition.
type StateInvariantError struct {
	Zone  ZoneID
	Index int
	Count int
}

func (e *StateInvariantError) Error() string {
	return fmt.Sprintf("cursor invariant violated: zone %q index %d count %d", e.Zone, e.Index, e.Count)
}
