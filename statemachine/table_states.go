package statemachine

import (
	"fmt"

	"github.com/expendio/foh-app/models"
)

// Transition defines a valid table status change and the event that drives it.
type Transition struct {
	From  string
	To    string
	Event string
}

// Events that move tables between states.
const (
	EventCheckIn = "check_in" // walk-in or reservation arrival
	EventReserve = "reserve"
	EventRelease = "release"
	EventCancel  = "cancel_reservation"
	EventJanitor = "janitor_tick"
)

// validTransitions is the authoritative floor state machine.
var validTransitions = []Transition{
	{From: models.TableAvailable, To: models.TableOccupied, Event: EventCheckIn},
	{From: models.TableAvailable, To: models.TableReserved, Event: EventReserve},
	{From: models.TableReserved, To: models.TableOccupied, Event: EventCheckIn},
	{From: models.TableReserved, To: models.TableAvailable, Event: EventCancel},
	{From: models.TableOccupied, To: models.TableCleaning, Event: EventRelease},
	{From: models.TableCleaning, To: models.TableAvailable, Event: EventJanitor},
}

type transitionKey struct {
	From string
	To   string
}

var transitionMap = func() map[transitionKey]string {
	m := make(map[transitionKey]string)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = t.Event
	}
	return m
}()

// CanTransition checks whether a table may move between the two states.
func CanTransition(from, to string) error {
	if _, ok := transitionMap[transitionKey{from, to}]; ok {
		return nil
	}
	return fmt.Errorf("invalid table transition: %s -> %s (valid from %s: %s)",
		from, to, from, describeValidFrom(from))
}

// ValidTransitionsFrom returns all states reachable from the given one.
func ValidTransitionsFrom(status string) []string {
	var nexts []string
	seen := map[string]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanCheckIn reports whether a party may be seated at a table in the given
// state. Reserved tables accept check-ins: the arrival completes the hold.
func CanCheckIn(status string) bool {
	return status == models.TableAvailable || status == models.TableReserved
}

func describeValidFrom(status string) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += s
	}
	return result
}

// AllTransitions returns the full state machine for documentation endpoints.
func AllTransitions() []Transition {
	return validTransitions
}
