// Package flow holds the booking state machine, the step validators and the vehicle
// selection rules. Everything here is pure: callers load and persist drafts.
package flow

import (
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
)

// order is the forward sequence of the flow.
var order = []entities.FlowState{
	entities.StateRouteSelect,
	entities.StateCarSelect,
	entities.StatePassengerInfo,
	entities.StatePayment,
	entities.StateCompleted,
}

// transitions lists the allowed moves out of each state. Backward edges are the explicit
// "Back" navigation; COMPLETED is terminal.
var transitions = map[entities.FlowState]map[entities.FlowState]struct{}{
	entities.StateRouteSelect:   {entities.StateCarSelect: {}},
	entities.StateCarSelect:     {entities.StatePassengerInfo: {}, entities.StateRouteSelect: {}},
	entities.StatePassengerInfo: {entities.StatePayment: {}, entities.StateCarSelect: {}},
	entities.StatePayment:       {entities.StateCompleted: {}, entities.StatePassengerInfo: {}},
	entities.StateCompleted:     {},
}

// preconditions decide whether a draft may enter a state. A nil draft means none was saved.
var preconditions = map[entities.FlowState]func(d *entities.BookingDraft) bool{
	entities.StateRouteSelect: func(*entities.BookingDraft) bool { return true },
	entities.StateCarSelect: func(d *entities.BookingDraft) bool {
		return d != nil
	},
	entities.StatePassengerInfo: func(d *entities.BookingDraft) bool {
		return d != nil && d.SelectedCar != nil
	},
	entities.StatePayment: func(d *entities.BookingDraft) bool {
		return d != nil && d.SelectedCar != nil && d.Pricing.Locked() && d.User != nil
	},
	entities.StateCompleted: func(d *entities.BookingDraft) bool {
		return d != nil && d.Confirmation != nil
	},
}

// CanTransition reports whether the flow may move from one state to another.
func CanTransition(from, to entities.FlowState) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// CanEnter reports whether d satisfies the entry precondition of s.
func CanEnter(s entities.FlowState, d *entities.BookingDraft) bool {
	check, ok := preconditions[s]
	return ok && check(d)
}

// Resolve returns target when d may enter it, otherwise the nearest earlier state whose
// precondition holds. It never resolves forward.
func Resolve(target entities.FlowState, d *entities.BookingDraft) entities.FlowState {
	idx := index(target)
	if idx < 0 {
		return entities.StateRouteSelect
	}
	for i := idx; i > 0; i-- {
		if CanEnter(order[i], d) {
			return order[i]
		}
	}
	return entities.StateRouteSelect
}

// Guard returns a *GuardError when d may not enter target.
func Guard(target entities.FlowState, d *entities.BookingDraft) error {
	if r := Resolve(target, d); r != target {
		return &apperrors.GuardError{Target: string(target), Redirect: string(r)}
	}
	return nil
}

// Previous is the state "Back" leads to. ROUTE_SELECT and COMPLETED have none.
func Previous(s entities.FlowState) (entities.FlowState, bool) {
	switch s {
	case entities.StateRouteSelect, entities.StateCompleted:
		return "", false
	}
	idx := index(s)
	if idx <= 0 {
		return "", false
	}
	return order[idx-1], true
}

// Next is the state a successful submit of s leads to.
func Next(s entities.FlowState) (entities.FlowState, bool) {
	idx := index(s)
	if idx < 0 || idx == len(order)-1 {
		return "", false
	}
	return order[idx+1], true
}

func index(s entities.FlowState) int {
	for i, st := range order {
		if st == s {
			return i
		}
	}
	return -1
}
