package statemachine

import (
	"fmt"
	"strings"

	"food-storefront/models"
)

// Actor is the party attempting a status change.
type Actor string

const (
	// ActorRestaurant and ActorAdmin may set any known status; the table
	// below only guards the other actors.
	ActorRestaurant Actor = "restaurant"
	ActorDriver     Actor = "driver"
	ActorCustomer   Actor = "customer"
	ActorAdmin      Actor = "admin"
)

var unrestricted = map[Actor]bool{ActorRestaurant: true, ActorAdmin: true}

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Customers may back out until the kitchen starts cooking
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorCustomer},

	{From: models.StatusReady, To: models.StatusOutForDelivery, Actor: ActorDriver},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: ActorDriver},
}

var terminalStates = []models.OrderStatus{models.StatusDelivered, models.StatusCancelled}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// TransitionError reports a rejected status change. Valid lists the states
// the same actor could have moved to instead.
type TransitionError struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
	Valid []models.OrderStatus
}

func (e *TransitionError) Error() string {
	valid := "none"
	if IsTerminal(e.From) {
		valid = "none (terminal state)"
	}
	if len(e.Valid) > 0 {
		parts := make([]string, len(e.Valid))
		for i, s := range e.Valid {
			parts[i] = string(s)
		}
		valid = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		e.From, e.To, e.Actor, e.From, valid)
}

// ValidTransitionsFor returns the states actor may move an order to from status.
func ValidTransitionsFor(status models.OrderStatus, actor Actor) []models.OrderStatus {
	nexts := []models.OrderStatus{}
	if unrestricted[actor] {
		for _, s := range models.OrderStatuses {
			if s != status {
				nexts = append(nexts, s)
			}
		}
		return nexts
	}
	for _, t := range validTransitions {
		if t.From == status && t.Actor == actor {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another.
// Restaurant owners and admins may set any known status, backwards or skipping.
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if unrestricted[actor] && isKnown(to) {
		return nil
	}
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return &TransitionError{From: from, To: to, Actor: actor, Valid: ValidTransitionsFor(from, actor)}
}

// IsTerminal reports whether status ends the regular lifecycle.
func IsTerminal(status models.OrderStatus) bool {
	for _, s := range terminalStates {
		if s == status {
			return true
		}
	}
	return false
}

func isKnown(s models.OrderStatus) bool {
	for _, known := range models.OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TerminalStates lists the statuses that end the regular lifecycle.
func TerminalStates() []models.OrderStatus {
	var out []models.OrderStatus
	for _, s := range models.OrderStatuses {
		if IsTerminal(s) {
			out = append(out, s)
		}
	}
	return out
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
