// internal/services/lease_machine.go
package services

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/rentloop/rentloop-backend/internal/models"
)

// LeaseEvent is an action that moves a lease between statuses.
type LeaseEvent string

const (
	LeaseEventActivate  LeaseEvent = "activate"
	LeaseEventTerminate LeaseEvent = "terminate"
	LeaseEventExpire    LeaseEvent = "expire"
	LeaseEventRenew     LeaseEvent = "renew"
)

// LeaseTransition declares one legal status change.
type LeaseTransition struct {
	Event LeaseEvent
	Src   models.LeaseStatus
	Dst   models.LeaseStatus
}

// leaseTransitions is the full transition table. Draft is the sole initial
// state; expired, terminated and renewed are terminal. Deleting a draft is
// not a transition, it removes the record.
var leaseTransitions = []LeaseTransition{
	{Event: LeaseEventActivate, Src: models.LeaseStatusDraft, Dst: models.LeaseStatusActive},
	{Event: LeaseEventTerminate, Src: models.LeaseStatusActive, Dst: models.LeaseStatusTerminated},
	{Event: LeaseEventExpire, Src: models.LeaseStatusActive, Dst: models.LeaseStatusExpired},
	{Event: LeaseEventRenew, Src: models.LeaseStatusActive, Dst: models.LeaseStatusRenewed},
	{Event: LeaseEventRenew, Src: models.LeaseStatusExpired, Dst: models.LeaseStatusRenewed},
}

// leaseEvents converts the transition table into looplab/fsm event
// descriptors, grouping transitions that share an event and destination into
// one descriptor with multiple source states (renew from active or expired).
var leaseEvents = buildLeaseEvents()

func buildLeaseEvents() []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range leaseTransitions {
		k := key{event: string(t.Event), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

// LeaseStateMachine drives lease status changes. Mutations go through Apply,
// which yields the destination status; CanTransition and CanDelete are
// read-only views of the same table. It knows nothing about units or
// tenants; side effects belong to LeaseService.
type LeaseStateMachine struct{}

func NewLeaseStateMachine() *LeaseStateMachine {
	return &LeaseStateMachine{}
}

// Apply checks that event is valid from the current status and returns the
// destination status. A fresh FSM instance is built per call because
// looplab/fsm tracks current state internally.
func (m *LeaseStateMachine) Apply(ctx context.Context, current models.LeaseStatus, event LeaseEvent) (models.LeaseStatus, error) {
	machine := loopfsm.NewFSM(string(current), leaseEvents, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", m.invalidTransitionError(current, event)
		}
		return "", err
	}

	return models.LeaseStatus(machine.Current()), nil
}

// CanTransition reports whether from→to appears in the transition table.
func (m *LeaseStateMachine) CanTransition(from, to models.LeaseStatus) bool {
	for _, t := range leaseTransitions {
		if t.Src == from && t.Dst == to {
			return true
		}
	}
	return false
}

// CanDelete reports whether a lease may be removed; only drafts can.
func (m *LeaseStateMachine) CanDelete(status models.LeaseStatus) bool {
	return status == models.LeaseStatusDraft
}

func (m *LeaseStateMachine) invalidTransitionError(current models.LeaseStatus, event LeaseEvent) error {
	switch event {
	case LeaseEventActivate:
		if current == models.LeaseStatusActive {
			return ErrLeaseAlreadyActive
		}
		return ErrLeaseNotDraft
	default:
		return ErrLeaseNotActive
	}
}
