package fsm

import (
	"context"
	"fmt"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/waterorder/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// Validator checks order lifecycle events with looplab/fsm. A machine holds
// a single current state, so Apply seeds a fresh one with the stored status
// of the order every time. Safe for concurrent use.
type Validator struct {
	lifecycle []loopfsm.EventDesc
}

// New returns a validator for domain.Transitions.
func New() *Validator {
	return &Validator{lifecycle: lifecycleEvents(domain.Transitions)}
}

// lifecycleEvents folds transitions that share an event and a destination
// into one EventDesc with several source statuses.
func lifecycleEvents(transitions []domain.Transition) []loopfsm.EventDesc {
	type edge struct {
		event domain.Event
		dst   domain.Status
	}
	at := make(map[edge]int, len(transitions))
	var descs []loopfsm.EventDesc

	for _, t := range transitions {
		e := edge{event: t.Event, dst: t.Dst}
		i, seen := at[e]
		if !seen {
			i = len(descs)
			at[e] = i
			descs = append(descs, loopfsm.EventDesc{Name: string(t.Event), Dst: string(t.Dst)})
		}
		descs[i].Src = append(descs[i].Src, string(t.Src))
	}
	return descs
}

// Apply returns the status event moves an order to from current. Events the
// lifecycle does not allow from current, including unknown ones, yield a
// *domain.TransitionError.
func (v *Validator) Apply(ctx context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	machine := loopfsm.NewFSM(string(current), v.lifecycle, nil)
	if !machine.Can(string(event)) {
		return "", &domain.TransitionError{Event: event, Current: current}
	}

	if err := machine.Event(ctx, string(event)); err != nil {
		return "", fmt.Errorf("applying %s to order in %s: %w", event, current, err)
	}
	return domain.Status(machine.Current()), nil
}
