package ledger

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// PaymentState is the lifecycle state of a payment as implied by its ledger
type PaymentState string

const (
	PaymentStateUnallocated PaymentState = "unallocated"
	PaymentStateAllocated   PaymentState = "allocated"
	PaymentStateCancelled   PaymentState = "cancelled"
)

const eventCancel = "cancel"

// StateOf derives a payment's state from its entries. Any reversal entry
// marks the payment cancelled; partial re-cancellation is not supported.
func StateOf(entries []AllocationEntry) PaymentState {
	if HasReversal(entries) {
		return PaymentStateCancelled
	}
	if len(PositiveEntries(entries)) > 0 {
		return PaymentStateAllocated
	}
	return PaymentStateUnallocated
}

// PaymentLifecycle wraps a payment's state machine
type PaymentLifecycle struct {
	fsm *fsm.FSM
}

// NewPaymentLifecycle builds the state machine positioned at the state
// implied by entries
func NewPaymentLifecycle(entries []AllocationEntry) *PaymentLifecycle {
	return &PaymentLifecycle{
		fsm: fsm.NewFSM(
			string(StateOf(entries)),
			fsm.Events{
				{Name: eventCancel, Src: []string{string(PaymentStateAllocated)}, Dst: string(PaymentStateCancelled)},
			},
			fsm.Callbacks{},
		),
	}
}

// Current returns the current state
func (l *PaymentLifecycle) Current() PaymentState {
	return PaymentState(l.fsm.Current())
}

// Cancel moves an allocated payment to cancelled. A payment that already has
// a reversal fails with ErrPaymentAlreadyCancelled. The machine has no cancel
// transition out of unallocated, which surfaces as ErrNoPaymentToCancel.
func (l *PaymentLifecycle) Cancel(ctx context.Context) error {
	if l.Current() == PaymentStateCancelled {
		return ErrPaymentAlreadyCancelled
	}

	if err := l.fsm.Event(ctx, eventCancel); err != nil {
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return ErrNoPaymentToCancel
		}
		return err
	}
	return nil
}
