// Package service holds the application logic that sits between handlers
// and the store adapters: the ticket state reconciler.
package service

import (
	"context"
	"fmt"

	"github.com/eventdesk/doorlist/internal/model"
)

// TicketStore is the slice of the store adapter the reconciler needs.
// *repository.TicketRepo satisfies it.
type TicketStore interface {
	Find(ctx context.Context, number string) (model.Ticket, error)
	SetPaid(ctx context.Context, number string, paid bool) error
	CheckIn(ctx context.Context, number string) error
	PayAndCheckIn(ctx context.Context, number string) error
}

// AlreadyCheckedInError rejects a repeat check-in before any mutating call
// is issued. This is a client-side short-circuit to cut redundant writes,
// not a correctness guarantee — remote state may have changed since the
// read.
type AlreadyCheckedInError struct {
	Number string
	Name   string
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("ticket %s already checked in", e.Number)
}

// PaymentRequiredError means a direct check-in was attempted on an unpaid
// ticket. The caller must confirm payment with the guest and retry through
// PayAndCheckIn; the guest name is carried so the door station can show who
// it is asking about.
type PaymentRequiredError struct {
	Number string
	Name   string
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("ticket %s is not paid", e.Number)
}

// Reconciler enforces the allowed transitions between the two status flags.
// Valid states move {unpaid,out} -> {paid,out} -> {paid,in}; the state
// {unpaid,in} is disallowed by policy, so a check-in of an unpaid ticket is
// refused and must instead go through the combined PayAndCheckIn step.
type Reconciler struct {
	Store TicketStore
}

func NewReconciler(store TicketStore) *Reconciler { return &Reconciler{Store: store} }

// MarkPaid transitions unpaid -> paid without touching the check-in flag.
func (r *Reconciler) MarkPaid(ctx context.Context, number string) error {
	return r.Store.SetPaid(ctx, number, true)
}

// MarkUnpaid transitions paid -> unpaid. Used only while managing pre-sale
// payments; the check-in flag is untouched.
func (r *Reconciler) MarkUnpaid(ctx context.Context, number string) error {
	return r.Store.SetPaid(ctx, number, false)
}

// CheckIn reads the ticket first and only issues the remote mutation when
// the current state is {paid, not checked in}. Already-checked-in tickets
// and unpaid tickets are rejected without a write.
func (r *Reconciler) CheckIn(ctx context.Context, number string) (model.Ticket, error) {
	t, err := r.Store.Find(ctx, number)
	if err != nil {
		return model.Ticket{}, err
	}
	if t.CheckedIn {
		return t, &AlreadyCheckedInError{Number: number, Name: t.Name}
	}
	if !t.Paid {
		return t, &PaymentRequiredError{Number: number, Name: t.Name}
	}
	if err := r.Store.CheckIn(ctx, number); err != nil {
		return model.Ticket{}, err
	}
	t.CheckedIn = true
	return t, nil
}

// PayAndCheckIn sets both flags in one remote call. It is idempotent: a
// ticket that is already paid, already checked in, or in the disallowed
// {unpaid, checked-in} state simply has Yes/Yes re-applied.
func (r *Reconciler) PayAndCheckIn(ctx context.Context, number string) (model.Ticket, error) {
	t, err := r.Store.Find(ctx, number)
	if err != nil {
		return model.Ticket{}, err
	}
	if err := r.Store.PayAndCheckIn(ctx, number); err != nil {
		return model.Ticket{}, err
	}
	t.Paid = true
	t.CheckedIn = true
	return t, nil
}
