package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/doorlist/internal/model"
	"github.com/eventdesk/doorlist/internal/repository"
)

// stubStore records which mutations were issued so tests can assert the
// reconciler short-circuits before writing.
type stubStore struct {
	tickets map[string]model.Ticket

	setPaidCalls       int
	checkInCalls       int
	payAndCheckInCalls int
}

func (s *stubStore) Find(_ context.Context, number string) (model.Ticket, error) {
	t, ok := s.tickets[number]
	if !ok {
		return model.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (s *stubStore) SetPaid(_ context.Context, number string, paid bool) error {
	s.setPaidCalls++
	t := s.tickets[number]
	t.Paid = paid
	s.tickets[number] = t
	return nil
}

func (s *stubStore) CheckIn(_ context.Context, number string) error {
	s.checkInCalls++
	t := s.tickets[number]
	t.CheckedIn = true
	s.tickets[number] = t
	return nil
}

func (s *stubStore) PayAndCheckIn(_ context.Context, number string) error {
	s.payAndCheckInCalls++
	t := s.tickets[number]
	t.Paid = true
	t.CheckedIn = true
	s.tickets[number] = t
	return nil
}

func newStub(t model.Ticket) *stubStore {
	return &stubStore{tickets: map[string]model.Ticket{t.Number: t}}
}

func TestCheckInUnpaidRejectedWithoutRemoteCall(t *testing.T) {
	store := newStub(model.Ticket{Number: "042", Name: "Chris", Paid: false})
	rec := NewReconciler(store)

	_, err := rec.CheckIn(context.Background(), "042")

	var payErr *PaymentRequiredError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, "Chris", payErr.Name)
	assert.Zero(t, store.checkInCalls, "unpaid ticket must not reach the remote endpoint")
}

func TestCheckInAlreadyCheckedInRejected(t *testing.T) {
	store := newStub(model.Ticket{Number: "007", Name: "Niko", Paid: true, CheckedIn: true})
	rec := NewReconciler(store)

	_, err := rec.CheckIn(context.Background(), "007")

	var dupErr *AlreadyCheckedInError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "Niko", dupErr.Name)
	assert.Zero(t, store.checkInCalls)
}

func TestCheckInPaidTicket(t *testing.T) {
	store := newStub(model.Ticket{Number: "011", Name: "Ana", Paid: true})
	rec := NewReconciler(store)

	got, err := rec.CheckIn(context.Background(), "011")

	require.NoError(t, err)
	assert.True(t, got.CheckedIn)
	assert.Equal(t, 1, store.checkInCalls)
}

func TestCheckInUnknownTicket(t *testing.T) {
	rec := NewReconciler(&stubStore{tickets: map[string]model.Ticket{}})

	_, err := rec.CheckIn(context.Background(), "999")

	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
}

func TestPayAndCheckInFromUnpaid(t *testing.T) {
	store := newStub(model.Ticket{Number: "042", Name: "Chris"})
	rec := NewReconciler(store)

	got, err := rec.PayAndCheckIn(context.Background(), "042")

	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.True(t, got.CheckedIn)
	assert.Equal(t, 1, store.payAndCheckInCalls)
}

func TestPayAndCheckInIdempotent(t *testing.T) {
	store := newStub(model.Ticket{Number: "042", Name: "Chris", Paid: true, CheckedIn: true})
	rec := NewReconciler(store)

	got, err := rec.PayAndCheckIn(context.Background(), "042")

	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.True(t, got.CheckedIn)
	assert.Equal(t, 1, store.payAndCheckInCalls, "re-applying Yes/Yes is allowed")
}

func TestMarkPaidAndUnpaid(t *testing.T) {
	store := newStub(model.Ticket{Number: "005", Name: "Lea"})
	rec := NewReconciler(store)

	require.NoError(t, rec.MarkPaid(context.Background(), "005"))
	assert.True(t, store.tickets["005"].Paid)
	assert.False(t, store.tickets["005"].CheckedIn, "payment must not touch the check-in flag")

	require.NoError(t, rec.MarkUnpaid(context.Background(), "005"))
	assert.False(t, store.tickets["005"].Paid)
}
