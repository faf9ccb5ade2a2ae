// Package repository contains the data access layer: the remote sheet
// adapter for ticket rows and the MySQL repositories for operator accounts,
// refresh tokens and the notification delivery log. This file defines the
// error types shared across them so handlers can map failures to HTTP
// responses without string matching.
package repository

import (
	"errors"
	"fmt"
)

// ErrTicketNotFound is returned when a lookup or mutation names a ticket
// number with no matching data row. Handlers translate this into a 404.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrTicketExists is returned when an append would duplicate a ticket number
// under normalized comparison. Handlers translate this into a 409.
var ErrTicketExists = errors.New("ticket number already exists")

// TransportError wraps a failure to reach the remote sheet endpoint at all:
// dial errors, timeouts and non-2xx statuses. There is no automatic retry;
// the message is surfaced to the operator verbatim.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sheet %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError means the endpoint answered but reported success=false with an
// error message the adapter could not map to a sentinel above.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("sheet %s: %s", e.Op, e.Message)
}
