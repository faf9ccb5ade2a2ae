// Package queue defines message payloads exchanged over the broker and the
// background consumer that executes bulk notification runs.
package queue

// RunRequestedQueue is the durable queue carrying notification jobs from the
// API to the background consumer.
const RunRequestedQueue = "notify.run.requested"

// RunRequestedEvent is published when an admin starts a bulk notification
// run. The recipient list is not embedded: the consumer re-reads the sheet
// when the job executes, so late edits to the guest list are picked up.
type RunRequestedEvent struct {
	RunID       string `json:"run_id"`
	RequestedBy uint64 `json:"requested_by"`
	RequestedAt string `json:"requested_at"`
}
