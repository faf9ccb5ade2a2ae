package model

import "time"

// Run statuses for a bulk notification job.
const (
	RunQueued   = "QUEUED"
	RunRunning  = "RUNNING"
	RunFinished = "FINISHED"
	RunFailed   = "FAILED"
)

// NotificationRun records one bulk SMS job from the moment an admin starts
// it until the background consumer finishes working through the recipient
// list. Totals are filled in as the run progresses.
type NotificationRun struct {
	ID        string    // notification_runs.id (uuid)
	Status    string    // notification_runs.status
	Total     int       // recipients after deduplication
	Sent      int       // successful sends so far
	Failed    int       // failed sends so far
	Error     string    // run-level error, empty unless status is FAILED
	CreatedAt time.Time // notification_runs.created_at
	UpdatedAt time.Time // notification_runs.updated_at
}

// SendResult is one recipient's outcome within a run. Failures carry the
// provider's error text verbatim; there is no automatic retry.
type SendResult struct {
	RunID      string // notification_results.run_id
	Name       string // notification_results.name
	Phone      string // notification_results.phone
	Success    bool   // notification_results.success
	Error      string // notification_results.error (empty on success)
	MessageSID string // notification_results.message_sid (provider id)
	CreatedAt  time.Time
}
