package repository

import (
	"context"
	"database/sql"

	"github.com/eventdesk/doorlist/internal/model"
)

// NotificationRepo persists bulk notification runs and their per-recipient
// results so operators can audit what was sent after the fact.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// CreateRun inserts a queued run with the deduplicated recipient count.
func (r *NotificationRepo) CreateRun(ctx context.Context, id string, total int) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO notification_runs (id, status, total, sent, failed) VALUES (?,?,?,0,0)",
		id, model.RunQueued, total)
	return err
}

// MarkRunning flips a queued run to RUNNING when the consumer picks it up.
func (r *NotificationRepo) MarkRunning(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notification_runs SET status=?, updated_at=NOW() WHERE id=?",
		model.RunRunning, id)
	return err
}

// FinishRun records the final totals.
func (r *NotificationRepo) FinishRun(ctx context.Context, id string, sent, failed int) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notification_runs SET status=?, sent=?, failed=?, updated_at=NOW() WHERE id=?",
		model.RunFinished, sent, failed, id)
	return err
}

// FailRun marks a run that could not be executed at all, e.g. when the
// recipient list could not be loaded from the sheet.
func (r *NotificationRepo) FailRun(ctx context.Context, id string, msg string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notification_runs SET status=?, error=?, updated_at=NOW() WHERE id=?",
		model.RunFailed, msg, id)
	return err
}

// AddResult appends one recipient's outcome to the run.
func (r *NotificationRepo) AddResult(ctx context.Context, res model.SendResult) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO notification_results (run_id, name, phone, success, error, message_sid) VALUES (?,?,?,?,?,?)",
		res.RunID, res.Name, res.Phone, res.Success, res.Error, res.MessageSID)
	return err
}

// GetRun fetches a run by id.
func (r *NotificationRepo) GetRun(ctx context.Context, id string) (model.NotificationRun, error) {
	var (
		run    model.NotificationRun
		errMsg sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, status, total, sent, failed, error, created_at, updated_at FROM notification_runs WHERE id=? LIMIT 1",
		id).Scan(&run.ID, &run.Status, &run.Total, &run.Sent, &run.Failed, &errMsg, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return model.NotificationRun{}, err
	}
	run.Error = errMsg.String
	return run, nil
}

// ListResults returns a run's per-recipient results in send order.
func (r *NotificationRepo) ListResults(ctx context.Context, runID string) ([]model.SendResult, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT run_id, name, phone, success, error, message_sid, created_at FROM notification_results WHERE run_id=? ORDER BY id",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SendResult
	for rows.Next() {
		var (
			res    model.SendResult
			errMsg sql.NullString
			sid    sql.NullString
		)
		if err := rows.Scan(&res.RunID, &res.Name, &res.Phone, &res.Success, &errMsg, &sid, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.Error = errMsg.String
		res.MessageSID = sid.String
		out = append(out, res)
	}
	return out, rows.Err()
}
