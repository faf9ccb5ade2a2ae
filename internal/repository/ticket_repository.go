package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventdesk/doorlist/internal/model"
	"github.com/eventdesk/doorlist/internal/ticket"
)

// snapshotKey is the redis key holding the cached full-table read.
const snapshotKey = "sheet:snapshot"

// TicketRepo is the sole mediator between application logic and the remote
// sheet endpoint. Reads are plain GETs returning a {success, data} envelope;
// mutations are form-encoded POSTs dispatched on an `action` parameter.
//
// Every mutation locates its target row by normalized-number scan over the
// current table on the remote side; there is no optimistic concurrency
// check, so two near-simultaneous operations on the same ticket interleave
// last-write-wins. That race is an accepted limitation of the deployment.
type TicketRepo struct {
	URL          string // deployed web-app URL
	HeaderRows   int    // title/header rows preceding data
	ServerSearch bool   // use the endpoint's search actions instead of scanning client-side

	HTTP        *http.Client
	RDB         *redis.Client // optional snapshot cache; nil disables
	SnapshotTTL time.Duration
}

// NewTicketRepo builds a repo against the given endpoint. rdb may be nil.
func NewTicketRepo(sheetURL string, headerRows int, serverSearch bool, rdb *redis.Client, snapshotTTL time.Duration) *TicketRepo {
	return &TicketRepo{
		URL:          sheetURL,
		HeaderRows:   headerRows,
		ServerSearch: serverSearch,
		HTTP:         &http.Client{Timeout: 30 * time.Second},
		RDB:          rdb,
		SnapshotTTL:  snapshotTTL,
	}
}

// envelope is the remote endpoint's uniform response shape. Operation
// specific fields are simply absent for operations that do not use them.
type envelope struct {
	Success         bool            `json:"success"`
	Error           string          `json:"error"`
	Data            json.RawMessage `json:"data"`
	Found           bool            `json:"found"`
	Added           int             `json:"added"`
	Failed          []string        `json:"failed"`
	ExistingTickets []string        `json:"existingTickets"`
}

// All fetches the entire table, header rows included. When a redis client is
// configured the result is served from a short-lived snapshot to absorb the
// polling the check-in stations do; mutations drop the snapshot.
func (r *TicketRepo) All(ctx context.Context) ([][]string, error) {
	if r.RDB != nil {
		if bs, err := r.RDB.Get(ctx, snapshotKey).Bytes(); err == nil {
			var rows [][]string
			if json.Unmarshal(bs, &rows) == nil {
				return rows, nil
			}
		}
	}

	env, err := r.get(ctx, "fetch", nil)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(env.Data)
	if err != nil {
		return nil, &RemoteError{Op: "fetch", Message: fmt.Sprintf("malformed rows: %v", err)}
	}

	if r.RDB != nil && r.SnapshotTTL > 0 {
		if bs, err := json.Marshal(rows); err == nil {
			_ = r.RDB.SetEx(ctx, snapshotKey, bs, r.SnapshotTTL).Err()
		}
	}
	return rows, nil
}

// Tickets returns every data row as a Ticket, in sheet order.
func (r *TicketRepo) Tickets(ctx context.Context) ([]model.Ticket, error) {
	rows, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	data := r.dataRows(rows)
	out := make([]model.Ticket, 0, len(data))
	for _, row := range data {
		out = append(out, ticketFromRow(row))
	}
	return out, nil
}

// Find looks up one ticket by normalized number. Both modes — the remote
// searchTicket action and the client-side scan — must produce identical
// results: match on normalized key, skip header rows.
func (r *TicketRepo) Find(ctx context.Context, number string) (model.Ticket, error) {
	if r.ServerSearch {
		params := url.Values{"action": {"searchTicket"}, "ticketNumber": {number}}
		env, err := r.get(ctx, "searchTicket", params)
		if err != nil {
			return model.Ticket{}, err
		}
		if !env.Found {
			return model.Ticket{}, ErrTicketNotFound
		}
		var rec struct {
			TicketNumber string `json:"ticketNumber"`
			Name         string `json:"name"`
			PhoneNumber  string `json:"phoneNumber"`
			Paid         string `json:"paid"`
			CheckedIn    string `json:"checkedIn"`
		}
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return model.Ticket{}, &RemoteError{Op: "searchTicket", Message: fmt.Sprintf("malformed record: %v", err)}
		}
		return model.Ticket{
			Number:    rec.TicketNumber,
			Name:      rec.Name,
			Phone:     rec.PhoneNumber,
			Paid:      model.IsYes(rec.Paid),
			CheckedIn: model.IsYes(rec.CheckedIn),
		}, nil
	}

	rows, err := r.All(ctx)
	if err != nil {
		return model.Ticket{}, err
	}
	key := ticket.Normalize(number)
	for _, row := range r.dataRows(rows) {
		if ticket.Normalize(cell(row, 0)) == key {
			return ticketFromRow(row), nil
		}
	}
	return model.Ticket{}, ErrTicketNotFound
}

// SearchByName returns tickets whose guest name contains the term,
// case-insensitively.
func (r *TicketRepo) SearchByName(ctx context.Context, term string) ([]model.Ticket, error) {
	all, err := r.Tickets(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	var out []model.Ticket
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), term) {
			out = append(out, t)
		}
	}
	return out, nil
}

// SearchByPhone matches on digits only, so "647-330-8919" finds "6473308919".
func (r *TicketRepo) SearchByPhone(ctx context.Context, term string) ([]model.Ticket, error) {
	all, err := r.Tickets(ctx)
	if err != nil {
		return nil, err
	}
	digits := ticket.Digits(term)
	var out []model.Ticket
	for _, t := range all {
		if strings.Contains(ticket.Digits(t.Phone), digits) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ExistsBatch returns the zero-padded forms of the given numbers that are
// already stored, preserving input order, so the caller can tell the
// operator exactly which entries to fix.
func (r *TicketRepo) ExistsBatch(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	if r.ServerSearch {
		bs, err := json.Marshal(numbers)
		if err != nil {
			return nil, err
		}
		params := url.Values{"action": {"checkTickets"}, "tickets": {string(bs)}}
		env, err := r.get(ctx, "checkTickets", params)
		if err != nil {
			return nil, err
		}
		return env.ExistingTickets, nil
	}

	rows, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]struct{})
	for _, row := range r.dataRows(rows) {
		stored[ticket.Normalize(cell(row, 0))] = struct{}{}
	}
	var existing []string
	for _, n := range numbers {
		if _, ok := stored[ticket.Normalize(n)]; ok {
			existing = append(existing, ticket.Pad(n))
		}
	}
	return existing, nil
}

// Append adds a single row. The remote endpoint re-checks for duplicates
// under normalized comparison and answers "Ticket number already exists",
// which is mapped to ErrTicketExists.
func (r *TicketRepo) Append(ctx context.Context, t model.Ticket) error {
	form := url.Values{
		"ticketNumber": {t.Number},
		"name":         {t.Name},
		"phoneNumber":  {t.Phone},
		"paid":         {strconv.FormatBool(t.Paid)},
		"checkedIn":    {strconv.FormatBool(t.CheckedIn)},
	}
	if _, err := r.post(ctx, "append", form); err != nil {
		return err
	}
	r.invalidateSnapshot(ctx)
	return nil
}

// batchTicket is the wire form the endpoint expects for batch adds.
type batchTicket struct {
	TicketNumber string `json:"ticketNumber"`
	Name         string `json:"name"`
	PhoneNumber  string `json:"phoneNumber"`
	Paid         bool   `json:"paid"`
	CheckedIn    bool   `json:"checkedIn"`
}

// AppendBatch adds several rows in one call. The endpoint checks each ticket
// against the stored set and against tickets added earlier in the same
// batch; duplicates are skipped and reported in failed, never fatal.
func (r *TicketRepo) AppendBatch(ctx context.Context, tickets []model.Ticket) (added int, failed []string, err error) {
	wire := make([]batchTicket, len(tickets))
	for i, t := range tickets {
		wire[i] = batchTicket{
			TicketNumber: t.Number,
			Name:         t.Name,
			PhoneNumber:  t.Phone,
			Paid:         t.Paid,
			CheckedIn:    t.CheckedIn,
		}
	}
	bs, err := json.Marshal(wire)
	if err != nil {
		return 0, nil, err
	}
	form := url.Values{"batch": {"true"}, "tickets": {string(bs)}}
	env, err := r.post(ctx, "batch", form)
	if err != nil {
		return 0, nil, err
	}
	r.invalidateSnapshot(ctx)
	return env.Added, env.Failed, nil
}

// SetPaid flips only the paid flag, via the markPaid/markUnpaid actions.
func (r *TicketRepo) SetPaid(ctx context.Context, number string, paid bool) error {
	action := "markPaid"
	if !paid {
		action = "markUnpaid"
	}
	return r.postAction(ctx, action, number)
}

// CheckIn sets the checked-in flag unconditionally. Verifying payment first
// is the reconciler's job, not the adapter's.
func (r *TicketRepo) CheckIn(ctx context.Context, number string) error {
	return r.postAction(ctx, "checkIn", number)
}

// PayAndCheckIn sets both flags in a single remote call.
func (r *TicketRepo) PayAndCheckIn(ctx context.Context, number string) error {
	return r.postAction(ctx, "payAndCheckIn", number)
}

func (r *TicketRepo) postAction(ctx context.Context, action, number string) error {
	form := url.Values{"action": {action}, "ticketNumber": {number}}
	if _, err := r.post(ctx, action, form); err != nil {
		return err
	}
	r.invalidateSnapshot(ctx)
	return nil
}

// dataRows strips the configured header offset.
func (r *TicketRepo) dataRows(rows [][]string) [][]string {
	if len(rows) <= r.HeaderRows {
		return nil
	}
	return rows[r.HeaderRows:]
}

func (r *TicketRepo) invalidateSnapshot(ctx context.Context) {
	if r.RDB != nil {
		_ = r.RDB.Del(ctx, snapshotKey).Err()
	}
}

func (r *TicketRepo) get(ctx context.Context, op string, params url.Values) (*envelope, error) {
	u := r.URL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return r.do(op, req)
}

func (r *TicketRepo) post(ctx context.Context, op string, form url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r.do(op, req)
}

func (r *TicketRepo) do(op string, req *http.Request) (*envelope, error) {
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !env.Success {
		return nil, mapRemoteError(op, env.Error)
	}
	return &env, nil
}

// mapRemoteError turns the endpoint's well-known error strings into
// sentinels; anything else is surfaced verbatim as a RemoteError.
func mapRemoteError(op, msg string) error {
	switch msg {
	case "Ticket not found":
		return ErrTicketNotFound
	case "Ticket number already exists":
		return ErrTicketExists
	}
	if msg == "" {
		msg = "operation failed"
	}
	return &RemoteError{Op: op, Message: msg}
}

// decodeRows converts the endpoint's loosely typed cell grid (strings and
// numbers mixed, since the sheet stores bare numerals as numbers) into
// strings. UseNumber keeps "042" style values from turning into floats.
func decodeRows(data json.RawMessage) ([][]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw [][]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	rows := make([][]string, len(raw))
	for i, r := range raw {
		cells := make([]string, len(r))
		for j, v := range r {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func ticketFromRow(row []string) model.Ticket {
	return model.Ticket{
		Number:    cell(row, 0),
		Name:      cell(row, 1),
		Phone:     cell(row, 2),
		Paid:      model.IsYes(cell(row, 3)),
		CheckedIn: model.IsYes(cell(row, 4)),
		Expected:  model.IsYes(cell(row, 5)),
	}
}
