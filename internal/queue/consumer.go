package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/eventdesk/doorlist/internal/model"
	"github.com/eventdesk/doorlist/internal/notify"
	"github.com/eventdesk/doorlist/internal/repository"
)

// Consumer executes queued notification runs. It connects to the broker,
// declares the durable run queue and processes one job at a time — a run is
// itself a slow sequential SMS loop, so there is nothing to gain from
// prefetching more.
type Consumer struct {
	URL           string
	Tickets       *repository.TicketRepo
	Runs          *repository.NotificationRepo
	Dispatcher    *notify.Dispatcher
	MaxRecipients int
}

// Start runs the reconnect loop. It never returns under normal operation;
// broker failures are logged and retried with exponential backoff.
func (c *Consumer) Start() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("notify-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := c.consumeLoop(conn); err != nil {
			log.Printf("notify-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func (c *Consumer) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		log.Printf("notify-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(RunRequestedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(RunRequestedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handleMessage(d.Body); err != nil {
			log.Printf("notify-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handleMessage executes one run: re-read the guest list, filter and
// deduplicate, dispatch sequentially, persist every result. Send failures
// are per-recipient data, not message failures — the job itself succeeds.
func (c *Consumer) handleMessage(body []byte) error {
	var ev RunRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	ctx := context.Background()

	if err := c.Runs.MarkRunning(ctx, ev.RunID); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	tickets, err := c.Tickets.Tickets(ctx)
	if err != nil {
		_ = c.Runs.FailRun(ctx, ev.RunID, err.Error())
		return fmt.Errorf("load recipients: %w", err)
	}
	recipients := notify.Dedupe(notify.ExpectedRecipients(tickets))
	if c.MaxRecipients > 0 && len(recipients) > c.MaxRecipients {
		msg := fmt.Sprintf("recipient list (%d) exceeds cap (%d)", len(recipients), c.MaxRecipients)
		_ = c.Runs.FailRun(ctx, ev.RunID, msg)
		return errors.New(msg)
	}

	log.Printf("notify-consumer: run %s starting, %d recipients", ev.RunID, len(recipients))

	sum := c.Dispatcher.Send(ctx, recipients, func(sent, total int, name string) {
		log.Printf("notify-consumer: run %s progress %d/%d (%s)", ev.RunID, sent, total, name)
	})

	for _, res := range sum.Results {
		rec := model.SendResult{
			RunID:      ev.RunID,
			Name:       res.Name,
			Phone:      res.Phone,
			Success:    res.Success,
			Error:      res.Error,
			MessageSID: res.MessageSID,
		}
		if err := c.Runs.AddResult(ctx, rec); err != nil {
			log.Printf("notify-consumer: persist result for %s failed: %v", res.Name, err)
		}
	}
	if err := c.Runs.FinishRun(ctx, ev.RunID, sum.Sent, sum.Failed); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	log.Printf("notify-consumer: run %s finished, sent=%d failed=%d", ev.RunID, sum.Sent, sum.Failed)
	return nil
}
