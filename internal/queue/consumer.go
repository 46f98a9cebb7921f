package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// StartAlertConsumer connects to RabbitMQ, declares the booking and rule
// change queues (durable) and appends one line per event to logPath.  It
// reconnects with exponential backoff (1s up to 30s) and only returns when
// ctx is cancelled.  Undecodable messages are rejected without requeue.
func StartAlertConsumer(ctx context.Context, url, logPath string, log zerolog.Logger) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("alert-consumer: failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("alert-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("alert-consumer: set QoS failed")
	}

	deliveries := make(map[string]<-chan amqp.Delivery, 2)
	for _, q := range []string{BookingConfirmedQueue, RuleChangedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		deliveries[q] = msgs
	}

	bookings, rules := deliveries[BookingConfirmedQueue], deliveries[RuleChangedQueue]
	for {
		var (
			d     amqp.Delivery
			ok    bool
			queue string
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-bookings:
			queue = BookingConfirmedQueue
		case d, ok = <-rules:
			queue = RuleChangedQueue
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := HandleMessage(queue, d.Body, logPath); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("alert-consumer: handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

// HandleMessage decodes body according to queue and appends the formatted
// alert line to logPath, creating parent directories as needed.
func HandleMessage(queue string, body []byte, logPath string) error {
	var line string
	switch queue {
	case BookingConfirmedQueue:
		var ev BookingConfirmedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = FormatBooking(ev)
	case RuleChangedQueue:
		var ev PriceRuleChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = FormatRuleChange(ev)
	default:
		return fmt.Errorf("unknown queue %q", queue)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatBooking renders a booking alert on a single line.
func FormatBooking(ev BookingConfirmedEvent) string {
	return fmt.Sprintf("[%s] Tee time booked | booking_id=%s | user_id=%d | course=%q | provider=%s | ref=%s | tee_time=%s | players=%d | total=%.2f %s",
		ev.ConfirmedAt, ev.BookingID, ev.UserID, ev.CourseName, ev.Provider, ev.ExternalRef,
		ev.TeeTime, ev.Players, ev.Total, ev.Currency)
}

// FormatRuleChange renders a price rule alert on a single line.
func FormatRuleChange(ev PriceRuleChangedEvent) string {
	value := "n/a"
	if ev.PriceValue != nil {
		value = fmt.Sprintf("%g", *ev.PriceValue)
	}
	return fmt.Sprintf("[%s] Price rule %s | rule_id=%s | course_id=%s | name=%q | type=%s | value=%s | active=%t | actor_id=%d",
		ev.OccurredAt, ev.Action, ev.RuleID, ev.CourseID, ev.Name, ev.PriceType, value, ev.Active, ev.ActorID)
}
