package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hongnam/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeCheckIns delivers every check-in report to handler. A handler
// error naks the message for redelivery, up to three attempts.
func (s *Subscriber) SubscribeCheckIns(ctx context.Context, handler func(ctx context.Context, report *domain.CheckInReport) error) error {
	return subscribeJSON(ctx, s, checkInSubjectPattern, "checkin-alerts", handler)
}

// SubscribeReports delivers every problem report to handler.
func (s *Subscriber) SubscribeReports(ctx context.Context, handler func(ctx context.Context, report *domain.ProblemReport) error) error {
	return subscribeJSON(ctx, s, reportSubjectPattern, "report-review", handler)
}

// SubscribeRestroomsAdded delivers every user-submitted restroom to handler.
func (s *Subscriber) SubscribeRestroomsAdded(ctx context.Context, handler func(ctx context.Context, r *domain.Restroom) error) error {
	return subscribeJSON(ctx, s, SubjectRestroomAdded, "restroom-review", handler)
}

func subscribeJSON[T any](ctx context.Context, s *Subscriber, subject, durable string, handler func(context.Context, *T) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		switch decide(ctx, msg.Data, handler) {
		case ackTerm:
			_ = msg.Term()
		case ackNak:
			_ = msg.Nak()
		default:
			_ = msg.Ack()
		}
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// ackAction is how a delivered message is settled.
type ackAction int

const (
	ackOK ackAction = iota
	// redeliver later, up to MaxDeliver
	ackNak
	// never redeliver
	ackTerm
)

func (a ackAction) String() string {
	switch a {
	case ackNak:
		return "nak"
	case ackTerm:
		return "term"
	}
	return "ack"
}

// decide runs handler on the decoded payload and picks the settlement.
// Undecodable payloads will never succeed, so they are terminated.
func decide[T any](ctx context.Context, data []byte, handler func(context.Context, *T) error) ackAction {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return ackTerm
	}
	if err := handler(ctx, &v); err != nil {
		return ackNak
	}
	return ackOK
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
