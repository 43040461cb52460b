package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/pkg/metrics"
)

// Subjects and streams.
const (
	SubjectCheckInPrefix  = "hongnam.checkin."
	SubjectReportPrefix   = "hongnam.report."
	SubjectRestroomAdded  = "hongnam.restroom.added"
	StreamCheckIns        = "HONGNAM_CHECKINS"
	StreamReports         = "HONGNAM_REPORTS"
	StreamRestrooms       = "HONGNAM_RESTROOMS"
	checkInSubjectPattern = "hongnam.checkin.>"
	reportSubjectPattern  = "hongnam.report.>"
	restroomSubjects      = "hongnam.restroom.>"
)

// Streams returns the JetStream configuration the publisher ensures on
// connect.
func Streams() []nats.StreamConfig {
	return []nats.StreamConfig{
		{
			Name:      StreamCheckIns,
			Subjects:  []string{checkInSubjectPattern},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      StreamReports,
			Subjects:  []string{reportSubjectPattern},
			Retention: nats.LimitsPolicy,
			MaxAge:    30 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      StreamRestrooms,
			Subjects:  []string{restroomSubjects},
			Retention: nats.LimitsPolicy,
			MaxAge:    30 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}
}

// CheckInSubject is the subject a check-in report for id is published on.
func CheckInSubject(id string) string {
	return SubjectCheckInPrefix + id
}

// ReportSubject is the subject a problem report for id is published on.
func ReportSubject(id string) string {
	return SubjectReportPrefix + id
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range Streams() {
		cfg := cfg
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishCheckIn publishes a check-in report on hongnam.checkin.<id>.
func (p *Publisher) PublishCheckIn(ctx context.Context, report *domain.CheckInReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return p.publish(ctx, CheckInSubject(report.RestroomID), data)
}

// PublishReport publishes a problem report on hongnam.report.<id>.
func (p *Publisher) PublishReport(ctx context.Context, report *domain.ProblemReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return p.publish(ctx, ReportSubject(report.RestroomID), data)
}

// PublishRestroomAdded publishes a user-submitted restroom.
func (p *Publisher) PublishRestroomAdded(ctx context.Context, r *domain.Restroom) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return p.publish(ctx, SubjectRestroomAdded, data)
}

func (p *Publisher) publish(ctx context.Context, subject string, data []byte) error {
	_, err := p.js.Publish(subject, data, nats.Context(ctx))
	label := subjectLabel(subject)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(label, "error").Inc()
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	metrics.EventsPublished.WithLabelValues(label, "ok").Inc()
	return nil
}

// subjectLabel collapses per-restroom subjects to their pattern so metric
// cardinality stays bounded.
func subjectLabel(subject string) string {
	switch {
	case strings.HasPrefix(subject, SubjectCheckInPrefix):
		return checkInSubjectPattern
	case strings.HasPrefix(subject, SubjectReportPrefix):
		return reportSubjectPattern
	}
	return subject
}

// Connected reports whether the underlying connection is up.
func (p *Publisher) Connected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("hongnam"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
