package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
)

const (
	// StreamName is the name of the case journal stream.
	StreamName = "HR_CASES"

	// SubjectPrefix is the prefix for all case subjects.
	SubjectPrefix = "cases"
)

// StreamManager handles the case journal stream.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the case journal stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      365 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		DenyDelete:  true,
		DenyPurge:   true,
		Description: "HR case lifecycle journal",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// CaseSubject returns the subject for one case transition.
func CaseSubject(caseID string, status model.CaseStatus) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, caseID, status)
}

// CaseFilter returns the filter subject for every transition of a case.
func CaseFilter(caseID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, caseID)
}

// Publish appends a case event to the journal and records its sequence.
func (m *StreamManager) Publish(ctx context.Context, event *model.CaseEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := m.client.JetStream().Publish(ctx, CaseSubject(event.CaseID, event.Status), data)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	event.Sequence = ack.Sequence

	return nil
}

// CaseEvents reads a case's journal starting after a stream sequence.
func (m *StreamManager) CaseEvents(ctx context.Context, caseID string, afterSequence uint64, limit int) ([]model.CaseEvent, uint64, error) {
	consumerConfig := jetstream.ConsumerConfig{
		FilterSubject:     CaseFilter(caseID),
		AckPolicy:         jetstream.AckNonePolicy,
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		InactiveThreshold: time.Minute,
	}

	if afterSequence > 0 {
		consumerConfig.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		consumerConfig.OptStartSeq = afterSequence + 1
	}

	consumer, err := m.client.JetStream().CreateConsumer(ctx, StreamName, consumerConfig)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create consumer: %w", err)
	}

	info, err := consumer.Info(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read consumer info: %w", err)
	}
	if info.NumPending == 0 {
		return nil, afterSequence, nil
	}

	batch, err := consumer.FetchNoWait(limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch events: %w", err)
	}

	var events []model.CaseEvent
	lastSequence := afterSequence

	for msg := range batch.Messages() {
		var event model.CaseEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			continue
		}

		if meta, err := msg.Metadata(); err == nil {
			event.Sequence = meta.Sequence.Stream
			lastSequence = meta.Sequence.Stream
		}

		events = append(events, event)
	}

	if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, jetstream.ErrNoMessages) {
		return nil, 0, fmt.Errorf("batch error: %w", err)
	}

	return events, lastSequence, nil
}
