package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Topics for assessment lifecycle events.
const (
	TopicAssessmentCreated   = "assessment.created"
	TopicAssessmentSubmitted = "assessment.submitted"
	TopicAssessmentExpired   = "assessment.expired"
)

// AssessmentCreatedEvent is published after an ingestion commits.
type AssessmentCreatedEvent struct {
	AssessmentID uint      `json:"assessment_id"`
	UserID       uint      `json:"user_id"`
	Subject      string    `json:"subject"`
	Topic        string    `json:"topic"`
	QuestionsNum int       `json:"questions_num"`
	DueDate      time.Time `json:"due_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssessmentSubmittedEvent is published after a submission commits.
type AssessmentSubmittedEvent struct {
	AssessmentID uint      `json:"assessment_id"`
	UserID       uint      `json:"user_id"`
	Score        int       `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// AssessmentExpiredEvent is published for each assessment the sweep expires.
type AssessmentExpiredEvent struct {
	AssessmentID uint      `json:"assessment_id"`
	UserID       uint      `json:"user_id"`
	ExpiredAt    time.Time `json:"expired_at"`
}

// EventPublisher publishes lifecycle events for downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event interface{}) error
	Close() error
}

// KafkaPublisher publishes events to kafka through watermill.
type KafkaPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewKafkaPublisher(brokers []string, logger *slog.Logger) (*KafkaPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaPublisher{publisher: publisher, logger: logger}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", topic, err)
	}

	p.logger.Debug("Event published", "topic", topic, "message_id", msg.UUID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.publisher.Close()
}

// NoopPublisher is used when no brokers are configured. Events are logged
// and dropped.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, topic string, _ interface{}) error {
	p.logger.Debug("Event publishing disabled, dropping event", "topic", topic)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

// NewPublisher returns a kafka publisher when brokers are configured and a
// noop publisher otherwise.
func NewPublisher(brokers []string, logger *slog.Logger) (EventPublisher, error) {
	if len(brokers) == 0 {
		return NewNoopPublisher(logger), nil
	}
	return NewKafkaPublisher(brokers, logger)
}
