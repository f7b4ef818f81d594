package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"verification_portal/internal/metrics"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectVerificationPrefix = "verification."
	SubjectCategoryPrefix     = "category."
	SubjectReviewed           = "verification.reviewed"
)

type NATSClient interface {
	PublishLifecycleEvent(ctx context.Context, event LifecycleEvent) error
	SubscribeToReviewed(ctx context.Context, handler func(ReviewedMessage)) error
	Close()
}

// conn - часть nats.Conn, которой пользуется клиент
type conn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

type natsClient struct {
	conn   conn
	logger *zap.Logger
}

func NewNATSClient(url string, logger *zap.Logger) (NATSClient, error) {
	nc, err := nats.Connect(url, nats.Name("verification-portal"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", zap.String("url", url))
	return newNATSClient(nc, logger), nil
}

func newNATSClient(c conn, logger *zap.Logger) *natsClient {
	return &natsClient{
		conn:   c,
		logger: logger,
	}
}

// LifecycleEvent публикуется после каждого успешного изменения записи
type LifecycleEvent struct {
	ID             string    `json:"id"`
	Resource       string    `json:"-"`
	VerificationID string    `json:"verificationId"`
	Status         string    `json:"status"`
	Action         string    `json:"action"`
	ActorID        string    `json:"actorId"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Subject возвращает тему вида verification.submit или category.approve
func (e LifecycleEvent) Subject() string {
	if e.Resource == "category" {
		return SubjectCategoryPrefix + e.Action
	}
	return SubjectVerificationPrefix + e.Action
}

// ReviewedMessage приходит, когда ревьюер закрыл проверку в другом месте
type ReviewedMessage struct {
	VerificationID string `json:"verificationId"`
	Status         string `json:"status"`
}

func (c *natsClient) PublishLifecycleEvent(ctx context.Context, event LifecycleEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	subject := event.Subject()

	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal lifecycle event", zap.Error(err))
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	if err := c.conn.Publish(subject, data); err != nil {
		metrics.EventsPublished.WithLabelValues(subject, "error").Inc()
		c.logger.Error("failed to publish lifecycle event", zap.Error(err), zap.String("subject", subject), zap.String("verification_id", event.VerificationID))
		return fmt.Errorf("failed to publish lifecycle event: %w", err)
	}

	metrics.EventsPublished.WithLabelValues(subject, "success").Inc()
	c.logger.Info("lifecycle event published", zap.String("subject", subject), zap.String("verification_id", event.VerificationID))
	return nil
}

func (c *natsClient) SubscribeToReviewed(ctx context.Context, handler func(ReviewedMessage)) error {
	_, err := c.conn.Subscribe(SubjectReviewed, func(msg *nats.Msg) {
		var reviewed ReviewedMessage
		if err := json.Unmarshal(msg.Data, &reviewed); err != nil {
			c.logger.Error("failed to unmarshal reviewed message", zap.Error(err))
			return
		}
		if reviewed.VerificationID == "" {
			c.logger.Warn("reviewed message without verification id")
			return
		}

		handler(reviewed)
		c.logger.Info("reviewed message processed", zap.String("verification_id", reviewed.VerificationID), zap.String("status", reviewed.Status))
	})

	if err != nil {
		c.logger.Error("failed to subscribe to reviewed messages", zap.Error(err))
		return fmt.Errorf("failed to subscribe to reviewed messages: %w", err)
	}

	c.logger.Info("subscribed to reviewed messages")
	return nil
}

func (c *natsClient) Close() {
	if c.conn != nil {
		c.conn.Close()
		c.logger.Info("NATS connection closed")
	}
}
