// Package notify publishes a domain.Notification onto a durable
// RabbitMQ queue once a planning run finishes (success or failure),
// mirroring cmd/mail's consumer-side queue declaration on the publish
// side.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

const queueName = "plan_notification_queue"

// Publisher publishes completion events to RabbitMQ.
type Publisher struct {
	channel *amqp.Channel
	timeout time.Duration
}

// NewPublisher declares the durable notification queue on channel and
// returns a Publisher bounded by timeout per publish.
func NewPublisher(channel *amqp.Channel, timeout time.Duration) (*Publisher, error) {
	_, err := channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &Publisher{channel: channel, timeout: timeout}, nil
}

// Publish sends n onto the notification queue as JSON.
func (p *Publisher) Publish(n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// PlanCompleted builds the notification for a successful run.
func PlanCompleted(to string, planRunID int64, description string, summary domain.PlanResultSummary) domain.Notification {
	return domain.Notification{
		Type: domain.NotificationPlanCompleted,
		To:   to,
		Data: domain.PlanCompletedData{PlanRunID: planRunID, Description: description, Summary: summary},
	}
}

// PlanFailed builds the notification for a failed run.
func PlanFailed(to string, planRunID int64, description, reason string) domain.Notification {
	return domain.Notification{
		Type: domain.NotificationPlanFailed,
		To:   to,
		Data: domain.PlanFailedData{PlanRunID: planRunID, Description: description, Reason: reason},
	}
}
