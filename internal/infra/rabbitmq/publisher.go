package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
	"github.com/videoplat/video-processing-service/internal/domain/port"
)

const (
	routingKeyProcessing = "video.processing"
	routingKeyStatus     = "video.status"

	// maxQueuePriority is the x-max-priority the processing queue is
	// declared with. Priority scores above it are clamped.
	maxQueuePriority = 255
)

type Publisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}
	return &Publisher{channel: ch, exchange: exchange}, nil
}

// TaskPublisher dispatches processing work at a per-message priority.
type TaskPublisher struct {
	pub *Publisher
}

func NewTaskPublisher(pub *Publisher) *TaskPublisher {
	return &TaskPublisher{pub: pub}
}

func (tp *TaskPublisher) EnqueueProcessing(ctx context.Context, task entity.ProcessingTask, opts port.EnqueueOptions) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("refuse to enqueue: %w", err)
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	priority := opts.Priority
	if priority < 0 {
		priority = 0
	}
	if priority > maxQueuePriority {
		priority = maxQueuePriority
	}

	headers := amqp.Table{}
	if opts.MaxAttempts > 0 {
		headers["x-max-attempts"] = int32(opts.MaxAttempts)
	}

	return tp.pub.channel.PublishWithContext(ctx,
		tp.pub.exchange,
		routingKeyProcessing,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Priority:     uint8(priority),
			Timestamp:    time.Now().UTC(),
			Headers:      headers,
		},
	)
}

type StatusPublisher struct {
	pub *Publisher
}

func NewStatusPublisher(pub *Publisher) *StatusPublisher {
	return &StatusPublisher{pub: pub}
}

func (sp *StatusPublisher) PublishStatus(ctx context.Context, msg entity.JobStatusMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return sp.pub.channel.PublishWithContext(ctx,
		sp.pub.exchange,
		routingKeyStatus,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

// NotificationPublisher hands completion/failure notices to the notification
// service through its queue.
type NotificationPublisher struct {
	pub   *Publisher
	queue string
}

func NewNotificationPublisher(pub *Publisher, queue string) *NotificationPublisher {
	return &NotificationPublisher{pub: pub, queue: queue}
}

func (np *NotificationPublisher) NotifyProcessingComplete(ctx context.Context, userID string, videoID uuid.UUID, downloadURL string, user *entity.UserProfile) error {
	return np.publish(ctx, entity.NotificationMessage{
		UserID:      userID,
		User:        user,
		Type:        entity.NotificationProcessingComplete,
		VideoID:     videoID,
		DownloadURL: downloadURL,
	})
}

func (np *NotificationPublisher) NotifyProcessingFailed(ctx context.Context, userID string, videoID uuid.UUID, errMsg string, user *entity.UserProfile) error {
	return np.publish(ctx, entity.NotificationMessage{
		UserID:       userID,
		User:         user,
		Type:         entity.NotificationProcessingFailed,
		VideoID:      videoID,
		ErrorMessage: errMsg,
	})
}

func (np *NotificationPublisher) publish(ctx context.Context, msg entity.NotificationMessage) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("refuse to publish notification: %w", err)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return np.pub.channel.PublishWithContext(ctx,
		"",
		np.queue,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

type DLQPublisher struct {
	pub   *Publisher
	queue string
}

func NewDLQPublisher(pub *Publisher, dlqQueue string) *DLQPublisher {
	return &DLQPublisher{pub: pub, queue: dlqQueue}
}

func (dp *DLQPublisher) PublishToDLQ(ctx context.Context, body []byte, reason string) error {
	return dp.pub.channel.PublishWithContext(ctx,
		"",
		dp.queue,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Headers: amqp.Table{
				"x-dlq-reason": reason,
			},
		},
	)
}
