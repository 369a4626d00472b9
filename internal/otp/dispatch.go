package otp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/folioworks/identity/internal/mq"
	"github.com/folioworks/identity/types"
	"go.uber.org/zap"
)

// Job is the broker payload for one code delivery.
type Job struct {
	Method types.OtpMethod `json:"method"`
	Email  string          `json:"email"`
	Phone  string          `json:"phone,omitempty"`
	Code   string          `json:"code"`
}

// QueueDispatcher hands dispatch jobs to a message broker instead of
// delivering inline. A worker (see Worker) performs the actual send, which
// keeps delivery latency and retries out of the login path.
type QueueDispatcher struct {
	queue   *mq.MQ
	channel string
	logger  *zap.Logger
}

func NewQueueDispatcher(queue *mq.MQ, channel string, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{queue: queue, channel: channel, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, user types.User, method types.OtpMethod, code string) error {
	job := Job{
		Method: method,
		Email:  user.Email,
		Code:   code,
	}
	if user.Phone != nil {
		job.Phone = *user.Phone
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal otp dispatch job: %w", err)
	}

	id, err := d.queue.Publish(ctx, d.channel, data, map[string]string{
		"method": string(method),
	})
	if err != nil {
		return fmt.Errorf("publish otp dispatch job: %w", err)
	}

	d.logger.Debug("queued otp dispatch",
		zap.String("message_id", id),
		zap.String("method", string(method)))
	return nil
}

// EmailDispatcher delivers EMAIL codes inline over SMTP. Useful for small
// deployments that do not run a broker.
type EmailDispatcher struct {
	sender *EmailSender
}

func NewEmailDispatcher(sender *EmailSender) *EmailDispatcher {
	return &EmailDispatcher{sender: sender}
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, user types.User, method types.OtpMethod, code string) error {
	if method != types.OtpEmail {
		return fmt.Errorf("email dispatcher cannot deliver %s codes", method)
	}
	return d.sender.SendCode(user.Email, code)
}
