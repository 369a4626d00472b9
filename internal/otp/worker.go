package otp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/folioworks/identity/internal/mq"
	"github.com/folioworks/identity/types"
	"go.uber.org/zap"
)

// Worker consumes queued dispatch jobs and performs the delivery. EMAIL jobs
// go out over SMTP; SMS and PUSH_APP jobs are acknowledged and logged until a
// gateway is wired in.
type Worker struct {
	queue   *mq.MQ
	channel string
	sender  *EmailSender
	logger  *zap.Logger
}

func NewWorker(queue *mq.MQ, channel string, sender *EmailSender, logger *zap.Logger) *Worker {
	return &Worker{queue: queue, channel: channel, sender: sender, logger: logger}
}

// Run blocks consuming jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.queue.Subscribe(ctx, w.channel, func(ctx context.Context, msg mq.Message) error {
		var job Job
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			// Malformed payloads will never succeed on retry; drop them.
			w.logger.Warn("dropping malformed otp dispatch job",
				zap.String("message_id", msg.ID), zap.Error(err))
			return nil
		}
		return w.deliver(job)
	})
}

func (w *Worker) deliver(job Job) error {
	switch job.Method {
	case types.OtpEmail:
		if err := w.sender.SendCode(job.Email, job.Code); err != nil {
			return fmt.Errorf("send otp email: %w", err)
		}
	case types.OtpSMS, types.OtpPushApp:
		// TODO(sms): wire the SMS/push gateway once the provider account
		// is provisioned; until then these jobs are consumed and logged.
		w.logger.Info("otp dispatch without gateway",
			zap.String("method", string(job.Method)))
	default:
		w.logger.Warn("otp dispatch job with unknown method",
			zap.String("method", string(job.Method)))
	}
	return nil
}
