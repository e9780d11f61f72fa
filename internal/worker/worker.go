// Package worker runs the background email delivery loop fed by the Redis
// job queue.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/afisha-events/backend/pkg/queue"
)

// Sender delivers a single email.
type Sender interface {
	Send(to, subject, body string) error
}

// JobSource dequeues jobs and re-enqueues failures.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// EmailProcessor consumes email jobs and delivers them over SMTP.
type EmailProcessor struct {
	queue   JobSource
	mailer  Sender
	backoff time.Duration
	logger  *zap.Logger
}

// NewEmailProcessor creates a processor.
func NewEmailProcessor(q JobSource, m Sender, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, mailer: m, backoff: queue.RetryBackoff, logger: logger}
}

// Run blocks on the queue until ctx is canceled. Failed jobs are retried
// after a backoff and eventually land in the DLQ.
func (p *EmailProcessor) Run(ctx context.Context) error {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return ctx.Err()
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("dequeue", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		p.process(ctx, job)
	}
}

func (p *EmailProcessor) process(ctx context.Context, job *queue.Job) {
	if job.Type != queue.JobTypeEmail {
		p.logger.Warn("unknown job type", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return
	}

	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// Malformed payloads never succeed; do not retry.
		p.logger.Error("unmarshal email payload", zap.String("job_id", job.ID), zap.Error(err))
		return
	}

	if err := p.mailer.Send(payload.RecipientEmail, payload.Subject, payload.Body); err != nil {
		p.logger.Error("send email",
			zap.String("job_id", job.ID),
			zap.String("kind", string(payload.Kind)),
			zap.Int("attempt", job.Attempt),
			zap.Error(err),
		)
		// Hold the job back before it goes around again, so a down SMTP
		// host is not hammered in a tight fail/requeue loop.
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.backoff):
		}
		if err := p.queue.Retry(ctx, job); err != nil {
			p.logger.Error("retry job", zap.String("job_id", job.ID), zap.Error(err))
		}
		return
	}

	p.logger.Info("email job done",
		zap.String("job_id", job.ID),
		zap.String("kind", string(payload.Kind)),
	)
}
