// Package worker drains the confirmation email queue. Emails are not sent
// over SMTP; each processed job is recorded in the email log so the
// dashboard can show delivery activity.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/pkg/queue"
)

// EmailProcessor processes confirmation email jobs: compose the message,
// record it in the email log, mark it sent.
type EmailProcessor struct {
	emailLogs store.EmailLogStore
	queue     *queue.Queue
	logger    *zap.Logger
}

// NewEmailProcessor creates a confirmation email processor.
func NewEmailProcessor(emailLogs store.EmailLogStore, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{emailLogs: emailLogs, queue: q, logger: logger}
}

// Process executes one confirmation email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeConfirmationEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ConfirmationEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.Recipient == "" {
		p.logger.Info("registration has no email, skipping confirmation",
			zap.String("registration_id", payload.RegistrationID.String()))
		return nil
	}

	log := &models.EmailLog{
		ClientID:       payload.ClientID,
		RegistrationID: payload.RegistrationID,
		Recipient:      payload.Recipient,
		Subject:        fmt.Sprintf("Registration confirmed - %s", payload.ClientName),
		Status:         models.EmailStatusQueued,
	}
	if err := p.emailLogs.Create(ctx, log); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}

	// Delivery is a log write until an SMTP provider is configured.
	if err := p.emailLogs.MarkSent(ctx, log.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}

	p.logger.Info("confirmation email recorded",
		zap.String("registration_id", payload.RegistrationID.String()),
		zap.String("recipient", payload.Recipient))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
