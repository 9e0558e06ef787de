// Package notification delivers booking confirmations and marketing
// campaigns. Delivery is a separate failure domain from the booking
// transaction: a committed appointment is never rolled back because its
// email failed.
package notification

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"barbearia/internal/email"
	"barbearia/internal/model"
	"barbearia/pkg/logger"
	"barbearia/pkg/metrics"
)

type Config struct {
	QueueSize     int
	RetryAttempts int
	RetryDelay    time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueSize:     64,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Second,
	}
}

// Service is the dispatcher seen by the booking side.
type Service interface {
	SendConfirmation(apt *model.Appointment)
	SendBulk(ctx context.Context, recipients []string, subject, bodyTemplate string) *model.BulkSendResult
}

// Dispatcher queues confirmation jobs and works them off on a single
// goroutine. SendConfirmation never blocks the caller; when the queue is
// full the job is dropped and counted as a failure.
type Dispatcher struct {
	emailSvc email.Service
	config   Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	queue    chan *model.Appointment
}

func NewDispatcher(emailSvc email.Service, config Config, l *logger.Logger, m *metrics.Metrics) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}

	return &Dispatcher{
		emailSvc: emailSvc,
		config:   config,
		logger:   l,
		metrics:  m,
		validate: validator.New(),
		queue:    make(chan *model.Appointment, config.QueueSize),
	}
}

// Start runs the worker loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("starting notification dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down notification dispatcher")
			return
		case apt := <-d.queue:
			d.metrics.DispatchQueueLen.Set(float64(len(d.queue)))
			d.deliverConfirmation(ctx, apt)
		}
	}
}

// SendConfirmation hands the appointment to the worker. The booking
// response has already been sent by the time this runs; nothing here can
// affect it.
func (d *Dispatcher) SendConfirmation(apt *model.Appointment) {
	select {
	case d.queue <- apt:
		d.metrics.DispatchQueueLen.Set(float64(len(d.queue)))
	default:
		d.metrics.EmailsFailed.Inc()
		d.logger.Warn("dispatch queue full, dropping confirmation",
			"appointment_id", apt.ID, "email", apt.Email)
	}
}

func (d *Dispatcher) deliverConfirmation(ctx context.Context, apt *model.Appointment) {
	if err := d.validate.Var(apt.Email, "required,email"); err != nil {
		d.metrics.EmailsFailed.Inc()
		d.logger.Error(err, "invalid confirmation recipient",
			"appointment_id", apt.ID, "email", apt.Email)
		return
	}

	body, err := email.RenderConfirmation(apt)
	if err != nil {
		d.metrics.EmailsFailed.Inc()
		d.logger.Error(err, "failed to render confirmation",
			"appointment_id", apt.ID)
		return
	}

	msg := &email.Message{
		To:       apt.Email,
		Subject:  "Agendamento recebido - " + apt.Service,
		HTMLBody: body,
	}

	if err := d.sendWithRetry(ctx, msg); err != nil {
		d.metrics.EmailsFailed.Inc()
		d.logger.Error(err, "confirmation delivery failed",
			"appointment_id", apt.ID, "email", apt.Email)
		return
	}

	d.metrics.EmailsSent.Inc()
	d.logger.Info("confirmation sent", "appointment_id", apt.ID, "email", apt.Email)
}

// SendBulk attempts delivery to every recipient independently; one bad
// address or transport hiccup never aborts the rest.
func (d *Dispatcher) SendBulk(ctx context.Context, recipients []string, subject, bodyTemplate string) *model.BulkSendResult {
	result := &model.BulkSendResult{Total: len(recipients)}

	for _, recipient := range recipients {
		if err := d.validate.Var(recipient, "required,email"); err != nil {
			result.Failed++
			d.metrics.BulkRecipients.WithLabelValues("invalid").Inc()
			d.logger.Warn("skipping invalid campaign recipient", "email", recipient)
			continue
		}

		body, err := email.RenderBulk(bodyTemplate, recipient)
		if err != nil {
			result.Failed++
			d.metrics.BulkRecipients.WithLabelValues("render_error").Inc()
			d.logger.Error(err, "failed to render campaign body", "email", recipient)
			continue
		}

		msg := &email.Message{To: recipient, Subject: subject, HTMLBody: body}
		if err := d.sendWithRetry(ctx, msg); err != nil {
			result.Failed++
			d.metrics.BulkRecipients.WithLabelValues("failed").Inc()
			d.logger.Error(err, "campaign delivery failed", "email", recipient)
			continue
		}

		result.Success++
		d.metrics.BulkRecipients.WithLabelValues("sent").Inc()
	}

	d.logger.Info("campaign finished",
		"total", result.Total, "sent", result.Success, "failed", result.Failed)
	return result
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, msg *email.Message) error {
	var err error
	for attempt := 0; attempt < d.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			d.metrics.EmailRetries.Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.config.RetryDelay):
			}
		}
		if err = d.emailSvc.Send(ctx, msg); err == nil {
			return nil
		}
	}
	return err
}

var _ Service = (*Dispatcher)(nil)
