package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/meditrack/clinic-api/internal/repository"
	"github.com/meditrack/clinic-api/internal/service/billing"
	"github.com/meditrack/clinic-api/internal/service/reminder"
	"github.com/meditrack/clinic-api/pkg/logger"
	"github.com/meditrack/clinic-api/pkg/messaging"
	"github.com/meditrack/clinic-api/pkg/metrics"
)

// Engine runs the two periodic passes: billing reconciliation and
// reminder dispatch. Both passes are idempotent, so an overlapping or
// repeated run is harmless.
type Engine struct {
	providers repository.ProviderRepository
	billing   *billing.Service
	reminders *reminder.Service
	broker    messaging.Broker
	logger    *logger.Logger
	metrics   *metrics.Metrics

	template  string
	leadHours int

	cron *cron.Cron
}

type Config struct {
	ReconcileSchedule string
	ReminderSchedule  string
	ReminderTemplate  string
	LeadHours         int
}

func NewEngine(
	providers repository.ProviderRepository,
	billingSvc *billing.Service,
	reminderSvc *reminder.Service,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
	cfg Config,
) (*Engine, error) {
	e := &Engine{
		providers: providers,
		billing:   billingSvc,
		reminders: reminderSvc,
		broker:    broker,
		logger:    log,
		metrics:   m,
		template:  cfg.ReminderTemplate,
		leadHours: cfg.LeadHours,
		cron:      cron.New(),
	}

	if _, err := e.cron.AddFunc(cfg.ReconcileSchedule, func() {
		e.RunReconciliation(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule reconciliation: %w", err)
	}
	if _, err := e.cron.AddFunc(cfg.ReminderSchedule, func() {
		e.RunReminderDispatch(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule reminder dispatch: %w", err)
	}

	return e, nil
}

func (e *Engine) Start() {
	e.cron.Start()
	e.logger.Info("worker engine started")
}

func (e *Engine) Stop() context.Context {
	return e.cron.Stop()
}

// RunReconciliation sweeps every provider's past appointments into
// pending payments. One provider failing does not stop the sweep.
func (e *Engine) RunReconciliation(ctx context.Context) {
	providers, err := e.providers.List(ctx)
	if err != nil {
		e.logger.Error(err, "failed to list providers for reconciliation")
		e.metrics.ReconcileFailures.Inc()
		return
	}

	start := time.Now()
	for _, p := range providers {
		created, err := e.billing.Reconcile(ctx, p.ID)
		if err != nil {
			e.logger.Error(err, "reconciliation pass failed", "provider_id", p.ID.String())
			e.metrics.ReconcileFailures.Inc()
			continue
		}
		if created > 0 {
			e.logger.Info("reconciliation created payments",
				"provider_id", p.ID.String(), "created", created)
		}
		e.metrics.PaymentsCreated.Add(float64(created))
	}
	e.metrics.ReconcileRuns.Inc()
	e.metrics.ReconcileLatency.Observe(time.Since(start).Seconds())
}

// RunReminderDispatch publishes every due reminder to the reminders
// channel and marks it sent. Delivery to patients belongs to whatever
// consumes the channel; marking sent here keeps the pass idempotent.
func (e *Engine) RunReminderDispatch(ctx context.Context) {
	providers, err := e.providers.List(ctx)
	if err != nil {
		e.logger.Error(err, "failed to list providers for reminder dispatch")
		e.metrics.ReminderFailures.Inc()
		return
	}

	total := 0
	for _, p := range providers {
		items, err := e.reminders.Worklist(ctx, p.ID, e.template, e.leadHours)
		if err != nil {
			e.logger.Error(err, "failed to build reminder worklist", "provider_id", p.ID.String())
			e.metrics.ReminderFailures.Inc()
			continue
		}
		total += len(items)

		for _, item := range items {
			if item.State != reminder.StateDue {
				continue
			}

			msg := messaging.Message{
				Type:    "reminder_due",
				Payload: item,
			}
			if err := e.broker.Publish(ctx, messaging.ChannelReminders, msg); err != nil {
				e.logger.Error(err, "failed to publish reminder",
					"appointment_id", item.Appointment.ID.String())
				e.metrics.ReminderFailures.Inc()
				continue
			}

			if err := e.reminders.MarkSent(ctx, item.Appointment.ID); err != nil {
				e.logger.Error(err, "failed to mark reminder sent",
					"appointment_id", item.Appointment.ID.String())
				e.metrics.ReminderFailures.Inc()
				continue
			}
			e.metrics.RemindersDispatched.Inc()
		}
	}
	e.metrics.WorklistSize.Set(float64(total))
}
