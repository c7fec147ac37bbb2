package scheduler

import (
	"context"
	"fmt"
	"time"

	"messaging-service/internal/messaging"
	"messaging-service/internal/store"
	"messaging-service/prometheus"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scanner periodically walks all scheduled appointments across tenants and
// enqueues a reminder send for each one that is due. A Redis dispatch
// marker keyed by appointment ID keeps a re-run inside the same window from
// enqueueing the same reminder twice.
type Scanner struct {
	appointments *store.AppointmentStore
	sender       *messaging.Sender
	redis        *redis.Client
	markerTTL    time.Duration
	log          *zap.Logger
	now          func() time.Time
}

// NewScanner creates a reminder scanner
func NewScanner(appointments *store.AppointmentStore, sender *messaging.Sender, redisClient *redis.Client, markerTTL time.Duration, log *zap.Logger) *Scanner {
	if markerTTL <= 0 {
		markerTTL = 48 * time.Hour
	}
	return &Scanner{
		appointments: appointments,
		sender:       sender,
		redis:        redisClient,
		markerTTL:    markerTTL,
		log:          log,
		now:          time.Now,
	}
}

// Register schedules the scanner on the given cron runner
func (s *Scanner) Register(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := s.Run(ctx); err != nil {
			s.log.Error("Reminder scan failed", zap.Error(err))
		}
	})
	return err
}

// Run executes one reminder scan
func (s *Scanner) Run(ctx context.Context) error {
	now := s.now()

	appts, err := s.appointments.AllScheduled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scheduled appointments: %w", err)
	}

	var enqueued int
	for i := range appts {
		appt := &appts[i]

		if !ReminderDue(appt, appt.Tenant.LeadHours(), now) {
			continue
		}

		fresh, err := s.markDispatched(ctx, appt.ID)
		if err != nil {
			s.log.Warn("Failed to set reminder dispatch marker",
				zap.Uint("appointment_id", appt.ID),
				zap.Error(err))
			continue
		}
		if !fresh {
			continue
		}

		body := FormatReminder(appt, appt.Tenant.Name)
		if err := s.sender.Enqueue(appt.CustomerID, appt.TenantID, body); err != nil {
			s.log.Error("Failed to enqueue reminder send",
				zap.Uint("appointment_id", appt.ID),
				zap.Uint("tenant_id", appt.TenantID),
				zap.Error(err))
			continue
		}

		prometheus.RecordReminderEnqueued()
		enqueued++
	}

	s.log.Info("Reminder scan completed",
		zap.Int("scheduled", len(appts)),
		zap.Int("enqueued", enqueued))

	return nil
}

// markDispatched returns true the first time it is called for an
// appointment within the marker TTL.
func (s *Scanner) markDispatched(ctx context.Context, appointmentID uint) (bool, error) {
	key := fmt.Sprintf("reminder:dispatched:%d", appointmentID)
	return s.redis.SetNX(ctx, key, s.now().Unix(), s.markerTTL).Result()
}
