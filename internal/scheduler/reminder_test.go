package scheduler

import (
	"testing"
	"time"

	"messaging-service/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestReminderDue(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	appt := func(start time.Time, status model.AppointmentStatus) *model.Appointment {
		return &model.Appointment{StartTime: start, EndTime: start.Add(time.Hour), Status: status}
	}

	tests := []struct {
		name      string
		appt      *model.Appointment
		leadHours int
		due       bool
	}{
		{
			name:      "reminder inside the window is due",
			appt:      appt(now.Add(24*time.Hour+30*time.Minute), model.AppointmentScheduled),
			leadHours: 24,
			due:       true,
		},
		{
			name:      "reminder exactly now is due",
			appt:      appt(now.Add(24*time.Hour), model.AppointmentScheduled),
			leadHours: 24,
			due:       true,
		},
		{
			name:      "reminder exactly one hour out is not due yet",
			appt:      appt(now.Add(25*time.Hour), model.AppointmentScheduled),
			leadHours: 24,
			due:       false,
		},
		{
			name:      "reminder beyond the window is not due",
			appt:      appt(now.Add(25*time.Hour+30*time.Minute), model.AppointmentScheduled),
			leadHours: 24,
			due:       false,
		},
		{
			name:      "reminder time already passed is not due",
			appt:      appt(now.Add(23*time.Hour), model.AppointmentScheduled),
			leadHours: 24,
			due:       false,
		},
		{
			name:      "custom lead shifts the window",
			appt:      appt(now.Add(48*time.Hour+15*time.Minute), model.AppointmentScheduled),
			leadHours: 48,
			due:       true,
		},
		{
			name:      "cancelled appointment never fires",
			appt:      appt(now.Add(24*time.Hour+30*time.Minute), model.AppointmentCancelled),
			leadHours: 24,
			due:       false,
		},
		{
			name:      "confirmed appointment never fires",
			appt:      appt(now.Add(24*time.Hour+30*time.Minute), model.AppointmentConfirmed),
			leadHours: 24,
			due:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.due, ReminderDue(tt.appt, tt.leadHours, now))
		})
	}
}

func TestFormatReminder(t *testing.T) {
	start := time.Date(2026, time.March, 11, 15, 30, 0, 0, time.UTC)
	appt := &model.Appointment{StartTime: start, EndTime: start.Add(time.Hour)}

	body := FormatReminder(appt, "Glow Salon")

	assert.Equal(t, "Reminder: You have an appointment on March 11 at 3:30 PM with Glow Salon.", body)
}
