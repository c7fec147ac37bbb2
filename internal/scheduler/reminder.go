package scheduler

import (
	"fmt"
	"time"

	"messaging-service/internal/model"
)

// reminderWindow is how far ahead one scan looks; scans are expected to run
// once per window.
const reminderWindow = time.Hour

// ReminderDue reports whether an appointment's reminder should fire now.
// The reminder time is the appointment start minus the lead hours; it is
// due when it falls within the half-open interval [now, now+1h). Only
// scheduled appointments are eligible.
func ReminderDue(appt *model.Appointment, leadHours int, now time.Time) bool {
	if appt.Status != model.AppointmentScheduled {
		return false
	}

	reminderAt := appt.StartTime.Add(-time.Duration(leadHours) * time.Hour)
	return !reminderAt.Before(now) && reminderAt.Before(now.Add(reminderWindow))
}

// FormatReminder builds the reminder message body for an appointment
func FormatReminder(appt *model.Appointment, tenantName string) string {
	timeStr := appt.StartTime.Format("January 2 at 3:04 PM")
	return fmt.Sprintf("Reminder: You have an appointment on %s with %s.", timeStr, tenantName)
}
