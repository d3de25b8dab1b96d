package domain

import "time"

// TimeOfDay is a recipient's preferred delivery window.
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Evening TimeOfDay = "evening"
)

// PeriodAt returns the delivery window an invocation at now belongs to (UTC).
func PeriodAt(now time.Time) TimeOfDay {
	if now.UTC().Hour() < 12 {
		return Morning
	}
	return Evening
}

// ReminderSettings is stored as the reminder_settings map on the user item.
// Monthly is persisted for the client but has no scheduling path.
type ReminderSettings struct {
	Yearly    bool      `json:"yearly" dynamodbav:"yearly"`
	Quarterly bool      `json:"quarterly" dynamodbav:"quarterly"`
	Monthly   bool      `json:"monthly" dynamodbav:"monthly"`
	TimeOfDay TimeOfDay `json:"timeOfDay,omitempty" dynamodbav:"time_of_day,omitempty"`
}

// AllowsPeriod reports whether a reminder may be delivered during period.
// An unset preference is always eligible.
func (s *ReminderSettings) AllowsPeriod(period TimeOfDay) bool {
	if s == nil || s.TimeOfDay == "" {
		return true
	}
	return s.TimeOfDay == period
}

type UpdateReminderSettingsRequest struct {
	Yearly    *bool   `json:"yearly"`
	Quarterly *bool   `json:"quarterly"`
	Monthly   *bool   `json:"monthly"`
	TimeOfDay *string `json:"timeOfDay" validate:"omitempty,oneof=morning evening"`
}
