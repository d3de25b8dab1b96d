package domain

import "time"

// ReminderType classifies whether a reminder spawns a successor after it is sent.
type ReminderType string

const (
	ReminderYearly    ReminderType = "yearly"
	ReminderQuarterly ReminderType = "quarterly"
	ReminderOneTime   ReminderType = "one-time"
)

// Recurring reports whether a sent reminder of this type must be rescheduled.
func (t ReminderType) Recurring() bool {
	return t == ReminderYearly || t == ReminderQuarterly
}

// PendingDayLayout formats the sparse-index key of an unsent reminder.
const PendingDayLayout = "2006-01-02"

// Reminder is a single-fire notification scheduled for one recipient about one testimony.
// A nil SentAt means pending. PendingDay mirrors ScheduledFor's UTC date while pending and is
// cleared once sent, so delivered rows drop out of the due index.
type Reminder struct {
	ReminderID   string       `json:"id" dynamodbav:"reminder_id"`
	UserID       string       `json:"user_id" dynamodbav:"user_id"`
	TestimonyID  string       `json:"testimony_id" dynamodbav:"testimony_id"`
	ScheduledFor time.Time    `json:"scheduled_for" dynamodbav:"scheduled_for,unixtime"`
	SentAt       *time.Time   `json:"sent_at" dynamodbav:"sent_at,omitempty,unixtime"`
	Type         ReminderType `json:"type,omitempty" dynamodbav:"type,omitempty"`
	PendingDay   string       `json:"-" dynamodbav:"pending_day,omitempty"`
	CreatedAt    time.Time    `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time    `json:"updated" dynamodbav:"updated_at"`
}

// Pending reports whether the reminder has not been delivered yet.
func (r *Reminder) Pending() bool { return r.SentAt == nil }

// PendingDayFor returns the due-index key for a reminder scheduled at t.
func PendingDayFor(t time.Time) string {
	return t.UTC().Format(PendingDayLayout)
}

// NewPendingReminder builds an unsent reminder row. The caller assigns ReminderID.
func NewPendingReminder(id, userID, testimonyID string, typ ReminderType, scheduledFor, now time.Time) *Reminder {
	scheduledFor = scheduledFor.UTC()
	return &Reminder{
		ReminderID:   id,
		UserID:       userID,
		TestimonyID:  testimonyID,
		ScheduledFor: scheduledFor,
		Type:         typ,
		PendingDay:   PendingDayFor(scheduledFor),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
}

// DueReminder is a pending reminder joined with its recipient and testimony.
type DueReminder struct {
	Reminder  Reminder
	Recipient Recipient
	Testimony Testimony
}

// Recipient is the push-addressable view of a user.
type Recipient struct {
	UserID    string
	PushToken string
	Settings  *ReminderSettings
}

type UpdateReminderRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" validate:"required"`
}

// ManualSendRequest asks for one immediate reminder about a testimony.
type ManualSendRequest struct {
	TestimonyID string `json:"testimonyId" validate:"required"`
	Title       string `json:"title" validate:"required,max=120"`
	Body        string `json:"body" validate:"required,max=500"`
}
