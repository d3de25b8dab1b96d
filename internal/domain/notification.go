package domain

import "time"

// Notification is an in-app inbox entry. Reminder deliveries reuse the reminder id as
// NotificationID so the deep-link open can mark it read.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	TestimonyID    *string   `json:"testimony_id" dynamodbav:"testimony_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Readed         int       `json:"readed" dynamodbav:"readed"` // legacy field name preserved
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
