package domain

import "time"

// User is the subset of the users table this service reads and writes.
type User struct {
	UserID           string            `json:"id" dynamodbav:"user_id"`
	Username         string            `json:"username" dynamodbav:"username"`
	ReminderSettings *ReminderSettings `json:"reminder_settings,omitempty" dynamodbav:"reminder_settings,omitempty"`
	Enable           int               `json:"enable" dynamodbav:"enable"`
	CreatedAt        time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time         `json:"updated" dynamodbav:"updated_at"`
}
