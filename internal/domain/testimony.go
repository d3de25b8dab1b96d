package domain

import "time"

// Testimony is the read-only view of a testimony the reminder engine needs.
// EventDate is the anniversary anchor.
type Testimony struct {
	TestimonyID string    `json:"id" dynamodbav:"testimony_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	EventDate   time.Time `json:"event_date" dynamodbav:"event_date"`
}
