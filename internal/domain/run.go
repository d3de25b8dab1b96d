package domain

import "time"

// RunResult summarises one scheduler invocation.
type RunResult struct {
	RunID        string    `json:"run_id"`
	Period       TimeOfDay `json:"period"`
	StartedAt    time.Time `json:"started_at"`
	Selected     int       `json:"selected"`
	Delivered    int       `json:"delivered"`
	TicketErrors int       `json:"ticket_errors"`
	MarkedSent   int       `json:"marked_sent"`
	AlreadySent  int       `json:"already_sent"`
	Rescheduled  int       `json:"rescheduled"`
	Failed       int       `json:"failed"`
}

// Phrases are the copy pools a reminder's title and body are drawn from.
type Phrases struct {
	Titles []string `json:"titles"`
	Bodies []string `json:"bodies"`
}
