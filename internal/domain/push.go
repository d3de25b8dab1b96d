package domain

// PushData is the opaque payload the client uses to open the testimony.
type PushData struct {
	TestimonyUUID string `json:"testimony_uuid"`
	ReminderUUID  string `json:"reminder_uuid"`
	URL           string `json:"url"`
}

// PushMessage is one notification in the transport's wire schema.
type PushMessage struct {
	To    string   `json:"to"`
	Sound string   `json:"sound"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Data  PushData `json:"data"`
}

// Ticket is the transport's per-message acknowledgement. It is never persisted.
type Ticket struct {
	Status  string         `json:"status"`
	ID      string         `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

const TicketStatusOK = "ok"

// OK reports whether the transport accepted the message.
func (t Ticket) OK() bool { return t.Status == TicketStatusOK }
