package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable           = "enable"
	fieldReaded           = "readed"
	fieldUpdatedAt        = "updated_at"
	fieldScheduledFor     = "scheduled_for"
	fieldSentAt           = "sent_at"
	fieldPendingDay       = "pending_day"
	fieldReminderSettings = "reminder_settings"
	fieldToken            = "token"
)

// GSI names.
const (
	indexPendingDay    = "pending_day-scheduled_for-index"
	indexUserReminders = "user_id-scheduled_for-index"
	indexTestimony     = "testimony_id-index"
	indexUserDevices   = "user_id-index"
	indexDeviceUUID    = "device_uuid-index"
	indexUserCreatedAt = "user_id-created_at-index"
)
