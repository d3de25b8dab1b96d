package reminder

import (
	"fmt"
	"math/rand/v2"
	"net/url"

	"github.com/hisworks-api/internal/domain"
)

// DefaultPhrases is used when no phrase pool is configured or the configured one is empty.
var DefaultPhrases = domain.Phrases{
	Titles: []string{
		"Remember His works",
		"A moment to look back",
		"Your testimony is waiting",
		"Time to remember",
		"Look what God has done",
	},
	Bodies: []string{
		"Take a minute to revisit a testimony of His faithfulness.",
		"Remembering what He did yesterday builds faith for today.",
		"One of your testimonies is worth reading again.",
		"Open your testimony and give thanks for it once more.",
		"Share the story again, it may encourage someone today.",
	},
}

const (
	defaultDeepLinkScheme = "app"
	pushSound             = "default"
)

// Chooser picks one phrase from a pool. It must return "" for an empty pool.
type Chooser func(pool []string) string

// RandomChooser picks uniformly at random.
func RandomChooser(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.IntN(len(pool))]
}

// DeepLink builds the URL the client opens to display a testimony and mark the reminder read.
func DeepLink(scheme, testimonyID, reminderID string) string {
	if scheme == "" {
		scheme = defaultDeepLinkScheme
	}
	return fmt.Sprintf("%s://testimony-display/%s?reminderId=%s",
		scheme, url.PathEscape(testimonyID), url.QueryEscape(reminderID))
}

// Composer turns due reminders into push messages.
type Composer struct {
	phrases domain.Phrases
	choose  Chooser
	scheme  string
}

// NewComposer falls back to DefaultPhrases for an empty pool and to RandomChooser for a nil chooser.
func NewComposer(phrases domain.Phrases, choose Chooser, scheme string) *Composer {
	if len(phrases.Titles) == 0 {
		phrases.Titles = DefaultPhrases.Titles
	}
	if len(phrases.Bodies) == 0 {
		phrases.Bodies = DefaultPhrases.Bodies
	}
	if choose == nil {
		choose = RandomChooser
	}
	return &Composer{phrases: phrases, choose: choose, scheme: scheme}
}

// Compose builds the message for one due reminder using phrases from the pool.
func (c *Composer) Compose(due domain.DueReminder) domain.PushMessage {
	return c.Message(
		due.Recipient.PushToken,
		c.choose(c.phrases.Titles),
		c.choose(c.phrases.Bodies),
		due.Reminder.TestimonyID,
		due.Reminder.ReminderID,
	)
}

// Message builds a push message with explicit copy.
func (c *Composer) Message(to, title, body, testimonyID, reminderID string) domain.PushMessage {
	return domain.PushMessage{
		To:    to,
		Sound: pushSound,
		Title: title,
		Body:  body,
		Data: domain.PushData{
			TestimonyUUID: testimonyID,
			ReminderUUID:  reminderID,
			URL:           DeepLink(c.scheme, testimonyID, reminderID),
		},
	}
}
