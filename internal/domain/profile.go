package domain

import "time"

// Delivery channel names. Channels are pluggable; these are the ones the
// application ships with.
const (
	ChannelEmail    = "email"
	ChannelPush     = "push"
	ChannelTelegram = "telegram"
)

// DefaultOffsets is used when a profile has notifications enabled but no
// explicit reminder offsets configured and the task priority is not consulted
// (settings API level). Minutes before task start.
var DefaultOffsets = []int{300, 60, 30}

// Profile holds per-user notification preferences.
type Profile struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	TelegramChatID  int64     `json:"telegram_chat_id"`
	TZ              string    `json:"tz"`
	Enabled         bool      `json:"notifications_enabled"`
	ReminderOffsets []int     `json:"reminder_offsets"` // minutes before start, caller-configured order
	Channels        []string  `json:"channels"`
	DailySummary    bool      `json:"daily_summary"`
	AutoInspiration bool      `json:"auto_inspiration"`
	CreatedAt       time.Time `json:"created_at"`
}

// HasChannel reports whether the named delivery channel is enabled.
func (p *Profile) HasChannel(name string) bool {
	for _, c := range p.Channels {
		if c == name {
			return true
		}
	}
	return false
}
