package models

import "time"

// NotificationQueue — одна запланированная напоминалка о списании.
// Строки создаёт только планировщик; воркер доставки забирает строки
// с IsSent = false и ScheduledDate <= now, после попытки доставки
// проставляет IsSent/SentDate либо ErrorMessage.
type NotificationQueue struct {
	Entity
	UserUID        string     `json:"user_uid"`
	SubscriptionID int64      `json:"subscription_id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ScheduledDate  time.Time  `json:"scheduled_date"`
	IsSent         bool       `json:"is_sent"`
	SentDate       *time.Time `json:"sent_date,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
}
