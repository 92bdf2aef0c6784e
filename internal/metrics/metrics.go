// Package metrics объявляет счётчики prometheus, общие для сервисов.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NotificationsQueued — количество уведомлений, поставленных в очередь планировщиком.
var NotificationsQueued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "subtrack_notifications_queued_total",
	Help: "Number of billing notifications queued by the scheduler.",
})

// NotificationsSent — количество уведомлений, переданных брокеру воркером доставки.
var NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: "subtrack_notifications_sent_total",
	Help: "Number of billing notifications published by the sender worker.",
})

// RateRefreshFailures — количество неудачных обновлений курсов валют.
var RateRefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "subtrack_rate_refresh_failures_total",
	Help: "Number of failed exchange rate refresh attempts.",
})
