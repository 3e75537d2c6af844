package job

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reminderRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contracts_renewal_reminder_runs_total",
		Help: "Renewal reminder runs by outcome.",
	}, []string{"outcome"})

	reminderNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contracts_renewal_reminder_notifications_total",
		Help: "Renewal reminder notifications by result.",
	}, []string{"result"})

	reminderExpiring = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contracts_renewal_due_last_run",
		Help: "Contracts in the renewal window at the last reminder run.",
	})
)
