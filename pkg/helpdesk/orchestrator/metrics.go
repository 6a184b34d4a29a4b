package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// turnsTotal counts answered turns by the branch that produced the reply
var turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "helpdesk_turns_total",
	Help: "Total chat turns answered, by orchestrator branch",
}, []string{"branch"})
