package quiz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmexam",
		Subsystem: "quiz",
		Name:      "sessions_started_total",
		Help:      "Quiz sessions created, by load outcome.",
	})
	metricSessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmexam",
		Subsystem: "quiz",
		Name:      "sessions_completed_total",
		Help:      "Quiz sessions that reached the results screen.",
	})
	metricAnswersChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pharmexam",
		Subsystem: "quiz",
		Name:      "answers_checked_total",
		Help:      "Answer checks, labeled by result.",
	}, []string{"result"})
	metricQuestionsExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmexam",
		Subsystem: "quiz",
		Name:      "questions_excluded_total",
		Help:      "Malformed questions dropped at session load.",
	})
	metricFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pharmexam",
		Subsystem: "quiz",
		Name:      "question_fetch_failures_total",
		Help:      "Question source fetches that failed.",
	})
)
