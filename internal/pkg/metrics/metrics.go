// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "acesped"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_submitted_total",
		Help:      "Applications accepted by intake.",
	})

	AdmissionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admission_decisions_total",
		Help:      "Application status transitions by resulting status.",
	}, []string{"status"})

	StudentsConverted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "students_converted_total",
		Help:      "Students created from approved applications.",
	})

	StudentsGraduated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "students_graduated_total",
		Help:      "Graduation transitions committed.",
	})

	CourseRegistrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_registrations_total",
		Help:      "Course registrations created.",
	})

	AccessCodeRedemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_code_redemptions_total",
		Help:      "Access code redemptions by outcome (granted, denied).",
	}, []string{"outcome"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification delivery attempts by template and outcome (sent, failed).",
	}, []string{"template", "outcome"})
)
