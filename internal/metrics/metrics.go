// Package metrics defines the Prometheus instruments for the forum engine.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agora_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Anti-abuse metrics
var (
	CreationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_creations_total",
		Help: "Total number of admitted content creations",
	}, []string{"kind"})

	CreationsDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_creations_denied_total",
		Help: "Total number of content creations rejected by the guard chain",
	}, []string{"kind", "check"})
)

// Moderation metrics
var (
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_reports_total",
		Help: "Total number of reports submitted",
	}, []string{"reason"})

	AutoHidesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_auto_hides_total",
		Help: "Total number of contents hidden by report escalation",
	})

	ModActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_mod_actions_total",
		Help: "Total number of moderation actions recorded",
	}, []string{"action"})
)

// Business gauges (updated periodically by the collector)
var (
	ReportsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_reports_pending",
		Help: "Number of reports awaiting moderator review",
	})

	UsersBanned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_users_banned",
		Help: "Number of users currently flagged as banned",
	})

	TopicsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_topics_total",
		Help: "Total number of topics",
	})

	PostsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_posts_total",
		Help: "Total number of posts",
	})
)

// NormalizePath collapses path parameters so metric cardinality stays bounded.
// /api/topics/4f0c2a.../posts becomes /api/topics/{id}/posts.
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if looksLikeID(seg) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// looksLikeID treats purely numeric or long hex/uuid-shaped segments as ids.
func looksLikeID(seg string) bool {
	if seg == "" {
		return false
	}
	digits := 0
	for _, r := range seg {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '-':
		default:
			return false
		}
	}
	return digits > 0 && (len(seg) >= 16 || digits == len(seg))
}
