package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fusionOutcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusion_outcome_total",
		Help: "Total number of settled fusion dispatches by outcome and error kind",
	}, []string{"outcome", "error_kind"})

	fusionDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fusion_generation_duration_seconds",
		Help:    "Latency of the image generation call by outcome",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80},
	}, []string{"outcome"})

	imageUploadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fusion_image_upload_total",
		Help: "Total number of image intake attempts by slot and result",
	}, []string{"slot", "result"})

	dispatchRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fusion_dispatch_rejected_total",
		Help: "Dispatches rejected because a request was already in flight",
	})
)

// RecordFusionOutcome records one settled dispatch. errorKind is empty on success.
func RecordFusionOutcome(outcome, errorKind string) {
	fusionOutcomeTotal.WithLabelValues(normalizeOutcomeLabel(outcome), normalizeErrorKindLabel(errorKind)).Inc()
}

func ObserveGenerationDuration(outcome string, d time.Duration) {
	fusionDurationSeconds.WithLabelValues(normalizeOutcomeLabel(outcome)).Observe(d.Seconds())
}

func RecordImageUpload(slot string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	imageUploadTotal.WithLabelValues(normalizeSlotLabel(slot), result).Inc()
}

func RecordDispatchRejected() {
	dispatchRejectedTotal.Inc()
}

func normalizeOutcomeLabel(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "success", "failure":
		return strings.ToLower(strings.TrimSpace(outcome))
	default:
		return "unknown"
	}
}

func normalizeErrorKindLabel(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "":
		return "none"
	case "input", "io", "service", "empty_result":
		return strings.ToLower(strings.TrimSpace(kind))
	default:
		return "unknown"
	}
}

func normalizeSlotLabel(slot string) string {
	switch slot {
	case "1", "2":
		return slot
	default:
		return "unknown"
	}
}
