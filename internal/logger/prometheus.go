package logger

import (
	"github.com/maxaizer/jobscout/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// prometheusHook counts error-level entries by their error type. Warnings count
// only when tagged, like a failed deep analysis that leaves the job scored.
type prometheusHook struct{}

func (h *prometheusHook) Fire(entry *log.Entry) error {
	errorType, ok := entry.Data[ErrorTypeField].(string)
	if !ok {
		if entry.Level == log.WarnLevel {
			return nil
		}
		errorType = "unknown"
	}

	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func (h *prometheusHook) Levels() []log.Level {
	return []log.Level{
		log.WarnLevel,
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

func addPrometheusHook() {
	log.AddHook(&prometheusHook{})
}
