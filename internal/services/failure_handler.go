package services

import (
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	stepStore     = "store"
	stepScreening = "screening"
	stepSearch    = "web_search"
	stepAnalysis  = "analysis"
	stepScoring   = "scoring"
)

var stepErrorTypes = map[string]string{
	stepStore:     logger.ErrorTypeDb,
	stepScreening: logger.ErrorTypeAiApi,
	stepAnalysis:  logger.ErrorTypeAiApi,
	stepSearch:    logger.ErrorTypeSearchApi,
}

type failureHandler struct {
	Done  chan struct{}
	total int
}

func newFailureHandler() *failureHandler {
	return &failureHandler{Done: make(chan struct{})}
}

// Run logs every per-record failure of a batch until the channel is closed.
func (h *failureHandler) Run(failures <-chan error) {
	for err := range failures {
		h.total++

		errorType := logger.ErrorTypeDb
		var stepErr *stepError
		if errors.As(err, &stepErr) {
			if t, ok := stepErrorTypes[stepErr.step]; ok {
				errorType = t
			}
		}
		log.WithField(logger.ErrorTypeField, errorType).Errorf("enrichment failed: %v", err)
	}
	if h.total > 0 {
		log.Infof("%v records failed during the batch", h.total)
	}
	h.Done <- struct{}{}
}
