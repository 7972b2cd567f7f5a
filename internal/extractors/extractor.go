package extractors

import (
	"github.com/maxaizer/jobscout/internal/domain/models"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"slices"
	"sync"
)

const (
	SourceEmailAlert     = "email_alert"
	SourceRSS            = "rss"
	SourceBrowserCapture = "browser_capture"
	SourcePlainText      = "plain_text"
)

// Extractor turns raw content of one source kind into postings. Implementations
// never fail: content they cannot understand yields no postings.
type Extractor interface {
	Source() string
	Extract(content string) []models.Posting
}

// Registry maps source tags to extraction strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{strategies: make(map[string]Extractor, len(extractors))}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

func DefaultRegistry() *Registry {
	return NewRegistry(
		NewEmailAlertExtractor(),
		NewRSSExtractor(),
		NewCaptureExtractor(),
		NewPlainTextExtractor(),
	)
}

func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[e.Source()] = e
}

func (r *Registry) Lookup(source string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.strategies[source]
	return e, ok
}

func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := lo.Keys(r.strategies)
	slices.Sort(sources)
	return sources
}

// Extract runs the strategy registered for source. Unknown sources yield nothing.
func (r *Registry) Extract(source, content string) []models.Posting {

	e, ok := r.Lookup(source)
	if !ok {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).Warnf("no extractor registered for source %q", source)
		return nil
	}
	return e.Extract(content)
}

// safely runs extract, recovering from panics on malformed input, and cleans
// the result before it leaves the strategy.
func safely(source string, extract func() []models.Posting) (postings []models.Posting) {

	defer func() {
		if r := recover(); r != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).
				Warnf("%s extractor gave up on malformed content: %v", source, r)
			postings = nil
		}
	}()

	return finalize(source, extract())
}
