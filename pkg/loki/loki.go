package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Logger reports problems of the pusher itself.
type Logger interface {
	Error(msg string, args ...any)
}

type Config struct {

	// TenantValue is the value associated with the tenant for multi-tenant systems.
	// It is optional. If not provided, the request will not include a tenant header.
	TenantValue string

	// TenantKey is the key used to specify the tenant in the request headers.
	// It is optional. If not provided, the request will not include a tenant header.
	TenantKey string

	// Url of the loki server, e.g. https://example-prod.grafana.net/loki/api/v1/push
	Url string `validate:"required,url"`

	// BatchMaxSize is the maximum number of log lines that are sent in one request
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the maximum time to wait before sending a request
	BatchMaxWait time.Duration `validate:"gte=1"`

	// MaxAttempts bounds delivery attempts of one batch when loki answers 429 or 5xx
	MaxAttempts int `validate:"gte=1"`

	// RetryDelay is the pause between delivery attempts
	RetryDelay time.Duration `validate:"gte=0"`

	// Labels that are added to all log lines. The entry level is added as the "level" label.
	Labels map[string]string

	// Username is the username used for basic authentication when pushing logs to Loki.
	// It is optional. If authentication is not required, leave it empty.
	Username string

	// Password is the password associated with the Username for basic authentication.
	// It is optional. If authentication is not required, leave it empty.
	Password string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 1000
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
}

type Pusher struct {
	config    *Config
	ctx       context.Context
	cancel    context.CancelFunc
	client    *http.Client
	quit      chan struct{}
	stopOnce  sync.Once
	entry     chan LogEntry
	waitGroup sync.WaitGroup
	batch     []LogEntry
	logger    Logger
}

type LogEntry struct {
	Time    time.Time         `json:"-"`
	Level   string            `json:"level"`
	Message string            `json:"msg"`
	Caller  string            `json:"caller,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type lokiPushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values []streamValue     `json:"values"`
}

type streamValue []string

type statusError struct {
	status string
	code   int
	body   string
}

func (e statusError) Error() string {
	return fmt.Sprintf("received unexpected response code from Loki: %s, body: %s", e.status, e.body)
}

func New(ctx context.Context, cfg Config, logger Logger) (*Pusher, error) {

	cfg.setDefaults()
	err := validator.New().Struct(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pusher{
		config: &cfg,
		ctx:    ctx,
		cancel: cancel,
		client: &http.Client{Timeout: 10 * time.Second},
		quit:   make(chan struct{}),
		entry:  make(chan LogEntry, cfg.BatchMaxSize),
		batch:  make([]LogEntry, 0, cfg.BatchMaxSize),
		logger: logger,
	}

	p.waitGroup.Add(1)
	go p.run()
	return p, nil
}

// Push queues an entry for the next batch. Entries pushed after Stop are dropped.
func (p *Pusher) Push(e LogEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	select {
	case <-p.quit:
		return fmt.Errorf("loki pusher is stopped")
	default:
	}
	select {
	case <-p.quit:
		return fmt.Errorf("loki pusher is stopped")
	case p.entry <- e:
		return nil
	}
}

// Stop flushes pending entries and stops the pusher.
func (p *Pusher) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.waitGroup.Wait()
		p.cancel()
	})
}

func (p *Pusher) run() {
	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	trySendBatch := func() {
		err := p.sendWithRetry()
		if err != nil {
			p.logger.Error("failed to send logs", "error", err, "dropped", len(p.batch))
		}
		p.batch = p.batch[:0]
	}

	defer func() {
		for drained := false; !drained; {
			select {
			case entry := <-p.entry:
				p.batch = append(p.batch, entry)
			default:
				drained = true
			}
		}
		if len(p.batch) > 0 {
			trySendBatch()
		}

		p.waitGroup.Done()
	}()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.quit:
			return
		case entry := <-p.entry:
			p.batch = append(p.batch, entry)
			if len(p.batch) >= p.config.BatchMaxSize {
				trySendBatch()
			}
		case <-ticker.C:
			if len(p.batch) > 0 {
				trySendBatch()
			}
		}
	}
}

func (p *Pusher) sendWithRetry() error {

	payload, err := p.encode()
	if err != nil {
		return err
	}

	_, _, err = lo.AttemptWhileWithDelay(p.config.MaxAttempts, p.config.RetryDelay, func(_ int, _ time.Duration) (error, bool) {
		err := p.send(payload)
		return err, isRetryable(err)
	})
	return err
}

// encode groups the batch into one stream per level and gzips the request.
func (p *Pusher) encode() ([]byte, error) {

	byLevel := lo.GroupBy(p.batch, func(e LogEntry) string { return e.Level })

	var streams []stream
	for _, level := range lo.Keys(byLevel) {
		labels := lo.Assign(p.config.Labels, map[string]string{"level": level})
		values := lo.FilterMap(byLevel[level], func(e LogEntry, _ int) (streamValue, bool) {
			line, err := json.Marshal(e)
			if err != nil {
				return nil, false
			}
			return streamValue{strconv.FormatInt(e.Time.UnixNano(), 10), string(line)}, true
		})
		streams = append(streams, stream{Stream: labels, Values: values})
	}

	buf := bytes.NewBuffer([]byte{})
	gz := gzip.NewWriter(buf)

	if err := json.NewEncoder(gz).Encode(lokiPushRequest{Streams: streams}); err != nil {
		return nil, err
	}

	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Pusher) send(payload []byte) error {

	ctx, cancel := context.WithTimeout(context.WithoutCancel(p.ctx), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	if len(p.config.TenantKey) > 0 {
		req.Header.Set(p.config.TenantKey, p.config.TenantValue)
	}

	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return statusError{status: resp.Status, code: resp.StatusCode, body: string(body)}
	}

	return nil
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	status, ok := err.(statusError)
	if !ok {
		return true
	}
	return status.code == http.StatusTooManyRequests || status.code >= 500
}
