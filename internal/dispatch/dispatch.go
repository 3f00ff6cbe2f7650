// Package dispatch transmits event records to the collection endpoint.
// Delivery is best effort: one attempt per record, no retry, no queue.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vincentbai/browsetrace-tracker/internal/models"
)

const (
	ContentType    = "application/json"
	DefaultTimeout = 10 * time.Second
)

type Dispatcher struct {
	endpoint string
	beacon   Beacon
	client   *http.Client
	pageCtx  context.Context
	logger   *log.Logger
	reg      prometheus.Registerer
	metrics  *metrics
	wg       sync.WaitGroup
}

type Option func(*Dispatcher)

// WithBeacon makes the dispatcher prefer b. Without it every record goes
// through the keepalive POST fallback.
func WithBeacon(b Beacon) Option {
	return func(d *Dispatcher) { d.beacon = b }
}

func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithPageContext ties the dispatcher to a page lifetime. Fallback requests
// are detached from its cancellation so they survive page teardown.
func WithPageContext(ctx context.Context) Option {
	return func(d *Dispatcher) { d.pageCtx = ctx }
}

func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Dispatcher) { d.reg = reg }
}

func New(endpoint string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		endpoint: endpoint,
		pageCtx:  context.Background(),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = NewHTTPClient(DefaultTimeout)
	}
	d.metrics = newMetrics(d.reg)
	return d
}

// Send makes exactly one transmission attempt for record and returns without
// waiting for the network. Failures are logged and dropped.
func (d *Dispatcher) Send(record models.Record) {
	body, err := json.Marshal(record)
	if err != nil {
		d.logger.Printf("dispatch: encode %s event: %v", record.Type(), err)
		return
	}
	d.metrics.bytes.Add(float64(len(body)))

	if d.beacon != nil {
		d.metrics.attempts.WithLabelValues(ModeBeacon).Inc()
		if !d.beacon.SendBeacon(d.endpoint, ContentType, body) {
			d.metrics.failures.WithLabelValues(ModeBeacon).Inc()
			d.logger.Printf("dispatch: beacon refused %s event", record.Type())
		}
		return
	}

	d.metrics.attempts.WithLabelValues(ModeFetch).Inc()
	req, err := http.NewRequestWithContext(context.WithoutCancel(d.pageCtx), http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		d.metrics.failures.WithLabelValues(ModeFetch).Inc()
		d.logger.Printf("dispatch: build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", ContentType)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := post(req, d.client); err != nil {
			d.metrics.failures.WithLabelValues(ModeFetch).Inc()
			d.logger.Printf("dispatch: send failed: %v", err)
		}
	}()
}

// Flush waits for in-flight transmissions, including queued beacons of an
// HTTPBeacon, or until ctx is done.
func (d *Dispatcher) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		if w, ok := d.beacon.(interface{ Wait() }); ok {
			w.Wait()
		}
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
