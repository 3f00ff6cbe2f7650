package dispatch

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// Beacon is the environment's one-way send primitive. SendBeacon queues the
// body for delivery and reports whether it was accepted; it never waits for
// the network.
type Beacon interface {
	SendBeacon(url, contentType string, body []byte) bool
}

// beaconTimeout bounds a queued beacon once the page that sent it is gone.
const beaconTimeout = 10 * time.Second

// HTTPBeacon implements Beacon with background POSTs that outlive the page.
type HTTPBeacon struct {
	client *http.Client
	logger *log.Logger
	wg     sync.WaitGroup
}

func NewHTTPBeacon(client *http.Client, logger *log.Logger) *HTTPBeacon {
	if client == nil {
		client = NewHTTPClient(beaconTimeout)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPBeacon{client: client, logger: logger}
}

func (b *HTTPBeacon) SendBeacon(url, contentType string, body []byte) bool {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", contentType)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := post(req, b.client); err != nil {
			b.logger.Printf("beacon: delivery failed: %v", err)
		}
	}()
	return true
}

// Wait blocks until every queued beacon has finished.
func (b *HTTPBeacon) Wait() {
	b.wg.Wait()
}
