package tracker

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vincentbai/browsetrace-tracker/internal/browser"
	"github.com/vincentbai/browsetrace-tracker/internal/dispatch"
	"github.com/vincentbai/browsetrace-tracker/internal/storage"
)

type wireCollector struct {
	mu     sync.Mutex
	events []map[string]any
}

func (c *wireCollector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	c.events = append(c.events, body)
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (c *wireCollector) byType() map[string]map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]map[string]any)
	for _, e := range c.events {
		out[e["event_type"].(string)] = e
	}
	return out
}

func TestJourneyOverTheWire(t *testing.T) {
	for _, useBeacon := range []bool{true, false} {
		name := "fetch"
		if useBeacon {
			name = "beacon"
		}
		t.Run(name, func(t *testing.T) {
			collector := &wireCollector{}
			server := httptest.NewServer(collector)
			defer server.Close()

			quiet := log.New(io.Discard, "", 0)
			opts := []dispatch.Option{dispatch.WithLogger(quiet), dispatch.WithHTTPClient(server.Client())}
			if useBeacon {
				opts = append(opts, dispatch.WithBeacon(dispatch.NewHTTPBeacon(server.Client(), quiet)))
			}
			d := dispatch.New(server.URL+"/track", opts...)

			b := browser.New(storage.NewMemory())
			page := openLanding(t, b, b.NewTab(), false)
			New(page, d, settings()).Start(context.Background())
			page.Click(page.ElementByID("signup"))
			page.Click(page.ElementByID("plain"))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := d.Flush(ctx); err != nil {
				t.Fatalf("Flush: %v", err)
			}

			events := collector.byType()
			if len(events) != 2 {
				t.Fatalf("Expected page_view and click on the wire, got %v", events)
			}
			view, click := events["page_view"], events["click"]
			// JSON numbers decode as float64.
			if view["sequence_step"] != float64(1) || click["sequence_step"] != float64(2) {
				t.Errorf("Unexpected steps %v / %v", view["sequence_step"], click["sequence_step"])
			}
			if view["utm_campaign"] != "spring" || view["previous_page"] != "" {
				t.Errorf("Unexpected page_view %v", view)
			}
			if click["element_tag"] != "A" || click["element_text"] != "Sign Up Now" || click["target_url"] != "https://example.com/signup" {
				t.Errorf("Unexpected click %v", click)
			}
			if view["session_id"] != click["session_id"] {
				t.Error("Expected shared session id")
			}
		})
	}
}
