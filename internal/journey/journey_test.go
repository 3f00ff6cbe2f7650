package journey

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vincentbai/browsetrace-tracker/internal/browser"
	"github.com/vincentbai/browsetrace-tracker/internal/models"
	"github.com/vincentbai/browsetrace-tracker/internal/storage"
	"github.com/vincentbai/browsetrace-tracker/internal/tracker"
)

const sample = `
user_agent: TestAgent/1.0
language: fr-FR
screen:
  width: 390
  height: 844
pages:
  - url: https://example.com/landing?utm_campaign=spring&gclid=abc
    title: Landing
    loading: true
    elements:
      - tag: a
        id: signup
        href: /signup
        text: Sign Up Now
      - tag: div
        id: plain
        text: copy
    clicks: [signup, plain]
  - url: https://example.com/signup
    title: Sign up
`

type sink struct{ records []models.Record }

func (s *sink) Send(record models.Record) { s.records = append(s.records, record) }

func loadSample(t *testing.T) Journey {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journey.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("Failed to write journey: %v", err)
	}
	j, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return j
}

func TestReplay(t *testing.T) {
	j := loadSample(t)
	b := browser.New(storage.NewMemory())
	j.Apply(b)
	s := &sink{}

	result, err := Replay(context.Background(), j, b, s, tracker.Settings{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if result.Events != 3 || result.PageViews != 2 || result.Clicks != 1 {
		t.Errorf("Unexpected result %+v", result)
	}
	if result.Platform != "Google Ads" {
		t.Errorf("Expected Google Ads, got %s", result.Platform)
	}

	wantTypes := []models.EventType{models.PageView, models.Click, models.PageView}
	for i, record := range s.records {
		if record.Type() != wantTypes[i] {
			t.Errorf("Event %d: expected %s, got %s", i, wantTypes[i], record.Type())
		}
		if step, _ := record.Get(models.FieldSequenceStep); step != i+1 {
			t.Errorf("Event %d: expected step %d, got %v", i, i+1, step)
		}
		if record.String(models.FieldSessionID) != result.SessionID {
			t.Errorf("Event %d: session id changed", i)
		}
	}
	last := s.records[2]
	if last.String(models.FieldPreviousPage) != "https://example.com/landing?utm_campaign=spring&gclid=abc" {
		t.Errorf("Expected referrer from previous page, got %s", last.String(models.FieldPreviousPage))
	}
	if last.String(models.FieldScreenResolution) != "390x844" || last.String(models.FieldLanguage) != "fr-FR" {
		t.Errorf("Expected journey environment overrides, got %s %s",
			last.String(models.FieldScreenResolution), last.String(models.FieldLanguage))
	}
}

func TestReplayUnknownClick(t *testing.T) {
	j := Journey{Pages: []Page{{URL: "https://example.com/", Clicks: []string{"missing"}}}}
	_, err := Replay(context.Background(), j, browser.New(storage.NewMemory()), &sink{}, tracker.Settings{Logger: log.New(io.Discard, "", 0)})
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("Expected unknown element error, got %v", err)
	}
}

func TestLoadEmptyJourney(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("pages: []\n"), 0o644); err != nil {
		t.Fatalf("Failed to write journey: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for a journey without pages")
	}
}
