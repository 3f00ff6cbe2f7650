// Package journey replays a scripted browsing session through the tracker.
package journey

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vincentbai/browsetrace-tracker/internal/attribution"
	"github.com/vincentbai/browsetrace-tracker/internal/browser"
	"github.com/vincentbai/browsetrace-tracker/internal/models"
	"github.com/vincentbai/browsetrace-tracker/internal/tracker"
)

type Page struct {
	URL string `yaml:"url"`
	// Referrer defaults to the previous page's URL; the first page has none.
	Referrer string          `yaml:"referrer"`
	Title    string          `yaml:"title"`
	Loading  bool            `yaml:"loading"` // page becomes ready after Start
	Elements []*browser.Node `yaml:"elements"`
	Clicks   []string        `yaml:"clicks"` // element ids, in order
}

type Journey struct {
	UserAgent string `yaml:"user_agent"`
	Language  string `yaml:"language"`
	Screen    struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"screen"`
	Pages []Page `yaml:"pages"`
}

func Load(path string) (Journey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Journey{}, fmt.Errorf("read journey: %w", err)
	}
	var j Journey
	if err := yaml.Unmarshal(b, &j); err != nil {
		return Journey{}, fmt.Errorf("parse journey: %w", err)
	}
	if len(j.Pages) == 0 {
		return Journey{}, errors.New("journey has no pages")
	}
	return j, nil
}

// Apply copies the journey's navigator and screen overrides onto b.
func (j Journey) Apply(b *browser.Browser) {
	if j.UserAgent != "" {
		b.UserAgent = j.UserAgent
	}
	if j.Language != "" {
		b.Language = j.Language
	}
	if j.Screen.Width > 0 && j.Screen.Height > 0 {
		b.Width, b.Height = j.Screen.Width, j.Screen.Height
	}
}

type Result struct {
	Events    int
	PageViews int
	Clicks    int
	SessionID string
	Platform  string
}

type countingSender struct {
	next   tracker.Sender
	result *Result
}

func (c countingSender) Send(record models.Record) {
	c.result.Events++
	switch record.Type() {
	case models.PageView:
		c.result.PageViews++
	case models.Click:
		c.result.Clicks++
	}
	if id := record.String(models.FieldSessionID); id != "" {
		c.result.SessionID = id
	}
	c.next.Send(record)
}

// Replay opens every page of j in one tab of b, tracking each with sender.
func Replay(ctx context.Context, j Journey, b *browser.Browser, sender tracker.Sender, settings tracker.Settings) (Result, error) {
	result := Result{Platform: attribution.Platform(attribution.Extract(j.Pages[0].URL))}
	counted := countingSender{next: sender, result: &result}
	tab := b.NewTab()
	defer tab.Close()

	previous := ""
	for i, p := range j.Pages {
		referrer := p.Referrer
		if referrer == "" {
			referrer = previous
		}
		root := &browser.Node{Tag: "body", Children: p.Elements}
		page, err := tab.Open(p.URL, referrer, p.Title, root, p.Loading)
		if err != nil {
			return result, fmt.Errorf("page %d: %w", i+1, err)
		}

		tracker.New(page, counted, settings).Start(ctx)
		page.FinishLoading()

		for _, id := range p.Clicks {
			target := page.ElementByID(id)
			if target == nil {
				return result, fmt.Errorf("page %d: no element with id %q", i+1, id)
			}
			page.Click(target)
		}
		previous = p.URL
	}
	return result, nil
}
