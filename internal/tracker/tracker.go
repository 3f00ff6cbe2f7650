// Package tracker wires the tracking pipeline to one page: it sends the
// page_view once the document is ready and a click event for every click on
// a link, button, or call-to-action element.
package tracker

import (
	"context"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vincentbai/browsetrace-tracker/internal/event"
	"github.com/vincentbai/browsetrace-tracker/internal/host"
	"github.com/vincentbai/browsetrace-tracker/internal/identity"
	"github.com/vincentbai/browsetrace-tracker/internal/models"
	"github.com/vincentbai/browsetrace-tracker/internal/pathway"
)

type State int

const (
	Uninitialized State = iota
	Initializing
	Active
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Active:
		return "active"
	}
	return "unknown"
}

const (
	DefaultCTAClass  = "cta"
	DefaultTextLimit = 50
)

// Sender receives every built record. *dispatch.Dispatcher implements it.
type Sender interface {
	Send(record models.Record)
}

type Settings struct {
	SessionTTL     time.Duration
	SlidingTimeout time.Duration // zero: fixed expiry
	CTAClass       string
	TextLimit      int
	Now            func() time.Time
	Logger         *log.Logger
	IdentityOpts   []identity.Option
}

// Tracker is the per-page tracking context. It owns the page's builder and
// sender; nothing is shared between trackers except what lives in the
// page's storage.
type Tracker struct {
	win      host.Window
	builder  *event.Builder
	sender   Sender
	ctaClass string
	limit    int

	// mu serializes handlers the way a page's event loop would.
	mu    sync.Mutex
	state State
}

func New(win host.Window, sender Sender, settings Settings) *Tracker {
	if settings.Logger == nil {
		settings.Logger = log.Default()
	}
	if settings.CTAClass == "" {
		settings.CTAClass = DefaultCTAClass
	}
	if settings.TextLimit <= 0 {
		settings.TextLimit = DefaultTextLimit
	}

	idOpts := []identity.Option{identity.WithLogger(settings.Logger)}
	if settings.SessionTTL > 0 {
		idOpts = append(idOpts, identity.WithTTL(settings.SessionTTL))
	}
	if settings.SlidingTimeout > 0 {
		idOpts = append(idOpts, identity.WithSlidingExpiry(settings.SlidingTimeout))
	}
	idOpts = append(idOpts, settings.IdentityOpts...)

	ids := identity.NewStore(win.CookieStore(), idOpts...)
	path := pathway.NewTracker(win.SessionStore(), settings.Logger)

	return &Tracker{
		win:      win,
		builder:  event.NewBuilder(win, ids, path, settings.Now),
		sender:   sender,
		ctaClass: settings.CTAClass,
		limit:    settings.TextLimit,
		state:    Uninitialized,
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start begins tracking. While the document is loading it defers until the
// document is ready; otherwise it sends the page_view immediately. Later
// calls are no-ops.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.state != Uninitialized {
		t.mu.Unlock()
		return
	}
	t.state = Initializing
	t.mu.Unlock()

	doc := t.win.Document()
	if doc.ReadyState() == host.Loading {
		doc.OnReady(func() { t.activate(ctx) })
		return
	}
	t.activate(ctx)
}

func (t *Tracker) activate(ctx context.Context) {
	t.mu.Lock()
	if t.state != Initializing {
		t.mu.Unlock()
		return
	}
	t.trackPageView(ctx)
	t.state = Active
	t.mu.Unlock()

	t.win.Document().OnClick(func(target host.Element) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.trackClick(ctx, target)
	})
}

func (t *Tracker) trackPageView(ctx context.Context) {
	var extra models.Fields
	extra.Set(models.FieldTitle, t.win.Document().Title())
	t.sender.Send(t.builder.Build(ctx, models.PageView, extra))
}

func (t *Tracker) trackClick(ctx context.Context, target host.Element) {
	el := host.Closest(target, t.isTrackable)
	if el == nil {
		return
	}
	var extra models.Fields
	extra.Set(models.FieldElementTag, el.TagName())
	extra.Set(models.FieldElementID, el.ID())
	extra.Set(models.FieldElementClass, el.ClassName())
	extra.Set(models.FieldElementText, truncate(el.InnerText(), t.limit))
	extra.Set(models.FieldTargetURL, el.Href())
	t.sender.Send(t.builder.Build(ctx, models.Click, extra))
}

func (t *Tracker) isTrackable(el host.Element) bool {
	switch el.TagName() {
	case "A", "BUTTON":
		return true
	}
	return el.HasClass(t.ctaClass)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
