// Package browser is an in-memory browser used to host the tracker outside a
// real page: a shared cookie jar, tabs with their own session storage, and
// pages with an element tree that can be clicked.
package browser

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/vincentbai/browsetrace-tracker/internal/host"
	"github.com/vincentbai/browsetrace-tracker/internal/storage"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) browsetrace-tracker"
	DefaultLanguage  = "en-US"
)

type Browser struct {
	cookies   storage.Store
	UserAgent string
	Language  string
	Width     int
	Height    int
}

// New returns a browser whose cookie jar is cookies.
func New(cookies storage.Store) *Browser {
	return &Browser{
		cookies:   cookies,
		UserAgent: DefaultUserAgent,
		Language:  DefaultLanguage,
		Width:     1920,
		Height:    1080,
	}
}

// NewTab opens a tab with fresh in-memory session storage.
func (b *Browser) NewTab() *Tab {
	return b.NewTabWithStore(storage.NewMemory())
}

// NewTabWithStore opens a tab whose session storage is session.
func (b *Browser) NewTabWithStore(session storage.Store) *Tab {
	return &Tab{browser: b, session: session}
}

type Tab struct {
	browser *Browser
	session storage.Store
}

// Open loads rawURL into the tab. When loading is true the page stays in the
// loading state until FinishLoading is called.
func (t *Tab) Open(rawURL, referrer, title string, root *Node, loading bool) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", rawURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("page url %q must be absolute", rawURL)
	}
	if root == nil {
		root = &Node{Tag: "body"}
	}
	p := &Page{
		tab:      t,
		url:      u,
		title:    title,
		referrer: referrer,
		root:     root,
		state:    host.Interactive,
	}
	if loading {
		p.state = host.Loading
	}
	root.attach(p, nil)
	return p, nil
}

// Close ends the tab's session scope, discarding its session storage.
func (t *Tab) Close() {
	if m, ok := t.session.(*storage.Memory); ok {
		m.Clear()
	}
}

// Page is one loaded document. It implements host.Window and host.Document.
type Page struct {
	tab      *Tab
	url      *url.URL
	title    string
	referrer string
	root     *Node

	mu       sync.Mutex
	state    host.ReadyState
	onReady  []func()
	onClicks []func(host.Element)
}

var (
	_ host.Window   = (*Page)(nil)
	_ host.Document = (*Page)(nil)
)

func (p *Page) Location() host.Location   { return location{u: p.url} }
func (p *Page) Document() host.Document   { return p }
func (p *Page) Navigator() host.Navigator { return navigator{b: p.tab.browser} }
func (p *Page) Screen() host.Screen       { return screen{b: p.tab.browser} }

func (p *Page) CookieStore() storage.Store  { return p.tab.browser.cookies }
func (p *Page) SessionStore() storage.Store { return p.tab.session }

func (p *Page) Title() string    { return p.title }
func (p *Page) Referrer() string { return p.referrer }

func (p *Page) ReadyState() host.ReadyState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Page) OnReady(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReady = append(p.onReady, fn)
}

func (p *Page) OnClick(fn func(target host.Element)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClicks = append(p.onClicks, fn)
}

// FinishLoading moves a loading page to interactive and runs the ready
// callbacks once. It is a no-op for pages that are already interactive.
func (p *Page) FinishLoading() {
	p.mu.Lock()
	if p.state != host.Loading {
		p.mu.Unlock()
		return
	}
	p.state = host.Interactive
	callbacks := p.onReady
	p.onReady = nil
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Click delivers a click on target to every registered listener.
func (p *Page) Click(target *Node) {
	if target == nil {
		return
	}
	p.mu.Lock()
	listeners := make([]func(host.Element), len(p.onClicks))
	copy(listeners, p.onClicks)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(target)
	}
}

// ElementByID finds the first element with the given id, depth-first.
func (p *Page) ElementByID(id string) *Node {
	return p.root.find(func(n *Node) bool { return n.IDAttr == id })
}

func (p *Page) Root() *Node { return p.root }

func (p *Page) resolve(ref string) string {
	u, err := p.url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

type location struct{ u *url.URL }

func (l location) Href() string { return l.u.String() }

func (l location) Pathname() string {
	if l.u.Path == "" {
		return "/"
	}
	return l.u.EscapedPath()
}

type navigator struct{ b *Browser }

func (n navigator) UserAgent() string { return n.b.UserAgent }
func (n navigator) Language() string  { return n.b.Language }

type screen struct{ b *Browser }

func (s screen) Width() int  { return s.b.Width }
func (s screen) Height() int { return s.b.Height }
