// Package host declares the capabilities the tracker needs from the page it
// is embedded in. Implementations adapt a real or simulated browser.
package host

import "github.com/vincentbai/browsetrace-tracker/internal/storage"

type ReadyState string

const (
	Loading     ReadyState = "loading"
	Interactive ReadyState = "interactive"
	Complete    ReadyState = "complete"
)

type Location interface {
	Href() string
	Pathname() string
}

// Element is a node in the document tree. Parent returns nil at the root.
type Element interface {
	TagName() string
	ID() string
	ClassName() string
	HasClass(name string) bool
	InnerText() string
	// Href is the absolute link target, or "" when the element has none.
	Href() string
	Parent() Element
}

type Document interface {
	ReadyState() ReadyState
	// OnReady registers fn to run once the document stops loading.
	OnReady(fn func())
	// OnClick registers a capturing click listener on the whole document.
	OnClick(fn func(target Element))
	Title() string
	Referrer() string
}

type Navigator interface {
	UserAgent() string
	Language() string
}

type Screen interface {
	Width() int
	Height() int
}

// Window bundles everything one page exposes to the tracker.
type Window interface {
	Location() Location
	Document() Document
	Navigator() Navigator
	Screen() Screen
	// CookieStore persists beyond a page load; SessionStore lives as long as the tab.
	CookieStore() storage.Store
	SessionStore() storage.Store
}

// Closest walks from el up its ancestors and returns the first element
// accepted by match, or nil.
func Closest(el Element, match func(Element) bool) Element {
	for ; el != nil; el = el.Parent() {
		if match(el) {
			return el
		}
	}
	return nil
}
