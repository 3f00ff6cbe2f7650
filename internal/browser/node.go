package browser

import (
	"strings"

	"github.com/vincentbai/browsetrace-tracker/internal/host"
)

// Node is an element in a simulated document.
type Node struct {
	Tag      string   `yaml:"tag"`
	IDAttr   string   `yaml:"id"`
	Classes  []string `yaml:"class"`
	Text     string   `yaml:"text"`
	HrefAttr string   `yaml:"href"`
	Children []*Node  `yaml:"children"`

	page   *Page
	parent *Node
}

var _ host.Element = (*Node)(nil)

func (n *Node) attach(p *Page, parent *Node) {
	n.page = p
	n.parent = parent
	for _, child := range n.Children {
		child.attach(p, n)
	}
}

func (n *Node) find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, child := range n.Children {
		if found := child.find(match); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) TagName() string { return strings.ToUpper(n.Tag) }

func (n *Node) ID() string { return n.IDAttr }

func (n *Node) ClassName() string { return strings.Join(n.Classes, " ") }

func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// InnerText joins the node's own text and its descendants' text with spaces.
func (n *Node) InnerText() string {
	parts := make([]string, 0, len(n.Children)+1)
	if t := strings.TrimSpace(n.Text); t != "" {
		parts = append(parts, t)
	}
	for _, child := range n.Children {
		if t := child.InnerText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Href resolves the href attribute of links against the page URL. Only
// anchors and areas carry a link target.
func (n *Node) Href() string {
	switch n.TagName() {
	case "A", "AREA":
	default:
		return ""
	}
	if n.HrefAttr == "" || n.page == nil {
		return n.HrefAttr
	}
	return n.page.resolve(n.HrefAttr)
}

func (n *Node) Parent() host.Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}
