package dashboard

import (
	"net/url"
	"strconv"
	"time"
)

// ScrollOffset is the gap kept above a section scrolled into view, in pixels.
const ScrollOffset = 24

// ScrollDuration is the smooth scroll animation length.
const ScrollDuration = 500 * time.Millisecond

// NavPath serves the navigation partial.
const NavPath = "/ui/nav"

// Link is an in-page anchor in the top navigation.
type Link struct {
	Href   string
	Label  string
	Active bool
}

// Target is the element id the link points at, without '#'.
func (l Link) Target() string {
	if len(l.Href) > 0 && l.Href[0] == '#' {
		return l.Href[1:]
	}
	return l.Href
}

// Endpoint is the URL that activates this link.
func (l Link) Endpoint() string {
	return NavPath + "?active=" + url.QueryEscape(l.Href)
}

// Swap is the hx-swap value scrolling the target section to the top.
func (l Link) Swap() string {
	return "outerHTML show:#" + l.Target() + ":top"
}

// Nav is the ordered list of in-page links; at most one is active.
type Nav struct {
	Links []Link
}

// NewNav returns the dashboard navigation with the first link active.
func NewNav() Nav {
	return Nav{Links: []Link{
		{Href: "#resumo", Label: "Resumo", Active: true},
		{Href: "#despesas", Label: "Despesas"},
		{Href: "#metas", Label: "Metas"},
		{Href: "#cadastro", Label: "Cadastrar"},
	}}
}

// Activate marks href as the active link. An unknown href keeps the current
// selection.
func (n Nav) Activate(href string) Nav {
	idx := -1
	for i, l := range n.Links {
		if l.Href == href {
			idx = i
			break
		}
	}
	if idx < 0 {
		return n
	}
	links := make([]Link, len(n.Links))
	for i, l := range n.Links {
		l.Active = i == idx
		links[i] = l
	}
	return Nav{Links: links}
}

// ScrollMargin is ScrollOffset as a CSS length.
func (n Nav) ScrollMargin() string {
	return strconv.Itoa(ScrollOffset) + "px"
}

// ScrollTransition is ScrollDuration as a CSS time.
func (n Nav) ScrollTransition() string {
	return strconv.FormatInt(ScrollDuration.Milliseconds(), 10) + "ms"
}

// Active returns the active link href, or "" when none is.
func (n Nav) Active() string {
	for _, l := range n.Links {
		if l.Active {
			return l.Href
		}
	}
	return ""
}
