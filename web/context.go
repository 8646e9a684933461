package web

import (
	"github.com/artpar/pagekit/core/nav"
	"github.com/artpar/pagekit/ports"
)

// Per-request collaborator implementations. The detail controller publishes
// navigation through these; the page handler reads them back out when
// rendering or redirecting.

// crumbBar records the published breadcrumb trail for template rendering.
type crumbBar struct {
	trail []nav.Entry
}

func (c *crumbBar) Set(trail []nav.Entry) {
	c.trail = trail
}

func (c *crumbBar) ReplaceLast(e nav.Entry) {
	if len(c.trail) == 0 {
		c.trail = []nav.Entry{e}
		return
	}
	c.trail[len(c.trail)-1] = e
}

var _ ports.BreadcrumbBar = (*crumbBar)(nil)

// flashMessages models the global message collaborator: pending flash
// messages are dropped once the controller clears them on activation.
type flashMessages struct {
	cleared bool
}

func (m *flashMessages) Clear() {
	m.cleared = true
}

var _ ports.Messages = (*flashMessages)(nil)

// redirector records the path the controller navigates to; the handler
// turns it into an HTTP redirect.
type redirector struct {
	path string
	back bool
}

func (n *redirector) Path(path string) {
	n.path = path
}

func (n *redirector) Back() {
	n.back = true
}

var _ ports.Navigator = (*redirector)(nil)

// parentValue adapts a loaded parent item for the controller and the
// breadcrumb builder.
type parentValue struct {
	item  ports.Item
	label string
}

func (p parentValue) DisplayName() string { return p.item.DisplayName(p.label) }
func (p parentValue) Key() string         { return p.item.ID() }
