package schema

import (
	"strings"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/feedsync/pkg/parse"
	"github.com/KonishchevDmitry/feedsync/pkg/url"
	"github.com/KonishchevDmitry/feedsync/pkg/xmltree"
)

type handler func(m *mapper, node *xmltree.Node) (any, bool)

// Populated in init() since the handlers recursively map nodes through the table itself.
var handlers [kindCount]handler

func init() {
	handlers = [kindCount]handler{
		Text:              (*mapper).text,
		HTML:              (*mapper).text,
		Lang:              (*mapper).text,
		ID:                (*mapper).text,
		URL:               (*mapper).url,
		Date:              (*mapper).date,
		Author:            (*mapper).author,
		Entry:             (*mapper).entry,
		Feed:              (*mapper).feed,
		AtomLinkAlternate: (*mapper).atomLinkAlternate,
	}
}

func (m *mapper) text(node *xmltree.Node) (any, bool) {
	if node.HasElements() {
		logging.L(m.ctx).Debugf("%s has child elements. Using its text content.", node)
	}
	return strings.TrimSpace(node.Text()), true
}

func (m *mapper) url(node *xmltree.Node) (any, bool) {
	value, err := url.ParseAbsolute(node.Text())
	if err != nil {
		logging.L(m.ctx).Debugf("Ignoring %s: %s.", node, err)
		return nil, false
	}
	return value, true
}

func (m *mapper) date(node *xmltree.Node) (any, bool) {
	value, err := parse.Date(node.Text())
	if err != nil {
		logging.L(m.ctx).Debugf("Ignoring %s: %s.", node, err)
		return nil, false
	}
	return value, true
}

func (m *mapper) author(node *xmltree.Node) (any, bool) {
	if node.HasElements() {
		return m.mapNode(node, AuthorSchema), true
	}
	return m.text(node)
}

func (m *mapper) entry(node *xmltree.Node) (any, bool) {
	entry := m.mapNode(node, EntrySchema)

	// Permalink GUIDs are often the only link of RSS items
	if _, ok := entry["link"]; !ok {
		if id, ok := entry["id"].(string); ok {
			if link, err := url.ParseAbsolute(id); err == nil {
				entry["link"] = link
			}
		}
	}

	return entry, true
}

func (m *mapper) feed(node *xmltree.Node) (any, bool) {
	return m.mapNode(node, FeedSchema), true
}

var alternateRelations = map[string]struct{}{
	"alternate": {},
	"http://www.iana.org/assignments/relation/alternate": {},
}

func (m *mapper) atomLinkAlternate(node *xmltree.Node) (any, bool) {
	rel, _ := node.Attr("", "rel")
	if rel = strings.TrimSpace(rel); rel == "" {
		rel = "alternate"
	}

	if _, ok := alternateRelations[rel]; !ok {
		return nil, false
	}

	href, _ := node.Attr("", "href")
	value, err := url.ParseAbsolute(href)
	if err != nil {
		logging.L(m.ctx).Debugf("Ignoring %s: %s.", node, err)
		return nil, false
	}

	return value, true
}
