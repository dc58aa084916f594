package schema

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/xmltree"
)

var ErrNoRoot = errors.New("the document is not a feed: no RDF, channel or feed element found")

var rootNames = map[string]struct{}{
	"RDF":     {},
	"channel": {},
	"feed":    {},
}

// FindRoot returns the first RDF, channel or feed element of any namespace in document order.
func FindRoot(doc *xmltree.Document) (*xmltree.Node, bool) {
	return doc.Root.Find(func(node *xmltree.Node) bool {
		_, ok := rootNames[node.Name.Local]
		return ok
	})
}

func ParseDocument(ctx context.Context, doc *xmltree.Document) (*feed.ParsedFeed, error) {
	root, ok := FindRoot(doc)
	if !ok {
		return nil, ErrNoRoot
	}

	parsed := decodeFeed(ctx, Map(ctx, root, FeedSchema))

	if parsed.Language == "" {
		if lang, ok := doc.Root.Attr(xmltree.XMLNamespace, "lang"); ok {
			parsed.Language = strings.TrimSpace(lang)
		}
	}

	if len(parsed.Entries) == 0 {
		logging.L(ctx).Warnf("The feed has no entries.")
	}

	return parsed, nil
}

func decodeFeed(ctx context.Context, bag Bag) *feed.ParsedFeed {
	parsed := &feed.ParsedFeed{
		Title:     getString(bag, "title"),
		Subtitle:  getString(bag, "subtitle"),
		Link:      getURL(bag, "link"),
		Language:  getString(bag, "language"),
		Generator: getString(bag, "generator"),
		Updated:   getTime(bag, "updated"),
	}

	for _, item := range getList(bag, "items") {
		if item, ok := item.(Bag); ok {
			parsed.Entries = append(parsed.Entries, decodeEntry(ctx, item))
		}
	}

	return parsed
}

func decodeEntry(ctx context.Context, bag Bag) *feed.Entry {
	entry := &feed.Entry{
		ID:        getString(bag, "id"),
		Title:     getString(bag, "title"),
		Link:      getURL(bag, "link"),
		Summary:   getString(bag, "summary"),
		Content:   getString(bag, "content"),
		Published: getTime(bag, "published"),
		Updated:   getTime(bag, "updated"),
	}

	for _, author := range getList(bag, "authors") {
		var name string

		switch author := author.(type) {
		case string:
			name = author
		case Bag:
			name = getString(author, "name")
		}

		if name == "" {
			logging.L(ctx).Debugf("Skipping an unnamed author of %q entry.", entry.Title)
			continue
		}

		entry.Authors = append(entry.Authors, feed.Author{Name: name})
	}

	return entry
}

func getString(bag Bag, name string) string {
	value, _ := bag[name].(string)
	return value
}

func getURL(bag Bag, name string) *url.URL {
	value, _ := bag[name].(*url.URL)
	return value
}

func getTime(bag Bag, name string) time.Time {
	value, _ := bag[name].(time.Time)
	return value
}

func getList(bag Bag, name string) []any {
	value, _ := bag[name].([]any)
	return value
}
