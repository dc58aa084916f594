package schema

import (
	"strings"

	"github.com/KonishchevDmitry/feedsync/pkg/xmltree"
)

// Prefix is a short name a namespace URI is canonicalized to.
type Prefix struct {
	Name    string
	Ignored bool
	Unknown bool
}

// Key returns a schema lookup key for a local name in the namespace.
func (p Prefix) Key(local string) string {
	if p.Name == "" {
		return local
	}
	return p.Name + ":" + local
}

var namespaces = map[string]string{
	"":                                            "",
	"http://webns.net/mvcb/":                      "admin",
	"http://backend.userland.com/rss":             "",
	"http://blogs.law.harvard.edu/tech/rss":       "",
	"http://www.w3.org/2005/Atom":                 "atom",
	"http://purl.org/atom/ns#":                    "atom03",
	"http://purl.org/rss/1.0/modules/content/":    "content",
	"http://purl.org/dc/elements/1.1/":            "dc",
	"http://purl.org/dc/terms/":                   "dcterms",
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#": "rdf",
	"http://purl.org/rss/1.0/":                    "rss1",
	"http://my.netscape.com/rdf/simple/0.9/":      "rss1",
	"http://wellformedweb.org/CommentAPI/":        "wfw",
	"http://purl.org/rss/1.0/modules/wiki/":       "wiki",
	xmltree.XMLNamespace:                          "xml",
	"http://search.yahoo.com/mrss/":               "media",
	"http://search.yahoo.com/mrss":                "media",
}

var ignoredNamespaces = map[string]struct{}{
	xmltree.XMLNSNamespace:                         {},
	"http://purl.org/rss/1.0/modules/slash/":       {},
	"http://purl.org/rss/1.0/modules/syndication/": {},
	"http://www.livejournal.org/rss/lj/1.0/":       {},
	"http://rssnamespace.org/feedburner/ext/1.0":   {},
	"https://www.livejournal.com":                  {},
	"com-wordpress:feed-additions:1":               {},
}

const userlandNamespacePrefix = "http://backend.userland.com"

// ResolveNamespace maps a namespace URI to its canonical prefix. Namespaces we don't know get a bracketed URI as a
// prefix, so their elements never match any schema key.
func ResolveNamespace(uri string) Prefix {
	if name, ok := namespaces[uri]; ok {
		return Prefix{Name: name}
	}

	if _, ok := ignoredNamespaces[uri]; ok {
		return Prefix{Ignored: true}
	}

	if len(uri) >= len(userlandNamespacePrefix) && strings.EqualFold(uri[:len(userlandNamespacePrefix)], userlandNamespacePrefix) {
		return Prefix{}
	}

	return Prefix{Name: "[" + uri + "]", Unknown: true}
}
