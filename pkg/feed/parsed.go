package feed

import (
	"net/url"
	"time"
)

// ParsedFeed is a format-independent representation of a fetched RSS 1.0, RSS 2.0, Atom 0.3/1.0 or JSON feed.
type ParsedFeed struct {
	Title     string
	Subtitle  string
	Link      *url.URL
	Language  string
	Generator string
	Updated   time.Time
	Entries   []*Entry
}

type Entry struct {
	ID        string
	Title     string
	Link      *url.URL
	Authors   []Author
	Summary   string
	Content   string
	Published time.Time
	Updated   time.Time
}

type Author struct {
	Name string
}

// Key returns a value identifying the entry within its feed.
func (e *Entry) Key() string {
	switch {
	case e.ID != "":
		return "id:" + e.ID
	case e.Link != nil:
		return "link:" + e.Link.String()
	default:
		return "title:" + e.Title + "@" + e.Published.Format(time.RFC3339)
	}
}
