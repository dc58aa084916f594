package rss

import (
	"fmt"
	"time"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
)

type Feed struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	Language    string  `xml:"language,omitempty"`
	Date        Date    `xml:"pubDate"`
	Generator   string  `xml:"generator,omitempty"`
	Items       []*Item `xml:"item"`
}

type Item struct {
	Title       string   `xml:"title,omitempty"`
	GUID        GUID     `xml:"guid"`
	Link        string   `xml:"link,omitempty"`
	Description string   `xml:"description,omitempty"`
	Content     string   `xml:"http://purl.org/rss/1.0/modules/content/ encoded,omitempty"`
	Date        Date     `xml:"pubDate"`
	Authors     []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
}

type GUID struct {
	ID          string `xml:",chardata"`
	IsPermaLink *bool  `xml:"isPermaLink,attr,omitempty"`
}

func MakeGUID(id string, isPermaLink bool) GUID {
	guid := GUID{ID: id}
	if !isPermaLink {
		guid.IsPermaLink = &isPermaLink
	}
	return guid
}

type Date struct {
	time.Time
}

// FromParsed converts a parsed feed of any format to RSS 2.0.
func FromParsed(parsed *feed.ParsedFeed) *Feed {
	rss := &Feed{
		Title:       parsed.Title,
		Description: parsed.Subtitle,
		Language:    parsed.Language,
		Date:        Date{Time: parsed.Updated},
		Generator:   parsed.Generator,
	}
	if parsed.Link != nil {
		rss.Link = parsed.Link.String()
	}

	for _, entry := range parsed.Entries {
		item := &Item{
			Title:       entry.Title,
			Description: entry.Summary,
			Content:     entry.Content,
			Date:        Date{Time: entry.Published},
		}

		if item.Date.IsZero() {
			item.Date.Time = entry.Updated
		}

		if entry.Link != nil {
			item.Link = entry.Link.String()
		}

		if entry.ID != "" {
			item.GUID = MakeGUID(entry.ID, entry.ID == item.Link)
		}

		for _, author := range entry.Authors {
			item.Authors = append(item.Authors, author.Name)
		}

		rss.Items = append(rss.Items, item)
	}

	return rss
}

func (f *Feed) String() string {
	if f == nil {
		return fmt.Sprintf("%#v", f)
	}

	xml, err := Generate(f)
	if err == nil {
		return string(xml)
	}

	return fmt.Sprintf("XML generation error: %s. Go representation: %#v", err, f)
}
