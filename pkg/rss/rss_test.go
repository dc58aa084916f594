package rss

import (
	"bytes"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/stretchr/testify/require"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/schema"
	"github.com/KonishchevDmitry/feedsync/pkg/test/testutil"
	"github.com/KonishchevDmitry/feedsync/pkg/url"
	"github.com/KonishchevDmitry/feedsync/pkg/xmltree"
)

var testFeed = &feed.ParsedFeed{
	Title:     "Feed title",
	Subtitle:  "Feed description",
	Link:      url.MustParse("http://example.com/"),
	Language:  "en-us",
	Generator: "feedsync",
	Updated:   time.Date(2015, 4, 4, 0, 0, 0, 0, time.UTC),
	Entries: []*feed.Entry{{
		ID:        "http://example.com/item1",
		Title:     "Item 1",
		Link:      url.MustParse("http://example.com/item1"),
		Authors:   []feed.Author{{Name: "author1"}, {Name: "author2"}},
		Summary:   "Item 1 description",
		Content:   "<p>Item 1 content</p>",
		Published: time.Date(2015, 4, 4, 7, 0, 13, 0, time.UTC),
		Updated:   time.Date(2015, 4, 4, 7, 0, 13, 0, time.UTC),
	}, {
		ID:    "item2",
		Title: "Item 2",
	}},
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	data, err := Generate(FromParsed(testFeed))
	require.NoError(t, err)

	require.Equal(t, heredoc.Doc(`
		<?xml version="1.0" encoding="UTF-8"?>
		<rss version="2.0">
		    <channel>
		        <title>Feed title</title>
		        <link>http://example.com/</link>
		        <description>Feed description</description>
		        <language>en-us</language>
		        <pubDate>Sat, 04 Apr 2015 00:00:00 GMT</pubDate>
		        <generator>feedsync</generator>
		        <item>
		            <title>Item 1</title>
		            <guid>http://example.com/item1</guid>
		            <link>http://example.com/item1</link>
		            <description>Item 1 description</description>
		            <encoded xmlns="http://purl.org/rss/1.0/modules/content/">&lt;p&gt;Item 1 content&lt;/p&gt;</encoded>
		            <pubDate>Sat, 04 Apr 2015 07:00:13 GMT</pubDate>
		            <creator xmlns="http://purl.org/dc/elements/1.1/">author1</creator>
		            <creator xmlns="http://purl.org/dc/elements/1.1/">author2</creator>
		        </item>
		        <item>
		            <title>Item 2</title>
		            <guid isPermaLink="false">item2</guid>
		        </item>
		    </channel>
		</rss>
	`), string(data))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := testutil.Context(t)

	parse := func(data []byte) *feed.ParsedFeed {
		doc, err := xmltree.Parse(bytes.NewReader(data))
		require.NoError(t, err)

		parsed, err := schema.ParseDocument(ctx, doc)
		require.NoError(t, err)

		return parsed
	}

	data, err := Generate(FromParsed(testFeed))
	require.NoError(t, err)

	parsed := parse(data)
	require.Equal(t, testFeed, parsed)

	regenerated, err := Generate(FromParsed(parsed))
	require.NoError(t, err)
	require.Equal(t, string(data), string(regenerated))
}
