package schema

import (
	"strings"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/stretchr/testify/require"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/test/testutil"
	"github.com/KonishchevDmitry/feedsync/pkg/url"
	"github.com/KonishchevDmitry/feedsync/pkg/xmltree"
)

func parseFeed(t *testing.T, data string) (*feed.ParsedFeed, error) {
	doc, err := xmltree.Parse(strings.NewReader(data))
	require.NoError(t, err)
	return ParseDocument(testutil.Context(t), doc)
}

func TestRSS2(t *testing.T) {
	t.Parallel()

	parsed, err := parseFeed(t, heredoc.Doc(`
		<?xml version="1.0" encoding="UTF-8"?>
		<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
			<channel>
				<title>Example blog</title>
				<link>https://example.com/</link>
				<description>Notes about everything</description>
				<language>en-us</language>
				<generator>Hugo</generator>
				<lastBuildDate>Sat, 04 Apr 2015 10:20:30 GMT</lastBuildDate>
				<item>
					<title>First post</title>
					<guid isPermaLink="true">https://example.com/posts/1</guid>
					<dc:creator>John Doe</dc:creator>
					<description>Summary</description>
					<content:encoded><![CDATA[<p>Content</p>]]></content:encoded>
					<pubDate>Fri, 03 Apr 2015 08:00:00 +0000</pubDate>
				</item>
				<item>
					<title>Second post</title>
					<link>https://example.com/posts/2</link>
					<guid isPermaLink="false">post-2</guid>
				</item>
			</channel>
		</rss>
	`))
	require.NoError(t, err)

	published := time.Date(2015, 4, 3, 8, 0, 0, 0, time.UTC)

	require.Equal(t, &feed.ParsedFeed{
		Title:     "Example blog",
		Subtitle:  "Notes about everything",
		Link:      url.MustParse("https://example.com/"),
		Language:  "en-us",
		Generator: "Hugo",
		Updated:   time.Date(2015, 4, 4, 10, 20, 30, 0, time.UTC),
		Entries: []*feed.Entry{{
			ID:        "https://example.com/posts/1",
			Title:     "First post",
			Link:      url.MustParse("https://example.com/posts/1"),
			Authors:   []feed.Author{{Name: "John Doe"}},
			Summary:   "Summary",
			Content:   "<p>Content</p>",
			Published: published,
			Updated:   published,
		}, {
			ID:    "post-2",
			Title: "Second post",
			Link:  url.MustParse("https://example.com/posts/2"),
		}},
	}, parsed)
}

func TestRSS1(t *testing.T) {
	t.Parallel()

	parsed, err := parseFeed(t, heredoc.Doc(`
		<?xml version="1.0"?>
		<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/"
		         xmlns:dc="http://purl.org/dc/elements/1.1/">
			<channel rdf:about="https://example.com/">
				<title>RDF channel</title>
				<link>https://example.com/</link>
				<description>Old school</description>
				<dc:date>2021-06-01T00:00:00z</dc:date>
				<items>
					<rdf:Seq><rdf:li rdf:resource="https://example.com/1"/></rdf:Seq>
				</items>
			</channel>
			<item rdf:about="https://example.com/1">
				<title>Item</title>
				<dc:date>2021-06-01T00:00:00Z</dc:date>
			</item>
		</rdf:RDF>
	`))
	require.NoError(t, err)

	date := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, &feed.ParsedFeed{
		Title:    "RDF channel",
		Subtitle: "Old school",
		Link:     url.MustParse("https://example.com/"),
		Updated:  date,
		Entries: []*feed.Entry{{
			ID:      "https://example.com/1",
			Title:   "Item",
			Link:    url.MustParse("https://example.com/1"),
			Updated: date,
		}},
	}, parsed)
}

func TestAtom(t *testing.T) {
	t.Parallel()

	parsed, err := parseFeed(t, heredoc.Doc(`
		<?xml version="1.0" encoding="utf-8"?>
		<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="en">
			<title>Atom feed</title>
			<subtitle>Subtitle</subtitle>
			<link rel="self" href="https://example.com/feed.atom"/>
			<link href="https://example.com/"/>
			<link rel="hub" href="https://hub.example.com/"/>
			<id>urn:uuid:60a76c80-d399-11d9-b93C-0003939e0af6</id>
			<updated>2003-12-13T18:30:02Z</updated>
			<author><name>Feed author</name></author>
			<entry>
				<title>Entry</title>
				<link rel="alternate" href="https://example.com/2003/12/13/atom03"/>
				<link rel="edit" href="https://example.com/edit/1"/>
				<id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
				<published>2003-12-13T08:29:29-04:00</published>
				<updated>2003-12-13T18:30:02Z</updated>
				<author><name>John</name><email>john@example.com</email></author>
				<author><email>anonymous@example.com</email></author>
				<summary>Some text.</summary>
				<content type="html">&lt;p&gt;Some text.&lt;/p&gt;</content>
			</entry>
		</feed>
	`))
	require.NoError(t, err)

	updated := time.Date(2003, 12, 13, 18, 30, 2, 0, time.UTC)

	require.Equal(t, &feed.ParsedFeed{
		Title:    "Atom feed",
		Subtitle: "Subtitle",
		Link:     url.MustParse("https://example.com/"),
		Language: "en",
		Updated:  updated,
		Entries: []*feed.Entry{{
			ID:        "urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a",
			Title:     "Entry",
			Link:      url.MustParse("https://example.com/2003/12/13/atom03"),
			Authors:   []feed.Author{{Name: "John"}},
			Summary:   "Some text.",
			Content:   "<p>Some text.</p>",
			Published: time.Date(2003, 12, 13, 12, 29, 29, 0, time.UTC),
			Updated:   updated,
		}},
	}, parsed)
}

func TestAtomSelfLinkOnly(t *testing.T) {
	t.Parallel()

	parsed, err := parseFeed(t, `
		<feed xmlns="http://www.w3.org/2005/Atom">
			<link href="https://example.com/"/>
			<link rel="self" href="https://example.com/feed.atom"/>
		</feed>
	`)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/", parsed.Link.String())

	parsed, err = parseFeed(t, `
		<feed xmlns="http://www.w3.org/2005/Atom">
			<link rel="self" href="https://example.com/feed.atom"/>
		</feed>
	`)
	require.NoError(t, err)
	require.Nil(t, parsed.Link)
}

func TestRootLanguageFallback(t *testing.T) {
	t.Parallel()

	parsed, err := parseFeed(t, `<rss xml:lang="ru"><channel><title>Новости</title></channel></rss>`)
	require.NoError(t, err)
	require.Equal(t, "ru", parsed.Language)
	require.Empty(t, parsed.Entries)
}

func TestRelativeLinks(t *testing.T) {
	t.Parallel()

	parsed, err := parseFeed(t, `
		<rss><channel>
			<link>/blog</link>
			<item><title>Post</title><link>/blog/post</link><guid>tag:example.com,2024:1</guid></item>
		</channel></rss>
	`)
	require.NoError(t, err)
	require.Nil(t, parsed.Link)
	require.Len(t, parsed.Entries, 1)
	require.Nil(t, parsed.Entries[0].Link)
}

func TestNoRoot(t *testing.T) {
	t.Parallel()

	_, err := parseFeed(t, `<html><body><p>Not a feed</p></body></html>`)
	require.ErrorIs(t, err, ErrNoRoot)
}
