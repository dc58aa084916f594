package fetch_test

import (
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/stretchr/testify/require"

	"github.com/KonishchevDmitry/feedsync/pkg/fetch"
	"github.com/KonishchevDmitry/feedsync/pkg/test"
	"github.com/KonishchevDmitry/feedsync/pkg/test/testutil"
)

var dialects = map[string]test.Document{
	"/rss091.xml": {ContentType: "text/xml", Body: heredoc.Doc(`
			<?xml version="1.0" encoding="ISO-8859-1"?>
			<rss version="0.91">
				<channel>
					<title>Legacy news</title>
					<link>https://legacy.example.com/</link>
					<description>News from the nineties</description>
					<language>en</language>
					<item>
						<title>Caf` + "\xe9" + ` opened</title>
						<link>https://legacy.example.com/cafe</link>
						<description>A new caf&#233; has been opened.</description>
					</item>
				</channel>
			</rss>
		`)},

	"/rss20.xml": {ContentType: "application/rss+xml", Body: heredoc.Doc(`
			<?xml version="1.0" encoding="UTF-8"?>
			<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
				<channel>
					<title>Modern RSS</title>
					<link>https://rss.example.com/</link>
					<lastBuildDate>Tue, 10 Jun 2003 04:00:00 EST</lastBuildDate>
					<item>
						<title>First</title>
						<guid>https://rss.example.com/1</guid>
						<dc:creator>Jane</dc:creator>
						<pubDate>Tue, 10 Jun 2003 04:00:00 GMT</pubDate>
					</item>
				</channel>
			</rss>
		`)},

	"/rss10.rdf": {ContentType: "application/rdf+xml", Body: heredoc.Doc(`
			<?xml version="1.0"?>
			<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/"
			         xmlns:dc="http://purl.org/dc/elements/1.1/">
				<channel rdf:about="https://rdf.example.com/">
					<title>RDF site</title>
					<link>https://rdf.example.com/</link>
					<dc:date>2020-02-03T04:05:06+03:00</dc:date>
				</channel>
				<item rdf:about="https://rdf.example.com/1">
					<title>First</title>
					<link>https://rdf.example.com/1</link>
					<dc:creator>Jane</dc:creator>
					<dc:date>2020-02-03T04:05:06+03:00</dc:date>
				</item>
				<item rdf:about="https://rdf.example.com/2">
					<title>Second</title>
					<link>https://rdf.example.com/2</link>
				</item>
			</rdf:RDF>
		`)},

	"/atom03.xml": {ContentType: "application/atom+xml", Body: heredoc.Doc(`
			<?xml version="1.0" encoding="utf-8"?>
			<feed version="0.3" xmlns="http://purl.org/atom/ns#">
				<title>Old Atom</title>
				<tagline>Still alive</tagline>
				<link rel="alternate" type="text/html" href="https://atom03.example.com/"/>
				<modified>2005-07-31T12:29:29Z</modified>
				<entry>
					<title>Atom 0.3 entry</title>
					<link rel="alternate" type="text/html" href="https://atom03.example.com/2005/07/31"/>
					<id>tag:atom03.example.com,2005:1</id>
					<issued>2005-07-31T12:29:29Z</issued>
					<author><name>Mark</name></author>
				</entry>
			</feed>
		`)},

	"/atom10.xml": {ContentType: "application/atom+xml", Body: heredoc.Doc(`
			<?xml version="1.0" encoding="utf-8"?>
			<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="de">
				<title type="text">Modern Atom</title>
				<link rel="self" href="https://atom.example.com/feed.xml"/>
				<link href="https://atom.example.com/"/>
				<id>urn:uuid:60a76c80-d399-11d9-b93C-0003939e0af6</id>
				<updated>2003-12-13T18:30:02Z</updated>
				<entry>
					<title>Atom-Powered Robots Run Amok</title>
					<link rel="self" href="https://atom.example.com/2003/12/13/atom03.xml"/>
					<link href="https://atom.example.com/2003/12/13/atom03"/>
					<id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
					<updated>2003-12-13T18:30:02Z</updated>
					<summary>Some text.</summary>
					<content type="html">&lt;p&gt;Some &lt;b&gt;HTML&lt;/b&gt;.&lt;/p&gt;</content>
				</entry>
			</feed>
		`)},

	"/feed.json": {ContentType: "application/feed+json", Body: heredoc.Doc(`
			{
				"version": "https://jsonfeed.org/version/1.1",
				"title": "JSON feed",
				"home_page_url": "https://json.example.com/",
				"items": [
					{"id": "1", "title": "JSON entry", "url": "https://json.example.com/1", "content_text": "Text"}
				]
			}
		`)},

	"/empty.xml": {ContentType: "application/rss+xml", Body: heredoc.Doc(`
			<rss version="2.0"><channel><title>Nothing here yet</title></channel></rss>
		`)},
}

func TestDialects(t *testing.T) {
	t.Parallel()

	website := test.NewWebsite(t, dialects)

	legacy := test.Feed(t, website.URL("/rss091.xml"))
	require.Equal(t, "Legacy news", legacy.Title)
	require.Equal(t, "en", legacy.Language)
	require.Equal(t, "https://legacy.example.com/", legacy.Link.String())
	require.Equal(t, "Café opened", legacy.Entries[0].Title)
	require.Equal(t, "A new café has been opened.", legacy.Entries[0].Summary)

	rss := test.Feed(t, website.URL("/rss20.xml"))
	require.Equal(t, time.Date(2003, 6, 10, 9, 0, 0, 0, time.UTC), rss.Updated)
	require.Equal(t, "https://rss.example.com/1", rss.Entries[0].Link.String())
	require.Equal(t, time.Date(2003, 6, 10, 4, 0, 0, 0, time.UTC), rss.Entries[0].Published)

	rdf := test.Feed(t, website.URL("/rss10.rdf"))
	require.Equal(t, "RDF site", rdf.Title)
	require.Equal(t, time.Date(2020, 2, 3, 1, 5, 6, 0, time.UTC), rdf.Updated)
	require.Len(t, rdf.Entries, 2)
	require.Equal(t, "https://rdf.example.com/1", rdf.Entries[0].ID)
	require.Equal(t, "Jane", rdf.Entries[0].Authors[0].Name)
	require.Equal(t, "https://rdf.example.com/2", rdf.Entries[1].Link.String())

	atom03 := test.Feed(t, website.URL("/atom03.xml"))
	require.Equal(t, "Still alive", atom03.Subtitle)
	require.Equal(t, "https://atom03.example.com/", atom03.Link.String())
	require.Equal(t, "https://atom03.example.com/2005/07/31", atom03.Entries[0].Link.String())
	require.Equal(t, time.Date(2005, 7, 31, 12, 29, 29, 0, time.UTC), atom03.Entries[0].Published)
	require.Equal(t, "Mark", atom03.Entries[0].Authors[0].Name)

	atom := test.Feed(t, website.URL("/atom10.xml"))
	require.Equal(t, "de", atom.Language)
	require.Equal(t, "https://atom.example.com/", atom.Link.String())
	require.Equal(t, "https://atom.example.com/2003/12/13/atom03", atom.Entries[0].Link.String())
	require.Equal(t, "<p>Some <b>HTML</b>.</p>", atom.Entries[0].Content)

	json := test.Feed(t, website.URL("/feed.json"))
	require.Equal(t, "https://json.example.com/", json.Link.String())
	require.Equal(t, "JSON entry", json.Entries[0].Title)

	empty := test.Feed(t, website.URL("/empty.xml"), test.MayBeEmpty())
	require.Empty(t, empty.Entries)
}

func TestDialectsParsedIdentically(t *testing.T) {
	t.Parallel()

	ctx := testutil.Context(t)

	for path, document := range dialects {
		first, err := fetch.ParseFeed(ctx, []byte(document.Body), document.ContentType)
		require.NoError(t, err, path)

		second, err := fetch.ParseFeed(ctx, []byte(document.Body), document.ContentType)
		require.NoError(t, err, path)

		require.Equal(t, first, second, path)
	}
}
