package schema

var FeedSchema = MustSchema("feed",
	Scalar("title", Text, "title", "rss1:title", "atom03:title", "atom:title"),
	Scalar("subtitle", Text, "description", "dc:description", "rss1:description", "atom03:tagline", "atom:subtitle"),
	Scalar("link", URL, "link", "rss1:link"),
	Scalar("link", AtomLinkAlternate, "atom:link", "atom03:link"),
	List("items", Entry, "item", "rss1:item", "atom:entry", "atom03:entry"),
	Scalar("generator", Text, "generator", "rss1:generator", "atom03:generator", "atom:generator"),
	Scalar("updated", Date,
		"pubDate", "rss1:pubDate", "lastBuildDate", "atom03:modified", "dc:date", "dcterms:modified", "atom:updated"),
	Scalar("language", Lang, "language", "rss1:language", "xml:lang"),
	MergeInto(Feed, "rss1:channel"),
	Ignored(
		"atom:id", "atom03:id", "atom:author", "atom03:author", "category", "atom:category", "rss1:items",
		"rdf:about", "atom:icon", "atom:logo", "atom:rights", "image", "rss1:image", "copyright", "ttl", "docs",
	),
)

var EntrySchema = MustSchema("entry",
	Scalar("title", Text, "title", "rss1:title", "atom03:title", "atom:title"),
	Scalar("link", URL, "link", "rss1:link"),
	Scalar("link", AtomLinkAlternate, "atom:link", "atom03:link"),
	Scalar("id", ID, "guid", "rss1:guid", "rdf:about", "atom03:id", "atom:id"),
	List("authors", Author, "author", "rss1:author", "dc:creator", "dc:author", "atom03:author", "atom:author"),
	Scalar("summary", Text, "description", "rss1:description", "dc:description", "atom03:summary", "atom:summary"),
	Scalar("content", HTML, "content:encoded", "atom03:content", "atom:content"),
	Scalar("published", Date, "pubDate", "rss1:pubDate", "atom03:issued", "dcterms:issued", "atom:published"),
	Scalar("updated", Date, "pubDate", "rss1:pubDate", "atom03:modified", "dc:date", "dcterms:modified", "atom:updated"),
	Ignored(
		"atom:category", "atom03:category", "category", "rss1:category", "comments", "wfw:commentRss",
		"rss1:comments", "dc:language", "dc:format", "xml:lang", "dc:subject", "enclosure", "dc:identifier",
	),
)

var AuthorSchema = MustSchema("author",
	Scalar("name", Text, "name", "atom:name", "atom03:name"),
	Ignored("atom:uri", "atom:email"),
)
