package fetch

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/mmcdole/gofeed"

	"github.com/KonishchevDmitry/feedsync/pkg/feed"
	"github.com/KonishchevDmitry/feedsync/pkg/parse"
	"github.com/KonishchevDmitry/feedsync/pkg/schema"
	urlutil "github.com/KonishchevDmitry/feedsync/pkg/url"
	"github.com/KonishchevDmitry/feedsync/pkg/xmltree"
)

var jsonMediaTypes = map[string]struct{}{
	"application/feed+json": {},
	"application/json":      {},
}

// Feed fetches and parses RSS, Atom or JSON feed. Servers often return feeds with arbitrary content types, so the
// format is determined by the document itself.
func Feed(ctx context.Context, url *url.URL, options ...Option) (*feed.ParsedFeed, error) {
	return fetch(ctx, url, nil, func(body io.Reader, mediaType string) (*feed.ParsedFeed, error) {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		return ParseFeed(ctx, data, mediaType)
	}, options...)
}

func ParseFeed(ctx context.Context, data []byte, mediaType string) (*feed.ParsedFeed, error) {
	if isJSONFeed(data, mediaType) {
		return parseJSONFeed(ctx, data)
	}

	doc, err := xmltree.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return schema.ParseDocument(ctx, doc)
}

func isJSONFeed(data []byte, mediaType string) bool {
	if _, ok := jsonMediaTypes[mediaType]; ok {
		return true
	}

	data = bytes.TrimSpace(data)
	return len(data) != 0 && data[0] == '{'
}

func parseJSONFeed(ctx context.Context, data []byte) (*feed.ParsedFeed, error) {
	jsonFeed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	parsed := &feed.ParsedFeed{
		Title:     parse.TrimText(jsonFeed.Title),
		Subtitle:  jsonFeed.Description,
		Link:      parseLink(ctx, jsonFeed.Link),
		Language:  jsonFeed.Language,
		Generator: jsonFeed.Generator,
		Updated:   getTime(jsonFeed.UpdatedParsed),
	}

	for _, item := range jsonFeed.Items {
		entry := &feed.Entry{
			ID:        item.GUID,
			Title:     parse.TrimText(item.Title),
			Link:      parseLink(ctx, item.Link),
			Summary:   item.Description,
			Content:   item.Content,
			Published: getTime(item.PublishedParsed),
			Updated:   getTime(item.UpdatedParsed),
		}

		if entry.Link == nil && entry.ID != "" {
			entry.Link, _ = urlutil.ParseAbsolute(entry.ID)
		}

		for _, author := range item.Authors {
			if author != nil && author.Name != "" {
				entry.Authors = append(entry.Authors, feed.Author{Name: author.Name})
			}
		}

		parsed.Entries = append(parsed.Entries, entry)
	}

	if len(parsed.Entries) == 0 {
		logging.L(ctx).Warnf("The feed has no entries.")
	}

	return parsed, nil
}

func parseLink(ctx context.Context, link string) *url.URL {
	if link == "" {
		return nil
	}

	url, err := urlutil.ParseAbsolute(link)
	if err != nil {
		logging.L(ctx).Debugf("Ignoring feed link: %s.", err)
		return nil
	}

	return url
}

func getTime(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return value.UTC()
}
