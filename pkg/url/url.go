package url

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type URL = url.URL

func MustParse(value string) *url.URL {
	url, err := url.Parse(value)
	if err != nil {
		panic(fmt.Sprintf("Invalid URL: %s", value))
	}
	return url
}

// ParseAbsolute parses a link which must carry both a scheme and a host.
func ParseAbsolute(value string) (*url.URL, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("got an empty URL")
	}

	url, err := url.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("got an invalid URL: %q", value)
	} else if url.Scheme == "" || url.Host == "" {
		return nil, fmt.Errorf("got a non-absolute URL: %q", value)
	}

	return url, nil
}

// Resolve resolves a possibly relative link against the URL of the page it was found on.
func Resolve(base *url.URL, link string) (*url.URL, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, errors.New("got an empty link")
	}

	url, err := base.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("got an invalid link: %q", link)
	}

	return url, nil
}

func Origin(url *url.URL) *url.URL {
	return &URL{Scheme: url.Scheme, Host: url.Host, Path: "/"}
}
