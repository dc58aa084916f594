package fetch

import (
	"context"
	"io"
	"net/url"
)

type Blob struct {
	MediaType string
	Data      []byte
}

// Bytes fetches raw response body of any content type.
func Bytes(ctx context.Context, url *url.URL, options ...Option) (*Blob, error) {
	return fetch(ctx, url, nil, func(body io.Reader, mediaType string) (*Blob, error) {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		return &Blob{MediaType: mediaType, Data: data}, nil
	}, options...)
}
