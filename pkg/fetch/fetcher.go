package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"github.com/KonishchevDmitry/feedsync/internal/util"
)

const userAgent = "github.com/KonishchevDmitry/feedsync"

var client = http.Client{}

// Fetches the URL and parses the response. Nil allowedMediaTypes permits any content type.
func fetch[T any](
	ctx context.Context, url *url.URL, allowedMediaTypes []string,
	parser func(body io.Reader, mediaType string) (T, error),
	opts ...Option,
) (_ T, retErr error) {
	var zero T
	defer func() {
		if retErr != nil {
			retErr = fmt.Errorf("failed to fetch %s: %w", url, retErr)
		}
	}()

	options := makeOptions(opts)

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	logging.L(ctx).Debugf("Fetching %s...", url)

	startTime := time.Now()
	response, err := httpClientFetch(ctx, url)
	observeDuration(ctx, startTime)
	if err != nil {
		return zero, err
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.L(ctx).Errorf("Failed to close HTTP client body: %s.", err)
		}
	}()

	if statusCode := response.StatusCode; statusCode != http.StatusOK {
		err := fmt.Errorf("the server returned an error: %s", response.Status)
		if statusCode >= 500 && statusCode < 600 || statusCode == http.StatusTooManyRequests {
			err = util.MakeTemporaryError(err)
		}
		return zero, err
	}

	mediaType, err := checkContentType(response.Header.Get("Content-Type"), allowedMediaTypes)
	if err != nil {
		return zero, err
	}

	return parser(bodyReader{body: io.LimitReader(response.Body, maxBodySize)}, mediaType)
}

func httpClientFetch(ctx context.Context, url *url.URL) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, err
	}
	request.Header.Add("User-Agent", userAgent)

	response, err := client.Do(request)
	if err != nil {
		return nil, util.MakeTemporaryError(err)
	}

	return response, nil
}

type bodyReader struct {
	body io.Reader
}

var _ io.Reader = bodyReader{}

func (r bodyReader) Read(buf []byte) (int, error) {
	n, err := r.body.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		err = util.MakeTemporaryError(err)
	}
	return n, err
}

func checkContentType(contentType string, allowedMediaTypes []string) (string, error) {
	if contentType == "" && allowedMediaTypes == nil {
		return "", nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		if allowedMediaTypes == nil {
			return "", nil
		}
		return "", fmt.Errorf("got an invalid Content-Type: %w", err)
	}

	if allowedMediaTypes != nil && !slices.Contains(allowedMediaTypes, mediaType) {
		return "", fmt.Errorf("got an invalid Content-Type (%s)", mediaType)
	}

	return mediaType, nil
}
