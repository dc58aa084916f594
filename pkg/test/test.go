package test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	urlutil "github.com/KonishchevDmitry/feedsync/pkg/url"
)

type Document struct {
	ContentType string
	Body        string
}

// Website serves static documents and records requested paths.
type Website struct {
	server    *httptest.Server
	documents map[string]Document

	lock     sync.Mutex
	requests []string
}

func NewWebsite(t *testing.T, documents map[string]Document) *Website {
	website := &Website{documents: documents}

	website.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		website.lock.Lock()
		website.requests = append(website.requests, request.URL.Path)
		website.lock.Unlock()

		document, ok := website.documents[request.URL.Path]
		if !ok {
			http.NotFound(writer, request)
			return
		}

		if document.ContentType != "" {
			writer.Header().Set("Content-Type", document.ContentType)
		}
		_, _ = fmt.Fprint(writer, document.Body)
	}))
	t.Cleanup(website.server.Close)

	return website
}

func (w *Website) URL(path string) *url.URL {
	return urlutil.MustParse(w.server.URL + path)
}

func (w *Website) Requests() []string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return append([]string(nil), w.requests...)
}
