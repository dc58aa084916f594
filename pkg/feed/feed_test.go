package feed

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFavicon(t *testing.T) {
	t.Parallel()

	var unchecked Favicon
	require.False(t, unchecked.Checked())
	require.False(t, unchecked.Found())

	require.True(t, NoFavicon.Checked())
	require.False(t, NoFavicon.Found())

	icon := Favicon("data:image/png;base64,AAAA")
	require.True(t, icon.Checked())
	require.True(t, icon.Found())
}

func TestEntryKey(t *testing.T) {
	t.Parallel()

	link, err := url.Parse("https://example.com/post")
	require.NoError(t, err)

	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	require.Equal(t, "id:urn:1", (&Entry{ID: "urn:1", Link: link}).Key())
	require.Equal(t, "link:https://example.com/post", (&Entry{Link: link, Title: "Post"}).Key())
	require.Equal(t, "title:Post@2024-01-02T03:04:05Z", (&Entry{Title: "Post", Published: published}).Key())
}
