package parse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrimText(t *testing.T) {
	t.Parallel()

	const nbsp = " "
	const softHypen = "­"

	require.Equal(t, "some text with hypened word", TrimText(fmt.Sprintf(
		" \t\nsome%s text with hype%sned word \r\n", nbsp, softHypen,
	)))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", Truncate("short", 35))

	long := strings.Repeat("Новости ", 10)
	truncated := Truncate(long, 35)
	require.Equal(t, string([]rune(long)[:35])+"…", truncated)
	require.True(t, strings.HasSuffix(truncated, "…"))
}
