package ytvideo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoId(t *testing.T) {
	cases := []struct {
		name     string
		url      string
		expected string
	}{
		{"short link", "https://youtu.be/abc123", "abc123"},
		{"watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed link", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch link with extra params", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"id stops at ampersand", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			videoId, err := ExtractVideoId(tc.url)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, videoId)
		})
	}
}

func TestExtractVideoIdInvalid(t *testing.T) {
	for _, url := range []string{
		"",
		"not a url",
		"https://vimeo.com/123456",
		"https://youtube.com/playlist?list=PL123",
	} {
		_, err := ExtractVideoId(url)
		assert.ErrorIs(t, err, ErrInvalidURL, "url %q must be rejected", url)
	}
}
