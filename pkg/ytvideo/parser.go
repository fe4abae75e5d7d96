package ytvideo

import (
	"errors"
	"regexp"
)

var ErrInvalidURL = errors.New("invalid youtube url")

// Supported URL shapes. The second pattern catches watch URLs where v is not
// the first query parameter.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
}

// ExtractVideoId parses a youtube video id out of any supported URL shape.
func ExtractVideoId(videoURL string) (string, error) {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(videoURL)
		if len(match) > 1 && match[1] != "" {
			return match[1], nil
		}
	}

	return "", ErrInvalidURL
}
