package videosearch

import "errors"

var (
	// ErrNotConfigured is returned when a provider has no API key
	ErrNotConfigured = errors.New("video search is not configured")

	// ErrUnsupportedProvider is returned for unknown provider types
	ErrUnsupportedProvider = errors.New("unsupported video search provider")

	// ErrNoResults is returned when a search yields no videos
	ErrNoResults = errors.New("no videos found")
)
