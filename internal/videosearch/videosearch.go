// Package videosearch discovers review videos and their view counts.
package videosearch

import (
	"context"

	"shoplens/internal/core"
)

// Provider defines the unified interface for video search backends
type Provider interface {
	// Search returns up to config.MaxResults videos matching the query
	Search(ctx context.Context, query string, config Config) ([]core.Video, error)

	// BatchViewCounts returns view counts for the given video ids.
	// Missing or unavailable ids map to 0; the call never fails the
	// surrounding pipeline.
	BatchViewCounts(ctx context.Context, ids []string) map[string]int64

	// GetName returns the name of the search provider
	GetName() string
}

// Config holds configuration for search requests
type Config struct {
	MaxResults int64  // Maximum number of results to return
	Region     string // Region code for result relevance (e.g. "JP")
	Language   string // Language preference (e.g. "ja")
}

// ProviderType represents the type of video search provider
type ProviderType string

const (
	ProviderTypeYouTube ProviderType = "youtube"
	ProviderTypeMock    ProviderType = "mock"
)

// ProviderFactory creates search providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a video search provider of the specified type.
// A YouTube provider without an API key is still created; its Search
// reports ErrNotConfigured and its view counts are all zero.
func (f *ProviderFactory) CreateProvider(ctx context.Context, providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeYouTube:
		return NewYouTubeProvider(ctx, config["api_key"])
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypeYouTube,
		ProviderTypeMock,
	}
}
