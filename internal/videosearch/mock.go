package videosearch

import (
	"context"

	"shoplens/internal/core"
)

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name       string
	results    []core.Video
	viewCounts map[string]int64
	searchErr  error
}

// NewMockProvider creates a new mock video search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		results: []core.Video{
			{
				ID:           "mock-video-1",
				Title:        "Top 5 Laptops Reviewed",
				Description:  "A hands-on comparison of this year's laptops.",
				ChannelTitle: "Tech Reviews Daily",
				URL:          "https://www.youtube.com/watch?v=mock-video-1",
			},
			{
				ID:           "mock-video-2",
				Title:        "Budget Laptop Buying Guide",
				Description:  "What to look for under $1000.",
				ChannelTitle: "Frugal Computing",
				URL:          "https://www.youtube.com/watch?v=mock-video-2",
			},
			{
				ID:           "mock-video-3",
				Title:        "Long-term Laptop Review",
				Description:  "Six months later, was it worth it?",
				ChannelTitle: "Tech Reviews Daily",
				URL:          "https://www.youtube.com/watch?v=mock-video-3",
			},
		},
		viewCounts: map[string]int64{
			"mock-video-1": 120000,
			"mock-video-2": 45000,
			"mock-video-3": 9800,
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// SetResults overrides the fixed search results
func (m *MockProvider) SetResults(results []core.Video) {
	m.results = results
}

// SetViewCounts overrides the fixed view counts
func (m *MockProvider) SetViewCounts(counts map[string]int64) {
	m.viewCounts = counts
}

// SetSearchError makes Search fail with the given error
func (m *MockProvider) SetSearchError(err error) {
	m.searchErr = err
}

// Search returns the configured mock results
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]core.Video, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > int64(len(m.results)) {
		maxResults = int64(len(m.results))
	}
	return m.results[:maxResults], nil
}

// BatchViewCounts returns the configured mock view counts
func (m *MockProvider) BatchViewCounts(ctx context.Context, ids []string) map[string]int64 {
	counts := make(map[string]int64, len(ids))
	for _, id := range ids {
		counts[id] = m.viewCounts[id]
	}
	return counts
}
