package videosearch

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shoplens/internal/core"
	"shoplens/internal/logger"
)

// viewCountBatchSize is the YouTube Data API cap on ids per videos.list call.
const viewCountBatchSize = 50

// YouTubeProvider implements Provider using the YouTube Data API v3.
// A provider constructed without an API key is inert: Search reports
// ErrNotConfigured and BatchViewCounts returns zeros.
type YouTubeProvider struct {
	name    string
	service *youtube.Service
}

// NewYouTubeProvider creates a new YouTube search provider
func NewYouTubeProvider(ctx context.Context, apiKey string) (*YouTubeProvider, error) {
	p := &YouTubeProvider{name: "YouTube"}
	if apiKey == "" {
		logger.Warn("YouTube API key not set, video search is disabled")
		return p, nil
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	p.service = service
	return p, nil
}

// GetName returns the name of this provider
func (p *YouTubeProvider) GetName() string {
	return p.name
}

// Search queries YouTube for videos matching the query
func (p *YouTubeProvider) Search(ctx context.Context, query string, config Config) ([]core.Video, error) {
	if p.service == nil {
		return nil, ErrNotConfigured
	}

	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	call := p.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults)
	if config.Region != "" {
		call = call.RegionCode(config.Region)
	}
	if config.Language != "" {
		call = call.RelevanceLanguage(config.Language)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	videos := make([]core.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videos = append(videos, core.Video{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelTitle: item.Snippet.ChannelTitle,
			URL:          "https://www.youtube.com/watch?v=" + item.Id.VideoId,
		})
	}

	return videos, nil
}

// BatchViewCounts fetches view counts for the given video ids. Every
// requested id is present in the result; ids the API does not return,
// or the whole batch on failure, map to 0.
func (p *YouTubeProvider) BatchViewCounts(ctx context.Context, ids []string) map[string]int64 {
	counts := make(map[string]int64, len(ids))
	for _, id := range ids {
		counts[id] = 0
	}

	if p.service == nil || len(ids) == 0 {
		return counts
	}

	if len(ids) > viewCountBatchSize {
		ids = ids[:viewCountBatchSize]
	}

	resp, err := p.service.Videos.List([]string{"statistics"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		logger.Warn("Failed to fetch view counts, treating all as zero", "error", err.Error())
		return counts
	}

	for _, item := range resp.Items {
		if item.Statistics != nil {
			counts[item.Id] = int64(item.Statistics.ViewCount)
		}
	}

	return counts
}
