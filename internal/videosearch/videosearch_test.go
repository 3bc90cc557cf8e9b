package videosearch

import (
	"context"
	"errors"
	"testing"
)

func TestProviderFactory(t *testing.T) {
	factory := NewProviderFactory()
	ctx := context.Background()

	t.Run("mock provider", func(t *testing.T) {
		provider, err := factory.CreateProvider(ctx, ProviderTypeMock, nil)
		if err != nil {
			t.Fatalf("CreateProvider(mock) failed: %v", err)
		}
		if provider.GetName() != "Mock" {
			t.Errorf("GetName() = %q, want %q", provider.GetName(), "Mock")
		}
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := factory.CreateProvider(ctx, ProviderType("bing"), nil)
		if !errors.Is(err, ErrUnsupportedProvider) {
			t.Errorf("CreateProvider(bing) error = %v, want ErrUnsupportedProvider", err)
		}
	})
}

func TestUnconfiguredYouTubeProvider(t *testing.T) {
	ctx := context.Background()

	provider, err := NewYouTubeProvider(ctx, "")
	if err != nil {
		t.Fatalf("NewYouTubeProvider with empty key failed: %v", err)
	}

	_, err = provider.Search(ctx, "laptop", Config{MaxResults: 3})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Search error = %v, want ErrNotConfigured", err)
	}

	ids := []string{"a", "b", "c"}
	counts := provider.BatchViewCounts(ctx, ids)
	if len(counts) != len(ids) {
		t.Fatalf("BatchViewCounts returned %d entries, want %d", len(counts), len(ids))
	}
	for _, id := range ids {
		if counts[id] != 0 {
			t.Errorf("view count for %q = %d, want 0", id, counts[id])
		}
	}
}

func TestMockProviderSearch(t *testing.T) {
	ctx := context.Background()
	provider := NewMockProvider()

	results, err := provider.Search(ctx, "laptop review", Config{MaxResults: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search returned %d results, want 2", len(results))
	}

	counts := provider.BatchViewCounts(ctx, []string{"mock-video-1", "unknown"})
	if counts["mock-video-1"] == 0 {
		t.Error("expected non-zero view count for known video")
	}
	if counts["unknown"] != 0 {
		t.Errorf("view count for unknown id = %d, want 0", counts["unknown"])
	}
}
