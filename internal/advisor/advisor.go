// Package advisor implements the AI shopping-guidance pipelines: the
// tool-augmented chat agent, needs-analysis with generated archetype
// images, review summarization into ranked recommendations, and the
// two-product battle. The orchestrators depend on small consumer
// interfaces so every pipeline is testable with stubs.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"shoplens/internal/config"
	"shoplens/internal/core"
	"shoplens/internal/llm"
	"shoplens/internal/logger"
	"shoplens/internal/media"
	"shoplens/internal/videosearch"
)

// Service is the full guidance surface exposed to the HTTP layer.
type Service interface {
	// Chat answers a single free-text message, optionally asking the
	// frontend to navigate. It never surfaces backend errors to the
	// chat surface.
	Chat(ctx context.Context, message, conversationID string) (core.ChatReply, error)

	// AnalyzeNeeds derives user archetypes for a product category and
	// attaches generated images where generation succeeded.
	AnalyzeNeeds(ctx context.Context, productCategory string) ([]core.Archetype, error)

	// SummarizeReviews discovers review videos for a keyword, extracts
	// the products they discuss, and returns a ranked recommendation
	// list.
	SummarizeReviews(ctx context.Context, keyword string, tags []string) ([]core.RankedRecommendation, error)

	// Battle pits two products against each other: selling points plus
	// a battle video URL (generated or fallback).
	Battle(ctx context.Context, productName1, productName2 string) (core.BattleResult, error)

	// RecommendByPreferences returns catalog products matching the
	// given preferences.
	RecommendByPreferences(ctx context.Context, preferences map[string]any, catalog []core.Product) ([]core.Product, error)
}

// Conversation is one multi-turn model exchange.
type Conversation interface {
	Send(ctx context.Context, text string) (llm.Reply, error)
	SendToolResult(ctx context.Context, name string, response map[string]any) (llm.Reply, error)
}

// TextClient is the text-generation surface the pipelines consume.
type TextClient interface {
	CompleteJSON(ctx context.Context, model, prompt string) (string, error)
	CompleteVideoJSON(ctx context.Context, model, videoURL string, start, end time.Duration, prompt string) (string, error)
	StartConversation(model string, tools []*genai.Tool) Conversation
}

// ImageGenerator produces a signed URL for one archetype image.
type ImageGenerator interface {
	GenerateArchetypeImage(ctx context.Context, sessionID, archetypeID, description string) (string, error)
}

// VideoGenerator produces a signed URL for one battle video.
type VideoGenerator interface {
	GenerateBattleVideo(ctx context.Context, sessionID, prompt string) (string, error)
}

// Advisor is the production Service implementation.
type Advisor struct {
	log     *slog.Logger
	text    TextClient
	images  ImageGenerator
	videos  VideoGenerator
	search  videosearch.Provider
	models  config.Models
	offsets config.VideoAnalysis
}

// NewAdvisor wires an Advisor from its collaborators.
func NewAdvisor(text TextClient, images ImageGenerator, videos VideoGenerator, search videosearch.Provider, models config.Models, offsets config.VideoAnalysis) *Advisor {
	return &Advisor{
		log:     logger.Get(),
		text:    text,
		images:  images,
		videos:  videos,
		search:  search,
		models:  models,
		offsets: offsets,
	}
}

// New builds the Service appropriate for the environment: a mock in
// development, the full pipeline stack otherwise. Business logic never
// branches on the environment again past this point.
func New(ctx context.Context, cfg *config.Config) (Service, error) {
	if cfg.IsDevelopment() {
		logger.Info("Running with mock advisor service")
		return NewMockService(), nil
	}

	llmClient, err := llm.NewClient(ctx, cfg.GCP.ProjectID, cfg.GCP.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	store, err := media.NewStorage(ctx, cfg.GCP)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	pipeline := media.NewPipeline(llmClient, store, cfg.Models)

	factory := videosearch.NewProviderFactory()
	provider, err := factory.CreateProvider(ctx, videosearch.ProviderTypeYouTube, map[string]string{
		"api_key": cfg.YouTube.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create video search provider: %w", err)
	}

	return NewAdvisor(textClient{llmClient}, pipeline, pipeline, provider, cfg.Models, cfg.VideoAnalysis), nil
}

// textClient adapts *llm.Client to the TextClient interface; the only
// mismatch is the concrete Conversation return type.
type textClient struct {
	c *llm.Client
}

func (t textClient) CompleteJSON(ctx context.Context, model, prompt string) (string, error) {
	return t.c.CompleteJSON(ctx, model, prompt)
}

func (t textClient) CompleteVideoJSON(ctx context.Context, model, videoURL string, start, end time.Duration, prompt string) (string, error) {
	return t.c.CompleteVideoJSON(ctx, model, videoURL, start, end, prompt)
}

func (t textClient) StartConversation(model string, tools []*genai.Tool) Conversation {
	return t.c.StartConversation(model, tools)
}
