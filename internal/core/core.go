// Package core defines the shared domain types exchanged between the
// advisor pipelines, the catalog, and the HTTP layer. All values are
// response-lifetime only; nothing in this package is persisted.
package core

import "time"

// Product is a catalog product as served to the frontend.
type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Price          float64           `json:"price"`
	ImageURL       string            `json:"imageUrl"`
	Description    string            `json:"description,omitempty"`
	Specifications map[string]string `json:"specifications"`
	Rating         float64           `json:"rating"`
	ReviewCount    int64             `json:"reviewCount"`
	Category       string            `json:"category"`
	Tags           []string          `json:"tags"`
}

// ProductType is a browsable product category with sample products.
type ProductType struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"imageUrl"`
	Characteristics []string  `json:"characteristics"`
	SampleProducts  []Product `json:"sampleProducts"`
}

// Archetype is one distinct kind of user need derived from a product
// category. ImageURL is always present in responses; it is nil when
// image generation failed for this archetype.
type Archetype struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Characteristics []string `json:"characteristics"`
	SampleProducts  []string `json:"sampleProducts"`
	ImageURL        *string  `json:"imageUrl"`
}

// ExtractedProduct is a product mentioned in a review video, merged
// across videos by exact name. SourceURLs and SourceReviewCounts are
// parallel slices: entry i of both comes from the same video.
type ExtractedProduct struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Price              *float64          `json:"price,omitempty"`
	Description        string            `json:"description"`
	Specs              map[string]string `json:"specs,omitempty"`
	Specifications     map[string]any    `json:"specifications,omitempty"`
	Category           string            `json:"category,omitempty"`
	Tags               []string          `json:"tags,omitempty"`
	SourceURLs         []string          `json:"source_urls"`
	SourceReviewCounts []int64           `json:"source_review_counts"`
}

// RankedRecommendation is one entry of the final recommendation list.
type RankedRecommendation struct {
	Rank                 int               `json:"rank"`
	RecommendationReason string            `json:"recommendation_reason"`
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Price                *float64          `json:"price,omitempty"`
	Description          string            `json:"description"`
	Specs                map[string]string `json:"specs,omitempty"`
	Specifications       map[string]any    `json:"specifications,omitempty"`
	Rating               float64           `json:"rating"`
	ReviewCount          int64             `json:"reviewCount"`
	Category             string            `json:"category"`
	Tags                 []string          `json:"tags"`
	SourceURLs           []string          `json:"source_urls"`
}

// BattleResult is the outcome of a two-product battle: three selling
// points per contender plus a playable video URL. VideoURL is either a
// freshly signed URL for a generated clip or the static fallback; it is
// never empty.
type BattleResult struct {
	ID                  string   `json:"id"`
	Product1ID          string   `json:"product1_id"`
	Product1Name        string   `json:"product1_name"`
	Product1Description []string `json:"product1_description"`
	Product2ID          string   `json:"product2_id"`
	Product2Name        string   `json:"product2_name"`
	Product2Description []string `json:"product2_description"`
	VideoPrompt         string   `json:"video_prompt,omitempty"`
	VideoURL            string   `json:"video_url"`
}

// ChatReply is a single-turn chat outcome. NavigateTo is non-nil when
// the model asked the frontend to change pages.
type ChatReply struct {
	Message        string    `json:"message"`
	ConversationID string    `json:"conversationId"`
	Timestamp      time.Time `json:"timestamp"`
	NavigateTo     *string   `json:"navigateTo,omitempty"`
}

// Video is a discovered review video.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channel_title"`
	URL          string `json:"url"`
	ViewCount    int64  `json:"view_count"`
}
