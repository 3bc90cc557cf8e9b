package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"shoplens/internal/core"
	"shoplens/internal/jsonextract"
	"shoplens/internal/videosearch"
)

const (
	summaryMaxVideos   = 3
	maxRecommendations = 10
	maxSelectedTags    = 2
)

type extractedEnvelope struct {
	Products []struct {
		Name           string            `json:"name"`
		Price          *float64          `json:"price"`
		Description    string            `json:"description"`
		Specs          map[string]string `json:"specs"`
		Specifications map[string]any    `json:"specifications"`
		Category       string            `json:"category"`
		Tags           []string          `json:"tags"`
	} `json:"products"`
}

type rankedEnvelope struct {
	RecommendedProducts []core.RankedRecommendation `json:"recommended_products"`
}

// SummarizeReviews runs the full recommendation pipeline: refine the
// search keyword, discover review videos, extract the products each
// video discusses, merge them by name, and rank the merged set.
func (a *Advisor) SummarizeReviews(ctx context.Context, keyword string, tags []string) ([]core.RankedRecommendation, error) {
	refined := a.refineSearchKeyword(ctx, keyword)
	selected := a.selectTags(ctx, tags)

	query := refined
	if len(selected) > 0 {
		query += " " + strings.Join(selected, " ")
	}
	query += " " + searchReviewSuffix

	videos, err := a.search.Search(ctx, query, videosearch.Config{
		MaxResults: summaryMaxVideos,
		Region:     searchRegion,
		Language:   searchLanguage,
	})
	if err != nil {
		return nil, fmt.Errorf("video search failed: %w", err)
	}
	if len(videos) == 0 {
		return nil, videosearch.ErrNoResults
	}
	a.log.Info("Review videos found", "query", query, "count", len(videos))

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	viewCounts := a.search.BatchViewCounts(ctx, ids)
	for i := range videos {
		videos[i].ViewCount = viewCounts[videos[i].ID]
	}

	merged := a.extractFromVideos(ctx, refined, selected, videos)
	if len(merged) == 0 {
		a.log.Warn("No products extracted from review videos", "query", query)
		return []core.RankedRecommendation{}, nil
	}

	return a.rankProducts(ctx, merged)
}

// refineSearchKeyword asks the lite model for a compact search phrase.
// On any failure the original keyword is used as-is.
func (a *Advisor) refineSearchKeyword(ctx context.Context, keyword string) string {
	raw, err := a.text.CompleteJSON(ctx, a.models.Lite, fmt.Sprintf(keywordExtractionPromptTemplate, keyword))
	if err != nil {
		a.log.Warn("Keyword refinement failed, using original", "error", err, "keyword", keyword)
		return keyword
	}

	refined := strings.Trim(strings.TrimSpace(raw), `"`)
	if refined == "" {
		return keyword
	}
	return refined
}

// selectTags asks the lite model to pick the most decision-relevant
// tags. On failure it falls back to a random sample so the pipeline
// still narrows the search.
func (a *Advisor) selectTags(ctx context.Context, tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	raw, err := a.text.CompleteJSON(ctx, a.models.Lite, fmt.Sprintf(tagSelectionPromptTemplate, strings.Join(tags, ",")))
	if err != nil {
		a.log.Warn("Tag selection failed, sampling instead", "error", err)
		return sampleTags(tags)
	}

	valid := make(map[string]bool, len(tags))
	for _, t := range tags {
		valid[t] = true
	}

	var selected []string
	for _, part := range strings.Split(raw, ",") {
		t := strings.TrimSpace(part)
		if valid[t] {
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return sampleTags(tags)
	}
	if len(selected) > maxSelectedTags {
		selected = selected[:maxSelectedTags]
	}
	return selected
}

func sampleTags(tags []string) []string {
	if len(tags) <= maxSelectedTags {
		return tags
	}
	picked := rand.Perm(len(tags))[:maxSelectedTags]
	sort.Ints(picked)
	sampled := make([]string, 0, maxSelectedTags)
	for _, i := range picked {
		sampled = append(sampled, tags[i])
	}
	return sampled
}

// extractFromVideos analyzes every video in parallel and merges the
// extracted products. A failed video is skipped, not fatal.
func (a *Advisor) extractFromVideos(ctx context.Context, keyword string, tags []string, videos []core.Video) []core.ExtractedProduct {
	prompt := extractionPrompt(keyword, tags)

	results := make([][]core.ExtractedProduct, len(videos))
	var wg sync.WaitGroup
	for i, video := range videos {
		wg.Add(1)
		go func(i int, video core.Video) {
			defer wg.Done()
			products, err := a.extractProducts(ctx, prompt, video)
			if err != nil {
				a.log.Warn("Product extraction failed for video", "error", err, "video_url", video.URL)
				return
			}
			results[i] = products
		}(i, video)
	}
	wg.Wait()

	var all []core.ExtractedProduct
	for _, products := range results {
		all = append(all, products...)
	}
	return mergeProducts(all)
}

// extractProducts runs the extraction worker over one video.
func (a *Advisor) extractProducts(ctx context.Context, prompt string, video core.Video) ([]core.ExtractedProduct, error) {
	raw, err := a.text.CompleteVideoJSON(ctx, a.models.Worker, video.URL, a.offsets.StartOffset, a.offsets.EndOffset, prompt)
	if err != nil {
		return nil, err
	}

	var envelope extractedEnvelope
	if err := jsonextract.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	products := make([]core.ExtractedProduct, 0, len(envelope.Products))
	for _, p := range envelope.Products {
		if p.Name == "" {
			continue
		}
		products = append(products, core.ExtractedProduct{
			Name:               p.Name,
			Price:              p.Price,
			Description:        p.Description,
			Specs:              p.Specs,
			Specifications:     p.Specifications,
			Category:           p.Category,
			Tags:               p.Tags,
			SourceURLs:         []string{video.URL},
			SourceReviewCounts: []int64{video.ViewCount},
		})
	}
	return products, nil
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func newProductID(name string) string {
	slug := strings.Trim(strings.ToLower(nonAlnum.ReplaceAllString(name, "-")), "-")
	return fmt.Sprintf("product-%s-%s", slug, uuid.NewString()[:8])
}

// mergeProducts combines extractions by exact product name. The first
// occurrence wins for descriptive fields; source URLs and view counts
// accumulate across videos.
func mergeProducts(products []core.ExtractedProduct) []core.ExtractedProduct {
	index := make(map[string]int, len(products))
	merged := make([]core.ExtractedProduct, 0, len(products))

	for _, p := range products {
		if p.Name == "" {
			continue
		}
		if i, ok := index[p.Name]; ok {
			merged[i].SourceURLs = append(merged[i].SourceURLs, p.SourceURLs...)
			merged[i].SourceReviewCounts = append(merged[i].SourceReviewCounts, p.SourceReviewCounts...)
			continue
		}
		p.ID = newProductID(p.Name)
		index[p.Name] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

// rankProducts asks the lite model to score and order the merged
// products, then normalizes the returned ranking.
func (a *Advisor) rankProducts(ctx context.Context, products []core.ExtractedProduct) ([]core.RankedRecommendation, error) {
	encoded, err := json.Marshal(map[string]any{"products": products})
	if err != nil {
		return nil, fmt.Errorf("failed to encode products for ranking: %w", err)
	}

	raw, err := a.text.CompleteJSON(ctx, a.models.Lite, fmt.Sprintf(rankingPromptTemplate, string(encoded)))
	if err != nil {
		return nil, fmt.Errorf("ranking failed: %w", err)
	}

	var envelope rankedEnvelope
	if err := jsonextract.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("ranking returned malformed output: %w", err)
	}

	return normalizeRanking(envelope.RecommendedProducts), nil
}

// normalizeRanking enforces the ranking contract regardless of what the
// model returned: stable order by rank, at most maxRecommendations
// entries, ranks dense from 1.
func normalizeRanking(recs []core.RankedRecommendation) []core.RankedRecommendation {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Rank < recs[j].Rank })
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}
