package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/genai"

	"shoplens/internal/config"
	"shoplens/internal/core"
	"shoplens/internal/llm"
	"shoplens/internal/videosearch"
)

type stubConversation struct {
	replies []llm.Reply
	errs    []error
	step    int

	sentTexts   []string
	toolNames   []string
	toolResults []map[string]any
}

func (s *stubConversation) next() (llm.Reply, error) {
	if s.step >= len(s.replies) {
		return llm.Reply{}, errors.New("stub conversation exhausted")
	}
	reply := s.replies[s.step]
	var err error
	if s.step < len(s.errs) {
		err = s.errs[s.step]
	}
	s.step++
	return reply, err
}

func (s *stubConversation) Send(ctx context.Context, text string) (llm.Reply, error) {
	s.sentTexts = append(s.sentTexts, text)
	return s.next()
}

func (s *stubConversation) SendToolResult(ctx context.Context, name string, response map[string]any) (llm.Reply, error) {
	s.toolNames = append(s.toolNames, name)
	s.toolResults = append(s.toolResults, response)
	return s.next()
}

type stubText struct {
	conv              *stubConversation
	completeJSON      func(model, prompt string) (string, error)
	completeVideoJSON func(model, videoURL, prompt string) (string, error)
}

func (s *stubText) CompleteJSON(ctx context.Context, model, prompt string) (string, error) {
	if s.completeJSON == nil {
		return "", errors.New("completeJSON not stubbed")
	}
	return s.completeJSON(model, prompt)
}

func (s *stubText) CompleteVideoJSON(ctx context.Context, model, videoURL string, start, end time.Duration, prompt string) (string, error) {
	if s.completeVideoJSON == nil {
		return "", errors.New("completeVideoJSON not stubbed")
	}
	return s.completeVideoJSON(model, videoURL, prompt)
}

func (s *stubText) StartConversation(model string, tools []*genai.Tool) Conversation {
	return s.conv
}

type stubImages struct {
	mu         sync.Mutex
	active     int
	peakActive int
	failIDs    map[string]bool
	generated  []string
}

func (s *stubImages) GenerateArchetypeImage(ctx context.Context, sessionID, archetypeID, description string) (string, error) {
	s.mu.Lock()
	s.active++
	if s.active > s.peakActive {
		s.peakActive = s.active
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.active--
	s.generated = append(s.generated, archetypeID)
	fail := s.failIDs[archetypeID]
	s.mu.Unlock()

	if fail {
		return "", errors.New("image backend unavailable")
	}
	return "https://signed.example.com/" + archetypeID + ".png", nil
}

type stubVideos struct {
	url string
	err error
}

func (s *stubVideos) GenerateBattleVideo(ctx context.Context, sessionID, prompt string) (string, error) {
	return s.url, s.err
}

func newTestAdvisor(text TextClient, images ImageGenerator, videos VideoGenerator, search videosearch.Provider) *Advisor {
	return NewAdvisor(text, images, videos, search, config.Models{
		Chat:   "chat-model",
		Lite:   "lite-model",
		Worker: "worker-model",
		Image:  "image-model",
		Video:  "video-model",
	}, config.VideoAnalysis{})
}

func TestChatPlainReply(t *testing.T) {
	conv := &stubConversation{replies: []llm.Reply{{Text: "こちらがおすすめです。"}}}
	a := newTestAdvisor(&stubText{conv: conv}, nil, nil, videosearch.NewMockProvider())

	reply, err := a.Chat(context.Background(), "ノートパソコンを探しています", "conv-1")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply.Message != "こちらがおすすめです。" {
		t.Errorf("Message = %q", reply.Message)
	}
	if reply.ConversationID != "conv-1" {
		t.Errorf("ConversationID = %q, want conv-1", reply.ConversationID)
	}
	if reply.NavigateTo != nil {
		t.Errorf("NavigateTo = %q, want nil", *reply.NavigateTo)
	}
}

func TestChatNavigateOnly(t *testing.T) {
	conv := &stubConversation{replies: []llm.Reply{{
		ToolCalls: []llm.ToolCall{{Name: "navigate", Args: map[string]any{"path": "/comparison"}}},
	}}}
	a := newTestAdvisor(&stubText{conv: conv}, nil, nil, videosearch.NewMockProvider())

	reply, err := a.Chat(context.Background(), "比較ページを見たい", "")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply.NavigateTo == nil || *reply.NavigateTo != "/comparison" {
		t.Fatalf("NavigateTo = %v, want /comparison", reply.NavigateTo)
	}
	if reply.Message != "/comparison に移動します。" {
		t.Errorf("Message = %q", reply.Message)
	}
	if reply.ConversationID == "" {
		t.Error("ConversationID not generated for empty input")
	}
}

func TestChatSearchToolRoundTrip(t *testing.T) {
	conv := &stubConversation{replies: []llm.Reply{
		{ToolCalls: []llm.ToolCall{{Name: "search_youtube_videos", Args: map[string]any{"query": "ノートパソコン レビュー"}}}},
		{Text: "レビューを分析しました。"},
	}}
	a := newTestAdvisor(&stubText{conv: conv}, nil, nil, videosearch.NewMockProvider())

	reply, err := a.Chat(context.Background(), "ノートパソコン", "conv-2")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply.Message != "レビューを分析しました。" {
		t.Errorf("Message = %q", reply.Message)
	}
	if len(conv.toolNames) != 1 || conv.toolNames[0] != "search_youtube_videos" {
		t.Fatalf("tool round-trips = %v, want one search_youtube_videos", conv.toolNames)
	}
	content, ok := conv.toolResults[0]["content"].(map[string]any)
	if !ok {
		t.Fatalf("tool result missing content payload: %v", conv.toolResults[0])
	}
	videos, ok := content["videos"].([]map[string]any)
	if !ok || len(videos) == 0 {
		t.Fatalf("tool result carried no videos: %v", content)
	}
	for _, key := range []string{"title", "videoId", "channelTitle"} {
		if _, ok := videos[0][key]; !ok {
			t.Errorf("video entry missing %q: %v", key, videos[0])
		}
	}
	if videos[0]["videoId"] != "mock-video-1" {
		t.Errorf("videoId = %v, want mock-video-1", videos[0]["videoId"])
	}
}

func TestChatBackendErrorBecomesApology(t *testing.T) {
	conv := &stubConversation{
		replies: []llm.Reply{{}},
		errs:    []error{errors.New("backend down")},
	}
	a := newTestAdvisor(&stubText{conv: conv}, nil, nil, videosearch.NewMockProvider())

	reply, err := a.Chat(context.Background(), "こんにちは", "conv-3")
	if err != nil {
		t.Fatalf("Chat returned error %v, want absorbed failure", err)
	}
	if reply.Message != chatErrorMessage {
		t.Errorf("Message = %q, want the fixed error message", reply.Message)
	}
	if reply.NavigateTo != nil {
		t.Error("NavigateTo set on failed turn")
	}
}

func needsJSON(t *testing.T, archetypes []core.Archetype) string {
	t.Helper()
	raw, err := json.Marshal(archetypeEnvelope{UserArchetypes: archetypes})
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestAnalyzeNeedsAttachesImages(t *testing.T) {
	archetypes := make([]core.Archetype, 10)
	for i := range archetypes {
		archetypes[i] = core.Archetype{
			ID:          fmt.Sprintf("arch-%d", i),
			Name:        fmt.Sprintf("タイプ%d", i),
			Description: "説明",
		}
	}

	images := &stubImages{failIDs: map[string]bool{"arch-3": true}}
	text := &stubText{completeJSON: func(model, prompt string) (string, error) {
		if model != "chat-model" {
			t.Errorf("needs analysis used model %q, want chat-model", model)
		}
		return needsJSON(t, archetypes), nil
	}}
	a := newTestAdvisor(text, images, nil, videosearch.NewMockProvider())

	got, err := a.AnalyzeNeeds(context.Background(), "ノートパソコン")
	if err != nil {
		t.Fatalf("AnalyzeNeeds failed: %v", err)
	}
	if len(got) != len(archetypes) {
		t.Fatalf("got %d archetypes, want %d", len(got), len(archetypes))
	}

	for i, arch := range got {
		if arch.ID != fmt.Sprintf("arch-%d", i) {
			t.Errorf("archetype %d is %q, order not preserved", i, arch.ID)
		}
		if arch.ID == "arch-3" {
			if arch.ImageURL != nil {
				t.Errorf("failed archetype got image %q, want nil", *arch.ImageURL)
			}
			continue
		}
		want := "https://signed.example.com/" + arch.ID + ".png"
		if arch.ImageURL == nil || *arch.ImageURL != want {
			t.Errorf("archetype %s image = %v, want %q", arch.ID, arch.ImageURL, want)
		}
	}

	if images.peakActive > maxConcurrentImages {
		t.Errorf("peak concurrent image generations = %d, want at most %d", images.peakActive, maxConcurrentImages)
	}
}

func TestAnalyzeNeedsEmptyResult(t *testing.T) {
	text := &stubText{completeJSON: func(model, prompt string) (string, error) {
		return needsJSON(t, nil), nil
	}}
	a := newTestAdvisor(text, &stubImages{}, nil, videosearch.NewMockProvider())

	got, err := a.AnalyzeNeeds(context.Background(), "ノートパソコン")
	if err != nil {
		t.Fatalf("AnalyzeNeeds failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d archetypes, want 0", len(got))
	}
}

func TestEnsureUniqueIDs(t *testing.T) {
	archetypes := []core.Archetype{
		{ID: "a"},
		{ID: ""},
		{ID: "a"},
		{ID: "b"},
	}
	ensureUniqueIDs(archetypes)

	seen := make(map[string]bool)
	for i, arch := range archetypes {
		if arch.ID == "" {
			t.Errorf("archetype %d still has empty ID", i)
		}
		if seen[arch.ID] {
			t.Errorf("duplicate ID %q survived", arch.ID)
		}
		seen[arch.ID] = true
	}
	if archetypes[0].ID != "a" || archetypes[3].ID != "b" {
		t.Error("unique IDs were rewritten")
	}
}

func TestMergeProducts(t *testing.T) {
	price := 79800.0
	products := []core.ExtractedProduct{
		{Name: "MacBook Air M2", Price: &price, SourceURLs: []string{"https://youtu.be/a"}, SourceReviewCounts: []int64{100}},
		{Name: "ThinkPad X1", SourceURLs: []string{"https://youtu.be/a"}, SourceReviewCounts: []int64{100}},
		{Name: "MacBook Air M2", SourceURLs: []string{"https://youtu.be/b"}, SourceReviewCounts: []int64{50}},
		{Name: ""},
	}

	merged := mergeProducts(products)
	if len(merged) != 2 {
		t.Fatalf("merged into %d products, want 2", len(merged))
	}

	mac := merged[0]
	if mac.Name != "MacBook Air M2" {
		t.Fatalf("first merged product is %q", mac.Name)
	}
	if !strings.HasPrefix(mac.ID, "product-macbook-air-m2-") {
		t.Errorf("ID = %q, want product-macbook-air-m2-<suffix>", mac.ID)
	}
	if len(mac.SourceURLs) != 2 || len(mac.SourceReviewCounts) != 2 {
		t.Errorf("sources = %v / %v, want both videos represented", mac.SourceURLs, mac.SourceReviewCounts)
	}
	if mac.Price == nil || *mac.Price != price {
		t.Error("first-seen price not preserved")
	}
}

func TestNormalizeRanking(t *testing.T) {
	recs := make([]core.RankedRecommendation, 12)
	for i := range recs {
		recs[i] = core.RankedRecommendation{Rank: 12 - i, Name: fmt.Sprintf("p%d", 12-i)}
	}

	got := normalizeRanking(recs)
	if len(got) != maxRecommendations {
		t.Fatalf("got %d recommendations, want %d", len(got), maxRecommendations)
	}
	for i, rec := range got {
		if rec.Rank != i+1 {
			t.Errorf("entry %d has rank %d, want %d", i, rec.Rank, i+1)
		}
		if rec.Name != fmt.Sprintf("p%d", i+1) {
			t.Errorf("entry %d is %q, order not by original rank", i, rec.Name)
		}
	}
}

func TestSummarizeReviewsNoResults(t *testing.T) {
	search := videosearch.NewMockProvider()
	search.SetResults(nil)
	text := &stubText{completeJSON: func(model, prompt string) (string, error) {
		return "", errors.New("lite model down")
	}}
	a := newTestAdvisor(text, nil, nil, search)

	_, err := a.SummarizeReviews(context.Background(), "ワイヤレスイヤホン", nil)
	if !errors.Is(err, videosearch.ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestSummarizeReviewsPipeline(t *testing.T) {
	search := videosearch.NewMockProvider()

	extraction := func(videoURL string) string {
		products := []map[string]any{{
			"name":        "ソニー WH-1000XM5",
			"price":       49500,
			"description": "ノイズキャンセリングの定番。",
			"specs":       map[string]string{"本体重量": "250g"},
			"category":    "ヘッドホン",
		}}
		if strings.Contains(videoURL, "mock-video-2") {
			products = append(products, map[string]any{
				"name":        "Bose QuietComfort Ultra",
				"description": "装着感が高評価。",
			})
		}
		raw, _ := json.Marshal(map[string]any{"products": products})
		return string(raw)
	}

	var rankingInput string
	text := &stubText{
		completeJSON: func(model, prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "YouTube search"):
				return "ワイヤレスヘッドホン ノイズキャンセリング", nil
			case strings.Contains(prompt, "comma-separated"):
				return "デザイン性,価格", nil
			case strings.Contains(prompt, "recommended_products"):
				rankingInput = prompt
				var input struct {
					Products []core.ExtractedProduct `json:"products"`
				}
				start := strings.Index(prompt, `{"products"`)
				end := strings.LastIndex(prompt, "Compare everything")
				if start < 0 || end < start {
					return "", fmt.Errorf("ranking prompt missing product JSON")
				}
				if err := json.Unmarshal([]byte(strings.TrimSpace(prompt[start:end])), &input); err != nil {
					return "", err
				}
				recs := make([]core.RankedRecommendation, len(input.Products))
				for i, p := range input.Products {
					var total int64
					for _, c := range p.SourceReviewCounts {
						total += c
					}
					recs[i] = core.RankedRecommendation{
						Rank:        i + 1,
						ID:          p.ID,
						Name:        p.Name,
						ReviewCount: total,
						SourceURLs:  p.SourceURLs,
					}
				}
				raw, _ := json.Marshal(rankedEnvelope{RecommendedProducts: recs})
				return string(raw), nil
			default:
				return "", fmt.Errorf("unexpected prompt: %s", prompt)
			}
		},
		completeVideoJSON: func(model, videoURL, prompt string) (string, error) {
			if model != "worker-model" {
				t.Errorf("extraction used model %q, want worker-model", model)
			}
			if !strings.Contains(prompt, "ワイヤレスヘッドホン ノイズキャンセリング") {
				t.Error("extraction prompt does not carry the refined keyword")
			}
			return extraction(videoURL), nil
		},
	}
	a := newTestAdvisor(text, nil, nil, search)

	recs, err := a.SummarizeReviews(context.Background(), "ノイキャンのヘッドホンが欲しい", []string{"デザイン性", "価格", "重さ"})
	if err != nil {
		t.Fatalf("SummarizeReviews failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}

	sony := recs[0]
	if sony.Name != "ソニー WH-1000XM5" {
		t.Fatalf("top recommendation is %q", sony.Name)
	}
	// The Sony appears in all three mock videos, so its review count is
	// the sum of their view counts.
	if sony.ReviewCount != 120000+45000+9800 {
		t.Errorf("ReviewCount = %d, want summed view counts", sony.ReviewCount)
	}
	if len(sony.SourceURLs) != 3 {
		t.Errorf("SourceURLs = %v, want all three videos", sony.SourceURLs)
	}
	if !strings.Contains(rankingInput, `"source_review_counts"`) {
		t.Error("ranking prompt does not include source review counts")
	}
}

func TestSelectTagsFallbackSampling(t *testing.T) {
	text := &stubText{completeJSON: func(model, prompt string) (string, error) {
		return "", errors.New("lite model down")
	}}
	a := newTestAdvisor(text, nil, nil, videosearch.NewMockProvider())

	tags := []string{"デザイン性", "価格", "重さ", "バッテリー"}
	selected := a.selectTags(context.Background(), tags)
	if len(selected) != maxSelectedTags {
		t.Fatalf("sampled %d tags, want %d", len(selected), maxSelectedTags)
	}
	valid := make(map[string]bool)
	for _, tag := range tags {
		valid[tag] = true
	}
	for _, tag := range selected {
		if !valid[tag] {
			t.Errorf("sampled tag %q not in input", tag)
		}
	}

	few := []string{"価格"}
	if got := a.selectTags(context.Background(), few); len(got) != 1 || got[0] != "価格" {
		t.Errorf("selectTags(%v) = %v, want input unchanged", few, got)
	}
}

func TestBattleFallsBackOnVideoFailure(t *testing.T) {
	script := battleScript{
		Product1Description: []string{"強み1", "強み2", "強み3"},
		Product2Description: []string{"軽い", "安い", "かわいい"},
	}
	raw, _ := json.Marshal(script)

	text := &stubText{completeJSON: func(model, prompt string) (string, error) {
		return "```json\n" + string(raw) + "\n```", nil
	}}
	videos := &stubVideos{err: errors.New("veo quota exceeded")}
	a := newTestAdvisor(text, nil, videos, videosearch.NewMockProvider())

	result, err := a.Battle(context.Background(), "MacBook Air", "ThinkPad X1")
	if err != nil {
		t.Fatalf("Battle failed: %v", err)
	}
	if result.VideoURL != battleFallbackVideoURL {
		t.Errorf("VideoURL = %q, want fallback", result.VideoURL)
	}
	if result.Product1ID != "dummy-prod-1" || result.Product2ID != "dummy-prod-2" {
		t.Errorf("product IDs = %q / %q", result.Product1ID, result.Product2ID)
	}
	if len(result.Product1Description) != 3 || result.Product1Description[0] != "強み1" {
		t.Errorf("Product1Description = %v", result.Product1Description)
	}
	if !strings.Contains(result.VideoPrompt, "MacBook Air") || !strings.Contains(result.VideoPrompt, "ThinkPad X1") {
		t.Error("VideoPrompt does not mention both products")
	}
	if !strings.HasPrefix(result.ID, "battle-") {
		t.Errorf("ID = %q, want battle- prefix", result.ID)
	}
}

func TestBattleGeneratedVideoURL(t *testing.T) {
	script := battleScript{
		Product1Description: []string{"a", "b", "c"},
		Product2Description: []string{"d", "e", "f"},
	}
	raw, _ := json.Marshal(script)

	text := &stubText{completeJSON: func(model, prompt string) (string, error) {
		return string(raw), nil
	}}
	videos := &stubVideos{url: "https://signed.example.com/battle.mp4"}
	a := newTestAdvisor(text, nil, videos, videosearch.NewMockProvider())

	result, err := a.Battle(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("Battle failed: %v", err)
	}
	if result.VideoURL != "https://signed.example.com/battle.mp4" {
		t.Errorf("VideoURL = %q", result.VideoURL)
	}
}

func TestBattleMalformedScript(t *testing.T) {
	text := &stubText{completeJSON: func(model, prompt string) (string, error) {
		return "I cannot produce a battle script.", nil
	}}
	a := newTestAdvisor(text, nil, &stubVideos{}, videosearch.NewMockProvider())

	if _, err := a.Battle(context.Background(), "A", "B"); err == nil {
		t.Error("Battle succeeded on malformed script, want error")
	}
}

func TestMockServiceSimulatedLatency(t *testing.T) {
	m := NewMockService()

	start := time.Now()
	if _, err := m.AnalyzeNeeds(context.Background(), "ノートパソコン"); err != nil {
		t.Fatalf("AnalyzeNeeds failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < mockLatency {
		t.Errorf("AnalyzeNeeds returned after %v, want at least %v", elapsed, mockLatency)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.SummarizeReviews(ctx, "イヤホン", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("SummarizeReviews on canceled context returned %v, want context.Canceled", err)
	}
	if _, err := m.Battle(ctx, "A", "B"); !errors.Is(err, context.Canceled) {
		t.Errorf("Battle on canceled context returned %v, want context.Canceled", err)
	}
}

func TestMockServiceChat(t *testing.T) {
	m := NewMockService()

	reply, err := m.Chat(context.Background(), "AとBを比較して", "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if reply.NavigateTo == nil || *reply.NavigateTo != "/comparison" {
		t.Errorf("NavigateTo = %v, want /comparison", reply.NavigateTo)
	}

	reply, err = m.Chat(context.Background(), "こんにちは", "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if reply.NavigateTo != nil {
		t.Error("plain mock reply should not navigate")
	}
	if !strings.Contains(reply.Message, "こんにちは") {
		t.Errorf("Message = %q, want echo of input", reply.Message)
	}
}
