package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shoplens/internal/core"
)

// mockLatency approximates the real pipelines' turnaround so the
// frontend's loading states stay exercised in development.
const mockLatency = time.Second

// MockService is the development stand-in for the full pipeline stack.
// It answers with canned data after a short simulated delay and never
// touches GCP.
type MockService struct{}

// NewMockService creates the development mock.
func NewMockService() *MockService {
	return &MockService{}
}

func simulateLatency(ctx context.Context) error {
	select {
	case <-time.After(mockLatency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockService) Chat(ctx context.Context, message, conversationID string) (core.ChatReply, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	reply := core.ChatReply{
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
	}

	if strings.Contains(message, "比較") {
		path := "/comparison"
		reply.Message = "承知いたしました。比較ページに移動します。"
		reply.NavigateTo = &path
		return reply, nil
	}

	reply.Message = fmt.Sprintf("これは「%s」に対するモック応答です。", message)
	return reply, nil
}

func (m *MockService) AnalyzeNeeds(ctx context.Context, productCategory string) ([]core.Archetype, error) {
	if err := simulateLatency(ctx); err != nil {
		return nil, err
	}

	designImage := "https://storage.googleapis.com/public-dds-react-camp-machu/archetype_images/sample/design.png"
	multiImage := "https://storage.googleapis.com/public-dds-react-camp-machu/archetype_images/sample/multi-function.png"

	return []core.Archetype{
		{
			ID:              uuid.NewString(),
			Name:            "デザイン重視タイプ",
			Description:     "見た目の美しさと、空間に調和するデザインを最優先。",
			Characteristics: []string{"美しいデザイン", "高級感", "インテリア性"},
			SampleProducts:  []string{"バルミューダ ザ・トースター", "ダイソン Supersonic Ionic"},
			ImageURL:        &designImage,
		},
		{
			ID:              uuid.NewString(),
			Name:            "機能性・多機能タイプ",
			Description:     "一台で何役もこなす、最新技術と多機能性を求める。",
			Characteristics: []string{"多機能", "最新技術", "高性能"},
			SampleProducts:  []string{"パナソニック ビストロ", "ルンバ j7+"},
			ImageURL:        &multiImage,
		},
	}, nil
}

func (m *MockService) SummarizeReviews(ctx context.Context, keyword string, tags []string) ([]core.RankedRecommendation, error) {
	if err := simulateLatency(ctx); err != nil {
		return nil, err
	}

	price1 := 79800.0
	price2 := 49800.0

	return []core.RankedRecommendation{
		{
			Rank:                 1,
			RecommendationReason: fmt.Sprintf("「%s」の定番として多くのレビューで高評価を得ています。", keyword),
			ID:                   newProductID(keyword + " Pro"),
			Name:                 keyword + " Pro",
			Price:                &price1,
			Description:          "レビュー動画で最も言及されたモック商品です。",
			Rating:               4.5,
			ReviewCount:          123456,
			Category:             keyword,
			Tags:                 tags,
			SourceURLs:           []string{"https://www.youtube.com/watch?v=mock-video-1"},
		},
		{
			Rank:                 2,
			RecommendationReason: "コストパフォーマンスを重視する方に向いたモック商品です。",
			ID:                   newProductID(keyword + " Lite"),
			Name:                 keyword + " Lite",
			Price:                &price2,
			Description:          "価格を抑えつつ主要機能を備えたモック商品です。",
			Rating:               4.0,
			ReviewCount:          45678,
			Category:             keyword,
			Tags:                 tags,
			SourceURLs:           []string{"https://www.youtube.com/watch?v=mock-video-2"},
		},
	}, nil
}

func (m *MockService) Battle(ctx context.Context, productName1, productName2 string) (core.BattleResult, error) {
	if err := simulateLatency(ctx); err != nil {
		return core.BattleResult{}, err
	}

	return core.BattleResult{
		ID:           "battle-" + uuid.NewString(),
		Product1ID:   "dummy-prod-1",
		Product1Name: productName1,
		Product1Description: []string{
			fmt.Sprintf("%sは圧倒的な性能で勝負します。", productName1),
			"最新技術を惜しみなく投入しています。",
			"プロの現場でも選ばれ続けています。",
		},
		Product2ID:   "dummy-prod-2",
		Product2Name: productName2,
		Product2Description: []string{
			fmt.Sprintf("%sは軽さと手軽さが自慢です。", productName2),
			"毎日持ち歩いても疲れません。",
			"価格以上の満足感をお届けします。",
		},
		VideoURL: battleFallbackVideoURL,
	}, nil
}

func (m *MockService) RecommendByPreferences(ctx context.Context, preferences map[string]any, catalog []core.Product) ([]core.Product, error) {
	if len(catalog) <= 2 {
		return catalog, nil
	}
	return catalog[:2], nil
}
