package advisor

import (
	"fmt"
	"strings"
)

// The service targets the Japanese market: prompts instruct the models
// to answer in Japanese, searches run against the JP region, and the
// fixed chat error and navigation confirmations are Japanese strings.

const (
	searchRegion       = "JP"
	searchLanguage     = "ja"
	searchReviewSuffix = "レビュー"

	// chatErrorMessage is the fixed apology shown whenever a chat
	// backend call fails. Backend errors never reach the chat surface.
	chatErrorMessage = "AIとの接続中にエラーが発生しました。"
)

const chatPromptTemplate = `# Role

You are an expert shopping advisor helping the user decide what to buy.
For the product or category the user is considering, research YouTube
review videos from multiple angles and help the user find the product
that best fits their own needs. Respond in Japanese.

Steps:
1. Receive a product name or category from the user.
2. Use the search_youtube_videos tool with a concrete query, for
   example "<product name> レビュー".
3. From the returned titles and channel names, judge whether each video
   is positive, negative, or a neutral comparison.
4. Synthesize the findings into objective pros and cons per product.
5. Based on the analysis, propose the directions the user could
   prioritize (for example noise cancellation first, sound quality
   first, portability and balance, or cost performance) and ask which
   one fits them best.

When the user asks to move to another page of the app, call the
navigate tool with the target path instead of describing the page.

Let's begin. The first product I would like you to look at is:
%s`

const needsPromptTemplate = `You are a professional marketing analyst who uncovers customers'
latent needs and illustrates them with concrete products.

A customer is considering buying: "%s"

To help the customer understand their own preferences, present 4 to 5
"user archetypes" that act as axes of choice. Give each archetype tags
describing its traits and 1 to 3 concrete example products. Write all
user-facing text in Japanese.

Return the result as a single JSON object following exactly this
schema:

{
  "user_archetypes": [
    {
      "id": "random unique id string",
      "name": "携帯性重視タイプ",
      "description": "カフェや出張先など、どこへでも持ち運びたい。軽さと薄さを最優先するあなたへ。",
      "characteristics": ["軽量", "薄型", "長時間バッテリー"],
      "sampleProducts": ["HP Pavilion Aero 13-bg", "MacBook Air"]
    }
  ]
}`

const keywordExtractionPromptTemplate = `From the following text, extract a short keyword phrase (2-3 words)
best suited for a YouTube search. Answer with the keywords only, no
explanation.

Example 1: "最新のノイズキャンセリング機能付きワイヤレスイヤホン" -> "ワイヤレスイヤホン ノイズキャンセリング"
Example 2: "一人暮らし向けの小型冷蔵庫" -> "小型冷蔵庫 一人暮らし"
Example 3: "ソニーのヘッドホン、WH-1000XM5を買おうか悩んでいます。" -> "ソニー WH-1000XM5"

Text: "%s"`

const tagSelectionPromptTemplate = `From the tags below, pick exactly the 2 points the user most likely
cares about when choosing a product, and output them comma-separated
with no explanation.

Example: "デザイン性,価格"

Tags: %s`

const extractionPromptTemplate = `You are an expert at accurately extracting the products presented in a
video review.

Analyze the video and extract only products related to "%s",
following the JSON schema below. Ignore products unrelated to "%s".

Important instructions:
- The "name" field must be a concrete product name (e.g. "MacBook Air
  M2", "ソニー WH-1000XM5"). Never put generic spec-like descriptions
  (e.g. "high-performance laptop (Intel Core Ultra 7 255H)") in "name".
- In "specs", extract the concrete specification facts mentioned in the
  video as key/value pairs (weight, display, camera, battery life and
  similar), in Japanese.
- Return null for any field the video does not cover.
- Each entry of the "specifications" object is an integer rating from 1
  (very dissatisfied) to 5 (very satisfied).
- Strictly follow JSON syntax; every object key is followed by a colon
  and then its value.

Output JSON schema:
{
  "products": [
    {
      "name": "concrete product name (e.g. MacBook Air M2)",
      "price": 12345,
      "description": "short product description in Japanese",
      "specs": {
        "本体重量": "150g",
        "ディスプレイ": "6.1インチ Super Retina XDR"
      },
      "specifications": %s,
      "category": "product category (e.g. smartphone, laptop)",
      "tags": ["trait tag 1", "tag 2"]
    }
  ]
}`

const rankingPromptTemplate = `You are a chief analyst who evaluates product information collected
from multiple sources and proposes the best recommendations to a
prospective buyer.

The JSON below lists products extracted from multiple videos. Each
product carries the list of source video URLs ("source_urls") and the
view counts of those videos ("source_review_counts").

%s

Compare everything above, weighing specs, price, features, and the view
counts as a popularity signal, and choose up to 10 products worth
recommending. For each chosen product:
1. "id": keep the original product's "id" unchanged.
2. "rating": your overall score from 1 to 5 (number).
3. "reviewCount": set to the SUM of "source_review_counts".
4. "source_urls": include the list unchanged.
5. "recommendation_reason": explain in Japanese why the product is
   recommended.
6. "specs": keep the original "specs" object unchanged.

Return the result in exactly this JSON format:

{
  "recommended_products": [
    {
      "rank": 1,
      "recommendation_reason": "なぜこの商品がおすすめなのか、具体的な理由。",
      "id": "product-a-xxxx",
      "name": "商品A",
      "price": 79800,
      "description": "商品の説明",
      "specs": { "本体重量": "150g", "ディスプレイ": "6.1インチ" },
      "specifications": { "key": "value" },
      "rating": 5,
      "reviewCount": 12345,
      "category": "smartphone",
      "tags": ["tag1", "tag2"],
      "source_urls": ["https://www.youtube.com/watch?v=..."]
    }
  ]
}`

const battleScriptPromptTemplate = `You are a scriptwriter staging a face-off presentation where two
products, personified as characters, each argue their strengths.

Product 1: "%s"
Product 2: "%s"

Following the rules below, write a compelling script in Japanese where
both products assert their strengths on 3 points each.

Rules:
- Each product's description is an array of 3 independent sentences.
- Each sentence forcefully promotes a concrete feature or benefit of
  its own product, with an eye on the opponent.
- Humor and light provocation are fine, but stay technically factual.
- Return exactly this JSON format:

{
  "product1_description": [
    "製品1の強み1をアピールする説明文。",
    "製品1の強み2をアピールする説明文。",
    "製品1の強み3をアピールする説明文。"
  ],
  "product2_description": [
    "製品2の強み1をアピールする説明文。",
    "製品2の強み2をアピールする説明文。",
    "製品2の強み3をアピールする説明文。"
  ]
}`

// extractionPrompt renders the worker prompt with a specifications
// schema derived from the selected tags, one 1-5 rating per tag.
func extractionPrompt(keyword string, tags []string) string {
	var schema strings.Builder
	schema.WriteString("{\n")
	for i, tag := range tags {
		if i > 0 {
			schema.WriteString(",\n")
		}
		fmt.Fprintf(&schema, "        %q: \"integer rating from 1 to 5\"", tag)
	}
	schema.WriteString("\n      }")
	return fmt.Sprintf(extractionPromptTemplate, keyword, keyword, schema.String())
}
