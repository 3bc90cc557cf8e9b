package media

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"shoplens/internal/config"
	"shoplens/internal/jsonextract"
	"shoplens/internal/llm"
	"shoplens/internal/logger"
)

// policyText is the content rule set handed to the prompt agent when it
// calls the get_policy_text tool.
const policyText = "Avoid trademarks, identifiable individuals, and sensitive or explicit content. " +
	"Do not reference real brands or real people. Exclude watermarks, signatures, and text overlays."

const imagePromptTemplate = `Your goal: from the input text, produce two optimized prompts for
generating a highly stylized concept illustration suitable for a commerce
product page: a positive prompt (what to generate) and a negative prompt
(what to exclude).

Required steps, in order:
1) First call the get_policy_text tool and read the rules the generated
   image must comply with (trademarks, identifiable people, sensitive
   content).
2) Read the input text and distill the conceptual product subject it
   describes. The subject must visually emphasize the text's traits,
   must not evoke any specific brand or real person, and should read as
   an appealing, clickable commerce illustration in a cute 3D style with
   a soft, friendly feel.
3) Build the positive prompt from the subject. Always include: the cute
   3D animation style with soft textures and bright colors, the key
   visual motifs, a pastel-leaning palette with commerce-friendly
   contrast, margin for text areas, and high-resolution detail cues.
4) Build the negative prompt from the policy: exclude brand logos,
   recognizable faces, photorealism that could identify someone, NSFW
   or violent content, and generation artifacts (blur, watermark,
   low resolution).
5) Return ONLY a JSON object with exactly this schema, no surrounding
   explanation:

{
  "subject": "<short conceptual subject distilled from the input>",
  "positive_prompt": "<Imagen-optimized prompt describing style, colors, composition, texture>",
  "negative_prompt": "<elements to exclude, per policy plus artifacts>",
  "composition": "<how the product is framed: placement, margins, aspect>",
  "style": "<cute 3D animation style plus emotional tone>",
  "policy_checks": "<brief notes on which policy rules were applied>",
  "rationale": "<one or two sentences on the chosen subject and style>"
}

Input text: %s`

// PromptSpec is the structured output of the image prompt agent.
type PromptSpec struct {
	Subject        string `json:"subject"`
	PositivePrompt string `json:"positive_prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Composition    string `json:"composition"`
	Style          string `json:"style"`
	PolicyChecks   string `json:"policy_checks"`
	Rationale      string `json:"rationale"`
}

// Pipeline generates archetype images and battle videos, storing the
// results in GCS and handing out signed URLs.
type Pipeline struct {
	llm    *llm.Client
	store  *Storage
	models config.Models
	log    *slog.Logger
}

// NewPipeline creates a media pipeline over the given clients.
func NewPipeline(llmClient *llm.Client, store *Storage, models config.Models) *Pipeline {
	return &Pipeline{
		llm:    llmClient,
		store:  store,
		models: models,
		log:    logger.Get(),
	}
}

func policyTool() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        "get_policy_text",
			Description: "Returns the rules generated images must comply with.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		}},
	}}
}

// generatePromptSpec runs the prompt agent for one archetype
// description. The agent is instructed to call get_policy_text first,
// but a direct JSON answer is accepted as well.
func (p *Pipeline) generatePromptSpec(ctx context.Context, description string) (PromptSpec, error) {
	conv := p.llm.StartConversation(p.models.Lite, policyTool())

	reply, err := conv.Send(ctx, fmt.Sprintf(imagePromptTemplate, description))
	if err != nil {
		return PromptSpec{}, fmt.Errorf("prompt agent failed: %w", err)
	}

	for _, call := range reply.ToolCalls {
		if call.Name == "get_policy_text" {
			reply, err = conv.SendToolResult(ctx, "get_policy_text", map[string]any{
				"content": policyText,
			})
			if err != nil {
				return PromptSpec{}, fmt.Errorf("prompt agent failed after tool call: %w", err)
			}
			break
		}
	}

	return parsePromptSpec(reply.Text)
}

func parsePromptSpec(raw string) (PromptSpec, error) {
	var spec PromptSpec
	if err := jsonextract.Unmarshal(raw, &spec); err != nil {
		return PromptSpec{}, err
	}
	if spec.PositivePrompt == "" {
		return PromptSpec{}, &jsonextract.MalformedOutputError{
			Reason: "prompt agent produced no positive_prompt",
			Raw:    raw,
		}
	}
	return spec, nil
}

// GenerateArchetypeImage runs the full image pipeline for one archetype:
// prompt agent, retried image generation, upload, signed URL. A failure
// anywhere aborts only this archetype.
func (p *Pipeline) GenerateArchetypeImage(ctx context.Context, sessionID, archetypeID, description string) (string, error) {
	spec, err := p.generatePromptSpec(ctx, description)
	if err != nil {
		return "", err
	}

	var image []byte
	policy := imageRetryPolicy()
	err = policy.Do(ctx, func() error {
		var genErr error
		image, genErr = p.llm.GenerateImage(ctx, p.models.Image, spec.PositivePrompt)
		return genErr
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	objectPath := fmt.Sprintf("archetype_images/%s/%s.png", sessionID, archetypeID)
	if err := p.store.Upload(ctx, objectPath, image, "image/png"); err != nil {
		return "", err
	}

	url, err := p.store.SignedReadURL(ctx, objectPath)
	if err != nil {
		return "", err
	}

	p.log.Debug("Archetype image generated", "object", objectPath)
	return url, nil
}
