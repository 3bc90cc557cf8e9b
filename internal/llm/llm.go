// Package llm wraps the Gemini client behind the small surface the
// advisor pipelines need: single-shot completions, structured JSON
// completions, video-grounded completions, and multi-turn conversations
// with function calling. History is managed client-side.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrEmptyResponse indicates the model returned no usable content.
var ErrEmptyResponse = errors.New("empty response from model")

// ErrNoImage indicates an image generation call returned no images.
// The image pipeline treats this as retryable.
var ErrNoImage = errors.New("model returned no image")

// GenerationError wraps any failure of a generation backend call.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("model generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Reply is a single model turn: the concatenated text parts plus any
// tool calls, in the order the model emitted them.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// Client is a thin wrapper over the genai client. Model names are
// passed per call so one client serves every pipeline.
type Client struct {
	gClient *genai.Client
}

// NewClient creates a Vertex-backed client for the given project and
// location. Credentials come from the ambient application default
// credentials chain.
func NewClient(ctx context.Context, projectID, location string) (*Client, error) {
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{gClient: gClient}, nil
}

// CompleteJSON sends a single prompt and returns the raw response text.
// The prompt is expected to instruct the model to answer in JSON;
// extraction and parsing are the caller's concern.
func (c *Client) CompleteJSON(ctx context.Context, model, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", &GenerationError{Cause: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &GenerationError{Cause: ErrEmptyResponse}
	}

	return text, nil
}

// CompleteVideoJSON analyzes a public video referenced by URL together
// with a text prompt and returns the raw response text. When start or
// end is positive only that clip window is analyzed.
func (c *Client) CompleteVideoJSON(ctx context.Context, model, videoURL string, start, end time.Duration, prompt string) (string, error) {
	videoPart := &genai.Part{
		FileData: &genai.FileData{
			FileURI:  videoURL,
			MIMEType: "video/youtube",
		},
	}
	if start > 0 || end > 0 {
		videoPart.VideoMetadata = &genai.VideoMetadata{
			StartOffset: start,
			EndOffset:   end,
		}
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{videoPart, {Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", &GenerationError{Cause: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &GenerationError{Cause: ErrEmptyResponse}
	}

	return text, nil
}

// GenerateImage produces a single image for the prompt and returns its
// raw bytes. An empty result surfaces as ErrNoImage so callers can
// distinguish it from transport failures.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) ([]byte, error) {
	resp, err := c.gClient.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, &GenerationError{Cause: err}
	}

	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, ErrNoImage
	}

	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// StartVideoJob submits a long-running video generation job writing its
// output under outputGCSURI. The returned operation must be polled via
// PollVideoJob until done.
func (c *Client) StartVideoJob(ctx context.Context, model, prompt, outputGCSURI string) (*genai.GenerateVideosOperation, error) {
	op, err := c.gClient.Models.GenerateVideos(ctx, model, prompt, nil, &genai.GenerateVideosConfig{
		AspectRatio:      "16:9",
		PersonGeneration: "dont_allow",
		OutputGCSURI:     outputGCSURI,
	})
	if err != nil {
		return nil, &GenerationError{Cause: err}
	}
	return op, nil
}

// PollVideoJob fetches the latest state of a video generation job.
func (c *Client) PollVideoJob(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	op, err := c.gClient.Operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return nil, &GenerationError{Cause: err}
	}
	return op, nil
}

// Conversation is a multi-turn exchange with client-managed history.
// It is not safe for concurrent use; each request builds its own.
type Conversation struct {
	client  *Client
	model   string
	config  *genai.GenerateContentConfig
	history []*genai.Content
}

// StartConversation begins a conversation on the given model. Tools, if
// any, are offered to the model on every turn.
func (c *Client) StartConversation(model string, tools []*genai.Tool) *Conversation {
	var config *genai.GenerateContentConfig
	if len(tools) > 0 {
		config = &genai.GenerateContentConfig{Tools: tools}
	}
	return &Conversation{
		client: c,
		model:  model,
		config: config,
	}
}

// Send appends a user text message and requests the next model turn.
func (conv *Conversation) Send(ctx context.Context, text string) (Reply, error) {
	conv.history = append(conv.history, &genai.Content{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	})
	return conv.generate(ctx)
}

// SendToolResult feeds a tool's response back into the conversation and
// requests the next model turn.
func (conv *Conversation) SendToolResult(ctx context.Context, name string, response map[string]any) (Reply, error) {
	conv.history = append(conv.history, &genai.Content{
		Parts: []*genai.Part{{
			FunctionResponse: &genai.FunctionResponse{
				Name:     name,
				Response: response,
			},
		}},
		Role: "user",
	})
	return conv.generate(ctx)
}

func (conv *Conversation) generate(ctx context.Context) (Reply, error) {
	resp, err := conv.client.gClient.Models.GenerateContent(ctx, conv.model, conv.history, conv.config)
	if err != nil {
		return Reply{}, &GenerationError{Cause: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Reply{}, &GenerationError{Cause: ErrEmptyResponse}
	}

	content := resp.Candidates[0].Content
	conv.history = append(conv.history, content)

	var reply Reply
	var text strings.Builder
	for _, part := range content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	reply.Text = text.String()

	return reply, nil
}
